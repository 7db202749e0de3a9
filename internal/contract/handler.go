package contract

import (
	"fmt"
	"strconv"
	"time"

	"github.com/icaro-milhomem/ispmanager-sub000/internal/audit"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/auth"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/database"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateContractRequest struct {
	CustomerID     uint   `json:"customer_id"`
	PlanID         uint   `json:"plan_id"`
	InstallAddress string `json:"install_address"`
	StartDate      string `json:"start_date"` // "2026-01-15", opcional (padrão: hoje)
}

type UpdateContractRequest struct {
	PlanID         *uint   `json:"plan_id"`
	InstallAddress *string `json:"install_address"`
	Status         *string `json:"status"`
}

type ContractResponse struct {
	ID             uint    `json:"id"`
	CustomerID     uint    `json:"customer_id"`
	CustomerName   string  `json:"customer_name"`
	PlanID         uint    `json:"plan_id"`
	PlanName       string  `json:"plan_name"`
	PlanPrice      float64 `json:"plan_price"`
	InstallAddress string  `json:"install_address"`
	Status         string  `json:"status"`
	StartDate      string  `json:"start_date"`
	CreatedAt      string  `json:"created_at"`
}

func toResponse(ct models.Contract) ContractResponse {
	return ContractResponse{
		ID:             ct.ID,
		CustomerID:     ct.CustomerID,
		CustomerName:   ct.Customer.Name,
		PlanID:         ct.PlanID,
		PlanName:       ct.Plan.Name,
		PlanPrice:      ct.Plan.Price,
		InstallAddress: ct.InstallAddress,
		Status:         string(ct.Status),
		StartDate:      ct.StartDate.Format("2006-01-02"),
		CreatedAt:      ct.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func getUserInfo(c *fiber.Ctx) (uint, string, error) {
	userIDVal := c.Locals(auth.CtxUserIDKey)
	userID, ok := userIDVal.(uint)
	if !ok {
		return 0, "", fiber.NewError(fiber.StatusForbidden, "Não foi possível identificar o usuário")
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return 0, "", fiber.NewError(fiber.StatusInternalServerError, "Usuário não encontrado")
	}

	return userID, user.Name, nil
}

// GET /api/contracts?page=&limit=&customer_id=&status=
func ListContractsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, _ := strconv.Atoi(c.Query("page", "1"))
		if page < 1 {
			page = 1
		}
		limit, _ := strconv.Atoi(c.Query("limit", "20"))
		if limit < 1 || limit > 100 {
			limit = 20
		}

		dbq := database.DB.Model(&models.Contract{})

		if customerIDStr := c.Query("customer_id"); customerIDStr != "" {
			var customerID uint
			if _, err := fmt.Sscan(customerIDStr, &customerID); err == nil && customerID > 0 {
				dbq = dbq.Where("customer_id = ?", customerID)
			}
		}
		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("status = ?", status)
		}

		var total int64
		if err := dbq.Count(&total).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar os contratos")
		}

		var contracts []models.Contract
		if err := dbq.Preload("Customer").Preload("Plan").
			Order("created_at desc").
			Offset((page - 1) * limit).
			Limit(limit).
			Find(&contracts).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar os contratos")
		}

		resp := make([]ContractResponse, 0, len(contracts))
		for _, ct := range contracts {
			resp = append(resp, toResponse(ct))
		}

		pages := int((total + int64(limit) - 1) / int64(limit))

		return c.JSON(fiber.Map{
			"contracts": resp,
			"pagination": fiber.Map{
				"total": total,
				"page":  page,
				"limit": limit,
				"pages": pages,
			},
		})
	}
}

// GET /api/contracts/:id
func GetContractHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var ct models.Contract
		if err := database.DB.Preload("Customer").Preload("Plan").First(&ct, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Contrato não encontrado")
		}
		return c.JSON(toResponse(ct))
	}
}

// POST /api/contracts
func CreateContractHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateContractRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		if body.CustomerID == 0 || body.PlanID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "customer_id e plan_id são obrigatórios")
		}

		var customer models.Customer
		if err := database.DB.First(&customer, "id = ?", body.CustomerID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cliente não encontrado")
		}
		if customer.Status == models.CustomerBlocked {
			return fiber.NewError(fiber.StatusBadRequest, "Cliente bloqueado não pode receber novos contratos")
		}

		var plan models.Plan
		if err := database.DB.First(&plan, "id = ?", body.PlanID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Plano não encontrado")
		}
		if !plan.Active {
			return fiber.NewError(fiber.StatusBadRequest, "Plano está inativo")
		}

		startDate := time.Now()
		if body.StartDate != "" {
			d, err := time.Parse("2006-01-02", body.StartDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Data deve estar no formato 'YYYY-MM-DD'")
			}
			startDate = d
		}

		ct := models.Contract{
			CustomerID:     body.CustomerID,
			PlanID:         body.PlanID,
			InstallAddress: body.InstallAddress,
			Status:         models.ContractActive,
			StartDate:      startDate,
		}

		if err := database.DB.Create(&ct).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível criar o contrato")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "contract",
				EntityID:    ct.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Contrato criado: cliente %s, plano %s", customer.Name, plan.Name),
				After:       ct,
			})
		}

		ct.Customer = customer
		ct.Plan = plan
		return c.Status(fiber.StatusCreated).JSON(toResponse(ct))
	}
}

// PUT /api/contracts/:id
func UpdateContractHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var ct models.Contract
		if err := database.DB.Preload("Customer").Preload("Plan").First(&ct, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Contrato não encontrado")
		}

		before := ct

		var body UpdateContractRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		if body.PlanID != nil {
			var plan models.Plan
			if err := database.DB.First(&plan, "id = ?", *body.PlanID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Plano não encontrado")
			}
			ct.PlanID = *body.PlanID
			ct.Plan = plan
		}
		if body.InstallAddress != nil {
			ct.InstallAddress = *body.InstallAddress
		}
		if body.Status != nil {
			status := models.ContractStatus(*body.Status)
			switch status {
			case models.ContractActive, models.ContractSuspended:
				ct.Status = status
			case models.ContractCanceled:
				now := time.Now()
				ct.Status = status
				ct.CanceledAt = &now
			default:
				return fiber.NewError(fiber.StatusBadRequest, "Status deve ser 'ativo', 'suspenso' ou 'cancelado'")
			}
		}

		if err := database.DB.Save(&ct).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível atualizar o contrato")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "contract",
				EntityID:    ct.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Contrato %d atualizado", ct.ID),
				Before:      before,
				After:       ct,
			})
		}

		return c.JSON(toResponse(ct))
	}
}

// DELETE /api/contracts/:id — contratos não são apagados, são cancelados.
func DeleteContractHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var ct models.Contract
		if err := database.DB.First(&ct, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Contrato não encontrado")
		}

		if ct.Status == models.ContractCanceled {
			return fiber.NewError(fiber.StatusBadRequest, "Contrato já está cancelado")
		}

		now := time.Now()
		ct.Status = models.ContractCanceled
		ct.CanceledAt = &now

		if err := database.DB.Save(&ct).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível cancelar o contrato")
		}

		return c.JSON(fiber.Map{"message": "Contrato cancelado com sucesso"})
	}
}
