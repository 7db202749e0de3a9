package billing

import (
	"fmt"
	"strconv"
	"time"

	"github.com/icaro-milhomem/ispmanager-sub000/internal/audit"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/auth"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/database"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreateInvoiceRequest struct {
	ContractID uint    `json:"contract_id"`
	Amount     float64 `json:"amount"`   // opcional; padrão = preço do plano
	DueDate    string  `json:"due_date"` // "2026-02-10"
}

type InvoiceResponse struct {
	ID           uint    `json:"id"`
	ContractID   uint    `json:"contract_id"`
	CustomerName string  `json:"customer_name,omitempty"`
	Number       string  `json:"number"`
	Amount       float64 `json:"amount"`
	DueDate      string  `json:"due_date"`
	Status       string  `json:"status"`
	PaidAt       *string `json:"paid_at"`
	CreatedAt    string  `json:"created_at"`
}

func invoiceToResponse(inv models.Invoice) InvoiceResponse {
	var paidAt *string
	if inv.PaidAt != nil {
		s := inv.PaidAt.Format("2006-01-02 15:04:05")
		paidAt = &s
	}
	return InvoiceResponse{
		ID:           inv.ID,
		ContractID:   inv.ContractID,
		CustomerName: inv.Contract.Customer.Name,
		Number:       inv.Number,
		Amount:       inv.Amount,
		DueDate:      inv.DueDate.Format("2006-01-02"),
		Status:       string(inv.Status),
		PaidAt:       paidAt,
		CreatedAt:    inv.CreatedAt.Format("2006-01-02 15:04:05"),
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

// GET /api/invoices?page=&limit=&status=&contract_id=&start_date=&end_date=
func ListInvoicesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, _ := strconv.Atoi(c.Query("page", "1"))
		if page < 1 {
			page = 1
		}
		limit, _ := strconv.Atoi(c.Query("limit", "20"))
		if limit < 1 || limit > 100 {
			limit = 20
		}

		dbq := database.DB.Model(&models.Invoice{})

		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("status = ?", status)
		}
		if contractIDStr := c.Query("contract_id"); contractIDStr != "" {
			var contractID uint
			if _, err := fmt.Sscan(contractIDStr, &contractID); err == nil && contractID > 0 {
				dbq = dbq.Where("contract_id = ?", contractID)
			}
		}
		if startStr := c.Query("start_date"); startStr != "" {
			start, err := time.Parse("2006-01-02", startStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "start_date deve estar no formato 'YYYY-MM-DD'")
			}
			dbq = dbq.Where("due_date >= ?", start)
		}
		if endStr := c.Query("end_date"); endStr != "" {
			end, err := time.Parse("2006-01-02", endStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "end_date deve estar no formato 'YYYY-MM-DD'")
			}
			dbq = dbq.Where("due_date < ?", end.AddDate(0, 0, 1))
		}

		var total int64
		if err := dbq.Count(&total).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar as faturas")
		}

		var invoices []models.Invoice
		if err := dbq.Preload("Contract.Customer").
			Order("due_date desc, id desc").
			Offset((page - 1) * limit).
			Limit(limit).
			Find(&invoices).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar as faturas")
		}

		resp := make([]InvoiceResponse, 0, len(invoices))
		for _, inv := range invoices {
			resp = append(resp, invoiceToResponse(inv))
		}

		pages := int((total + int64(limit) - 1) / int64(limit))

		return c.JSON(fiber.Map{
			"invoices": resp,
			"pagination": fiber.Map{
				"total": total,
				"page":  page,
				"limit": limit,
				"pages": pages,
			},
		})
	}
}

// GET /api/invoices/:id
func GetInvoiceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var inv models.Invoice
		if err := database.DB.Preload("Contract.Customer").First(&inv, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Fatura não encontrada")
		}
		return c.JSON(invoiceToResponse(inv))
	}
}

// POST /api/invoices
func CreateInvoiceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateInvoiceRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		if body.ContractID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "contract_id é obrigatório")
		}

		var ct models.Contract
		if err := database.DB.Preload("Plan").Preload("Customer").First(&ct, "id = ?", body.ContractID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Contrato não encontrado")
		}
		if ct.Status == models.ContractCanceled {
			return fiber.NewError(fiber.StatusBadRequest, "Contrato cancelado não gera faturas")
		}

		amount := ct.Plan.Price
		if body.Amount > 0 {
			amount = body.Amount
		}

		dueDate, err := time.Parse("2006-01-02", body.DueDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "due_date deve estar no formato 'YYYY-MM-DD'")
		}

		inv := models.Invoice{
			ContractID: ct.ID,
			Number:     uuid.NewString(),
			Amount:     amount,
			DueDate:    dueDate,
			Status:     models.InvoiceOpen,
		}

		if err := database.DB.Create(&inv).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível criar a fatura")
		}

		userID, userName, uerr := getUserInfo(c)
		if uerr == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "invoice",
				EntityID:    inv.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Fatura %s criada: R$ %.2f", inv.Number, inv.Amount),
				After:       inv,
			})
		}

		inv.Contract = ct
		return c.Status(fiber.StatusCreated).JSON(invoiceToResponse(inv))
	}
}

// POST /api/invoices/:id/pay
func PayInvoiceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var inv models.Invoice
		if err := database.DB.First(&inv, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Fatura não encontrada")
		}

		if inv.Status == models.InvoicePaid {
			return fiber.NewError(fiber.StatusBadRequest, "Fatura já está paga")
		}
		if inv.Status == models.InvoiceCanceled {
			return fiber.NewError(fiber.StatusBadRequest, "Fatura cancelada não pode ser paga")
		}

		before := inv
		now := time.Now()
		inv.Status = models.InvoicePaid
		inv.PaidAt = &now

		if err := database.DB.Save(&inv).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível registrar o pagamento")
		}

		userID, userName, uerr := getUserInfo(c)
		if uerr == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "invoice",
				EntityID:    inv.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Fatura %s paga", inv.Number),
				Before:      before,
				After:       inv,
			})
		}

		return c.JSON(invoiceToResponse(inv))
	}
}

// POST /api/invoices/:id/cancel
func CancelInvoiceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var inv models.Invoice
		if err := database.DB.First(&inv, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Fatura não encontrada")
		}

		if inv.Status == models.InvoicePaid {
			return fiber.NewError(fiber.StatusBadRequest, "Fatura paga não pode ser cancelada")
		}
		if inv.Status == models.InvoiceCanceled {
			return fiber.NewError(fiber.StatusBadRequest, "Fatura já está cancelada")
		}

		inv.Status = models.InvoiceCanceled
		if err := database.DB.Save(&inv).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível cancelar a fatura")
		}

		return c.JSON(invoiceToResponse(inv))
	}
}

// POST /api/invoices/sweep-overdue
// Marca como vencidas todas as faturas abertas com due_date no passado.
func SweepOverdueHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		res := database.DB.Model(&models.Invoice{}).
			Where("status = ? AND due_date < ?", models.InvoiceOpen, time.Now()).
			Update("status", models.InvoiceOverdue)
		if res.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível atualizar as faturas vencidas")
		}

		return c.JSON(fiber.Map{"updated": res.RowsAffected})
	}
}
