package customer

import (
	"strconv"
	"strings"

	"github.com/icaro-milhomem/ispmanager-sub000/internal/database"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateCustomerRequest struct {
	Name     string `json:"name"`
	Document string `json:"document"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zip_code"`
	Notes    string `json:"notes"`
}

type UpdateCustomerRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	City    *string `json:"city"`
	State   *string `json:"state"`
	ZipCode *string `json:"zip_code"`
	Status  *string `json:"status"`
	Notes   *string `json:"notes"`
}

type CustomerResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Document  string `json:"document"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
	Status    string `json:"status"`
	Notes     string `json:"notes"`
	CreatedAt string `json:"created_at"`
}

func toResponse(cu models.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        cu.ID,
		Name:      cu.Name,
		Document:  cu.Document,
		Email:     cu.Email,
		Phone:     cu.Phone,
		Address:   cu.Address,
		City:      cu.City,
		State:     cu.State,
		ZipCode:   cu.ZipCode,
		Status:    string(cu.Status),
		Notes:     cu.Notes,
		CreatedAt: cu.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// GET /api/customers?page=&limit=&search=&status=
func ListCustomersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, _ := strconv.Atoi(c.Query("page", "1"))
		if page < 1 {
			page = 1
		}
		limit, _ := strconv.Atoi(c.Query("limit", "20"))
		if limit < 1 || limit > 100 {
			limit = 20
		}

		dbq := database.DB.Model(&models.Customer{})

		if search := c.Query("search"); search != "" {
			like := "%" + search + "%"
			dbq = dbq.Where("name ILIKE ? OR document LIKE ?", like, like)
		}
		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("status = ?", status)
		}

		var total int64
		if err := dbq.Count(&total).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar os clientes")
		}

		var customers []models.Customer
		if err := dbq.Order("name asc").Offset((page - 1) * limit).Limit(limit).Find(&customers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar os clientes")
		}

		resp := make([]CustomerResponse, 0, len(customers))
		for _, cu := range customers {
			resp = append(resp, toResponse(cu))
		}

		pages := int((total + int64(limit) - 1) / int64(limit))

		return c.JSON(fiber.Map{
			"customers": resp,
			"pagination": fiber.Map{
				"total": total,
				"page":  page,
				"limit": limit,
				"pages": pages,
			},
		})
	}
}

// GET /api/customers/:id
func GetCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var customer models.Customer
		if err := database.DB.First(&customer, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Cliente não encontrado")
		}

		return c.JSON(toResponse(customer))
	}
}

// POST /api/customers
func CreateCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateCustomerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Document = strings.TrimSpace(body.Document)

		if body.Name == "" || body.Document == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Nome e documento (CPF/CNPJ) são obrigatórios")
		}

		var existing models.Customer
		if err := database.DB.Where("document = ?", body.Document).First(&existing).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Já existe um cliente com este documento")
		}

		customer := models.Customer{
			Name:     body.Name,
			Document: body.Document,
			Email:    strings.TrimSpace(strings.ToLower(body.Email)),
			Phone:    strings.TrimSpace(body.Phone),
			Address:  strings.TrimSpace(body.Address),
			City:     strings.TrimSpace(body.City),
			State:    strings.ToUpper(strings.TrimSpace(body.State)),
			ZipCode:  strings.TrimSpace(body.ZipCode),
			Status:   models.CustomerActive,
			Notes:    body.Notes,
		}

		if err := database.DB.Create(&customer).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível criar o cliente")
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(customer))
	}
}

// PUT /api/customers/:id
func UpdateCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var customer models.Customer
		if err := database.DB.First(&customer, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Cliente não encontrado")
		}

		var body UpdateCustomerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Nome não pode ficar vazio")
			}
			customer.Name = name
		}
		if body.Email != nil {
			customer.Email = strings.TrimSpace(strings.ToLower(*body.Email))
		}
		if body.Phone != nil {
			customer.Phone = strings.TrimSpace(*body.Phone)
		}
		if body.Address != nil {
			customer.Address = strings.TrimSpace(*body.Address)
		}
		if body.City != nil {
			customer.City = strings.TrimSpace(*body.City)
		}
		if body.State != nil {
			customer.State = strings.ToUpper(strings.TrimSpace(*body.State))
		}
		if body.ZipCode != nil {
			customer.ZipCode = strings.TrimSpace(*body.ZipCode)
		}
		if body.Status != nil {
			status := models.CustomerStatus(*body.Status)
			if status != models.CustomerActive && status != models.CustomerInactive && status != models.CustomerBlocked {
				return fiber.NewError(fiber.StatusBadRequest, "Status deve ser 'ativo', 'inativo' ou 'bloqueado'")
			}
			customer.Status = status
		}
		if body.Notes != nil {
			customer.Notes = *body.Notes
		}

		if err := database.DB.Save(&customer).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível atualizar o cliente")
		}

		return c.JSON(toResponse(customer))
	}
}

// DELETE /api/customers/:id
func DeleteCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var customer models.Customer
		if err := database.DB.First(&customer, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Cliente não encontrado")
		}

		var contractCount int64
		database.DB.Model(&models.Contract{}).Where("customer_id = ?", customer.ID).Count(&contractCount)
		if contractCount > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Cliente possui contratos; cancele-os antes de excluir")
		}

		if err := database.DB.Delete(&customer).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível excluir o cliente")
		}

		return c.JSON(fiber.Map{"message": "Cliente excluído com sucesso"})
	}
}
