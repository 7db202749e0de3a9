package ticket

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/icaro-milhomem/ispmanager-sub000/internal/auth"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/database"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreateTicketRequest struct {
	CustomerID  uint   `json:"customer_id"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
	Priority    string `json:"priority"` // baixa/media/alta/urgente, padrão media
}

type UpdateTicketRequest struct {
	Subject    *string `json:"subject"`
	Status     *string `json:"status"`
	Priority   *string `json:"priority"`
	AssignedTo *uint   `json:"assigned_to"`
}

type CreateReplyRequest struct {
	Message string `json:"message"`
}

type TicketResponse struct {
	ID           uint   `json:"id"`
	Protocol     string `json:"protocol"`
	CustomerID   uint   `json:"customer_id"`
	CustomerName string `json:"customer_name,omitempty"`
	Subject      string `json:"subject"`
	Description  string `json:"description"`
	Status       string `json:"status"`
	Priority     string `json:"priority"`
	AssignedTo   *uint  `json:"assigned_to"`
	ReplyCount   int    `json:"reply_count"`
	CreatedAt    string `json:"created_at"`
}

type ReplyResponse struct {
	ID        uint   `json:"id"`
	TicketID  uint   `json:"ticket_id"`
	UserID    uint   `json:"user_id"`
	UserName  string `json:"user_name"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}

func toResponse(t models.Ticket) TicketResponse {
	return TicketResponse{
		ID:           t.ID,
		Protocol:     t.Protocol,
		CustomerID:   t.CustomerID,
		CustomerName: t.Customer.Name,
		Subject:      t.Subject,
		Description:  t.Description,
		Status:       string(t.Status),
		Priority:     string(t.Priority),
		AssignedTo:   t.AssignedTo,
		ReplyCount:   len(t.Replies),
		CreatedAt:    t.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func validPriority(p models.TicketPriority) bool {
	switch p {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityUrgent:
		return true
	}
	return false
}

func validStatus(s models.TicketStatus) bool {
	switch s {
	case models.TicketOpen, models.TicketInProgress, models.TicketResolved, models.TicketClosed:
		return true
	}
	return false
}

// GET /api/tickets?page=&limit=&status=&priority=&customer_id=
func ListTicketsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, _ := strconv.Atoi(c.Query("page", "1"))
		if page < 1 {
			page = 1
		}
		limit, _ := strconv.Atoi(c.Query("limit", "20"))
		if limit < 1 || limit > 100 {
			limit = 20
		}

		dbq := database.DB.Model(&models.Ticket{})

		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("status = ?", status)
		}
		if priority := c.Query("priority"); priority != "" {
			dbq = dbq.Where("priority = ?", priority)
		}
		if customerIDStr := c.Query("customer_id"); customerIDStr != "" {
			var customerID uint
			if _, err := fmt.Sscan(customerIDStr, &customerID); err == nil && customerID > 0 {
				dbq = dbq.Where("customer_id = ?", customerID)
			}
		}

		var total int64
		if err := dbq.Count(&total).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar os chamados")
		}

		var tickets []models.Ticket
		if err := dbq.Preload("Customer").Preload("Replies").
			Order("created_at desc").
			Offset((page - 1) * limit).
			Limit(limit).
			Find(&tickets).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar os chamados")
		}

		resp := make([]TicketResponse, 0, len(tickets))
		for _, t := range tickets {
			resp = append(resp, toResponse(t))
		}

		pages := int((total + int64(limit) - 1) / int64(limit))

		return c.JSON(fiber.Map{
			"tickets": resp,
			"pagination": fiber.Map{
				"total": total,
				"page":  page,
				"limit": limit,
				"pages": pages,
			},
		})
	}
}

// GET /api/tickets/:id
func GetTicketHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var t models.Ticket
		if err := database.DB.Preload("Customer").Preload("Replies").First(&t, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Chamado não encontrado")
		}

		replies := make([]ReplyResponse, 0, len(t.Replies))
		for _, r := range t.Replies {
			replies = append(replies, ReplyResponse{
				ID:        r.ID,
				TicketID:  r.TicketID,
				UserID:    r.UserID,
				UserName:  r.UserName,
				Message:   r.Message,
				CreatedAt: r.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}

		return c.JSON(fiber.Map{
			"ticket":  toResponse(t),
			"replies": replies,
		})
	}
}

// POST /api/tickets
func CreateTicketHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateTicketRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		body.Subject = strings.TrimSpace(body.Subject)
		if body.CustomerID == 0 || body.Subject == "" {
			return fiber.NewError(fiber.StatusBadRequest, "customer_id e subject são obrigatórios")
		}

		var customer models.Customer
		if err := database.DB.First(&customer, "id = ?", body.CustomerID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cliente não encontrado")
		}

		priority := models.PriorityMedium
		if body.Priority != "" {
			priority = models.TicketPriority(body.Priority)
			if !validPriority(priority) {
				return fiber.NewError(fiber.StatusBadRequest, "Prioridade inválida")
			}
		}

		t := models.Ticket{
			CustomerID:  body.CustomerID,
			Protocol:    uuid.NewString(),
			Subject:     body.Subject,
			Description: body.Description,
			Status:      models.TicketOpen,
			Priority:    priority,
		}

		if err := database.DB.Create(&t).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível abrir o chamado")
		}

		t.Customer = customer
		return c.Status(fiber.StatusCreated).JSON(toResponse(t))
	}
}

// PUT /api/tickets/:id
func UpdateTicketHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var t models.Ticket
		if err := database.DB.Preload("Customer").First(&t, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Chamado não encontrado")
		}

		var body UpdateTicketRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		if body.Subject != nil {
			subject := strings.TrimSpace(*body.Subject)
			if subject == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Assunto não pode ficar vazio")
			}
			t.Subject = subject
		}
		if body.Status != nil {
			status := models.TicketStatus(*body.Status)
			if !validStatus(status) {
				return fiber.NewError(fiber.StatusBadRequest, "Status inválido")
			}
			t.Status = status
			if status == models.TicketClosed || status == models.TicketResolved {
				now := time.Now()
				t.ClosedAt = &now
			} else {
				t.ClosedAt = nil
			}
		}
		if body.Priority != nil {
			priority := models.TicketPriority(*body.Priority)
			if !validPriority(priority) {
				return fiber.NewError(fiber.StatusBadRequest, "Prioridade inválida")
			}
			t.Priority = priority
		}
		if body.AssignedTo != nil {
			var user models.User
			if err := database.DB.First(&user, "id = ?", *body.AssignedTo).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Usuário responsável não encontrado")
			}
			t.AssignedTo = body.AssignedTo
		}

		if err := database.DB.Save(&t).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível atualizar o chamado")
		}

		return c.JSON(toResponse(t))
	}
}

// POST /api/tickets/:id/replies
func CreateReplyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var t models.Ticket
		if err := database.DB.First(&t, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Chamado não encontrado")
		}
		if t.Status == models.TicketClosed {
			return fiber.NewError(fiber.StatusBadRequest, "Chamado fechado não aceita respostas")
		}

		var body CreateReplyRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		body.Message = strings.TrimSpace(body.Message)
		if body.Message == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Mensagem é obrigatória")
		}

		userIDVal := c.Locals(auth.CtxUserIDKey)
		userID, ok := userIDVal.(uint)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "Não foi possível identificar o usuário")
		}
		var user models.User
		if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Usuário não encontrado")
		}

		reply := models.TicketReply{
			TicketID: t.ID,
			UserID:   userID,
			UserName: user.Name,
			Message:  body.Message,
		}

		if err := database.DB.Create(&reply).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível registrar a resposta")
		}

		return c.Status(fiber.StatusCreated).JSON(ReplyResponse{
			ID:        reply.ID,
			TicketID:  reply.TicketID,
			UserID:    reply.UserID,
			UserName:  reply.UserName,
			Message:   reply.Message,
			CreatedAt: reply.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

// DELETE /api/admin/tickets/:id
func DeleteTicketHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var t models.Ticket
		if err := database.DB.First(&t, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Chamado não encontrado")
		}

		// Replies caem junto via OnDelete:CASCADE
		if err := database.DB.Select("Replies").Delete(&t).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível excluir o chamado")
		}

		return c.JSON(fiber.Map{"message": "Chamado excluído com sucesso"})
	}
}
