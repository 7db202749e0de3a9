package billing

import (
	"fmt"
	"time"

	"github.com/icaro-milhomem/ispmanager-sub000/internal/audit"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/database"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreateScheduleRequest struct {
	ContractID uint `json:"contract_id"`
	DayOfMonth int  `json:"day_of_month"`
}

type UpdateScheduleRequest struct {
	DayOfMonth *int  `json:"day_of_month"`
	Active     *bool `json:"active"`
}

type ScheduleResponse struct {
	ID         uint    `json:"id"`
	ContractID uint    `json:"contract_id"`
	DayOfMonth int     `json:"day_of_month"`
	LastRunAt  *string `json:"last_run_at"`
	NextRunAt  *string `json:"next_run_at"`
	Active     bool    `json:"active"`
}

func scheduleToResponse(s models.BillingSchedule) ScheduleResponse {
	var lastRun, nextRun *string
	if s.LastRunAt != nil {
		v := s.LastRunAt.Format("2006-01-02 15:04:05")
		lastRun = &v
	}
	if s.NextRunAt != nil {
		v := s.NextRunAt.Format("2006-01-02")
		nextRun = &v
	}
	return ScheduleResponse{
		ID:         s.ID,
		ContractID: s.ContractID,
		DayOfMonth: s.DayOfMonth,
		LastRunAt:  lastRun,
		NextRunAt:  nextRun,
		Active:     s.Active,
	}
}

// GET /api/billing-schedules
func ListSchedulesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var schedules []models.BillingSchedule
		if err := database.DB.Order("id asc").Find(&schedules).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar as agendas")
		}

		resp := make([]ScheduleResponse, 0, len(schedules))
		for _, s := range schedules {
			resp = append(resp, scheduleToResponse(s))
		}
		return c.JSON(resp)
	}
}

// POST /api/billing-schedules
func CreateScheduleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateScheduleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		if body.ContractID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "contract_id é obrigatório")
		}
		if body.DayOfMonth < 1 || body.DayOfMonth > 31 {
			return fiber.NewError(fiber.StatusBadRequest, "day_of_month deve estar entre 1 e 31")
		}

		var ct models.Contract
		if err := database.DB.First(&ct, "id = ?", body.ContractID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Contrato não encontrado")
		}

		var existing models.BillingSchedule
		if err := database.DB.Where("contract_id = ?", body.ContractID).First(&existing).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Contrato já possui agenda de faturamento")
		}

		next := NextRun(body.DayOfMonth, time.Now())
		s := models.BillingSchedule{
			ContractID: body.ContractID,
			DayOfMonth: body.DayOfMonth,
			NextRunAt:  &next,
			Active:     true,
		}

		if err := database.DB.Create(&s).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível criar a agenda")
		}

		return c.Status(fiber.StatusCreated).JSON(scheduleToResponse(s))
	}
}

// PUT /api/billing-schedules/:id
func UpdateScheduleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var s models.BillingSchedule
		if err := database.DB.First(&s, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Agenda não encontrada")
		}

		var body UpdateScheduleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		if body.DayOfMonth != nil {
			if *body.DayOfMonth < 1 || *body.DayOfMonth > 31 {
				return fiber.NewError(fiber.StatusBadRequest, "day_of_month deve estar entre 1 e 31")
			}
			s.DayOfMonth = *body.DayOfMonth

			after := time.Now()
			if s.LastRunAt != nil && s.LastRunAt.After(after) {
				after = *s.LastRunAt
			}
			next := NextRun(s.DayOfMonth, after)
			s.NextRunAt = &next
		}
		if body.Active != nil {
			s.Active = *body.Active
		}

		if err := database.DB.Save(&s).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível atualizar a agenda")
		}

		return c.JSON(scheduleToResponse(s))
	}
}

// POST /api/billing-schedules/:id/run
// Execução manual: gera a fatura do contrato e avança a agenda.
// Não há executor automático em background.
func RunScheduleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var s models.BillingSchedule
		if err := database.DB.First(&s, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Agenda não encontrada")
		}
		if !s.Active {
			return fiber.NewError(fiber.StatusBadRequest, "Agenda está inativa")
		}

		var ct models.Contract
		if err := database.DB.Preload("Plan").First(&ct, "id = ?", s.ContractID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Contrato da agenda não encontrado")
		}
		if ct.Status != models.ContractActive {
			return fiber.NewError(fiber.StatusBadRequest, "Contrato não está ativo")
		}

		now := time.Now()
		dueDate := dateForMonth(now.Year(), now.Month(), s.DayOfMonth, now.Location())
		if dueDate.Before(now) {
			dueDate = NextRun(s.DayOfMonth, now)
		}

		inv := models.Invoice{
			ContractID: ct.ID,
			Number:     uuid.NewString(),
			Amount:     ct.Plan.Price,
			DueDate:    dueDate,
			Status:     models.InvoiceOpen,
		}

		next := NextRun(s.DayOfMonth, now)

		tx := database.DB.Begin()
		if tx.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível iniciar a operação")
		}

		if err := tx.Create(&inv).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível gerar a fatura")
		}

		s.LastRunAt = &now
		s.NextRunAt = &next
		if err := tx.Save(&s).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível atualizar a agenda")
		}

		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível concluir a operação")
		}

		userID, userName, uerr := getUserInfo(c)
		if uerr == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "billing_schedule",
				EntityID:    s.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Agenda %d executada: fatura %s gerada", s.ID, inv.Number),
				After:       s,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"invoice":  invoiceToResponse(inv),
			"schedule": scheduleToResponse(s),
		})
	}
}
