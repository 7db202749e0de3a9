package plan

import (
	"strings"

	"github.com/icaro-milhomem/ispmanager-sub000/internal/database"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreatePlanRequest struct {
	Name         string  `json:"name"`
	DownloadMbps int     `json:"download_mbps"`
	UploadMbps   int     `json:"upload_mbps"`
	Price        float64 `json:"price"`
	Description  string  `json:"description"`
}

type UpdatePlanRequest struct {
	Name         *string  `json:"name"`
	DownloadMbps *int     `json:"download_mbps"`
	UploadMbps   *int     `json:"upload_mbps"`
	Price        *float64 `json:"price"`
	Description  *string  `json:"description"`
	Active       *bool    `json:"active"`
}

type PlanResponse struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	DownloadMbps int     `json:"download_mbps"`
	UploadMbps   int     `json:"upload_mbps"`
	Price        float64 `json:"price"`
	Description  string  `json:"description"`
	Active       bool    `json:"active"`
}

func toResponse(p models.Plan) PlanResponse {
	return PlanResponse{
		ID:           p.ID,
		Name:         p.Name,
		DownloadMbps: p.DownloadMbps,
		UploadMbps:   p.UploadMbps,
		Price:        p.Price,
		Description:  p.Description,
		Active:       p.Active,
	}
}

// GET /api/plans?active=true
func ListPlansHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Plan{})

		if active := c.Query("active"); active == "true" {
			dbq = dbq.Where("active = ?", true)
		} else if active == "false" {
			dbq = dbq.Where("active = ?", false)
		}

		var plans []models.Plan
		if err := dbq.Order("price asc").Find(&plans).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar os planos")
		}

		resp := make([]PlanResponse, 0, len(plans))
		for _, p := range plans {
			resp = append(resp, toResponse(p))
		}
		return c.JSON(resp)
	}
}

// GET /api/plans/:id
func GetPlanHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.Plan
		if err := database.DB.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Plano não encontrado")
		}
		return c.JSON(toResponse(p))
	}
}

// POST /api/admin/plans
func CreatePlanHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreatePlanRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Nome é obrigatório")
		}
		if body.DownloadMbps <= 0 || body.UploadMbps <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Velocidades devem ser maiores que zero")
		}
		if body.Price < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Preço não pode ser negativo")
		}

		p := models.Plan{
			Name:         body.Name,
			DownloadMbps: body.DownloadMbps,
			UploadMbps:   body.UploadMbps,
			Price:        body.Price,
			Description:  body.Description,
			Active:       true,
		}

		if err := database.DB.Create(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível criar o plano")
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(p))
	}
}

// PUT /api/admin/plans/:id
func UpdatePlanHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.Plan
		if err := database.DB.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Plano não encontrado")
		}

		var body UpdatePlanRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Nome não pode ficar vazio")
			}
			p.Name = name
		}
		if body.DownloadMbps != nil {
			if *body.DownloadMbps <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Download deve ser maior que zero")
			}
			p.DownloadMbps = *body.DownloadMbps
		}
		if body.UploadMbps != nil {
			if *body.UploadMbps <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Upload deve ser maior que zero")
			}
			p.UploadMbps = *body.UploadMbps
		}
		if body.Price != nil {
			if *body.Price < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Preço não pode ser negativo")
			}
			p.Price = *body.Price
		}
		if body.Description != nil {
			p.Description = *body.Description
		}
		if body.Active != nil {
			p.Active = *body.Active
		}

		if err := database.DB.Save(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível atualizar o plano")
		}

		return c.JSON(toResponse(p))
	}
}

// DELETE /api/admin/plans/:id
func DeletePlanHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.Plan
		if err := database.DB.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Plano não encontrado")
		}

		var contractCount int64
		database.DB.Model(&models.Contract{}).Where("plan_id = ?", p.ID).Count(&contractCount)
		if contractCount > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Plano possui contratos vinculados; desative-o em vez de excluir")
		}

		if err := database.DB.Delete(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível excluir o plano")
		}

		return c.JSON(fiber.Map{"message": "Plano excluído com sucesso"})
	}
}
