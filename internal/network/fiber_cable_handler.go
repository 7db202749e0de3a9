package network

import (
	"strings"

	"github.com/icaro-milhomem/ispmanager-sub000/internal/database"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateFiberCableRequest struct {
	Name        string  `json:"name"`
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	LengthKm    float64 `json:"length_km"`
	FiberCount  int     `json:"fiber_count"`
}

type UpdateFiberCableRequest struct {
	Name        *string  `json:"name"`
	Origin      *string  `json:"origin"`
	Destination *string  `json:"destination"`
	LengthKm    *float64 `json:"length_km"`
	FiberCount  *int     `json:"fiber_count"`
	Status      *string  `json:"status"`
}

type FiberCableResponse struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	LengthKm    float64 `json:"length_km"`
	FiberCount  int     `json:"fiber_count"`
	Status      string  `json:"status"`
}

func cableToResponse(f models.FiberCable) FiberCableResponse {
	return FiberCableResponse{
		ID:          f.ID,
		Name:        f.Name,
		Origin:      f.Origin,
		Destination: f.Destination,
		LengthKm:    f.LengthKm,
		FiberCount:  f.FiberCount,
		Status:      string(f.Status),
	}
}

// GET /api/fiber-cables
func ListFiberCablesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var cables []models.FiberCable
		if err := database.DB.Order("name asc").Find(&cables).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar os cabos")
		}

		resp := make([]FiberCableResponse, 0, len(cables))
		for _, f := range cables {
			resp = append(resp, cableToResponse(f))
		}
		return c.JSON(resp)
	}
}

// POST /api/admin/fiber-cables
func CreateFiberCableHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateFiberCableRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Nome é obrigatório")
		}

		fiberCount := body.FiberCount
		if fiberCount <= 0 {
			fiberCount = 12
		}

		f := models.FiberCable{
			Name:        body.Name,
			Origin:      strings.TrimSpace(body.Origin),
			Destination: strings.TrimSpace(body.Destination),
			LengthKm:    body.LengthKm,
			FiberCount:  fiberCount,
			Status:      models.NetworkOnline,
		}

		if err := database.DB.Create(&f).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível criar o cabo")
		}

		return c.Status(fiber.StatusCreated).JSON(cableToResponse(f))
	}
}

// PUT /api/admin/fiber-cables/:id
func UpdateFiberCableHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var f models.FiberCable
		if err := database.DB.First(&f, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Cabo não encontrado")
		}

		var body UpdateFiberCableRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Nome não pode ficar vazio")
			}
			f.Name = name
		}
		if body.Origin != nil {
			f.Origin = strings.TrimSpace(*body.Origin)
		}
		if body.Destination != nil {
			f.Destination = strings.TrimSpace(*body.Destination)
		}
		if body.LengthKm != nil {
			f.LengthKm = *body.LengthKm
		}
		if body.FiberCount != nil {
			if *body.FiberCount <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "fiber_count deve ser maior que zero")
			}
			f.FiberCount = *body.FiberCount
		}
		if body.Status != nil {
			status := models.NetworkStatus(*body.Status)
			if !validNetworkStatus(status) {
				return fiber.NewError(fiber.StatusBadRequest, "Status inválido")
			}
			f.Status = status
		}

		if err := database.DB.Save(&f).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível atualizar o cabo")
		}

		return c.JSON(cableToResponse(f))
	}
}

// DELETE /api/admin/fiber-cables/:id
func DeleteFiberCableHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var f models.FiberCable
		if err := database.DB.First(&f, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Cabo não encontrado")
		}

		if err := database.DB.Delete(&f).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível excluir o cabo")
		}

		return c.JSON(fiber.Map{"message": "Cabo excluído com sucesso"})
	}
}
