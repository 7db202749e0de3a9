package network

import (
	"strings"

	"github.com/icaro-milhomem/ispmanager-sub000/internal/database"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateCTORequest struct {
	Name          string  `json:"name"`
	Code          string  `json:"code"`
	OLTID         uint    `json:"olt_id"`
	SplitterRatio string  `json:"splitter_ratio"` // "1:8", "1:16"...
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	PortCapacity  int     `json:"port_capacity"`
}

type UpdateCTORequest struct {
	Name          *string  `json:"name"`
	SplitterRatio *string  `json:"splitter_ratio"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	PortCapacity  *int     `json:"port_capacity"`
	PortsUsed     *int     `json:"ports_used"`
}

type CTOResponse struct {
	ID            uint    `json:"id"`
	Name          string  `json:"name"`
	Code          string  `json:"code"`
	OLTID         uint    `json:"olt_id"`
	OLTName       string  `json:"olt_name,omitempty"`
	SplitterRatio string  `json:"splitter_ratio"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	PortCapacity  int     `json:"port_capacity"`
	PortsUsed     int     `json:"ports_used"`
}

func ctoToResponse(ct models.CTO) CTOResponse {
	return CTOResponse{
		ID:            ct.ID,
		Name:          ct.Name,
		Code:          ct.Code,
		OLTID:         ct.OLTID,
		OLTName:       ct.OLT.Name,
		SplitterRatio: ct.SplitterRatio,
		Latitude:      ct.Latitude,
		Longitude:     ct.Longitude,
		PortCapacity:  ct.PortCapacity,
		PortsUsed:     ct.PortsUsed,
	}
}

// GET /api/ctos?olt_id=
func ListCTOsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.CTO{})

		if oltID := c.Query("olt_id"); oltID != "" {
			dbq = dbq.Where("olt_id = ?", oltID)
		}

		var ctos []models.CTO
		if err := dbq.Preload("OLT").Order("code asc").Find(&ctos).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar as CTOs")
		}

		resp := make([]CTOResponse, 0, len(ctos))
		for _, ct := range ctos {
			resp = append(resp, ctoToResponse(ct))
		}
		return c.JSON(resp)
	}
}

// GET /api/ctos/:id
func GetCTOHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var ct models.CTO
		if err := database.DB.Preload("OLT").First(&ct, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "CTO não encontrada")
		}
		return c.JSON(ctoToResponse(ct))
	}
}

// POST /api/admin/ctos
func CreateCTOHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateCTORequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Code = strings.TrimSpace(body.Code)
		if body.Name == "" || body.Code == "" || body.OLTID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Nome, código e olt_id são obrigatórios")
		}

		var olt models.OLT
		if err := database.DB.First(&olt, "id = ?", body.OLTID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "OLT não encontrada")
		}

		var existing models.CTO
		if err := database.DB.Where("code = ?", body.Code).First(&existing).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Já existe uma CTO com este código")
		}

		capacity := body.PortCapacity
		if capacity <= 0 {
			capacity = 16
		}

		ct := models.CTO{
			Name:          body.Name,
			Code:          body.Code,
			OLTID:         body.OLTID,
			SplitterRatio: body.SplitterRatio,
			Latitude:      body.Latitude,
			Longitude:     body.Longitude,
			PortCapacity:  capacity,
		}

		if err := database.DB.Create(&ct).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível criar a CTO")
		}

		ct.OLT = olt
		return c.Status(fiber.StatusCreated).JSON(ctoToResponse(ct))
	}
}

// PUT /api/admin/ctos/:id
func UpdateCTOHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var ct models.CTO
		if err := database.DB.Preload("OLT").First(&ct, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "CTO não encontrada")
		}

		var body UpdateCTORequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Nome não pode ficar vazio")
			}
			ct.Name = name
		}
		if body.SplitterRatio != nil {
			ct.SplitterRatio = *body.SplitterRatio
		}
		if body.Latitude != nil {
			ct.Latitude = *body.Latitude
		}
		if body.Longitude != nil {
			ct.Longitude = *body.Longitude
		}
		if body.PortCapacity != nil {
			if *body.PortCapacity < ct.PortsUsed {
				return fiber.NewError(fiber.StatusBadRequest, "Capacidade não pode ser menor que as portas em uso")
			}
			ct.PortCapacity = *body.PortCapacity
		}
		if body.PortsUsed != nil {
			if *body.PortsUsed < 0 || *body.PortsUsed > ct.PortCapacity {
				return fiber.NewError(fiber.StatusBadRequest, "Portas em uso deve ficar entre 0 e a capacidade")
			}
			ct.PortsUsed = *body.PortsUsed
		}

		if err := database.DB.Save(&ct).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível atualizar a CTO")
		}

		return c.JSON(ctoToResponse(ct))
	}
}

// DELETE /api/admin/ctos/:id
func DeleteCTOHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var ct models.CTO
		if err := database.DB.First(&ct, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "CTO não encontrada")
		}

		if ct.PortsUsed > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "CTO possui portas em uso; libere-as antes de excluir")
		}

		if err := database.DB.Delete(&ct).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível excluir a CTO")
		}

		return c.JSON(fiber.Map{"message": "CTO excluída com sucesso"})
	}
}
