package network

import (
	"net"
	"strings"

	"github.com/icaro-milhomem/ispmanager-sub000/internal/database"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateOLTRequest struct {
	Name      string `json:"name"`
	IPAddress string `json:"ip_address"`
	Model     string `json:"model"`
	PonPorts  int    `json:"pon_ports"`
}

type UpdateOLTRequest struct {
	Name      *string `json:"name"`
	IPAddress *string `json:"ip_address"`
	Model     *string `json:"model"`
	PonPorts  *int    `json:"pon_ports"`
	Status    *string `json:"status"`
}

type OLTResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	IPAddress string `json:"ip_address"`
	Model     string `json:"model"`
	PonPorts  int    `json:"pon_ports"`
	Status    string `json:"status"`
	CTOCount  int64  `json:"cto_count"`
}

func validNetworkStatus(s models.NetworkStatus) bool {
	switch s {
	case models.NetworkOnline, models.NetworkOffline, models.NetworkMaintenance:
		return true
	}
	return false
}

func oltToResponse(o models.OLT, ctoCount int64) OLTResponse {
	return OLTResponse{
		ID:        o.ID,
		Name:      o.Name,
		IPAddress: o.IPAddress,
		Model:     o.Model,
		PonPorts:  o.PonPorts,
		Status:    string(o.Status),
		CTOCount:  ctoCount,
	}
}

// GET /api/olts
func ListOLTsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var olts []models.OLT
		if err := database.DB.Order("name asc").Find(&olts).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar as OLTs")
		}

		resp := make([]OLTResponse, 0, len(olts))
		for _, o := range olts {
			var ctoCount int64
			database.DB.Model(&models.CTO{}).Where("olt_id = ?", o.ID).Count(&ctoCount)
			resp = append(resp, oltToResponse(o, ctoCount))
		}
		return c.JSON(resp)
	}
}

// GET /api/olts/:id
func GetOLTHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var o models.OLT
		if err := database.DB.First(&o, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "OLT não encontrada")
		}

		var ctoCount int64
		database.DB.Model(&models.CTO{}).Where("olt_id = ?", o.ID).Count(&ctoCount)
		return c.JSON(oltToResponse(o, ctoCount))
	}
}

// POST /api/admin/olts
func CreateOLTHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateOLTRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Nome é obrigatório")
		}
		if net.ParseIP(body.IPAddress) == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Endereço IP inválido")
		}

		ponPorts := body.PonPorts
		if ponPorts <= 0 {
			ponPorts = 8
		}

		o := models.OLT{
			Name:      body.Name,
			IPAddress: body.IPAddress,
			Model:     strings.TrimSpace(body.Model),
			PonPorts:  ponPorts,
			Status:    models.NetworkOnline,
		}

		if err := database.DB.Create(&o).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível criar a OLT")
		}

		return c.Status(fiber.StatusCreated).JSON(oltToResponse(o, 0))
	}
}

// PUT /api/admin/olts/:id
func UpdateOLTHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var o models.OLT
		if err := database.DB.First(&o, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "OLT não encontrada")
		}

		var body UpdateOLTRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Nome não pode ficar vazio")
			}
			o.Name = name
		}
		if body.IPAddress != nil {
			if net.ParseIP(*body.IPAddress) == nil {
				return fiber.NewError(fiber.StatusBadRequest, "Endereço IP inválido")
			}
			o.IPAddress = *body.IPAddress
		}
		if body.Model != nil {
			o.Model = strings.TrimSpace(*body.Model)
		}
		if body.PonPorts != nil {
			if *body.PonPorts <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "pon_ports deve ser maior que zero")
			}
			o.PonPorts = *body.PonPorts
		}
		if body.Status != nil {
			status := models.NetworkStatus(*body.Status)
			if !validNetworkStatus(status) {
				return fiber.NewError(fiber.StatusBadRequest, "Status inválido")
			}
			o.Status = status
		}

		if err := database.DB.Save(&o).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível atualizar a OLT")
		}

		var ctoCount int64
		database.DB.Model(&models.CTO{}).Where("olt_id = ?", o.ID).Count(&ctoCount)
		return c.JSON(oltToResponse(o, ctoCount))
	}
}

// DELETE /api/admin/olts/:id
func DeleteOLTHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var o models.OLT
		if err := database.DB.First(&o, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "OLT não encontrada")
		}

		var ctoCount int64
		database.DB.Model(&models.CTO{}).Where("olt_id = ?", o.ID).Count(&ctoCount)
		if ctoCount > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "OLT possui CTOs vinculadas; remova-as antes")
		}

		if err := database.DB.Delete(&o).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível excluir a OLT")
		}

		return c.JSON(fiber.Map{"message": "OLT excluída com sucesso"})
	}
}
