package network

import (
	"net"
	"strings"

	"github.com/icaro-milhomem/ispmanager-sub000/internal/database"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateIPPoolRequest struct {
	Name    string `json:"name"`
	CIDR    string `json:"cidr"`
	Gateway string `json:"gateway"`
	VlanID  *int   `json:"vlan_id"`
}

type UpdateIPPoolRequest struct {
	Name    *string `json:"name"`
	Gateway *string `json:"gateway"`
	VlanID  *int    `json:"vlan_id"`
}

type IPPoolResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	CIDR      string `json:"cidr"`
	Gateway   string `json:"gateway"`
	VlanID    *int   `json:"vlan_id"`
	Capacity  int    `json:"capacity"`
	UsedCount int    `json:"used_count"`
	Available int    `json:"available"`
}

func poolToResponse(p models.IPPool) IPPoolResponse {
	return IPPoolResponse{
		ID:        p.ID,
		Name:      p.Name,
		CIDR:      p.CIDR,
		Gateway:   p.Gateway,
		VlanID:    p.VlanID,
		Capacity:  p.Capacity,
		UsedCount: p.UsedCount,
		Available: p.Capacity - p.UsedCount,
	}
}

// GET /api/ip-pools
func ListIPPoolsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var pools []models.IPPool
		if err := database.DB.Order("name asc").Find(&pools).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar os pools")
		}

		resp := make([]IPPoolResponse, 0, len(pools))
		for _, p := range pools {
			resp = append(resp, poolToResponse(p))
		}
		return c.JSON(resp)
	}
}

// GET /api/ip-pools/:id
func GetIPPoolHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.IPPool
		if err := database.DB.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Pool não encontrado")
		}
		return c.JSON(poolToResponse(p))
	}
}

// POST /api/admin/ip-pools
func CreateIPPoolHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateIPPoolRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Nome é obrigatório")
		}

		capacity, err := UsableHosts(body.CIDR)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if body.Gateway != "" && net.ParseIP(body.Gateway) == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Gateway inválido")
		}

		p := models.IPPool{
			Name:     body.Name,
			CIDR:     body.CIDR,
			Gateway:  body.Gateway,
			VlanID:   body.VlanID,
			Capacity: capacity,
		}

		if err := database.DB.Create(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível criar o pool")
		}

		return c.Status(fiber.StatusCreated).JSON(poolToResponse(p))
	}
}

// PUT /api/admin/ip-pools/:id
// CIDR não muda depois de criado; crie outro pool.
func UpdateIPPoolHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.IPPool
		if err := database.DB.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Pool não encontrado")
		}

		var body UpdateIPPoolRequest
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
		if body.Gateway != nil {
			if *body.Gateway != "" && net.ParseIP(*body.Gateway) == nil {
				return fiber.NewError(fiber.StatusBadRequest, "Gateway inválido")
			}
			p.Gateway = *body.Gateway
		}
		if body.VlanID != nil {
			p.VlanID = body.VlanID
		}

		if err := database.DB.Save(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível atualizar o pool")
		}

		return c.JSON(poolToResponse(p))
	}
}

// POST /api/ip-pools/:id/allocate
// Reserva um endereço do pool; UPDATE condicional evita passar da capacidade.
func AllocateIPHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.IPPool
		if err := database.DB.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Pool não encontrado")
		}

		res := database.DB.Model(&models.IPPool{}).
			Where("id = ? AND used_count < capacity", p.ID).
			Update("used_count", gorm.Expr("used_count + 1"))
		if res.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível alocar o endereço")
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Pool esgotado")
		}

		database.DB.First(&p, "id = ?", p.ID)
		return c.JSON(poolToResponse(p))
	}
}

// POST /api/ip-pools/:id/release
func ReleaseIPHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.IPPool
		if err := database.DB.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Pool não encontrado")
		}

		res := database.DB.Model(&models.IPPool{}).
			Where("id = ? AND used_count > 0", p.ID).
			Update("used_count", gorm.Expr("used_count - 1"))
		if res.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível liberar o endereço")
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Pool não possui endereços em uso")
		}

		database.DB.First(&p, "id = ?", p.ID)
		return c.JSON(poolToResponse(p))
	}
}

// DELETE /api/admin/ip-pools/:id
func DeleteIPPoolHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.IPPool
		if err := database.DB.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Pool não encontrado")
		}

		if p.UsedCount > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Pool possui endereços em uso; libere-os antes de excluir")
		}

		if err := database.DB.Delete(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível excluir o pool")
		}

		return c.JSON(fiber.Map{"message": "Pool excluído com sucesso"})
	}
}
