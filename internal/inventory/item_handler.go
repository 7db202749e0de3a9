package inventory

import (
	"fmt"
	"strings"

	"github.com/icaro-milhomem/ispmanager-sub000/internal/audit"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/auth"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/database"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateItemRequest struct {
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Quantity  *int    `json:"quantity"` // opcional, padrão 0
	UnitPrice float64 `json:"unit_price"`
	Status    string  `json:"status"`
	Supplier  string  `json:"supplier"`
	Location  string  `json:"location"`
}

type UpdateItemRequest struct {
	Name      *string  `json:"name"`
	Category  *string  `json:"category"`
	UnitPrice *float64 `json:"unit_price"`
	Status    *string  `json:"status"`
	Supplier  *string  `json:"supplier"`
	Location  *string  `json:"location"`
	// Quantity fica de fora de propósito: saldo só muda via transações.
}

type ItemResponse struct {
	ID        uint    `json:"id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Status    string  `json:"status"`
	Supplier  string  `json:"supplier"`
	Location  string  `json:"location"`
	CreatedAt string  `json:"created_at"`
}

func itemToResponse(i models.InventoryItem) ItemResponse {
	return ItemResponse{
		ID:        i.ID,
		Name:      i.Name,
		Category:  i.Category,
		Quantity:  i.Quantity,
		UnitPrice: i.UnitPrice,
		Status:    string(i.Status),
		Supplier:  i.Supplier,
		Location:  i.Location,
		CreatedAt: i.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// Auxiliar: dados do usuário autenticado para auditoria
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

// GET /api/inventory-items?category=&status=&search=
func ListItemsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.InventoryItem{})

		if category := c.Query("category"); category != "" {
			dbq = dbq.Where("category = ?", category)
		}
		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("status = ?", status)
		}
		if search := c.Query("search"); search != "" {
			dbq = dbq.Where("name ILIKE ?", "%"+search+"%")
		}

		var items []models.InventoryItem
		if err := dbq.Order("name asc").Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar os itens")
		}

		resp := make([]ItemResponse, 0, len(items))
		for _, i := range items {
			resp = append(resp, itemToResponse(i))
		}
		return c.JSON(resp)
	}
}

// GET /api/inventory-items/:id
func GetItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var item models.InventoryItem
		if err := database.DB.First(&item, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Item não encontrado")
		}

		return c.JSON(itemToResponse(item))
	}
}

// POST /api/inventory-items
func CreateItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Nome é obrigatório")
		}

		quantity := 0
		if body.Quantity != nil {
			if *body.Quantity < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Quantidade inicial não pode ser negativa")
			}
			quantity = *body.Quantity
		}

		status := models.ItemActive
		if body.Status != "" {
			status = models.InventoryItemStatus(body.Status)
			if status != models.ItemActive && status != models.ItemInactive {
				return fiber.NewError(fiber.StatusBadRequest, "Status deve ser 'ativo' ou 'inativo'")
			}
		}

		item := models.InventoryItem{
			Name:      body.Name,
			Category:  strings.TrimSpace(body.Category),
			Quantity:  quantity,
			UnitPrice: body.UnitPrice,
			Status:    status,
			Supplier:  strings.TrimSpace(body.Supplier),
			Location:  strings.TrimSpace(body.Location),
		}

		if err := database.DB.Create(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível criar o item")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "inventory_item",
				EntityID:    item.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Item de estoque criado: %s", item.Name),
				After:       item,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(itemToResponse(item))
	}
}

// PUT /api/inventory-items/:id
func UpdateItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var item models.InventoryItem
		if err := database.DB.First(&item, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Item não encontrado")
		}

		before := item

		var body UpdateItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Nome não pode ficar vazio")
			}
			item.Name = name
		}
		if body.Category != nil {
			item.Category = strings.TrimSpace(*body.Category)
		}
		if body.UnitPrice != nil {
			item.UnitPrice = *body.UnitPrice
		}
		if body.Status != nil {
			status := models.InventoryItemStatus(*body.Status)
			if status != models.ItemActive && status != models.ItemInactive {
				return fiber.NewError(fiber.StatusBadRequest, "Status deve ser 'ativo' ou 'inativo'")
			}
			item.Status = status
		}
		if body.Supplier != nil {
			item.Supplier = strings.TrimSpace(*body.Supplier)
		}
		if body.Location != nil {
			item.Location = strings.TrimSpace(*body.Location)
		}

		if err := database.DB.Save(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível atualizar o item")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "inventory_item",
				EntityID:    item.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Item de estoque atualizado: %s", item.Name),
				Before:      before,
				After:       item,
			})
		}

		return c.JSON(itemToResponse(item))
	}
}

// DELETE /api/inventory-items/:id
// Itens com transações associadas não podem ser removidos; o razão
// perderia o histórico que sustenta o saldo.
func DeleteItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var item models.InventoryItem
		if err := database.DB.First(&item, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Item não encontrado")
		}

		var txnCount int64
		database.DB.Model(&models.InventoryTransaction{}).Where("item_id = ?", item.ID).Count(&txnCount)
		if txnCount > 0 {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Item possui %d transações de estoque; exclua as movimentações antes", txnCount))
		}

		if err := database.DB.Delete(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível excluir o item")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "inventory_item",
				EntityID:    item.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Item de estoque excluído: %s", item.Name),
				Before:      item,
			})
		}

		return c.JSON(fiber.Map{"message": "Item excluído com sucesso"})
	}
}
