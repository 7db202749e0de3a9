package inventory

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/icaro-milhomem/ispmanager-sub000/internal/audit"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/database"
	"github.com/icaro-milhomem/ispmanager-sub000/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateTransactionRequest struct {
	ItemID   uint   `json:"item_id"`
	Type     string `json:"type"`     // "in" ou "out"
	Quantity int    `json:"quantity"` // > 0
	Date     string `json:"date"`     // "2026-01-15", opcional (padrão: agora)
	Note     string `json:"note"`
}

type UpdateTransactionRequest struct {
	ItemID   *uint   `json:"item_id"`
	Type     *string `json:"type"`
	Quantity *int    `json:"quantity"`
	Date     *string `json:"date"`
	Note     *string `json:"note"`
}

type TransactionResponse struct {
	ID        uint   `json:"id"`
	ItemID    uint   `json:"item_id"`
	ItemName  string `json:"item_name,omitempty"`
	Type      string `json:"type"`
	Quantity  int    `json:"quantity"`
	Date      string `json:"date"`
	Note      string `json:"note"`
	CreatedAt string `json:"created_at"`
}

type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

func transactionToResponse(t models.InventoryTransaction) TransactionResponse {
	return TransactionResponse{
		ID:        t.ID,
		ItemID:    t.ItemID,
		ItemName:  t.Item.Name,
		Type:      string(t.Type),
		Quantity:  t.Quantity,
		Date:      t.Date.Format("2006-01-02"),
		Note:      t.Note,
		CreatedAt: t.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// ledgerError traduz os erros do razão para a superfície HTTP.
func ledgerError(err error) error {
	switch {
	case errors.Is(err, ErrItemNotFound), errors.Is(err, ErrTransactionNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrInvalidType):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível concluir a movimentação de estoque")
	}
}

// GET /api/inventory-transactions?page=&limit=&type=&item_id=&start_date=&end_date=
func ListTransactionsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, _ := strconv.Atoi(c.Query("page", "1"))
		if page < 1 {
			page = 1
		}
		limit, _ := strconv.Atoi(c.Query("limit", "20"))
		if limit < 1 || limit > 100 {
			limit = 20
		}

		dbq := database.DB.Model(&models.InventoryTransaction{})

		if t := c.Query("type"); t != "" {
			dbq = dbq.Where("type = ?", t)
		}
		if itemIDStr := c.Query("item_id"); itemIDStr != "" {
			var itemID uint
			if _, err := fmt.Sscan(itemIDStr, &itemID); err == nil && itemID > 0 {
				dbq = dbq.Where("item_id = ?", itemID)
			}
		}
		if startStr := c.Query("start_date"); startStr != "" {
			start, err := time.Parse("2006-01-02", startStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "start_date deve estar no formato 'YYYY-MM-DD'")
			}
			dbq = dbq.Where("date >= ?", start)
		}
		if endStr := c.Query("end_date"); endStr != "" {
			end, err := time.Parse("2006-01-02", endStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "end_date deve estar no formato 'YYYY-MM-DD'")
			}
			dbq = dbq.Where("date < ?", end.AddDate(0, 0, 1))
		}

		var total int64
		if err := dbq.Count(&total).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar as transações")
		}

		var txns []models.InventoryTransaction
		if err := dbq.Preload("Item").
			Order("date desc, id desc").
			Offset((page - 1) * limit).
			Limit(limit).
			Find(&txns).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar as transações")
		}

		resp := make([]TransactionResponse, 0, len(txns))
		for _, t := range txns {
			resp = append(resp, transactionToResponse(t))
		}

		pages := int((total + int64(limit) - 1) / int64(limit))

		return c.JSON(fiber.Map{
			"transactions": resp,
			"pagination": Pagination{
				Total: total,
				Page:  page,
				Limit: limit,
				Pages: pages,
			},
		})
	}
}

// GET /api/inventory-transactions/:id
func GetTransactionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var txn models.InventoryTransaction
		if err := database.DB.Preload("Item").First(&txn, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Transação não encontrada")
		}

		return c.JSON(transactionToResponse(txn))
	}
}

// POST /api/inventory-transactions
func CreateTransactionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateTransactionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		if body.ItemID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "item_id é obrigatório")
		}

		var date time.Time
		if body.Date != "" {
			d, err := time.Parse("2006-01-02", body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Data deve estar no formato 'YYYY-MM-DD'")
			}
			date = d
		}

		txn, err := CreateTransaction(database.DB, CreateTransactionInput{
			ItemID:   body.ItemID,
			Type:     models.InventoryTransactionType(body.Type),
			Quantity: body.Quantity,
			Date:     date,
			Note:     body.Note,
		})
		if err != nil {
			return ledgerError(err)
		}

		userID, userName, uerr := getUserInfo(c)
		if uerr == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "inventory_transaction",
				EntityID:    txn.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Movimentação de estoque (%s): item %d, qtd %d", txn.Type, txn.ItemID, txn.Quantity),
				After:       txn,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(transactionToResponse(*txn))
	}
}

// PUT /api/inventory-transactions/:id
func UpdateTransactionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := c.Params("id")
		var id uint
		if _, err := fmt.Sscan(idStr, &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "ID inválido")
		}

		var body UpdateTransactionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		var before models.InventoryTransaction
		if err := database.DB.First(&before, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Transação não encontrada")
		}

		in := UpdateTransactionInput{
			ItemID:   body.ItemID,
			Quantity: body.Quantity,
			Note:     body.Note,
		}
		if body.Type != nil {
			t := models.InventoryTransactionType(*body.Type)
			in.Type = &t
		}
		if body.Date != nil {
			d, err := time.Parse("2006-01-02", *body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Data deve estar no formato 'YYYY-MM-DD'")
			}
			in.Date = &d
		}

		txn, err := UpdateTransaction(database.DB, id, in)
		if err != nil {
			return ledgerError(err)
		}

		userID, userName, uerr := getUserInfo(c)
		if uerr == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "inventory_transaction",
				EntityID:    txn.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Movimentação de estoque atualizada: %d", txn.ID),
				Before:      before,
				After:       txn,
			})
		}

		return c.JSON(transactionToResponse(*txn))
	}
}

// DELETE /api/inventory-transactions/:id
func DeleteTransactionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := c.Params("id")
		var id uint
		if _, err := fmt.Sscan(idStr, &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "ID inválido")
		}

		var before models.InventoryTransaction
		if err := database.DB.First(&before, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Transação não encontrada")
		}

		if err := DeleteTransaction(database.DB, id); err != nil {
			return ledgerError(err)
		}

		userID, userName, uerr := getUserInfo(c)
		if uerr == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "inventory_transaction",
				EntityID:    before.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Movimentação de estoque excluída: %d", before.ID),
				Before:      before,
			})
		}

		return c.JSON(fiber.Map{"message": "Transação excluída com sucesso"})
	}
}
