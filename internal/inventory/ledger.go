package inventory

import (
	"errors"
	"time"

	"github.com/icaro-milhomem/ispmanager-sub000/internal/models"

	"gorm.io/gorm"
)

// Erros do razão de estoque. Os handlers mapeiam para 404/400.
var (
	ErrItemNotFound        = errors.New("item de estoque não encontrado")
	ErrTransactionNotFound = errors.New("transação de estoque não encontrada")
	ErrInsufficientStock   = errors.New("estoque insuficiente")
	ErrInvalidQuantity     = errors.New("quantidade deve ser maior que zero")
	ErrInvalidType         = errors.New("tipo deve ser 'in' ou 'out'")
)

type CreateTransactionInput struct {
	ItemID   uint
	Type     models.InventoryTransactionType
	Quantity int
	Date     time.Time
	Note     string
}

// UpdateTransactionInput: patch parcial. Campo nil = não alterar.
type UpdateTransactionInput struct {
	ItemID   *uint
	Type     *models.InventoryTransactionType
	Quantity *int
	Date     *time.Time
	Note     *string
}

// signedDelta: efeito de uma transação sobre o saldo do item.
func signedDelta(t models.InventoryTransactionType, quantity int) int {
	if t == models.TransactionIn {
		return quantity
	}
	return -quantity
}

// adjustQuantity aplica um delta no saldo do item com UPDATE condicional,
// para que a leitura-modificação-escrita seja atômica no banco. Deltas
// negativos exigem saldo suficiente; RowsAffected == 0 indica que o saldo
// ficaria negativo (ou que o item sumiu no meio do caminho).
func adjustQuantity(tx *gorm.DB, itemID uint, delta int) error {
	if delta == 0 {
		return nil
	}

	dbq := tx.Model(&models.InventoryItem{}).Where("id = ?", itemID)
	if delta < 0 {
		dbq = dbq.Where("quantity >= ?", -delta)
	}

	res := dbq.Update("quantity", gorm.Expr("quantity + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if delta < 0 {
			return ErrInsufficientStock
		}
		return ErrItemNotFound
	}
	return nil
}

// CreateTransaction insere a movimentação e atualiza o saldo do item dono
// em uma única unidade atômica. Saída exige saldo suficiente.
func CreateTransaction(db *gorm.DB, in CreateTransactionInput) (*models.InventoryTransaction, error) {
	if in.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if in.Type != models.TransactionIn && in.Type != models.TransactionOut {
		return nil, ErrInvalidType
	}

	var item models.InventoryItem
	if err := db.First(&item, "id = ?", in.ItemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	// Pré-checagem amigável; a garantia real é o UPDATE condicional dentro
	// da transação.
	if in.Type == models.TransactionOut && item.Quantity < in.Quantity {
		return nil, ErrInsufficientStock
	}

	if in.Date.IsZero() {
		in.Date = time.Now()
	}

	txn := models.InventoryTransaction{
		ItemID:   in.ItemID,
		Type:     in.Type,
		Quantity: in.Quantity,
		Date:     in.Date,
		Note:     in.Note,
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	if err := tx.Create(&txn).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := adjustQuantity(tx, in.ItemID, signedDelta(in.Type, in.Quantity)); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &txn, nil
}

// UpdateTransaction edita uma movimentação já registrada. Como Quantity do
// item é um cache derivado, editar significa estornar o efeito original e
// reaplicar o efeito novo, tudo em uma única unidade atômica. Os dois
// passos são colapsados no delta líquido por item, de modo que a política
// de saldo não-negativo é avaliada sobre o estado final de cada item
// afetado; um estado final negativo em qualquer item aborta a unidade
// inteira.
func UpdateTransaction(db *gorm.DB, id uint, in UpdateTransactionInput) (*models.InventoryTransaction, error) {
	var txn models.InventoryTransaction
	if err := db.First(&txn, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}

	newItemID := txn.ItemID
	if in.ItemID != nil && *in.ItemID != txn.ItemID {
		var newItem models.InventoryItem
		if err := db.First(&newItem, "id = ?", *in.ItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrItemNotFound
			}
			return nil, err
		}
		newItemID = *in.ItemID
	}

	newType := txn.Type
	if in.Type != nil {
		if *in.Type != models.TransactionIn && *in.Type != models.TransactionOut {
			return nil, ErrInvalidType
		}
		newType = *in.Type
	}

	newQuantity := txn.Quantity
	if in.Quantity != nil {
		if *in.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		newQuantity = *in.Quantity
	}

	oldItemID := txn.ItemID
	oldDelta := signedDelta(txn.Type, txn.Quantity)
	newDelta := signedDelta(newType, newQuantity)

	tx := db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	// Mudanças de campo (só os campos enviados)
	txn.ItemID = newItemID
	txn.Type = newType
	txn.Quantity = newQuantity
	if in.Date != nil {
		txn.Date = *in.Date
	}
	if in.Note != nil {
		txn.Note = *in.Note
	}
	if err := tx.Save(&txn).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	// Estorno do efeito original + reaplicação do efeito novo, colapsados
	// no delta líquido de cada item afetado. A política de saldo
	// não-negativo vale para o estado final de cada item; o estado
	// intermediário do estorno não é sujeito a ela (corrigir um in(10)
	// para in(15) com saldo corrente 3 é legítimo: saldo final 8).
	if oldItemID == newItemID {
		if err := adjustQuantity(tx, oldItemID, newDelta-oldDelta); err != nil {
			tx.Rollback()
			return nil, err
		}
	} else {
		if err := adjustQuantity(tx, oldItemID, -oldDelta); err != nil {
			tx.Rollback()
			return nil, err
		}
		if err := adjustQuantity(tx, newItemID, newDelta); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &txn, nil
}

// DeleteTransaction estorna o efeito da movimentação no item dono e remove
// o registro, atomicamente. O estorno usa o type/quantity gravados, lidos
// antes de apagar a linha.
func DeleteTransaction(db *gorm.DB, id uint) error {
	var txn models.InventoryTransaction
	if err := db.First(&txn, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTransactionNotFound
		}
		return err
	}

	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	if err := adjustQuantity(tx, txn.ItemID, -signedDelta(txn.Type, txn.Quantity)); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Delete(&txn).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// LedgerBalance recalcula o saldo de um item direto do razão
// (Σ entradas - Σ saídas). Usado para conferência.
func LedgerBalance(db *gorm.DB, itemID uint) (int, error) {
	var balance *int
	err := db.Model(&models.InventoryTransaction{}).
		Select("SUM(CASE WHEN type = 'in' THEN quantity ELSE -quantity END)").
		Where("item_id = ?", itemID).
		Scan(&balance).Error
	if err != nil {
		return 0, err
	}
	if balance == nil {
		return 0, nil
	}
	return *balance, nil
}
