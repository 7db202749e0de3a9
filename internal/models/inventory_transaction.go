package models

import "time"

type InventoryTransactionType string

const (
	TransactionIn  InventoryTransactionType = "in"
	TransactionOut InventoryTransactionType = "out"
)

// InventoryTransaction: movimentação de estoque com sinal.
// O registro em si é imutável em espírito; update/delete existem mas
// precisam reconciliar o Quantity do item dono (ver internal/inventory/ledger.go).
type InventoryTransaction struct {
	ID        uint `gorm:"primaryKey"`
	ItemID    uint `gorm:"index;not null"`
	Item      InventoryItem
	Type      InventoryTransactionType `gorm:"size:10;not null;index"`
	Quantity  int                      `gorm:"not null"` // sempre positivo; o sinal vem do Type
	Date      time.Time                `gorm:"index;not null"`
	Note      string                   `gorm:"size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
