package models

import "time"

type InventoryItemStatus string

const (
	ItemActive   InventoryItemStatus = "ativo"
	ItemInactive InventoryItemStatus = "inativo"
)

// InventoryItem: item de almoxarifado (ONUs, roteadores, conectores, bobinas...).
// Quantity é um cache do saldo do razão: soma de todas as transações
// associadas com sinal (+entrada, -saída). Só as operações do ledger
// podem alterar este campo.
type InventoryItem struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:150;not null"`
	Category  string `gorm:"size:100;index"`
	Quantity  int    `gorm:"not null;default:0"`
	UnitPrice float64
	Status    InventoryItemStatus `gorm:"size:20;not null;default:ativo"`
	Supplier  string              `gorm:"size:150"`
	Location  string              `gorm:"size:100"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
