package models

import "time"

// BillingSchedule: agenda de faturamento de um contrato.
// A execução é manual (endpoint de run), não há worker em background.
type BillingSchedule struct {
	ID         uint `gorm:"primaryKey"`
	ContractID uint `gorm:"uniqueIndex;not null"`
	Contract   Contract
	DayOfMonth int `gorm:"not null"` // 1..31, ajustado para meses curtos
	LastRunAt  *time.Time
	NextRunAt  *time.Time
	Active     bool `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
