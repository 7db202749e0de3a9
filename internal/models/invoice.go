package models

import "time"

type InvoiceStatus string

const (
	InvoiceOpen     InvoiceStatus = "aberta"
	InvoicePaid     InvoiceStatus = "paga"
	InvoiceOverdue  InvoiceStatus = "vencida"
	InvoiceCanceled InvoiceStatus = "cancelada"
)

type Invoice struct {
	ID         uint `gorm:"primaryKey"`
	ContractID uint `gorm:"index;not null"`
	Contract   Contract
	Number     string        `gorm:"size:36;uniqueIndex;not null"` // uuid
	Amount     float64       `gorm:"not null"`
	DueDate    time.Time     `gorm:"index;not null"`
	Status     InvoiceStatus `gorm:"size:20;not null;default:aberta"`
	PaidAt     *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
