package models

import "time"

type CustomerStatus string

const (
	CustomerActive   CustomerStatus = "ativo"
	CustomerInactive CustomerStatus = "inativo"
	CustomerBlocked  CustomerStatus = "bloqueado"
)

type Customer struct {
	ID        uint           `gorm:"primaryKey"`
	Name      string         `gorm:"size:150;not null"`
	Document  string         `gorm:"size:20;uniqueIndex;not null"` // CPF ou CNPJ
	Email     string         `gorm:"size:100;index"`
	Phone     string         `gorm:"size:20"`
	Address   string         `gorm:"size:255"`
	City      string         `gorm:"size:100"`
	State     string         `gorm:"size:2"`
	ZipCode   string         `gorm:"size:10"`
	Status    CustomerStatus `gorm:"size:20;not null;default:ativo"`
	Notes     string         `gorm:"size:500"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
