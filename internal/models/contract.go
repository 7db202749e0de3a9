package models

import "time"

type ContractStatus string

const (
	ContractActive    ContractStatus = "ativo"
	ContractSuspended ContractStatus = "suspenso"
	ContractCanceled  ContractStatus = "cancelado"
)

type Contract struct {
	ID             uint `gorm:"primaryKey"`
	CustomerID     uint `gorm:"index;not null"`
	Customer       Customer
	PlanID         uint `gorm:"index;not null"`
	Plan           Plan
	InstallAddress string         `gorm:"size:255"`
	Status         ContractStatus `gorm:"size:20;not null;default:ativo"`
	StartDate      time.Time      `gorm:"not null"`
	CanceledAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
