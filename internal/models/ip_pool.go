package models

import "time"

// IPPool: bloco de endereços IP para atribuição aos contratos
type IPPool struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null;unique"`
	CIDR      string `gorm:"size:45;not null"`
	Gateway   string `gorm:"size:45"`
	VlanID    *int
	Capacity  int `gorm:"not null"` // hosts utilizáveis do bloco
	UsedCount int `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
