package models

import "time"

// Plan: plano de internet oferecido aos clientes
type Plan struct {
	ID           uint    `gorm:"primaryKey"`
	Name         string  `gorm:"size:100;not null;unique"`
	DownloadMbps int     `gorm:"not null"`
	UploadMbps   int     `gorm:"not null"`
	Price        float64 `gorm:"not null"`
	Description  string  `gorm:"size:255"`
	Active       bool    `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
