package models

import "time"

type VehicleStatus string

const (
	VehicleAvailable   VehicleStatus = "disponivel"
	VehicleInUse       VehicleStatus = "em_uso"
	VehicleMaintenance VehicleStatus = "manutencao"
)

type Vehicle struct {
	ID         uint   `gorm:"primaryKey"`
	Plate      string `gorm:"size:10;uniqueIndex;not null"`
	Model      string `gorm:"size:100;not null"`
	Year       int
	AssignedTo *uint // user (técnico) responsável
	Status     VehicleStatus `gorm:"size:20;not null;default:disponivel"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// VehiclePosition: ponto de rastreamento reportado pelo veículo
type VehiclePosition struct {
	ID         uint `gorm:"primaryKey"`
	VehicleID  uint `gorm:"index;not null"`
	Latitude   float64 `gorm:"not null"`
	Longitude  float64 `gorm:"not null"`
	SpeedKmh   float64
	RecordedAt time.Time `gorm:"index;not null"`
	CreatedAt  time.Time
}
