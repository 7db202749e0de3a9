package models

import "time"

type NetworkStatus string

const (
	NetworkOnline      NetworkStatus = "online"
	NetworkOffline     NetworkStatus = "offline"
	NetworkMaintenance NetworkStatus = "manutencao"
)

// OLT: equipamento de terminação óptica
type OLT struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null;unique"`
	IPAddress string `gorm:"size:45;not null"`
	Model     string `gorm:"size:100"`
	PonPorts  int    `gorm:"not null;default:8"`
	Status    NetworkStatus `gorm:"size:20;not null;default:online"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CTO: caixa de terminação óptica ligada a uma OLT
type CTO struct {
	ID            uint   `gorm:"primaryKey"`
	Name          string `gorm:"size:100;not null"`
	Code          string `gorm:"size:50;uniqueIndex;not null"`
	OLTID         uint   `gorm:"index;not null"`
	OLT           OLT
	SplitterRatio string  `gorm:"size:10"` // ex: "1:8", "1:16"
	Latitude      float64
	Longitude     float64
	PortCapacity  int `gorm:"not null;default:16"`
	PortsUsed     int `gorm:"not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// FiberCable: trecho de cabo óptico entre dois pontos da rede
type FiberCable struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:100;not null"`
	Origin      string `gorm:"size:150"`
	Destination string `gorm:"size:150"`
	LengthKm    float64
	FiberCount  int           `gorm:"not null;default:12"`
	Status      NetworkStatus `gorm:"size:20;not null;default:online"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
