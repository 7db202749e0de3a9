package models

import "time"

type TicketStatus string

const (
	TicketOpen       TicketStatus = "aberto"
	TicketInProgress TicketStatus = "em_andamento"
	TicketResolved   TicketStatus = "resolvido"
	TicketClosed     TicketStatus = "fechado"
)

type TicketPriority string

const (
	PriorityLow    TicketPriority = "baixa"
	PriorityMedium TicketPriority = "media"
	PriorityHigh   TicketPriority = "alta"
	PriorityUrgent TicketPriority = "urgente"
)

type Ticket struct {
	ID          uint `gorm:"primaryKey"`
	CustomerID  uint `gorm:"index;not null"`
	Customer    Customer
	Protocol    string         `gorm:"size:36;uniqueIndex;not null"` // uuid
	Subject     string         `gorm:"size:150;not null"`
	Description string         `gorm:"size:1000"`
	Status      TicketStatus   `gorm:"size:20;not null;default:aberto"`
	Priority    TicketPriority `gorm:"size:20;not null;default:media"`
	AssignedTo  *uint          // user responsável
	Replies     []TicketReply  `gorm:"foreignKey:TicketID;constraint:OnDelete:CASCADE"`
	ClosedAt    *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type TicketReply struct {
	ID        uint `gorm:"primaryKey"`
	TicketID  uint `gorm:"index;not null"`
	UserID    uint `gorm:"not null"`
	UserName  string `gorm:"size:100"` // denormalizado
	Message   string `gorm:"size:1000;not null"`
	CreatedAt time.Time
}
