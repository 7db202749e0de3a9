package models

import "time"

// Setting: configuração do sistema em chave/valor (nome da empresa,
// mensagem de fatura, dias de tolerância etc.)
type Setting struct {
	ID        uint   `gorm:"primaryKey"`
	Key       string `gorm:"size:100;uniqueIndex;not null"`
	Value     string `gorm:"size:500"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
