package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Goal is a named savings target. Current may exceed Target.
type Goal struct {
	ID        uint            `gorm:"primaryKey"`
	UserID    uint            `gorm:"index;not null"`
	Name      string          `gorm:"size:100;not null"`
	Current   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Target    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
