package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Budget struct {
	ID            uint            `gorm:"primaryKey"`
	UserID        uint            `gorm:"uniqueIndex;not null"`
	MonthlyBudget decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
