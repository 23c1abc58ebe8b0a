package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account holds a user's three balances. Balances never go below zero.
// Version is bumped on every balance write and guards concurrent updates.
type Account struct {
	ID                uint            `gorm:"primaryKey"`
	UserID            uint            `gorm:"uniqueIndex;not null"`
	CheckingBalance   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	SavingsBalance    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	InvestmentBalance decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Version           int64           `gorm:"not null;default:0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
