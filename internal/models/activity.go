package models

import "time"

const (
	ActivityDeposit = "deposit"
	ActivityExpense = "expense"
)

// Activity is an append-only log line shown on the dashboard.
type Activity struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"index;not null"`
	Type      string    `gorm:"size:20;not null"`
	Detail    string    `gorm:"size:255;not null"`
	CreatedAt time.Time `gorm:"index"`

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
