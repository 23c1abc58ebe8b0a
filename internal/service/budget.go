package service

import (
	"context"
	"fmt"

	"finteach/internal/models"

	"github.com/shopspring/decimal"
)

// UpdateBudget overwrites the user's monthly budget. The sign is not checked.
func (s *LedgerService) UpdateBudget(ctx context.Context, userID uint, monthly *decimal.Decimal) (decimal.Decimal, error) {
	if monthly == nil {
		return decimal.Zero, fmt.Errorf("%w: monthly_budget is required", ErrInvalidRequest)
	}
	value, err := roundMoney("monthly_budget", *monthly)
	if err != nil {
		return decimal.Zero, err
	}

	db := s.db.WithContext(ctx)
	budget, err := getOrCreate(db, userID, models.Budget{UserID: userID})
	if err != nil {
		return decimal.Zero, fmt.Errorf("load budget: %w", err)
	}
	if err := db.Model(budget).Update("monthly_budget", value).Error; err != nil {
		return decimal.Zero, fmt.Errorf("update budget: %w", err)
	}
	return value, nil
}
