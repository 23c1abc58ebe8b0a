package service

import (
	"context"
	"fmt"

	"finteach/internal/models"

	"github.com/shopspring/decimal"
)

const recentActivityLimit = 5

// Summary is everything the dashboard shows for one user.
type Summary struct {
	CheckingBalance   decimal.Decimal
	SavingsBalance    decimal.Decimal
	InvestmentBalance decimal.Decimal
	MonthlyBudget     decimal.Decimal
	Goals             []models.Goal
	RecentActivity    []models.Activity
}

// Summary reads balances, budget, goals and the five latest activities,
// creating the account and budget rows on first access.
func (s *LedgerService) Summary(ctx context.Context, userID uint) (*Summary, error) {
	db := s.db.WithContext(ctx)

	acct, err := getOrCreate(db, userID, models.Account{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	budget, err := getOrCreate(db, userID, models.Budget{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("load budget: %w", err)
	}

	goals, err := s.ListGoals(ctx, userID)
	if err != nil {
		return nil, err
	}

	var recent []models.Activity
	if err := db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(recentActivityLimit).
		Find(&recent).Error; err != nil {
		return nil, fmt.Errorf("load activity: %w", err)
	}

	return &Summary{
		CheckingBalance:   acct.CheckingBalance,
		SavingsBalance:    acct.SavingsBalance,
		InvestmentBalance: acct.InvestmentBalance,
		MonthlyBudget:     budget.MonthlyBudget,
		Goals:             goals,
		RecentActivity:    recent,
	}, nil
}
