package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"finteach/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const maxGoalNameLen = 100

type GoalInput struct {
	Name    string
	Target  *decimal.Decimal
	Current *decimal.Decimal
}

// GoalPatch holds the fields an edit overwrites; nil fields are kept.
type GoalPatch struct {
	Name    *string
	Target  *decimal.Decimal
	Current *decimal.Decimal
}

func (s *LedgerService) ListGoals(ctx context.Context, userID uint) ([]models.Goal, error) {
	goals := make([]models.Goal, 0)
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&goals).Error; err != nil {
		return nil, fmt.Errorf("load goals: %w", err)
	}
	return goals, nil
}

func (s *LedgerService) CreateGoal(ctx context.Context, userID uint, in GoalInput) (*models.Goal, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Target == nil {
		return nil, fmt.Errorf("%w: name and target are required", ErrInvalidRequest)
	}
	if utf8.RuneCountInString(name) > maxGoalNameLen {
		return nil, fmt.Errorf("%w: goal name longer than %d characters", ErrInvalidRequest, maxGoalNameLen)
	}

	target, err := roundMoney("target", *in.Target)
	if err != nil {
		return nil, err
	}
	current := decimal.Zero
	if in.Current != nil {
		if current, err = roundMoney("current", *in.Current); err != nil {
			return nil, err
		}
	}
	goal := models.Goal{
		UserID:  userID,
		Name:    name,
		Target:  target,
		Current: current,
	}
	if err := s.db.WithContext(ctx).Create(&goal).Error; err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}
	return &goal, nil
}

// EditGoal overwrites the provided fields. Values are only bounded by the
// column capacity; the sign is not checked.
func (s *LedgerService) EditGoal(ctx context.Context, userID, goalID uint, patch GoalPatch) (*models.Goal, error) {
	db := s.db.WithContext(ctx)

	var goal models.Goal
	err := db.Where("id = ? AND user_id = ?", goalID, userID).First(&goal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: goal %d", ErrNotFound, goalID)
		}
		return nil, fmt.Errorf("load goal: %w", err)
	}

	if patch.Name != nil {
		if utf8.RuneCountInString(*patch.Name) > maxGoalNameLen {
			return nil, fmt.Errorf("%w: goal name longer than %d characters", ErrInvalidRequest, maxGoalNameLen)
		}
		goal.Name = *patch.Name
	}
	if patch.Target != nil {
		if goal.Target, err = roundMoney("target", *patch.Target); err != nil {
			return nil, err
		}
	}
	if patch.Current != nil {
		if goal.Current, err = roundMoney("current", *patch.Current); err != nil {
			return nil, err
		}
	}

	if err := db.Model(&goal).Updates(map[string]interface{}{
		"name":    goal.Name,
		"target":  goal.Target,
		"current": goal.Current,
	}).Error; err != nil {
		return nil, fmt.Errorf("update goal: %w", err)
	}
	return &goal, nil
}

func (s *LedgerService) DeleteGoal(ctx context.Context, userID, goalID uint) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", goalID, userID).
		Delete(&models.Goal{})
	if result.Error != nil {
		return fmt.Errorf("delete goal: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: goal %d", ErrNotFound, goalID)
	}
	return nil
}
