package service

import (
	"context"
	"fmt"

	"finteach/internal/models"
)

// ListActivity returns one page of the user's activity, newest first, and
// the total number of entries.
func (s *LedgerService) ListActivity(ctx context.Context, userID uint, page, size int) ([]models.Activity, int64, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}

	base := s.db.WithContext(ctx).Model(&models.Activity{}).Where("user_id = ?", userID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count activity: %w", err)
	}

	items := make([]models.Activity, 0, size)
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("list activity: %w", err)
	}
	return items, total, nil
}

// AllActivity returns the user's complete activity log, newest first.
func (s *LedgerService) AllActivity(ctx context.Context, userID uint) ([]models.Activity, error) {
	var items []models.Activity
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	return items, nil
}
