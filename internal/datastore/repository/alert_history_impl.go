package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/rpaudel/gardenwatch-go/internal/datastore/entities"
	"gorm.io/gorm"
)

// alertHistoryRepository implements AlertHistoryRepository.
type alertHistoryRepository struct {
	db *gorm.DB
}

// NewAlertHistoryRepository creates a new AlertHistoryRepository.
func NewAlertHistoryRepository(db *gorm.DB) AlertHistoryRepository {
	return &alertHistoryRepository{db: db}
}

// SaveHistory records a dispatched alert.
func (r *alertHistoryRepository) SaveHistory(ctx context.Context, history *entities.AlertHistory) error {
	if err := r.db.WithContext(ctx).Create(history).Error; err != nil {
		return fmt.Errorf("failed to save alert history: %w", err)
	}
	return nil
}

// ListHistory returns history entries matching the filter, newest first,
// along with the total count before limit/offset.
func (r *alertHistoryRepository) ListHistory(ctx context.Context, filter AlertHistoryFilter) ([]entities.AlertHistory, int64, error) {
	query := r.db.WithContext(ctx).Model(&entities.AlertHistory{})

	if filter.Recipient != "" {
		query = query.Where("recipient = ?", filter.Recipient)
	}
	if filter.AlertType != "" {
		query = query.Where("alert_type = ?", filter.AlertType)
	}
	if filter.Domain != "" {
		query = query.Where("domain = ?", filter.Domain)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count alert history: %w", err)
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var history []entities.AlertHistory
	if err := query.Order("sent_at DESC").Find(&history).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list alert history: %w", err)
	}
	return history, total, nil
}

// DeleteHistoryBefore removes entries older than the cutoff and returns
// the number deleted.
func (r *alertHistoryRepository) DeleteHistoryBefore(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("sent_at < ?", before).
		Delete(&entities.AlertHistory{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to prune alert history: %w", result.Error)
	}
	return result.RowsAffected, nil
}
