package repository

import (
	"context"
	"fmt"

	"github.com/rpaudel/gardenwatch-go/internal/datastore/entities"
	"gorm.io/gorm"
)

// detectionRepository implements DetectionRepository.
type detectionRepository struct {
	db *gorm.DB
}

// NewDetectionRepository creates a new DetectionRepository.
func NewDetectionRepository(db *gorm.DB) DetectionRepository {
	return &detectionRepository{db: db}
}

// SaveDetection persists a motion detection event.
func (r *detectionRepository) SaveDetection(ctx context.Context, event *entities.DetectionEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to save detection event: %w", err)
	}
	return nil
}

// ListBySession returns detection events for a session, newest first.
func (r *detectionRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]entities.DetectionEvent, error) {
	var events []entities.DetectionEvent
	query := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("detected_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list detection events: %w", err)
	}
	return events, nil
}
