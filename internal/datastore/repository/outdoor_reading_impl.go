package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/rpaudel/gardenwatch-go/internal/datastore/entities"
	"gorm.io/gorm"
)

// outdoorReadingRepository implements OutdoorReadingRepository.
type outdoorReadingRepository struct {
	db *gorm.DB
}

// NewOutdoorReadingRepository creates a new OutdoorReadingRepository.
func NewOutdoorReadingRepository(db *gorm.DB) OutdoorReadingRepository {
	return &outdoorReadingRepository{db: db}
}

// SaveReading persists an outdoor reading.
func (r *outdoorReadingRepository) SaveReading(ctx context.Context, reading *entities.OutdoorReading) error {
	if err := r.db.WithContext(ctx).Create(reading).Error; err != nil {
		return fmt.Errorf("failed to save outdoor reading: %w", err)
	}
	return nil
}

// Latest returns the newest outdoor reading.
// Returns ErrOutdoorReadingNotFound if the table is empty.
func (r *outdoorReadingRepository) Latest(ctx context.Context) (*entities.OutdoorReading, error) {
	var reading entities.OutdoorReading
	if err := r.db.WithContext(ctx).
		Order("timestamp DESC").
		First(&reading).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOutdoorReadingNotFound
		}
		return nil, fmt.Errorf("failed to get latest outdoor reading: %w", err)
	}
	return &reading, nil
}
