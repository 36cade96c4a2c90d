package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/rpaudel/gardenwatch-go/internal/datastore/entities"
	"gorm.io/gorm"
)

// soilReadingRepository implements SoilReadingRepository.
type soilReadingRepository struct {
	db *gorm.DB
}

// NewSoilReadingRepository creates a new SoilReadingRepository.
func NewSoilReadingRepository(db *gorm.DB) SoilReadingRepository {
	return &soilReadingRepository{db: db}
}

// SaveReading persists a soil reading.
func (r *soilReadingRepository) SaveReading(ctx context.Context, reading *entities.SoilReading) error {
	if err := r.db.WithContext(ctx).Create(reading).Error; err != nil {
		return fmt.Errorf("failed to save soil reading: %w", err)
	}
	return nil
}

// LatestReadings returns up to limit readings, newest first.
func (r *soilReadingRepository) LatestReadings(ctx context.Context, limit int) ([]entities.SoilReading, error) {
	var readings []entities.SoilReading
	if err := r.db.WithContext(ctx).
		Order("timestamp DESC").
		Limit(limit).
		Find(&readings).Error; err != nil {
		return nil, fmt.Errorf("failed to list soil readings: %w", err)
	}
	return readings, nil
}

// Latest returns the newest soil reading.
// Returns ErrSoilReadingNotFound if the table is empty.
func (r *soilReadingRepository) Latest(ctx context.Context) (*entities.SoilReading, error) {
	var reading entities.SoilReading
	if err := r.db.WithContext(ctx).
		Order("timestamp DESC").
		First(&reading).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSoilReadingNotFound
		}
		return nil, fmt.Errorf("failed to get latest soil reading: %w", err)
	}
	return &reading, nil
}
