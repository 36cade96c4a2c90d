// Package repository defines datastore access contracts and their GORM
// implementations.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rpaudel/gardenwatch-go/internal/datastore/entities"
)

// Sentinel errors for empty lookups.
var (
	ErrSoilReadingNotFound    = errors.New("soil reading not found")
	ErrOutdoorReadingNotFound = errors.New("outdoor reading not found")
)

// SoilReadingRepository stores and queries soil sensor snapshots.
type SoilReadingRepository interface {
	SaveReading(ctx context.Context, reading *entities.SoilReading) error
	// LatestReadings returns up to limit readings, newest first.
	LatestReadings(ctx context.Context, limit int) ([]entities.SoilReading, error)
	// Latest returns the single newest reading, or ErrSoilReadingNotFound.
	Latest(ctx context.Context) (*entities.SoilReading, error)
}

// OutdoorReadingRepository stores and queries outdoor weather sensor snapshots.
type OutdoorReadingRepository interface {
	SaveReading(ctx context.Context, reading *entities.OutdoorReading) error
	// Latest returns the newest reading, or ErrOutdoorReadingNotFound.
	Latest(ctx context.Context) (*entities.OutdoorReading, error)
}

// AlertHistoryRepository records dispatched alerts.
type AlertHistoryRepository interface {
	SaveHistory(ctx context.Context, history *entities.AlertHistory) error
	ListHistory(ctx context.Context, filter AlertHistoryFilter) ([]entities.AlertHistory, int64, error)
	DeleteHistoryBefore(ctx context.Context, before time.Time) (int64, error)
}

// DetectionRepository persists motion detection events.
type DetectionRepository interface {
	SaveDetection(ctx context.Context, event *entities.DetectionEvent) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]entities.DetectionEvent, error)
}

// AlertHistoryFilter controls history listing queries.
type AlertHistoryFilter struct {
	Recipient string
	AlertType string
	Domain    string
	Limit     int
	Offset    int
}
