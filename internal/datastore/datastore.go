// Package datastore opens and migrates the relational store.
package datastore

import (
	"fmt"

	"github.com/rpaudel/gardenwatch-go/internal/conf"
	"github.com/rpaudel/gardenwatch-go/internal/datastore/entities"
	"github.com/rpaudel/gardenwatch-go/internal/logger"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Manager owns the database connection shared by the repositories.
type Manager struct {
	db  *gorm.DB
	log logger.Logger
}

// Open connects to the configured database and runs migrations.
func Open(settings *conf.DatabaseSettings, log logger.Logger) (*Manager, error) {
	var dialector gorm.Dialector
	switch settings.Dialect {
	case "sqlite":
		dialector = sqlite.Open(settings.Path)
	case "mysql":
		dialector = mysql.Open(settings.DSN)
	default:
		return nil, fmt.Errorf("unsupported database dialect %q", settings.Dialect)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", settings.Dialect, err)
	}

	if err := db.AutoMigrate(
		&entities.SoilReading{},
		&entities.OutdoorReading{},
		&entities.AlertHistory{},
		&entities.DetectionEvent{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info("datastore ready", logger.String("dialect", settings.Dialect))
	return &Manager{db: db, log: log}, nil
}

// DB returns the underlying GORM handle for repository construction.
func (m *Manager) DB() *gorm.DB {
	return m.db
}

// Close releases the underlying connection pool.
func (m *Manager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
