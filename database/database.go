package database

import (
	"fmt"
	"time"

	"quickbite-api/config"
	"quickbite-api/models"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the database, retrying with a fixed delay, runs
// migrations, and returns the handle. The caller owns the lifecycle and
// injects the handle into each service; nothing reaches for a global.
func Open(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel(cfg.Database.LogLevel)),
	}

	var db *gorm.DB
	var err error
	attempts := cfg.Database.ConnectRetry
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		db, err = gorm.Open(sqlite.Open(cfg.Database.Path), gormCfg)
		if err == nil {
			break
		}
		log.Warn("database connect failed, retrying",
			zap.Int("attempt", i+1),
			zap.Duration("retry_in", cfg.Database.RetryInterval),
			zap.Error(err))
		time.Sleep(cfg.Database.RetryInterval)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info("database connected and migrated", zap.String("path", cfg.Database.Path))
	return db, nil
}

// Migrate runs schema migrations for all models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Restaurant{},
		&models.MenuCategory{},
		&models.MenuItem{},
		&models.Address{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func gormLogLevel(s string) logger.LogLevel {
	switch s {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
