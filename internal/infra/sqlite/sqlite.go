package sqlite

import (
	"context"
	"fmt"

	"github.com/exploitz3r0/xq/config"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewGorm opens the single-file SQLite database the application persists to.
// TranslateError maps unique-constraint violations to gorm.ErrDuplicatedKey,
// which is how short-code uniqueness surfaces to the repository.
func NewGorm(cfg config.SQLiteConfig) (*gorm.DB, error) {
	path := cfg.Path
	if path == "" {
		path = "urls.db"
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite: open gorm connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite: retrieve sql db: %w", err)
	}

	// A single writer sidesteps SQLITE_BUSY under concurrent requests.
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

// AutoMigrate uses GORM to perform schema migrations for the provided models.
func AutoMigrate(ctx context.Context, db *gorm.DB, models ...interface{}) error {
	if db == nil || len(models) == 0 {
		return nil
	}

	if err := db.WithContext(ctx).AutoMigrate(models...); err != nil {
		return fmt.Errorf("sqlite: auto migrate: %w", err)
	}

	return nil
}
