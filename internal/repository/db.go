package repository

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"race-planner/internal/model"
)

// NewDB opens a SQLite database and runs migrations.
func NewDB(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		dsn = "race_planner.db"
	}

	if err := ensureDirForSQLite(dsn); err != nil {
		return nil, err
	}

	dbLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: dbLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// migrate applies the additive schema and backfills derived columns. Safe to
// run on every start: AutoMigrate no-ops on columns that already exist.
func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Task{}, &model.CalendarEvent{}); err != nil {
		return fmt.Errorf("migrate db: %w", err)
	}
	if err := backfillScoringCategory(db); err != nil {
		return fmt.Errorf("backfill scoring category: %w", err)
	}
	return nil
}

// backfillScoringCategory fills scoring_category from the current bucket for
// rows created before the column existed.
func backfillScoringCategory(db *gorm.DB) error {
	return db.Model(&model.Task{}).
		Where("scoring_category IS NULL OR scoring_category = ''").
		Update("scoring_category", gorm.Expr("category")).Error
}

// ensureDirForSQLite creates parent dir for SQLite file if needed.
func ensureDirForSQLite(dsn string) error {
	// Ignore DSNs with explicit mode=memory or network.
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	// Strip file: prefix if present.
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}
