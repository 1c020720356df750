package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"bookmarkd/internal/config"
	"bookmarkd/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// IsPostgres reports whether databaseURL points at a postgres server.
func IsPostgres(databaseURL string) bool {
	return strings.HasPrefix(databaseURL, "postgres")
}

func InitDB(cfg config.Config) (*gorm.DB, error) {
	var dialer gorm.Dialector
	inMemory := false
	if IsPostgres(cfg.DatabaseURL) {
		dialer = postgres.Open(cfg.DatabaseURL)
	} else if strings.HasPrefix(cfg.DatabaseURL, "sqlite") {
		dsn := strings.TrimPrefix(cfg.DatabaseURL, "sqlite://")
		inMemory = strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
		dialer = sqlite.Open(dsn)
	} else {
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.DatabaseURL)
	}

	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	}
	db, err := gorm.Open(dialer, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve sql db: %w", err)
	}
	if inMemory {
		// Every sqlite connection gets its own in-memory database.
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// Migrate brings the schema up to date: SQL migrations for postgres,
// gorm AutoMigrate for sqlite.
func Migrate(ctx context.Context, cfg config.Config, db *gorm.DB, logger *slog.Logger) error {
	if IsPostgres(cfg.DatabaseURL) {
		logger.Info("Running database migrations...", "source", cfg.MigrationsPath)
		return RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath)
	}
	logger.Info("Auto-migrating database schema")
	return AutoMigrate(ctx, db)
}

// AutoMigrate uses GORM to create or update the tables of every model.
func AutoMigrate(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("auto migrate: nil database")
	}
	if err := db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func RunMigrations(databaseURL string, sourcePath string) error {
	if sourcePath == "" {
		sourcePath = "file://migrations"
	}
	m, err := migrate.New(
		sourcePath,
		databaseURL,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run up migrations: %w", err)
	}

	slog.Info("Database migrations ran successfully")
	return nil
}
