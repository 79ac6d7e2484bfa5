// Package database connects run tracking to PostgreSQL through GORM.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ruhan-islam/text-summarizer/internal/core/domain"
	"github.com/ruhan-islam/text-summarizer/internal/pkg/config"
	apperrors "github.com/ruhan-islam/text-summarizer/internal/pkg/errors"
)

const slowQueryThreshold = 500 * time.Millisecond

// PostgresDB wraps the GORM database connection
type PostgresDB struct {
	DB     *gorm.DB
	logger *slog.Logger
}

// DSN builds a key/value connection string from cfg
func DSN(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode)
}

// NewPostgresDB connects with the settings in cfg
func NewPostgresDB(cfg *config.DatabaseConfig, appLogger *slog.Logger) (*PostgresDB, error) {
	return Open(DSN(cfg), cfg, appLogger)
}

// Open connects using a DSN; pool sizes and log level come from cfg.
func Open(dsn string, cfg *config.DatabaseConfig, appLogger *slog.Logger) (*PostgresDB, error) {
	if appLogger == nil {
		appLogger = slog.Default()
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 newGormLogger(appLogger, cfg.LogLevel),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, apperrors.DatabaseError(fmt.Errorf("failed to connect: %w", err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	if cfg.MaxConnections > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	}
	sqlDB.SetMaxIdleConns(cfg.MinConnections)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxConnLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.MaxConnIdleTime) * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, apperrors.DatabaseError(fmt.Errorf("failed to ping: %w", err))
	}

	appLogger.Info("database connection established",
		slog.String("host", cfg.Host),
		slog.Int("port", cfg.Port),
		slog.String("database", cfg.Database),
	)

	return &PostgresDB{
		DB:     db,
		logger: appLogger,
	}, nil
}

// newGormLogger sends GORM's own logging to slog. Missing records are expected by the
// repositories and are not logged.
func newGormLogger(logger *slog.Logger, level string) gormlogger.Interface {
	lvl := gormlogger.Silent
	switch strings.ToLower(level) {
	case "debug", "info":
		lvl = gormlogger.Info
	case "warn":
		lvl = gormlogger.Warn
	case "error":
		lvl = gormlogger.Error
	}

	return gormlogger.New(slogWriter{logger: logger.With(slog.String("component", "gorm"))}, gormlogger.Config{
		SlowThreshold:             slowQueryThreshold,
		LogLevel:                  lvl,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

type slogWriter struct {
	logger *slog.Logger
}

func (w slogWriter) Printf(format string, args ...interface{}) {
	w.logger.Info(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// Close closes the database connection
func (db *PostgresDB) Close() error {
	db.logger.Info("closing database connection")
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks if the database is reachable
func (db *PostgresDB) Ping(ctx context.Context) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Health reports reachability and pool usage for the worker's /health endpoint
func (db *PostgresDB) Health(ctx context.Context) map[string]interface{} {
	if err := db.Ping(ctx); err != nil {
		return map[string]interface{}{
			"status": "down",
			"error":  err.Error(),
		}
	}

	sqlDB, _ := db.DB.DB()
	stats := sqlDB.Stats()

	return map[string]interface{}{
		"status":           "up",
		"open_connections": stats.OpenConnections,
		"in_use":           stats.InUse,
		"idle":             stats.Idle,
		"wait_count":       stats.WaitCount,
		"wait_duration":    stats.WaitDuration.String(),
	}
}

// AutoMigrate migrates models, or every domain model when none are given
func (db *PostgresDB) AutoMigrate(models ...interface{}) error {
	if len(models) == 0 {
		models = domain.Models()
	}
	db.logger.Info("running auto migrations", slog.Int("models", len(models)))
	if err := db.DB.AutoMigrate(models...); err != nil {
		return apperrors.DatabaseError(fmt.Errorf("failed to run migrations: %w", err))
	}
	return nil
}
