package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/foodshare/foodshare/internal/models"
	"github.com/foodshare/foodshare/pkg/config"
	"github.com/foodshare/foodshare/pkg/logging"
)

// zapWriter adapts zap.Logger to logger.Writer interface
type zapWriter struct {
	logger *zap.Logger
}

func (w *zapWriter) Printf(format string, args ...interface{}) {
	w.logger.Sugar().Infof(format, args...)
}

// DB wraps GORM database connection
type DB struct {
	*gorm.DB
}

// New opens the database named by cfg.URL. postgres:// and postgresql://
// URLs use the PostgreSQL driver, sqlite://<path> uses pure-Go SQLite.
func New(cfg *config.DatabaseConfig, logLevel string) (*DB, error) {
	dialector, err := dialectorFor(cfg.URL)
	if err != nil {
		return nil, err
	}

	d, err := Open(dialector, logLevel)
	if err != nil {
		return nil, err
	}

	sqlDB, err := d.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if dialector.Name() == "postgres" {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	} else {
		// SQLite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logging.GetLogger().Info("Database connection established", zap.String("driver", dialector.Name()))

	return d, nil
}

// NewInMemory opens a private in-memory SQLite database with the schema
// migrated. Used by tests and local tooling.
func NewInMemory() (*DB, error) {
	d, err := Open(sqlite.Open(":memory:"), "ERROR")
	if err != nil {
		return nil, err
	}
	sqlDB, err := d.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	// Every new connection would see an empty database
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := d.Migrate(context.Background()); err != nil {
		return nil, err
	}
	return d, nil
}

func dialectorFor(url string) (gorm.Dialector, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return postgres.Open(url), nil
	case strings.HasPrefix(url, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(url, "sqlite://")), nil
	default:
		return nil, fmt.Errorf("unsupported database url %q: must start with postgres:// or sqlite://", url)
	}
}

// Open opens a GORM connection on the given dialector with logs routed to zap
func Open(dialector gorm.Dialector, logLevel string) (*DB, error) {
	var gormLogLevel logger.LogLevel
	switch logLevel {
	case "DEBUG", "debug":
		gormLogLevel = logger.Info
	case "INFO", "info":
		gormLogLevel = logger.Warn
	case "WARN", "warn", "WARNING", "warning":
		gormLogLevel = logger.Error
	case "ERROR", "error":
		gormLogLevel = logger.Silent
	default:
		gormLogLevel = logger.Warn
	}

	gormLogger := logger.New(
		&zapWriter{logger: logging.WithComponent("gorm")},
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &DB{DB: db}, nil
}

// Migrate creates or updates the users, posts and claims tables
func (d *DB) Migrate(ctx context.Context) error {
	if err := d.DB.WithContext(ctx).AutoMigrate(&models.User{}, &models.Post{}, &models.Claim{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (d *DB) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Health checks database health
func (d *DB) Health(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
