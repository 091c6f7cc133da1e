package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/t1tandr/uevent/internal/infrastructure/config"
)

// Database wraps the shared gorm handle. Repositories take DB directly.
type Database struct {
	DB *gorm.DB
}

type databaseOptions struct {
	logger  logger.Interface
	dialect func(dsn string) gorm.Dialector
}

type DatabaseOption func(*databaseOptions)

// WithGormLogger replaces gorm's default stdout logger
func WithGormLogger(l logger.Interface) DatabaseOption {
	return func(o *databaseOptions) { o.logger = l }
}

// WithDialector overrides the postgres dialector, e.g. to run on a sqlmock
// connection
func WithDialector(fn func(dsn string) gorm.Dialector) DatabaseOption {
	return func(o *databaseOptions) { o.dialect = fn }
}

// Open connects to postgres, applies the pool limits from cfg and pings once
func Open(cfg *config.DatabaseConfig, opts ...DatabaseOption) (*Database, error) {
	o := databaseOptions{
		logger:  logger.Default.LogMode(logger.Silent),
		dialect: postgres.Open,
	}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := gorm.Open(o.dialect(cfg.DSN()), &gorm.Config{
		Logger:                 o.logger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	configurePool(sqlDB, cfg)
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Database{DB: db}, nil
}

func configurePool(sqlDB *sql.DB, cfg *config.DatabaseConfig) {
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping backs the /api/health database check
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
