package telemetry

import (
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultSlowQuery = 200 * time.Millisecond
	queryStartKey    = "uevent:query_start"
)

// DBTracingConfig configures query spans
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool // include bound variables, never in production
	SlowQueryThresh time.Duration
	DBSystem        string
}

// DBTracingPlugin registers otelgorm and decorates its spans with row
// counts, table names and a slow-query marker
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates the plugin; zero values get defaults
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = defaultSlowQuery
	}
	if cfg.DBSystem == "" {
		cfg.DBSystem = "postgresql"
	}
	return &DBTracingPlugin{config: cfg, logger: logger}
}

type gormHook func(name string, fn func(*gorm.DB)) error

// RegisterOtelGorm installs the plugin on db
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	if !p.config.Enabled {
		return nil
	}

	// gorm runs callbacks sharing a constraint in registration order, so
	// these go in before otelgorm's and annotate the span before it ends
	cb := db.Callback()
	hooks := []struct {
		name     string
		register gormHook
		fn       func(*gorm.DB)
	}{
		{"uevent_trace:before_create", cb.Create().Before("gorm:create").Register, markQueryStart},
		{"uevent_trace:before_query", cb.Query().Before("gorm:query").Register, markQueryStart},
		{"uevent_trace:before_update", cb.Update().Before("gorm:update").Register, markQueryStart},
		{"uevent_trace:before_delete", cb.Delete().Before("gorm:delete").Register, markQueryStart},
		{"uevent_trace:before_row", cb.Row().Before("gorm:row").Register, markQueryStart},
		{"uevent_trace:before_raw", cb.Raw().Before("gorm:raw").Register, markQueryStart},
		{"uevent_trace:after_create", cb.Create().After("gorm:create").Register, p.annotate},
		{"uevent_trace:after_query", cb.Query().After("gorm:query").Register, p.annotate},
		{"uevent_trace:after_update", cb.Update().After("gorm:update").Register, p.annotate},
		{"uevent_trace:after_delete", cb.Delete().After("gorm:delete").Register, p.annotate},
		{"uevent_trace:after_row", cb.Row().After("gorm:row").Register, p.annotate},
		{"uevent_trace:after_raw", cb.Raw().After("gorm:raw").Register, p.annotate},
	}
	for _, h := range hooks {
		if err := h.register(h.name, h.fn); err != nil {
			return err
		}
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBSystem)}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
	)
	return nil
}

func markQueryStart(db *gorm.DB) {
	db.InstanceSet(queryStartKey, time.Now())
}

func (p *DBTracingPlugin) annotate(db *gorm.DB) {
	if db.Statement.Context == nil {
		return
	}
	span := trace.SpanFromContext(db.Statement.Context)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.RecordError(db.Error)
		span.SetStatus(codes.Error, db.Error.Error())
	}

	v, ok := db.InstanceGet(queryStartKey)
	if !ok {
		return
	}
	start, ok := v.(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(start); elapsed > p.config.SlowQueryThresh {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		span.AddEvent("slow_query", trace.WithAttributes(
			attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds()),
		))
	}
}
