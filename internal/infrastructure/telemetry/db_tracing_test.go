package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type venue struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100"`
}

func openTracedDB(t *testing.T, cfg DBTracingConfig) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&venue{}))
	require.NoError(t, NewDBTracingPlugin(cfg, zap.NewNop()).RegisterOtelGorm(db))
	return db
}

func findAttr(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestNewDBTracingPlugin_Defaults(t *testing.T) {
	p := NewDBTracingPlugin(DBTracingConfig{Enabled: true}, zap.NewNop())
	assert.Equal(t, defaultSlowQuery, p.config.SlowQueryThresh)
	assert.Equal(t, "postgresql", p.config.DBSystem)
}

func TestDBTracingPlugin_Disabled(t *testing.T) {
	recorder := recordSpans(t)
	db := openTracedDB(t, DBTracingConfig{})

	require.NoError(t, db.Create(&venue{Name: "Arsenal"}).Error)
	assert.Empty(t, recorder.Ended())
}

func TestDBTracingPlugin_Spans(t *testing.T) {
	recorder := recordSpans(t)
	db := openTracedDB(t, DBTracingConfig{Enabled: true, DBSystem: "sqlite"})

	ctx, parent := StartServiceSpan(context.Background(), "test", "db")
	require.NoError(t, db.WithContext(ctx).Create(&venue{Name: "Arsenal"}).Error)
	var got venue
	err := db.WithContext(ctx).Where("name = ?", "Missing").First(&got).Error
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	parent.End()

	var dbSpans []sdktrace.ReadOnlySpan
	for _, s := range recorder.Ended() {
		if s.Parent().SpanID() == parent.SpanContext().SpanID() {
			dbSpans = append(dbSpans, s)
		}
	}
	require.Len(t, dbSpans, 2)
	for _, s := range dbSpans {
		table, ok := findAttr(s.Attributes(), "db.sql.table")
		assert.True(t, ok)
		assert.Equal(t, "venues", table.AsString())
		assert.NotEqual(t, codes.Error, s.Status().Code, "not found is not an error")
	}
	rows, ok := findAttr(dbSpans[0].Attributes(), "db.rows_affected")
	require.True(t, ok)
	assert.Equal(t, int64(1), rows.AsInt64())
}

func TestDBTracingPlugin_SlowQuery(t *testing.T) {
	recorder := recordSpans(t)
	db := openTracedDB(t, DBTracingConfig{Enabled: true, SlowQueryThresh: time.Nanosecond})

	ctx, parent := StartServiceSpan(context.Background(), "test", "slow")
	require.NoError(t, db.WithContext(ctx).Create(&venue{Name: "Palace"}).Error)
	parent.End()

	var slow bool
	for _, s := range recorder.Ended() {
		if v, ok := findAttr(s.Attributes(), "db.slow_query"); ok && v.AsBool() {
			slow = true
		}
	}
	assert.True(t, slow)
}
