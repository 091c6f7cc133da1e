//go:build integration

// Package integration runs the repositories and the HTTP API against a real
// PostgreSQL started with testcontainers. Run with: go test -tags integration ./tests/integration/...
package integration

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/t1tandr/uevent/internal/infrastructure/config"
	"github.com/t1tandr/uevent/internal/infrastructure/logger"
	"github.com/t1tandr/uevent/internal/infrastructure/migration"
	"github.com/t1tandr/uevent/internal/infrastructure/persistence"
	"github.com/t1tandr/uevent/migrations"
)

// postgresServer is started on first use and shared by the whole package
var postgresServer struct {
	sync.Mutex
	container *tcpostgres.PostgresContainer
	dsn       string
}

// TestDB is a migrated database with every table emptied
type TestDB struct {
	DB    *gorm.DB
	SqlDB *sql.DB
	t     *testing.T
}

func TestMain(m *testing.M) {
	code := m.Run()
	stopPostgres()
	os.Exit(code)
}

// NewTestDB opens a connection to the shared server. Tests using it must not
// run in parallel since tables are truncated on open.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	db := openDatabase(t, startPostgres(t))
	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	tdb := &TestDB{DB: db.DB, SqlDB: sqlDB, t: t}
	tdb.truncateAll()
	return tdb
}

func startPostgres(t *testing.T) string {
	t.Helper()

	postgresServer.Lock()
	defer postgresServer.Unlock()
	if postgresServer.container != nil {
		return postgresServer.dsn
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("uevent_test"),
		tcpostgres.WithUsername("uevent"),
		tcpostgres.WithPassword("uevent"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(time.Minute)),
	)
	require.NoError(t, err, "start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db := openDatabase(t, dsn)
	migrateUp(t, db)
	require.NoError(t, db.Close())

	postgresServer.container = container
	postgresServer.dsn = dsn
	return dsn
}

// openDatabase goes through persistence.Open so the pool settings and gorm
// options match the server
func openDatabase(t *testing.T, dsn string) *persistence.Database {
	t.Helper()

	level := "silent"
	if os.Getenv("TEST_DB_DEBUG") != "" {
		level = "debug"
	}
	cfg := &config.DatabaseConfig{MaxOpenConns: 10, MaxIdleConns: 2, ConnMaxLifetime: 5}
	db, err := persistence.Open(cfg,
		persistence.WithDialector(func(string) gorm.Dialector { return gormpostgres.Open(dsn) }),
		persistence.WithGormLogger(logger.NewGormLogger(zaptest.NewLogger(t), logger.MapGormLogLevel(level))),
	)
	require.NoError(t, err, "connect to postgres")
	return db
}

// migrateUp applies the embedded migrations the server ships with
func migrateUp(t *testing.T, db *persistence.Database) {
	t.Helper()

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	src, err := migration.FromFS(migrations.FS)
	require.NoError(t, err)
	m, err := migration.New(sqlDB, src, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())

	version, dirty, err := m.Version()
	require.NoError(t, err)
	require.False(t, dirty)
	require.NotZero(t, version)
}

func (tdb *TestDB) truncateAll() {
	tdb.t.Helper()

	var tables []string
	require.NoError(tdb.t, tdb.DB.Raw(
		`SELECT tablename FROM pg_tables WHERE schemaname = 'public' AND tablename <> ?`,
		migration.MigrationsTable,
	).Scan(&tables).Error)
	for _, table := range tables {
		require.NoError(tdb.t, tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %q CASCADE", table)).Error, table)
	}
}

// Count returns the number of rows in table
func (tdb *TestDB) Count(table string) int64 {
	tdb.t.Helper()

	var n int64
	require.NoError(tdb.t, tdb.DB.Table(table).Count(&n).Error)
	return n
}

func stopPostgres() {
	postgresServer.Lock()
	defer postgresServer.Unlock()
	if postgresServer.container == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = postgresServer.container.Terminate(ctx)
	postgresServer.container = nil
}
