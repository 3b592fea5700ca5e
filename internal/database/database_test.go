package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/mitronepal/JobMandu/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestConfigurePool(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	cfg := &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}

	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestConnect_SQLiteRunsMigrations(t *testing.T) {
	cfg := &config.Config{
		Env:                      "test",
		DBDriver:                 "sqlite",
		SQLitePath:               "file::memory:?cache=shared",
		DBMaxOpenConns:           1,
		DBMaxIdleConns:           1,
		DBConnMaxLifetimeMinutes: 1,
	}

	db, err := Connect(cfg)
	require.NoError(t, err)
	assert.True(t, db.Migrator().HasTable("listings"))
}

func TestDialector_SelectsDriver(t *testing.T) {
	assert.Equal(t, "sqlite", dialector(&config.Config{DBDriver: "sqlite", SQLitePath: ":memory:"}).Name())
	assert.Equal(t, "postgres", dialector(&config.Config{DBDriver: "postgres"}).Name())
}

func TestPostgresDSN(t *testing.T) {
	dsn := postgresDSN(&config.Config{DBHost: "db", DBPort: "5432", DBUser: "jm", DBPassword: "pw", DBName: "jobmandu"})
	assert.Contains(t, dsn, "host=db port=5432 user=jm password=pw dbname=jobmandu")
	assert.Contains(t, dsn, "sslmode=disable")
	assert.Contains(t, dsn, "TimeZone=UTC")
}

func TestQueryLog_Trace(t *testing.T) {
	var buf bytes.Buffer
	q := newQueryLog(slog.New(slog.NewJSONHandler(&buf, nil)), 50*time.Millisecond)
	ctx := context.Background()
	stmt := func() (string, int64) { return "SELECT * FROM listings", 3 }

	q.Trace(ctx, time.Now(), stmt, nil)
	assert.Empty(t, buf.String(), "fast queries stay quiet at warn")

	q.Trace(ctx, time.Now(), stmt, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	q.Trace(ctx, time.Now().Add(-time.Second), stmt, nil)
	assert.Contains(t, buf.String(), `"msg":"sql slow"`)

	buf.Reset()
	q.Trace(ctx, time.Now(), stmt, errors.New("boom"))
	assert.Contains(t, buf.String(), `"msg":"sql failed"`)
	assert.Contains(t, buf.String(), `"error":"boom"`)
	assert.Contains(t, buf.String(), `"component":"sql"`)

	buf.Reset()
	verbose := q.LogMode(logger.Info)
	verbose.Trace(ctx, time.Now(), stmt, nil)
	assert.Contains(t, buf.String(), `"rows":3`)
	assert.Equal(t, logger.Warn, q.level)

	buf.Reset()
	q.LogMode(logger.Silent).Trace(ctx, time.Now(), stmt, errors.New("boom"))
	assert.Empty(t, buf.String())
}
