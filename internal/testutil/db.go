// Package testutil holds helpers shared by package tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mitronepal/JobMandu/internal/database"
	"github.com/mitronepal/JobMandu/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// NewTestDB opens an isolated in-memory sqlite database with the schema applied.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

// CreateProfile inserts a profile with the given role.
func CreateProfile(t *testing.T, db *gorm.DB, role models.Role) *models.Profile {
	t.Helper()
	p := &models.Profile{
		ID:          uuid.NewString(),
		Email:       uuid.NewString()[:8] + "@example.com",
		DisplayName: "Test " + string(role),
		Role:        role,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// CreateListing inserts a job listing owned by ownerID.
func CreateListing(t *testing.T, db *gorm.DB, ownerID string, mutate ...func(*models.Listing)) *models.Listing {
	t.Helper()
	l := &models.Listing{
		ID:            uuid.NewString(),
		Category:      models.CategoryJob,
		Title:         "Backend Developer",
		Description:   "Build APIs",
		ContactNumber: "9800000000",
		Location:      "Kathmandu",
		ProviderID:    ownerID,
		ProviderName:  "Owner",
		CreatedAt:     time.Now().UTC(),
		Status:        models.StatusOpen,
		CompanyName:   "Himal Tech",
		MinSalary:     40000,
		MaxSalary:     60000,
		Type:          models.JobFullTime,
	}
	for _, m := range mutate {
		m(l)
	}
	l.Normalize()
	require.NoError(t, db.Create(l).Error)
	return l
}
