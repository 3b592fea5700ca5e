package service

import (
	"context"
	"testing"

	"github.com/mitronepal/JobMandu/internal/cache"
	"github.com/mitronepal/JobMandu/internal/models"
	"github.com/mitronepal/JobMandu/internal/repository"
	"github.com/mitronepal/JobMandu/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestProfileService_SelectRoleOnce(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	svc := NewProfileService(repository.NewProfileRepository(db), nil)
	account := &models.Account{ID: "u1", Email: "sita@example.com"}

	p, err := svc.SelectRole(ctx, account, models.RoleProvider)
	require.NoError(t, err)
	assert.Equal(t, models.RoleProvider, p.Role)
	assert.Equal(t, models.DefaultDisplayName, p.DisplayName)
	assert.False(t, p.IsBlocked)

	_, err = svc.SelectRole(ctx, account, models.RoleSeeker)
	assert.True(t, models.IsCode(err, models.CodeRoleAlreadySet))

	got, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleProvider, got.Role)
}

func TestProfileService_SelectRoleRejectsInvalid(t *testing.T) {
	svc := NewProfileService(repository.NewProfileRepository(testutil.NewTestDB(t)), nil)

	_, err := svc.SelectRole(context.Background(), &models.Account{ID: "u1"}, "admin")
	assert.True(t, models.IsCode(err, models.CodeValidation))
}

func TestProfileService_FindMissing(t *testing.T) {
	svc := NewProfileService(repository.NewProfileRepository(testutil.NewTestDB(t)), nil)

	p, err := svc.Find(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestProfileService_BlockInvalidatesCache(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	mr, rdb := newTestRedis(t)
	svc := NewProfileService(repository.NewProfileRepository(db), rdb)
	owner := testutil.CreateProfile(t, db, models.RoleProvider)

	p, err := svc.Get(ctx, owner.ID)
	require.NoError(t, err)
	assert.False(t, p.IsBlocked)
	assert.True(t, mr.Exists(cache.ProfileKey(owner.ID)))

	require.NoError(t, svc.Block(ctx, owner.ID))
	require.NoError(t, svc.Block(ctx, owner.ID))
	assert.False(t, mr.Exists(cache.ProfileKey(owner.ID)))

	p, err = svc.Get(ctx, owner.ID)
	require.NoError(t, err)
	assert.True(t, p.IsBlocked)

	require.NoError(t, svc.Unblock(ctx, owner.ID))
	p, err = svc.Get(ctx, owner.ID)
	require.NoError(t, err)
	assert.False(t, p.IsBlocked)
}

func TestProfileService_RecordReportReceived(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	svc := NewProfileService(repository.NewProfileRepository(db), nil)
	owner := testutil.CreateProfile(t, db, models.RoleProvider)

	require.NoError(t, svc.RecordReportReceived(ctx, owner.ID))
	p, err := svc.Get(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.ReportsReceived)

	err = svc.RecordReportReceived(ctx, "ghost")
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}
