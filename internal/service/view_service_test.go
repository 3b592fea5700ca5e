package service

import (
	"context"
	"errors"
	"testing"

	"github.com/mitronepal/JobMandu/internal/feed"
	"github.com/mitronepal/JobMandu/internal/models"
	"github.com/mitronepal/JobMandu/internal/repository"
	"github.com/mitronepal/JobMandu/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewService_SkipsOwnerAndAnonymous(t *testing.T) {
	repo := noopListingRepo(nil)
	repo.addViewFn = func(context.Context, string, string) (bool, int, error) {
		t.Fatal("AddView must not be called")
		return false, 0, nil
	}
	svc := NewViewService(repo, nil)
	l := reportedListing("owner")

	assert.Equal(t, models.ViewOwnListing, svc.Record(context.Background(), l, "owner").Outcome)
	assert.Equal(t, models.ViewAnonymous, svc.Record(context.Background(), l, "").Outcome)
}

func TestViewService_KnownViewerSkipsStore(t *testing.T) {
	repo := noopListingRepo(nil)
	repo.addViewFn = func(context.Context, string, string) (bool, int, error) {
		t.Fatal("AddView must not be called")
		return false, 0, nil
	}
	l := reportedListing("owner")
	l.ViewedBy = append(l.ViewedBy, "a")
	l.Views = 1

	res := NewViewService(repo, nil).Record(context.Background(), l, "a")
	assert.Equal(t, models.ViewResult{Outcome: models.ViewAlreadyCounted, Views: 1}, res)
}

func TestViewService_FailureIsSwallowed(t *testing.T) {
	repo := noopListingRepo(nil)
	repo.addViewFn = func(context.Context, string, string) (bool, int, error) {
		return false, 0, errors.New("store down")
	}
	l := reportedListing("owner")
	l.Views = 7

	res := NewViewService(repo, nil).Record(context.Background(), l, "viewer")
	assert.Equal(t, models.ViewFailed, res.Outcome)
	assert.Equal(t, 7, res.Views)
}

func TestViewService_DistinctViewersEndToEnd(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	listings := repository.NewListingRepository(db)
	changes := &changeRecorder{}
	svc := NewViewService(listings, changes)
	y := testutil.CreateListing(t, db, "owner")

	open := func(viewer string) models.ViewResult {
		l, err := listings.GetByID(ctx, y.ID)
		require.NoError(t, err)
		return svc.Record(ctx, l, viewer)
	}

	res := open("A")
	assert.Equal(t, models.ViewRecorded, res.Outcome)
	assert.Equal(t, 1, res.Views)

	res = open("A")
	assert.Equal(t, models.ViewAlreadyCounted, res.Outcome)
	assert.Equal(t, 1, res.Views)

	res = open("B")
	assert.Equal(t, models.ViewRecorded, res.Outcome)
	assert.Equal(t, 2, res.Views)

	// Stale copy read before A's view was stored.
	stale := *y
	stale.Normalize()
	res = svc.Record(ctx, &stale, "A")
	assert.Equal(t, models.ViewAlreadyCounted, res.Outcome)
	assert.Equal(t, 2, res.Views)

	assert.Equal(t, []string{y.ID, y.ID}, changes.ids, "only counted views announce a change")
}

func TestViewService_CountedViewRefreshesFeedSnapshot(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	listings := repository.NewListingRepository(db)
	broker := feed.NewBroker(listings)
	svc := NewViewService(listings, ChangeNotifierFunc(func(ctx context.Context, _ string) {
		require.NoError(t, broker.Refresh(ctx))
	}))
	y := testutil.CreateListing(t, db, "owner")
	require.NoError(t, broker.Refresh(ctx))

	l, err := listings.GetByID(ctx, y.ID)
	require.NoError(t, err)
	res := svc.Record(ctx, l, "viewer-a")
	require.Equal(t, models.ViewRecorded, res.Outcome)

	snapshot, err := broker.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot, 1)
	assert.Equal(t, 1, snapshot[0].Views)
	assert.Equal(t, []string{"viewer-a"}, []string(snapshot[0].ViewedBy))
}
