package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mitronepal/JobMandu/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_RecomputesOnSnapshotAndCriteria(t *testing.T) {
	snapshots := make(chan []models.Listing, 1)
	criteria := make(chan Criteria, 1)
	emitted := make(chan []string, 4)

	s := NewSession(NewEngine(noShuffle), snapshots, criteria, func(ls []models.Listing) error {
		emitted <- ids(ls)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, ParseCriteria(Params{Category: "job"}, "")) }()

	snapshots <- []models.Listing{job("a", 10000, ""), job("b", 50000, ""), room("r", "Pokhara", 1)}
	assert.ElementsMatch(t, []string{"a", "b"}, next(t, emitted))

	// New criteria recompute without a new snapshot.
	criteria <- ParseCriteria(Params{Category: "job", MinSalary: "20000"}, "")
	assert.Equal(t, []string{"b"}, next(t, emitted))

	criteria <- ParseCriteria(Params{Category: "room"}, "")
	assert.Equal(t, []string{"r"}, next(t, emitted))

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestSession_WaitsForFirstSnapshot(t *testing.T) {
	snapshots := make(chan []models.Listing)
	criteria := make(chan Criteria, 1)
	calls := 0

	s := NewSession(NewEngine(noShuffle), snapshots, criteria, func([]models.Listing) error {
		calls++
		return nil
	})

	criteria <- ParseCriteria(Params{}, "")
	close(snapshots)
	require.NoError(t, s.Run(context.Background(), ParseCriteria(Params{}, "")))
	assert.Zero(t, calls)
}

func TestSession_StopsOnEmitError(t *testing.T) {
	snapshots := make(chan []models.Listing, 1)
	snapshots <- nil
	boom := errors.New("write failed")

	s := NewSession(NewEngine(nil), snapshots, nil, func([]models.Listing) error { return boom })
	assert.ErrorIs(t, s.Run(context.Background(), ParseCriteria(Params{}, "")), boom)
}

func next(t *testing.T, ch <-chan []string) []string {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatal("no feed emitted")
		return nil
	}
}
