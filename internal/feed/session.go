package feed

import (
	"context"

	"github.com/mitronepal/JobMandu/internal/models"
)

// EmitFunc receives each recomputed feed.
type EmitFunc func(listings []models.Listing) error

// Session recomputes one viewer's feed whenever a new snapshot or new
// criteria arrive.
type Session struct {
	engine    *Engine
	snapshots <-chan []models.Listing
	criteria  <-chan Criteria
	emit      EmitFunc
}

// NewSession wires a session. criteria may be nil when the filters never change.
func NewSession(engine *Engine, snapshots <-chan []models.Listing, criteria <-chan Criteria, emit EmitFunc) *Session {
	return &Session{engine: engine, snapshots: snapshots, criteria: criteria, emit: emit}
}

// Run blocks until ctx is done, the snapshot channel closes, or emit fails.
// Nothing is emitted before the first snapshot arrives.
func (s *Session) Run(ctx context.Context, initial Criteria) error {
	var (
		current  = initial
		snapshot []models.Listing
		ready    bool
		criteria = s.criteria
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snap, ok := <-s.snapshots:
			if !ok {
				return nil
			}
			snapshot, ready = snap, true
		case c, ok := <-criteria:
			if !ok {
				criteria = nil
				continue
			}
			current = c
		}

		if !ready {
			continue
		}
		if err := s.emit(s.engine.Compute(snapshot, current)); err != nil {
			return err
		}
	}
}
