package feed

import (
	"math/rand/v2"
	"strings"
	"time"

	"github.com/mitronepal/JobMandu/internal/models"
	"github.com/mitronepal/JobMandu/internal/observability"
)

// ShuffleFunc permutes listings in place.
type ShuffleFunc func([]models.Listing)

// RandomShuffle is the default permutation, drawn fresh on every call.
func RandomShuffle(listings []models.Listing) {
	rand.Shuffle(len(listings), func(i, j int) {
		listings[i], listings[j] = listings[j], listings[i]
	})
}

// Engine turns a repository snapshot into the feed for one viewer.
// Compute never mutates the snapshot and holds no state between calls.
type Engine struct {
	shuffle ShuffleFunc
}

// NewEngine creates an engine. A nil shuffle selects RandomShuffle.
func NewEngine(shuffle ShuffleFunc) *Engine {
	if shuffle == nil {
		shuffle = RandomShuffle
	}
	return &Engine{shuffle: shuffle}
}

// Compute shuffles a copy of snapshot and keeps the listings matching c.
func (e *Engine) Compute(snapshot []models.Listing, c Criteria) []models.Listing {
	start := time.Now()
	defer func() {
		observability.FeedRecomputeDuration.Observe(time.Since(start).Seconds())
	}()

	shuffled := make([]models.Listing, len(snapshot))
	copy(shuffled, snapshot)
	e.shuffle(shuffled)

	query := strings.ToLower(c.Query)
	minSalary, hasMin := threshold(c.MinSalary)
	maxSalary, hasMax := threshold(c.MaxSalary)

	out := make([]models.Listing, 0, len(shuffled))
	for _, l := range shuffled {
		if l.Category != c.Category {
			continue
		}
		if query != "" && !strings.Contains(searchText(&l), query) {
			continue
		}
		if c.View == ViewMine && !l.IsOwnedBy(c.ViewerID) {
			continue
		}
		if c.Category == models.CategoryJob {
			if hasMin && l.MinSalary < minSalary {
				continue
			}
			// Upper bound compares against the minimum salary too.
			if hasMax && l.MinSalary > maxSalary {
				continue
			}
			if c.Type != AnyJobType && string(l.Type) != c.Type {
				continue
			}
		}
		out = append(out, l)
	}
	return out
}

func searchText(l *models.Listing) string {
	return strings.ToLower(l.Title + " " + l.Location + " " + l.CompanyName)
}
