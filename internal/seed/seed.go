package seed

import (
	"context"
	"fmt"
	"log"

	"github.com/mitronepal/JobMandu/internal/database"
	"github.com/mitronepal/JobMandu/internal/models"
	"github.com/mitronepal/JobMandu/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Options configure the seeder.
type Options struct {
	Providers           int
	Seekers             int
	ListingsPerProvider int
	// MaxDays bounds how far back timestamps are spread.
	MaxDays int
	// SkipBcrypt hashes the shared password at minimum cost.
	SkipBcrypt bool
	// DryRun builds everything but writes nothing.
	DryRun     bool
	RandomSeed int64
}

// DefaultOptions is a small but lively marketplace.
func DefaultOptions() Options {
	return Options{
		Providers:           8,
		Seekers:             20,
		ListingsPerProvider: 4,
		MaxDays:             30,
	}
}

// Result summarizes what was seeded.
type Result struct {
	Providers []*models.Profile
	Seekers   []*models.Profile
	Listings  []*models.Listing
}

// Seeder populates a store with demo marketplace data.
type Seeder struct {
	stores  repository.Stores
	factory *Factory
	opts    Options
}

// NewSeeder creates a seeder writing through stores.
func NewSeeder(stores repository.Stores, opts Options) *Seeder {
	return &Seeder{stores: stores, factory: NewFactory(stores, opts), opts: opts}
}

// Factory exposes the underlying factory for tests and presets.
func (s *Seeder) Factory() *Factory { return s.factory }

// Run seeds providers with listings, then seekers who browse and occasionally
// report them. Report counts stay below the ban threshold.
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	res := &Result{}

	for i := 0; i < s.opts.Providers; i++ {
		p, err := s.factory.CreateMember(ctx, models.RoleProvider)
		if err != nil {
			return nil, fmt.Errorf("seed provider: %w", err)
		}
		res.Providers = append(res.Providers, p)

		for j := 0; j < s.opts.ListingsPerProvider; j++ {
			category := models.CategoryJob
			if j%2 == 1 {
				category = models.CategoryRoom
			}
			l, err := s.factory.CreateListing(ctx, p, category)
			if err != nil {
				return nil, fmt.Errorf("seed listing: %w", err)
			}
			res.Listings = append(res.Listings, l)
		}
	}
	log.Printf("✓ %d providers with %d listings", len(res.Providers), len(res.Listings))

	for i := 0; i < s.opts.Seekers; i++ {
		p, err := s.factory.CreateMember(ctx, models.RoleSeeker)
		if err != nil {
			return nil, fmt.Errorf("seed seeker: %w", err)
		}
		res.Seekers = append(res.Seekers, p)
	}
	log.Printf("✓ %d seekers", len(res.Seekers))

	if s.opts.DryRun {
		return res, nil
	}
	if err := s.engage(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// engage records views and a few reports from seekers.
func (s *Seeder) engage(ctx context.Context, res *Result) error {
	rng := s.factory.rng
	for _, l := range res.Listings {
		for _, seeker := range res.Seekers {
			if rng.Intn(3) == 0 {
				if _, _, err := s.stores.Listings.AddView(ctx, l.ID, seeker.ID); err != nil {
					return fmt.Errorf("seed view: %w", err)
				}
			}
		}
		reports := rng.Intn(models.BanThreshold - 1)
		for k := 0; k < reports && k < len(res.Seekers); k++ {
			if _, _, err := s.stores.Listings.AddReport(ctx, l.ID, res.Seekers[k].ID); err != nil {
				return fmt.Errorf("seed report: %w", err)
			}
		}
	}
	return nil
}

// ClearSQL deletes every marketplace row from a gorm database.
func ClearSQL(db *gorm.DB) error {
	log.Println("🗑️  Clearing existing data...")
	for _, m := range database.PersistentModels() {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
			return fmt.Errorf("clear %T: %w", m, err)
		}
	}
	return nil
}

// ClearMongo empties the marketplace collections.
func ClearMongo(ctx context.Context, db *mongo.Database) error {
	log.Println("🗑️  Clearing existing data...")
	for _, name := range []string{database.CollectionListings, database.CollectionProfiles, database.CollectionAccounts} {
		if _, err := db.Collection(name).DeleteMany(ctx, bson.D{}); err != nil {
			return fmt.Errorf("clear %s: %w", name, err)
		}
	}
	return nil
}
