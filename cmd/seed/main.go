// Command seed fills the configured store with demo marketplace data.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/mitronepal/JobMandu/internal/bootstrap"
	"github.com/mitronepal/JobMandu/internal/config"
	"github.com/mitronepal/JobMandu/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	providers := flag.Int("providers", defaults.Providers, "Number of provider accounts")
	seekers := flag.Int("seekers", defaults.Seekers, "Number of seeker accounts")
	perProvider := flag.Int("listings", defaults.ListingsPerProvider, "Listings per provider")
	maxDays := flag.Int("days", defaults.MaxDays, "Spread timestamps over this many days")
	shouldClean := flag.Bool("clean", true, "Clear existing data before seeding")
	fast := flag.Bool("fast", true, "Hash the shared password at minimum bcrypt cost")
	dryRun := flag.Bool("dry-run", false, "Build data without writing it")
	flag.Parse()

	log.Println("🌱 JobMandu Seeder")
	log.Println("==================")
	log.Printf("Target: %d providers x %d listings, %d seekers, clean=%v\n", *providers, *perProvider, *seekers, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer rt.Close(ctx)

	if *shouldClean && !*dryRun {
		if rt.Mongo != nil {
			err = seed.ClearMongo(ctx, rt.Mongo)
		} else {
			err = seed.ClearSQL(rt.DB)
		}
		if err != nil {
			log.Fatalf("❌ Cleanup failed: %v", err)
		}
	}

	res, err := seed.NewSeeder(rt.Stores, seed.Options{
		Providers:           *providers,
		Seekers:             *seekers,
		ListingsPerProvider: *perProvider,
		MaxDays:             *maxDays,
		SkipBcrypt:          *fast,
		DryRun:              *dryRun,
	}).Run(ctx)
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✨ Seeded %d listings. Sign in as %s with password %s", len(res.Listings), res.Providers[0].Email, seed.DefaultPassword)
}
