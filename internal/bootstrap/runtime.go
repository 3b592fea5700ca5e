// Package bootstrap opens the stores used by the command line tools.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/mitronepal/JobMandu/internal/cache"
	"github.com/mitronepal/JobMandu/internal/config"
	"github.com/mitronepal/JobMandu/internal/database"
	"github.com/mitronepal/JobMandu/internal/repository"
	"github.com/mitronepal/JobMandu/internal/seed"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo fills an empty store with demo data.
	SeedDemo bool
}

// Runtime holds the connections for the configured store driver. Exactly one
// of DB and Mongo is set.
type Runtime struct {
	Stores repository.Stores
	DB     *gorm.DB
	Mongo  *mongo.Database
	Redis  *redis.Client

	mongoClient *mongo.Client
}

// InitRuntime connects to the document store and Redis and optionally seeds demo data.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	rt := &Runtime{}

	if cfg.StoreDriver == config.StoreMongo {
		client, mdb, err := database.ConnectMongo(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("mongo connection failed: %w", err)
		}
		rt.mongoClient, rt.Mongo = client, mdb
		rt.Stores = repository.NewMongoStores(mdb)
	} else {
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		rt.DB = db
		rt.Stores = repository.NewSQLStores(db)
	}

	rt.Redis = cache.Open(ctx, cfg.RedisURL)

	if opts.SeedDemo {
		if err := rt.seedIfEmpty(ctx); err != nil {
			rt.Close(ctx)
			return nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}
	return rt, nil
}

func (rt *Runtime) seedIfEmpty(ctx context.Context) error {
	existing, err := rt.Stores.Listings.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	_, err = seed.NewSeeder(rt.Stores, seed.DefaultOptions()).Run(ctx)
	return err
}

// Close releases every connection.
func (rt *Runtime) Close(ctx context.Context) {
	if rt.DB != nil {
		if sqlDB, err := rt.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if rt.mongoClient != nil {
		_ = rt.mongoClient.Disconnect(ctx)
	}
	if rt.Redis != nil {
		_ = rt.Redis.Close()
	}
}
