package repository

import (
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Stores bundles the repositories for one document store backend.
type Stores struct {
	Accounts AccountRepository
	Profiles ProfileRepository
	Listings ListingRepository
}

// NewSQLStores returns gorm backed repositories.
func NewSQLStores(db *gorm.DB) Stores {
	return Stores{
		Accounts: NewAccountRepository(db),
		Profiles: NewProfileRepository(db),
		Listings: NewListingRepository(db),
	}
}

// NewMongoStores returns Mongo backed repositories.
func NewMongoStores(db *mongo.Database) Stores {
	return Stores{
		Accounts: NewMongoAccountRepository(db),
		Profiles: NewMongoProfileRepository(db),
		Listings: NewMongoListingRepository(db),
	}
}
