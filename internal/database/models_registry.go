package database

import "github.com/mitronepal/JobMandu/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.Account{},
		&models.Profile{},
		&models.Listing{},
	}
}
