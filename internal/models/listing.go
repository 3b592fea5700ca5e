// Package models contains data structures for the application's domain models.
package models

import (
	"slices"
	"time"

	"gorm.io/datatypes"
)

// Category separates job offers from room rentals.
type Category string

const (
	CategoryJob  Category = "job"
	CategoryRoom Category = "room"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return c == CategoryJob || c == CategoryRoom
}

// ListingStatus is the open/closed state of a listing. The allowed pair depends on the category.
type ListingStatus string

const (
	StatusOpen      ListingStatus = "Open"
	StatusClosed    ListingStatus = "Closed"
	StatusAvailable ListingStatus = "Available"
	StatusRented    ListingStatus = "Rented"
)

// DefaultStatus is the status stamped on a new listing of category c.
func DefaultStatus(c Category) ListingStatus {
	if c == CategoryRoom {
		return StatusAvailable
	}
	return StatusOpen
}

// ToggledStatus returns the other status of the category's pair.
func ToggledStatus(c Category, current ListingStatus) ListingStatus {
	if c == CategoryRoom {
		if current == StatusAvailable {
			return StatusRented
		}
		return StatusAvailable
	}
	if current == StatusOpen {
		return StatusClosed
	}
	return StatusOpen
}

// Listing is a job offer or room rental.
type Listing struct {
	ID            string        `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	Category      Category      `gorm:"size:8;not null;index" bson:"category" json:"category"`
	Title         string        `gorm:"not null" bson:"title" json:"title"`
	Description   string        `gorm:"type:text;not null" bson:"description" json:"description"`
	ContactNumber string        `gorm:"not null" bson:"contact_number" json:"contact_number"`
	Location      string        `gorm:"not null" bson:"location" json:"location"`
	Latitude      *float64      `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude     *float64      `bson:"longitude,omitempty" json:"longitude,omitempty"`
	ProviderID    string        `gorm:"size:36;not null;index" bson:"provider_id" json:"provider_id"`
	ProviderName  string        `bson:"provider_name" json:"provider_name"`
	CreatedAt     time.Time     `gorm:"index" bson:"timestamp" json:"timestamp"`
	Status        ListingStatus `gorm:"size:16;not null" bson:"status" json:"status"`

	CompanyName     string  `bson:"company_name,omitempty" json:"company_name,omitempty"`
	MinSalary       int     `bson:"min_salary,omitempty" json:"min_salary,omitempty"`
	MaxSalary       int     `bson:"max_salary,omitempty" json:"max_salary,omitempty"`
	Type            JobType `gorm:"size:16" bson:"type,omitempty" json:"type,omitempty"`
	ExperienceLevel string  `bson:"experience_level,omitempty" json:"experience_level,omitempty"`
	SkillsRequired  string  `bson:"skills_required,omitempty" json:"skills_required,omitempty"`
	Benefits        string  `bson:"benefits,omitempty" json:"benefits,omitempty"`

	Price      int    `bson:"price,omitempty" json:"price,omitempty"`
	RoomCount  string `bson:"room_count,omitempty" json:"room_count,omitempty"`
	FloorLevel string `bson:"floor_level,omitempty" json:"floor_level,omitempty"`
	Amenities  string `bson:"amenities,omitempty" json:"amenities,omitempty"`

	Reports      datatypes.JSONSlice[string] `bson:"reports" json:"reports"`
	ReportsCount int                         `gorm:"not null;default:0" bson:"reports_count" json:"reports_count"`
	Views        int                         `gorm:"not null;default:0" bson:"views" json:"views"`
	ViewedBy     datatypes.JSONSlice[string] `bson:"viewed_by" json:"viewed_by"`
}

// Normalize replaces absent sets with empty ones.
func (l *Listing) Normalize() {
	if l.Reports == nil {
		l.Reports = datatypes.JSONSlice[string]{}
	}
	if l.ViewedBy == nil {
		l.ViewedBy = datatypes.JSONSlice[string]{}
	}
}

// HasReporter reports whether uid already reported the listing.
func (l *Listing) HasReporter(uid string) bool {
	return slices.Contains(l.Reports, uid)
}

// HasViewer reports whether uid is already counted as a viewer.
func (l *Listing) HasViewer(uid string) bool {
	return slices.Contains(l.ViewedBy, uid)
}

// IsOwnedBy reports whether uid posted the listing.
func (l *Listing) IsOwnedBy(uid string) bool {
	return uid != "" && l.ProviderID == uid
}
