package models

import "time"

// Role is chosen once after sign-up.
type Role string

const (
	RoleNone     Role = ""
	RoleSeeker   Role = "seeker"
	RoleProvider Role = "provider"
)

// Valid reports whether r is a selectable role.
func (r Role) Valid() bool {
	return r == RoleSeeker || r == RoleProvider
}

// DefaultDisplayName is used when the identity provider has no display name.
const DefaultDisplayName = "User"

// Account is the identity record used for sign-in.
type Account struct {
	ID           string    `gorm:"primaryKey;size:36" bson:"_id" json:"uid"`
	Email        string    `gorm:"uniqueIndex;not null" bson:"email" json:"email"`
	DisplayName  string    `bson:"display_name" json:"display_name"`
	PhotoURL     string    `bson:"photo_url,omitempty" json:"photo_url,omitempty"`
	PasswordHash string    `gorm:"not null" bson:"password_hash" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}

// Profile is the per-user record keyed by identity id.
type Profile struct {
	ID              string    `gorm:"primaryKey;size:36" bson:"_id" json:"uid"`
	Email           string    `bson:"email" json:"email"`
	DisplayName     string    `bson:"display_name" json:"display_name"`
	PhotoURL        string    `bson:"photo_url,omitempty" json:"photo_url,omitempty"`
	Role            Role      `gorm:"size:16" bson:"role" json:"role"`
	Membership      bool      `bson:"membership" json:"membership"`
	IsBlocked       bool      `gorm:"not null;default:false;index" bson:"is_blocked" json:"is_blocked"`
	ReportsReceived int       `gorm:"column:total_reports_received;not null;default:0" bson:"total_reports_received" json:"total_reports_received"`
	CreatedAt       time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at" json:"updated_at"`
}

// NewProfile builds the record created on role selection.
func NewProfile(account *Account, role Role) *Profile {
	name := account.DisplayName
	if name == "" {
		name = DefaultDisplayName
	}
	return &Profile{
		ID:          account.ID,
		Email:       account.Email,
		DisplayName: name,
		PhotoURL:    account.PhotoURL,
		Role:        role,
	}
}

// CanPost reports whether the profile may publish listings.
func (p *Profile) CanPost() bool {
	return p.Role == RoleProvider && !p.IsBlocked
}
