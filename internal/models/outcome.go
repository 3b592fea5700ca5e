package models

// ReportOutcome is the result of a moderation report.
type ReportOutcome string

const (
	ReportRecorded        ReportOutcome = "report_recorded"
	ReportListingRemoved  ReportOutcome = "listing_removed_owner_blocked"
	ReportRemovalPending  ReportOutcome = "listing_removed_block_pending"
	ReportAlreadyReported ReportOutcome = "already_reported"
	ReportOwnListing      ReportOutcome = "own_listing"
)

// ReportResult is returned for every report attempt.
type ReportResult struct {
	Outcome      ReportOutcome `json:"outcome"`
	ListingID    string        `json:"listing_id"`
	ReportsCount int           `json:"reports_count"`
	Message      string        `json:"message"`
}

// ViewOutcome is the result of opening a listing.
type ViewOutcome string

const (
	ViewRecorded       ViewOutcome = "view_recorded"
	ViewAlreadyCounted ViewOutcome = "already_viewed"
	ViewOwnListing     ViewOutcome = "own_listing"
	ViewFailed         ViewOutcome = "failed"
	ViewAnonymous      ViewOutcome = "anonymous"
)

// ViewResult carries the view counter after tracking.
type ViewResult struct {
	Outcome ViewOutcome `json:"outcome"`
	Views   int         `json:"views"`
}

// ListingDraft is the posting form.
type ListingDraft struct {
	Category        Category `json:"category" validate:"required,oneof=job room"`
	Title           string   `json:"title" validate:"required,max=200"`
	Description     string   `json:"description" validate:"required"`
	ContactNumber   string   `json:"contact_number" validate:"required,max=32"`
	Location        string   `json:"location" validate:"required"`
	Latitude        *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude       *float64 `json:"longitude" validate:"omitempty,longitude"`
	CompanyName     string   `json:"company_name" validate:"required_if=Category job"`
	MinSalary       int      `json:"min_salary" validate:"required_if=Category job,gte=0"`
	MaxSalary       int      `json:"max_salary" validate:"required_if=Category job,gte=0"`
	Type            JobType  `json:"type" validate:"omitempty,oneof=Full-time Part-time Contract Freelance"`
	ExperienceLevel string   `json:"experience_level"`
	SkillsRequired  string   `json:"skills_required"`
	Benefits        string   `json:"benefits"`
	Price           int      `json:"price" validate:"required_if=Category room,gte=0"`
	RoomCount       string   `json:"room_count"`
	FloorLevel      string   `json:"floor_level"`
	Amenities       string   `json:"amenities"`
	// AcknowledgedPact confirms the no-fee ethics agreement.
	AcknowledgedPact bool `json:"acknowledged_pact"`
}

// AuthState is what a client needs to decide which screen to show.
type AuthState struct {
	Account     *Account `json:"account"`
	Profile     *Profile `json:"profile"`
	NeedsRole   bool     `json:"needs_role"`
	Blocked     bool     `json:"blocked"`
	SupportLink string   `json:"support_link,omitempty"`
}
