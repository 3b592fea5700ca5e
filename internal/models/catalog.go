package models

// JobType is the employment type of a job listing.
type JobType string

const (
	JobFullTime  JobType = "Full-time"
	JobPartTime  JobType = "Part-time"
	JobContract  JobType = "Contract"
	JobFreelance JobType = "Freelance"
)

// JobTypes lists the selectable employment types.
var JobTypes = []JobType{JobFullTime, JobPartTime, JobContract, JobFreelance}

// Locations are the cities offered by the posting form.
var Locations = []string{
	"Kathmandu",
	"Pokhara",
	"Lalitpur",
	"Bharatpur",
	"Biratnagar",
	"Birgunj",
	"Butwal",
	"Dharan",
	"Nepalgunj",
	"Remote (Nepal)",
}

// Form defaults.
const (
	DefaultLocation  = "Kathmandu"
	DefaultLatitude  = 27.7172
	DefaultLongitude = 85.3240
)

// BanThreshold is the report count at which a listing is removed and its owner blocked.
const BanThreshold = 5

// Catalog is the static metadata served to clients.
type Catalog struct {
	Categories   []Category `json:"categories"`
	JobTypes     []JobType  `json:"job_types"`
	Locations    []string   `json:"locations"`
	BanThreshold int        `json:"ban_threshold"`
	DefaultLat   float64    `json:"default_latitude"`
	DefaultLon   float64    `json:"default_longitude"`
}

// DefaultCatalog returns the metadata served at /api/meta.
func DefaultCatalog() Catalog {
	return Catalog{
		Categories:   []Category{CategoryJob, CategoryRoom},
		JobTypes:     JobTypes,
		Locations:    Locations,
		BanThreshold: BanThreshold,
		DefaultLat:   DefaultLatitude,
		DefaultLon:   DefaultLongitude,
	}
}
