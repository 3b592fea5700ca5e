// Package seed provides helpers to create demo marketplace data. These
// helpers are intended for development and testing only.
package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/mitronepal/JobMandu/internal/models"
	"github.com/mitronepal/JobMandu/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "password123"

var (
	jobTitles = []string{
		"Waiter", "Cook", "Receptionist", "Accountant", "Driver", "Security Guard",
		"Sales Representative", "Teacher", "Nurse", "Electrician", "Plumber",
		"Backend Developer", "Frontend Developer", "Graphic Designer", "Data Entry Operator",
		"Marketing Officer", "Store Keeper", "Trekking Guide", "Barista", "Delivery Rider",
	}

	roomTitles = []string{
		"Single room", "Double room", "1BHK flat", "2BHK flat", "Room with attached bathroom",
		"Furnished room", "Shared room for students", "Flat with parking",
	}

	tolesByCity = map[string][]string{
		"Kathmandu": {"Baneshwor", "Thamel", "Koteshwor", "Kalanki", "Chabahil", "Baluwatar"},
		"Lalitpur":  {"Jawalakhel", "Pulchowk", "Kupondole", "Satdobato"},
		"Pokhara":   {"Lakeside", "Chipledhunga", "Bagar"},
	}

	amenityChoices = []string{"Wifi", "Water", "Parking", "Balcony", "Kitchen", "Furnished", "Solar"}
)

// Factory builds accounts, profiles and listings and persists them through
// the repositories.
type Factory struct {
	stores repository.Stores
	opts   Options
	rng    *rand.Rand
	hash   string
}

// NewFactory creates a Factory bound to stores.
func NewFactory(stores repository.Stores, opts Options) *Factory {
	seed := time.Now().UnixNano()
	if opts.RandomSeed != 0 {
		seed = opts.RandomSeed
	}
	gofakeit.Seed(seed)
	return &Factory{
		stores: stores,
		opts:   opts,
		// #nosec G404: acceptable for seeding
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (f *Factory) passwordHash() (string, error) {
	if f.hash != "" {
		return f.hash, nil
	}
	// Fast mode stores a cost-4 hash; it still verifies against DefaultPassword.
	cost := bcrypt.DefaultCost
	if f.opts.SkipBcrypt {
		cost = bcrypt.MinCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), cost)
	if err != nil {
		return "", fmt.Errorf("hash seed password: %w", err)
	}
	f.hash = string(h)
	return f.hash, nil
}

// BuildAccount constructs an account without persisting it.
func (f *Factory) BuildAccount(overrides ...func(*models.Account)) (*models.Account, error) {
	hash, err := f.passwordHash()
	if err != nil {
		return nil, err
	}
	first, last := gofakeit.FirstName(), gofakeit.LastName()
	account := &models.Account{
		ID:           uuid.NewString(),
		Email:        fmt.Sprintf("%s.%s%d@example.com", first, last, gofakeit.Number(100, 999)),
		DisplayName:  first + " " + last,
		PhotoURL:     fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		PasswordHash: hash,
		CreatedAt:    f.pastTime(),
	}
	for _, override := range overrides {
		override(account)
	}
	return account, nil
}

// CreateMember persists an account and its role profile.
func (f *Factory) CreateMember(ctx context.Context, role models.Role, overrides ...func(*models.Account)) (*models.Profile, error) {
	account, err := f.BuildAccount(overrides...)
	if err != nil {
		return nil, err
	}
	profile := models.NewProfile(account, role)
	profile.CreatedAt = account.CreatedAt

	if f.opts.DryRun {
		log.Printf("[dry-run] CreateMember: role=%s email=%s", role, account.Email)
		return profile, nil
	}

	if err := f.stores.Accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	if err := f.stores.Profiles.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return profile, nil
}

// BuildListing constructs a listing of category for provider without persisting it.
func (f *Factory) BuildListing(provider *models.Profile, category models.Category, overrides ...func(*models.Listing)) *models.Listing {
	city, tole := f.place()
	lat := models.DefaultLatitude + (f.rng.Float64()-0.5)*0.1
	lon := models.DefaultLongitude + (f.rng.Float64()-0.5)*0.1

	l := &models.Listing{
		ID:            uuid.NewString(),
		Category:      category,
		ContactNumber: fmt.Sprintf("98%08d", f.rng.Intn(100000000)),
		Location:      tole + ", " + city,
		Latitude:      &lat,
		Longitude:     &lon,
		ProviderID:    provider.ID,
		ProviderName:  provider.DisplayName,
		CreatedAt:     f.pastTime(),
		Status:        models.DefaultStatus(category),
	}

	switch category {
	case models.CategoryRoom:
		l.Title = roomTitles[f.rng.Intn(len(roomTitles))] + " in " + tole
		l.Description = gofakeit.Paragraph(1, 3, 12, " ")
		l.Price = 5000 + f.rng.Intn(30)*500
		l.RoomCount = fmt.Sprintf("%d", 1+f.rng.Intn(4))
		l.FloorLevel = fmt.Sprintf("%d", f.rng.Intn(6))
		l.Amenities = f.amenities()
		if f.rng.Intn(4) == 0 {
			l.Status = models.StatusRented
		}
	default:
		minSalary := 15000 + f.rng.Intn(20)*2500
		l.Title = jobTitles[f.rng.Intn(len(jobTitles))]
		l.Description = gofakeit.Paragraph(1, 3, 12, " ")
		l.CompanyName = gofakeit.Company()
		l.MinSalary = minSalary
		l.MaxSalary = minSalary + f.rng.Intn(10)*2500
		l.Type = models.JobTypes[f.rng.Intn(len(models.JobTypes))]
		l.ExperienceLevel = fmt.Sprintf("%d+ years", f.rng.Intn(5))
		l.SkillsRequired = gofakeit.JobDescriptor() + ", " + gofakeit.HackerVerb()
		l.Benefits = "Lunch, Festival bonus"
		if f.rng.Intn(5) == 0 {
			l.Status = models.StatusClosed
		}
	}

	l.Normalize()
	for _, override := range overrides {
		override(l)
	}
	return l
}

// CreateListing persists a listing built by BuildListing.
func (f *Factory) CreateListing(ctx context.Context, provider *models.Profile, category models.Category, overrides ...func(*models.Listing)) (*models.Listing, error) {
	l := f.BuildListing(provider, category, overrides...)
	if f.opts.DryRun {
		log.Printf("[dry-run] CreateListing: category=%s provider=%s title=%q", l.Category, l.ProviderID, l.Title)
		return l, nil
	}
	if err := f.stores.Listings.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// pastTime spreads timestamps over the last MaxDays days.
func (f *Factory) pastTime() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 30
	}
	back := time.Duration(f.rng.Intn(maxDays))*24*time.Hour +
		time.Duration(f.rng.Intn(24))*time.Hour +
		time.Duration(f.rng.Intn(60))*time.Minute
	return time.Now().UTC().Add(-back)
}

func (f *Factory) place() (city, tole string) {
	city = models.Locations[f.rng.Intn(len(models.Locations))]
	toles, ok := tolesByCity[city]
	if !ok {
		return city, gofakeit.Street()
	}
	return city, toles[f.rng.Intn(len(toles))]
}

func (f *Factory) amenities() string {
	n := 1 + f.rng.Intn(3)
	picked := make([]string, 0, n)
	for _, i := range f.rng.Perm(len(amenityChoices))[:n] {
		picked = append(picked, amenityChoices[i])
	}
	return strings.Join(picked, ", ")
}
