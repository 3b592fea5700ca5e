package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mitronepal/JobMandu/internal/config"
	"github.com/mitronepal/JobMandu/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validJobDraft() models.ListingDraft {
	return models.ListingDraft{
		Category:         models.CategoryJob,
		Title:            "  Backend Developer ",
		Description:      "Go services for a Kathmandu startup",
		ContactNumber:    "9800000000",
		Location:         "Baneshwor, Kathmandu",
		CompanyName:      "Himal Tech",
		MinSalary:        40000,
		MaxSalary:        80000,
		AcknowledgedPact: true,
	}
}

func validRoomDraft() models.ListingDraft {
	return models.ListingDraft{
		Category:         models.CategoryRoom,
		Title:            "Sunny single room",
		Description:      "Near Jawalakhel chowk",
		ContactNumber:    "9811111111",
		Location:         "Lalitpur",
		Price:            9000,
		AcknowledgedPact: true,
	}
}

func (e *testEnv) post(t *testing.T, token string, draft models.ListingDraft) *models.Listing {
	t.Helper()
	var listing models.Listing
	require.Equal(t, http.StatusCreated, e.do(t, http.MethodPost, "/api/listings", token, draft, &listing))
	return &listing
}

// feed polls until the feed at path has want listings; refreshes are asynchronous.
func (e *testEnv) feed(t *testing.T, path, token string, want int) feedResponse {
	t.Helper()
	var res feedResponse
	require.Eventually(t, func() bool {
		res = feedResponse{}
		return e.do(t, http.MethodGet, path, token, nil, &res) == http.StatusOK && res.Count == want
	}, 2*time.Second, 20*time.Millisecond)
	return res
}

func TestCreateListing(t *testing.T) {
	env := newTestEnv(t)
	provider, providerID := env.user(t, "provider@example.com", models.RoleProvider)
	seeker, _ := env.user(t, "seeker@example.com", models.RoleSeeker)

	t.Run("Provider publishes a job", func(t *testing.T) {
		listing := env.post(t, provider, validJobDraft())
		assert.NotEmpty(t, listing.ID)
		assert.Equal(t, "Backend Developer", listing.Title)
		assert.Equal(t, models.StatusOpen, listing.Status)
		assert.Equal(t, models.JobFullTime, listing.Type)
		assert.Equal(t, providerID, listing.ProviderID)
		assert.Equal(t, "Tester", listing.ProviderName)
		assert.Zero(t, listing.Views)
		assert.Empty(t, listing.Reports)
	})

	t.Run("Room starts Available", func(t *testing.T) {
		listing := env.post(t, provider, validRoomDraft())
		assert.Equal(t, models.StatusAvailable, listing.Status)
		assert.Equal(t, 9000, listing.Price)
		assert.Empty(t, listing.CompanyName)
	})

	t.Run("Pact must be acknowledged", func(t *testing.T) {
		draft := validJobDraft()
		draft.AcknowledgedPact = false

		var errRes models.ErrorResponse
		status := env.do(t, http.MethodPost, "/api/listings", provider, draft, &errRes)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, models.CodeAcknowledgementRequired, errRes.Code)
	})

	t.Run("Missing job fields", func(t *testing.T) {
		draft := validJobDraft()
		draft.CompanyName = ""
		draft.Title = "   "

		var errRes models.ErrorResponse
		status := env.do(t, http.MethodPost, "/api/listings", provider, draft, &errRes)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, models.CodeValidation, errRes.Code)
		assert.Contains(t, errRes.Fields, "title")
		assert.Contains(t, errRes.Fields, "company_name")
	})

	t.Run("Seekers cannot post", func(t *testing.T) {
		var errRes models.ErrorResponse
		status := env.do(t, http.MethodPost, "/api/listings", seeker, validJobDraft(), &errRes)
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, models.CodeForbidden, errRes.Code)
	})

	t.Run("Role must be chosen first", func(t *testing.T) {
		token, _ := env.signup(t, "undecided@example.com")
		status := env.do(t, http.MethodPost, "/api/listings", token, validJobDraft(), nil)
		assert.Equal(t, http.StatusForbidden, status)
	})

	t.Run("Anonymous callers are rejected", func(t *testing.T) {
		status := env.do(t, http.MethodPost, "/api/listings", "", validJobDraft(), nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})
}

func TestValidateListing(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.user(t, "draft@example.com", models.RoleProvider)

	var res struct {
		Valid bool                `json:"valid"`
		Draft models.ListingDraft `json:"draft"`
	}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/listings/validate", token, validJobDraft(), &res))
	assert.True(t, res.Valid)
	assert.Equal(t, "Backend Developer", res.Draft.Title)

	room := validRoomDraft()
	room.Price = 0
	var errRes models.ErrorResponse
	status := env.do(t, http.MethodPost, "/api/listings/validate", token, room, &errRes)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, errRes.Fields, "price")
}

func TestGetFeed(t *testing.T) {
	env := newTestEnv(t)
	provider, _ := env.user(t, "feedowner@example.com", models.RoleProvider)
	other, _ := env.user(t, "other@example.com", models.RoleProvider)

	env.post(t, provider, validJobDraft())
	env.post(t, provider, validRoomDraft())
	cheap := validJobDraft()
	cheap.Title = "Cafe helper"
	cheap.Location = "Pokhara"
	cheap.MinSalary = 15000
	cheap.MaxSalary = 20000
	cheap.Type = models.JobPartTime
	env.post(t, other, cheap)

	t.Run("Jobs by default", func(t *testing.T) {
		res := env.feed(t, "/api/listings", "", 2)
		for _, l := range res.Listings {
			assert.Equal(t, models.CategoryJob, l.Category)
		}
	})

	t.Run("Rooms", func(t *testing.T) {
		res := env.feed(t, "/api/listings?category=room", "", 1)
		assert.Equal(t, "Sunny single room", res.Listings[0].Title)
	})

	t.Run("Text search is case insensitive", func(t *testing.T) {
		res := env.feed(t, "/api/listings?q=POKHARA", "", 1)
		assert.Equal(t, "Cafe helper", res.Listings[0].Title)
	})

	t.Run("Salary and type filters", func(t *testing.T) {
		env.feed(t, "/api/listings?min_salary=30000", "", 1)
		env.feed(t, "/api/listings?type=Part-time", "", 1)
		env.feed(t, "/api/listings?type=All&min_salary=abc", "", 2)
	})

	t.Run("Mine needs a viewer", func(t *testing.T) {
		env.feed(t, "/api/listings?view=mine&category=room", provider, 1)
		env.feed(t, "/api/listings?view=mine", other, 1)
		env.feed(t, "/api/listings?view=mine", "", 0)
	})
}

func TestGetListing_CountsViewsOnce(t *testing.T) {
	env := newTestEnv(t)
	provider, _ := env.user(t, "views@example.com", models.RoleProvider)
	seeker, _ := env.user(t, "viewer@example.com", models.RoleSeeker)
	listing := env.post(t, provider, validJobDraft())
	path := "/api/listings/" + listing.ID

	var res listingDetailResponse
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, path, seeker, nil, &res))
	assert.Equal(t, models.ViewRecorded, res.View.Outcome)
	assert.Equal(t, 1, res.Listing.Views)

	res = listingDetailResponse{}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, path, seeker, nil, &res))
	assert.Equal(t, models.ViewAlreadyCounted, res.View.Outcome)
	assert.Equal(t, 1, res.Listing.Views)

	res = listingDetailResponse{}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, path, provider, nil, &res))
	assert.Equal(t, models.ViewOwnListing, res.View.Outcome)
	assert.Equal(t, 1, res.Listing.Views)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/listings/missing", seeker, nil, nil))
}

func TestGetListingAndReport_RequireActiveMember(t *testing.T) {
	env := newTestEnv(t)
	provider, _ := env.user(t, "landlord@example.com", models.RoleProvider)
	listing := env.post(t, provider, validRoomDraft())
	detail := "/api/listings/" + listing.ID

	blocked, blockedID := env.user(t, "blocked@example.com", models.RoleSeeker)
	require.NoError(t, env.srv.profiles.Block(t.Context(), blockedID))
	undecided, _ := env.signup(t, "undecided@example.com")

	tests := []struct {
		name  string
		token string
		code  string
	}{
		{name: "Blocked account", token: blocked, code: models.CodeAccountBlocked},
		{name: "Account without a role", token: undecided, code: models.CodeRoleRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errRes models.ErrorResponse
			status := env.do(t, http.MethodGet, detail, tt.token, nil, &errRes)
			assert.Equal(t, http.StatusForbidden, status)
			assert.Equal(t, tt.code, errRes.Code)

			errRes = models.ErrorResponse{}
			status = env.do(t, http.MethodPost, detail+"/report", tt.token, nil, &errRes)
			assert.Equal(t, http.StatusForbidden, status)
			assert.Equal(t, tt.code, errRes.Code)
		})
	}

	stored, err := env.srv.stores.Listings.GetByID(t.Context(), listing.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.Views)
	assert.Empty(t, stored.ViewedBy)
	assert.Zero(t, stored.ReportsCount)
	assert.Empty(t, stored.Reports)
}

func TestReportListing_BanAtThreshold(t *testing.T) {
	env := newTestEnv(t)
	owner, ownerID := env.user(t, "scammer@example.com", models.RoleProvider)
	listing := env.post(t, owner, validJobDraft())
	path := "/api/listings/" + listing.ID + "/report"

	var res models.ReportResult
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, path, owner, nil, &res))
	assert.Equal(t, models.ReportOwnListing, res.Outcome)

	reporters := make([]string, models.BanThreshold)
	for i := range reporters {
		reporters[i], _ = env.user(t, fmt.Sprintf("reporter%d@example.com", i), models.RoleSeeker)
	}

	for i := 0; i < models.BanThreshold-1; i++ {
		res = models.ReportResult{}
		require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, path, reporters[i], nil, &res))
		assert.Equal(t, models.ReportRecorded, res.Outcome)
		assert.Equal(t, i+1, res.ReportsCount)
	}

	res = models.ReportResult{}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, path, reporters[0], nil, &res))
	assert.Equal(t, models.ReportAlreadyReported, res.Outcome)
	assert.Equal(t, models.BanThreshold-1, res.ReportsCount)

	res = models.ReportResult{}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, path, reporters[models.BanThreshold-1], nil, &res))
	assert.Equal(t, models.ReportListingRemoved, res.Outcome)
	assert.Equal(t, models.BanThreshold, res.ReportsCount)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/listings/"+listing.ID, reporters[0], nil, nil))

	var errRes models.ErrorResponse
	status := env.do(t, http.MethodPost, "/api/listings", owner, validJobDraft(), &errRes)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, models.CodeAccountBlocked, errRes.Code)
	assert.Contains(t, errRes.SupportLink, "scammer%40example.com")

	var profile models.Profile
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/profile/me", owner, nil, &profile))
	assert.Equal(t, ownerID, profile.ID)
	assert.True(t, profile.IsBlocked)
}

func TestToggleAndDelete_OwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	owner, _ := env.user(t, "owner@example.com", models.RoleProvider)
	stranger, _ := env.user(t, "stranger@example.com", models.RoleProvider)
	listing := env.post(t, owner, validRoomDraft())

	statusPath := "/api/listings/" + listing.ID + "/status"
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPost, statusPath, stranger, nil, nil))

	var toggled models.Listing
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, statusPath, owner, nil, &toggled))
	assert.Equal(t, models.StatusRented, toggled.Status)

	toggled = models.Listing{}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, statusPath, owner, nil, &toggled))
	assert.Equal(t, models.StatusAvailable, toggled.Status)

	path := "/api/listings/" + listing.ID
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodDelete, path, stranger, nil, nil))
	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, path, owner, nil, nil))
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, path, owner, nil, nil))
}

func TestMetaAndSupport(t *testing.T) {
	env := newTestEnv(t)

	var catalog models.Catalog
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/meta", "", nil, &catalog))
	assert.Equal(t, models.BanThreshold, catalog.BanThreshold)

	var link struct {
		Link string `json:"link"`
	}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/support/contact", "", nil, &link))
	assert.Contains(t, link.Link, "https://wa.me/9779861513184?text=")

	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/support/contact?email=a@b.co", "", nil, &link))
	assert.Contains(t, link.Link, "a%40b.co")
}

func TestFeatureFlags(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.FeatureFlags = "ai_assist=off,geocode=on" })
	token, _ := env.user(t, "flags@example.com", models.RoleProvider)

	var flags struct {
		Raw       map[string]string `json:"raw"`
		Evaluated map[string]bool   `json:"evaluated"`
	}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/features", token, nil, &flags))
	assert.False(t, flags.Evaluated["ai_assist"])
	assert.True(t, flags.Evaluated["geocode"])

	var errRes models.ErrorResponse
	status := env.do(t, http.MethodPost, "/api/assist/description", token,
		describeRequest{Title: "Cook"}, &errRes)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, models.CodeFeatureDisabled, errRes.Code)
}

func TestGenerateDescription_UpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(upstream.Close)

	env := newTestEnv(t, func(c *config.Config) {
		c.AssistBaseURL = upstream.URL
		c.AssistAPIKey = "key"
	})
	token, _ := env.user(t, "assist@example.com", models.RoleProvider)

	var errRes models.ErrorResponse
	status := env.do(t, http.MethodPost, "/api/assist/description", token,
		describeRequest{Title: "Cook", Language: "np"}, &errRes)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, models.CodeAssistUnavailable, errRes.Code)
}

func TestGenerateDescription(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get("x-goog-api-key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"A friendly kitchen."}]}}]}`))
	}))
	t.Cleanup(upstream.Close)

	env := newTestEnv(t, func(c *config.Config) {
		c.AssistBaseURL = upstream.URL
		c.AssistAPIKey = "key"
	})
	token, _ := env.user(t, "assist-ok@example.com", models.RoleProvider)

	var res struct {
		Description string `json:"description"`
	}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/assist/description", token,
		describeRequest{Title: "Cook"}, &res))
	assert.Equal(t, "A friendly kitchen.", res.Description)
}

func TestReverseGeocode(t *testing.T) {
	var calls atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/reverse", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"display_name":"Thamel, Kathmandu"}`))
	}))
	t.Cleanup(upstream.Close)

	env := newTestEnv(t, func(c *config.Config) { c.GeocodeBaseURL = upstream.URL })
	token, _ := env.signup(t, "geo@example.com")

	var res struct {
		Address string `json:"address"`
	}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/geo/reverse?lat=27.7154&lon=85.3123", token, nil, &res))
	assert.Equal(t, "Thamel, Kathmandu", res.Address)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/geo/reverse?lat=27.7154&lon=85.3123", token, nil, &res))
	assert.Equal(t, int32(1), calls.Load(), "second lookup is served from the cache")

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/geo/reverse?lat=abc&lon=1", token, nil, nil))
}
