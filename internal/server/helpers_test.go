package server

import (
	"net/http"
	"testing"

	"github.com/mitronepal/JobMandu/internal/feed"
	"github.com/mitronepal/JobMandu/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapitalize(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"invalid or expired token", "Invalid or expired token"},
		{"Already upper", "Already upper"},
		{"", ""},
		{"ñame", "Ñame"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, capitalize(tt.in))
		})
	}
}

func TestParseCriteriaMessage(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		ok    bool
		check func(t *testing.T, c feed.Criteria)
	}{
		{
			name: "Room search",
			raw:  `{"type":"criteria","payload":{"category":"room","q":"Lalitpur"}}`,
			ok:   true,
			check: func(t *testing.T, c feed.Criteria) {
				assert.Equal(t, models.CategoryRoom, c.Category)
				assert.Equal(t, "Lalitpur", c.Query)
			},
		},
		{
			name: "Empty payload defaults to jobs",
			raw:  `{"type":"criteria"}`,
			ok:   true,
			check: func(t *testing.T, c feed.Criteria) {
				assert.Equal(t, models.CategoryJob, c.Category)
				assert.Equal(t, "viewer-1", c.ViewerID)
			},
		},
		{name: "Other type", raw: `{"type":"ping"}`},
		{name: "Not JSON", raw: `hello`},
		{name: "Bad payload", raw: `{"type":"criteria","payload":"oops"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := parseCriteriaMessage([]byte(tt.raw), "viewer-1")
			assert.Equal(t, tt.ok, ok)
			if tt.check != nil {
				tt.check(t, c)
			}
		})
	}
}

func TestActiveRequired(t *testing.T) {
	env := newTestEnv(t)

	t.Run("Blocked profile gets the appeal link", func(t *testing.T) {
		token, uid := env.user(t, "banned@example.com", models.RoleProvider)
		require.NoError(t, env.srv.profiles.Block(t.Context(), uid))

		var errRes models.ErrorResponse
		status := env.do(t, http.MethodPost, "/api/listings/validate", token, validJobDraft(), &errRes)
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, models.CodeAccountBlocked, errRes.Code)
		assert.Contains(t, errRes.SupportLink, "banned%40example.com")
	})

	t.Run("Account without a role is sent to role selection", func(t *testing.T) {
		token, _ := env.signup(t, "norole@example.com")

		var errRes models.ErrorResponse
		status := env.do(t, http.MethodPost, "/api/listings/validate", token, validJobDraft(), &errRes)
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, models.CodeRoleRequired, errRes.Code)
	})

	t.Run("Unblocked profile passes again", func(t *testing.T) {
		token, uid := env.user(t, "appealed@example.com", models.RoleProvider)
		require.NoError(t, env.srv.profiles.Block(t.Context(), uid))
		require.NoError(t, env.srv.profiles.Unblock(t.Context(), uid))

		status := env.do(t, http.MethodPost, "/api/listings/validate", token, validJobDraft(), nil)
		assert.Equal(t, http.StatusOK, status)
	})
}
