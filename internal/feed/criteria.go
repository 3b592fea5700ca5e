// Package feed computes the listing feed shown to a viewer and keeps it live.
package feed

import (
	"math"
	"strconv"
	"strings"

	"github.com/mitronepal/JobMandu/internal/models"
)

// ViewMode selects between every listing and the viewer's own listings.
type ViewMode string

const (
	ViewAll  ViewMode = "all"
	ViewMine ViewMode = "mine"
)

// AnyJobType disables the employment type filter.
const AnyJobType = "All"

// Params are the raw filter values as a client sends them, either as query
// parameters or as a WebSocket criteria payload.
type Params struct {
	Category  string `json:"category" query:"category"`
	Query     string `json:"q" query:"q"`
	View      string `json:"view" query:"view"`
	MinSalary string `json:"min_salary" query:"min_salary"`
	MaxSalary string `json:"max_salary" query:"max_salary"`
	Type      string `json:"type" query:"type"`
}

// Criteria is the filter context for one recompute.
type Criteria struct {
	Category models.Category
	Query    string
	View     ViewMode
	ViewerID string

	// Salary thresholds stay as entered and are read by their leading integer.
	// A value that is not a positive number disables the filter.
	MinSalary string
	MaxSalary string
	Type      string
}

// ParseCriteria builds Criteria from raw parameters, applying the feed defaults.
func ParseCriteria(p Params, viewerID string) Criteria {
	c := Criteria{
		Category:  models.Category(strings.ToLower(strings.TrimSpace(p.Category))),
		Query:     p.Query,
		View:      ViewMode(strings.ToLower(strings.TrimSpace(p.View))),
		ViewerID:  viewerID,
		MinSalary: strings.TrimSpace(p.MinSalary),
		MaxSalary: strings.TrimSpace(p.MaxSalary),
		Type:      strings.TrimSpace(p.Type),
	}
	if !c.Category.Valid() {
		c.Category = models.CategoryJob
	}
	if c.View != ViewMine {
		c.View = ViewAll
	}
	if c.Type == "" {
		c.Type = AnyJobType
	}
	return c
}

// Params converts the criteria back into wire form.
func (c Criteria) Params() Params {
	return Params{
		Category:  string(c.Category),
		Query:     c.Query,
		View:      string(c.View),
		MinSalary: c.MinSalary,
		MaxSalary: c.MaxSalary,
		Type:      c.Type,
	}
}

// threshold parses a salary filter from its leading integer, so "25000abc"
// and "25000.5" both mean 25000. Blank, non-numeric, zero and negative
// filters are inactive.
func threshold(raw string) (value int, ok bool) {
	s := strings.TrimSpace(raw)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 || neg {
		return 0, false
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil {
		// overflow; any salary is below it
		v = math.MaxInt
	}
	if v <= 0 {
		return 0, false
	}
	return v, true
}
