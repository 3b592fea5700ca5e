// Package featureflags gates optional marketplace capabilities per caller.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"slices"
	"strconv"
	"strings"

	"github.com/mitronepal/JobMandu/internal/models"
)

// Flags consulted by the API.
const (
	AIAssist = "ai_assist"
	Geocode  = "geocode"
)

// Subject is the caller a flag is evaluated for. Both fields may be empty.
type Subject struct {
	UserID string
	Role   models.Role
}

type ruleKind int

const (
	ruleOff ruleKind = iota
	ruleOn
	rulePercent
	ruleRole
)

type rule struct {
	kind    ruleKind
	percent int
	role    models.Role
}

func (r rule) String() string {
	switch r.kind {
	case ruleOn:
		return "on"
	case rulePercent:
		return strconv.Itoa(r.percent) + "%"
	case ruleRole:
		return string(r.role) + "s"
	default:
		return "off"
	}
}

// Manager holds parsed rules. Known flags absent from the configuration are on.
//
// Accepted values: on/off (also true/false, 1/0), N% for a stable per-user
// rollout, and providers or seekers to scope a flag to one role.
// Example: "ai_assist=providers,geocode=50%"
type Manager struct {
	rules   map[string]rule
	invalid []string
}

// NewManager parses a comma-separated name=value list.
func NewManager(raw string) *Manager {
	m := &Manager{rules: map[string]rule{
		AIAssist: {kind: ruleOn},
		Geocode:  {kind: ruleOn},
	}}

	for _, pair := range strings.Split(raw, ",") {
		if strings.TrimSpace(pair) == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, "=")
		name = normalize(name)
		if !ok || name == "" {
			m.invalid = append(m.invalid, strings.TrimSpace(pair))
			continue
		}
		r, err := parseRule(normalize(value))
		if err != nil {
			m.invalid = append(m.invalid, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		m.rules[name] = r
	}
	return m
}

func parseRule(value string) (rule, error) {
	switch value {
	case "on", "true", "1":
		return rule{kind: ruleOn}, nil
	case "off", "false", "0":
		return rule{kind: ruleOff}, nil
	case "providers", "provider":
		return rule{kind: ruleRole, role: models.RoleProvider}, nil
	case "seekers", "seeker":
		return rule{kind: ruleRole, role: models.RoleSeeker}, nil
	}
	if pct, ok := strings.CutSuffix(value, "%"); ok {
		n, err := strconv.Atoi(pct)
		if err != nil || n < 0 || n > 100 {
			return rule{}, fmt.Errorf("bad percentage %q", value)
		}
		return rule{kind: rulePercent, percent: n}, nil
	}
	return rule{}, fmt.Errorf("unknown value %q", value)
}

// Invalid lists entries that were ignored while parsing.
func (m *Manager) Invalid() []string {
	return slices.Clone(m.invalid)
}

// Enabled reports whether name is on for sub. Unknown flags are off.
func (m *Manager) Enabled(name string, sub Subject) bool {
	if m == nil {
		return false
	}
	name = normalize(name)
	r, ok := m.rules[name]
	if !ok {
		return false
	}

	switch r.kind {
	case ruleOn:
		return true
	case ruleRole:
		return sub.Role == r.role
	case rulePercent:
		if r.percent >= 100 {
			return true
		}
		if r.percent == 0 || sub.UserID == "" {
			return false
		}
		return rolloutBucket(name, sub.UserID) < r.percent
	default:
		return false
	}
}

// Raw returns the effective rule of every flag in its canonical form.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.rules))
	for name, r := range m.rules {
		out[name] = r.String()
	}
	return out
}

// Snapshot evaluates every flag for sub.
func (m *Manager) Snapshot(sub Subject) map[string]bool {
	out := make(map[string]bool, len(m.rules))
	for name := range m.rules {
		out[name] = m.Enabled(name, sub)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name, userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name + ":" + userID))
	return int(h.Sum32() % 100)
}
