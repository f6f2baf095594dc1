// Package featureflags evaluates the FEATURE_FLAGS switches.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

// Workflow switches. Both default to off.
const (
	// RatingRequiresCompletion rejects ratings on chats that are still open.
	RatingRequiresCompletion = "rating_requires_completion"
	// ReportResolveOnce rejects a second resolution of the same report.
	ReportResolveOnce = "report_resolve_once"
)

var known = []string{RatingRequiresCompletion, ReportResolveOnce}

// Manager holds flags parsed from a key=value list such as
// "rating_requires_completion=on,report_resolve_once=25%".
type Manager struct {
	flags map[string]string
}

// NewManager parses a comma-separated flag list. Malformed pairs are skipped.
func NewManager(raw string) *Manager {
	out := make(map[string]string)

	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}

	return &Manager{flags: out}
}

// Enabled evaluates name for one identity. Values are on/true/1, off/false/0
// or N% for a deterministic per-identity rollout. The zero identity only
// sees a rollout at 100%.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}

	value, ok := m.flags[normalize(name)]
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	pctRaw, isPct := strings.CutSuffix(value, "%")
	if !isPct {
		return false
	}
	pct, err := strconv.Atoi(pctRaw)
	if err != nil || pct <= 0 {
		return false
	}
	if pct >= 100 {
		return true
	}
	if userID == 0 {
		return false
	}
	return rolloutBucket(name, userID) < pct
}

// Snapshot evaluates every known and configured flag for one identity.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	out := make(map[string]bool, len(known))
	for _, name := range known {
		out[name] = m.Enabled(name, userID)
	}
	if m != nil {
		for name := range m.flags {
			out[name] = m.Enabled(name, userID)
		}
	}
	return out
}

// Names lists every flag in the snapshot, sorted.
func (m *Manager) Names() []string {
	snap := m.Snapshot(0)
	names := make([]string, 0, len(snap))
	for name := range snap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s:%d", normalize(name), userID)
	return int(h.Sum32() % 100)
}
