package featureflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnabled_DefaultsOff(t *testing.T) {
	m := NewManager("")
	assert.False(t, m.Enabled(RatingRequiresCompletion, 0))
	assert.False(t, m.Enabled(ReportResolveOnce, 0))

	var nilManager *Manager
	assert.False(t, nilManager.Enabled(ReportResolveOnce, 0))
}

func TestEnabled_BooleanValues(t *testing.T) {
	m := NewManager("a=on,b=off,c=TRUE,d=false,e=1,f=0")

	for _, name := range []string{"a", "c", "e"} {
		assert.True(t, m.Enabled(name, 0), name)
	}
	for _, name := range []string{"b", "d", "f", "missing"} {
		assert.False(t, m.Enabled(name, 0), name)
	}
}

func TestEnabled_PercentageRollout(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%,junk=abc%")

	assert.True(t, m.Enabled("always", 0))
	assert.False(t, m.Enabled("never", 1))
	assert.False(t, m.Enabled("junk", 1))
	assert.False(t, m.Enabled("canary", 0), "partial rollout is never on system-wide")

	first := m.Enabled("canary", 42)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, m.Enabled("canary", 42))
	}
}

func TestSnapshot_IncludesKnownFlags(t *testing.T) {
	m := NewManager(" bad , report_resolve_once = on , extra=off ")

	snap := m.Snapshot(7)
	assert.Equal(t, map[string]bool{
		RatingRequiresCompletion: false,
		ReportResolveOnce:        true,
		"extra":                  false,
	}, snap)
	assert.Equal(t, []string{"extra", RatingRequiresCompletion, ReportResolveOnce}, m.Names())
}
