package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSkills(t *testing.T) {
	got, err := NormalizeSkills([]string{"  Go ", "go", "", "Machine   Learning", "GUITAR"})
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "machine learning", "guitar"}, got)

	_, err = NormalizeSkills([]string{strings.Repeat("x", MaxSkillLength+1)})
	assert.Error(t, err)

	_, err = NormalizeSkills([]string{`say "hi"`})
	assert.Error(t, err)

	many := make([]string, MaxSkills+1)
	for i := range many {
		many[i] = strings.Repeat("s", i+1)
	}
	_, err = NormalizeSkills(many)
	assert.Error(t, err)

	empty, err := NormalizeSkills(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRequireText(t *testing.T) {
	got, err := RequireText("  hello ", 10)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	_, err = RequireText("   ", 10)
	assert.Error(t, err)
	_, err = RequireText("eleven chars", 10)
	assert.Error(t, err)

	opt, err := OptionalText("", 5)
	require.NoError(t, err)
	assert.Empty(t, opt)
}

func TestValidateAlias(t *testing.T) {
	tests := []struct {
		alias string
		ok    bool
	}{
		{"ana.perez", true},
		{"a_1", true},
		{"ab", false},
		{"has space", false},
		{"emoji🙂", false},
	}
	for _, tt := range tests {
		t.Run(tt.alias, func(t *testing.T) {
			err := ValidateAlias(tt.alias)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidatePhotoURL(t *testing.T) {
	assert.NoError(t, ValidatePhotoURL(""))
	assert.NoError(t, ValidatePhotoURL("https://cdn.example.com/me.png"))
	assert.Error(t, ValidatePhotoURL("ftp://example.com/me.png"))
	assert.Error(t, ValidatePhotoURL("/relative.png"))
}
