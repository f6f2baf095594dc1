// Package validation normalizes and checks client-supplied fields.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MaxSkills      = 20
	MaxSkillLength = 50
)

// NormalizeSkills trims, lowercases and de-duplicates a skill list while
// keeping first-seen order. Blank entries are dropped.
func NormalizeSkills(raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, s := range raw {
		skill := strings.ToLower(strings.Join(strings.Fields(s), " "))
		if skill == "" {
			continue
		}
		if utf8.RuneCountInString(skill) > MaxSkillLength {
			return nil, fmt.Errorf("skill %q exceeds %d characters", skill, MaxSkillLength)
		}
		if strings.ContainsAny(skill, `"\`) {
			return nil, fmt.Errorf("skill %q contains invalid characters", skill)
		}
		if _, dup := seen[skill]; dup {
			continue
		}
		seen[skill] = struct{}{}
		out = append(out, skill)
	}
	if len(out) > MaxSkills {
		return nil, fmt.Errorf("at most %d skills are allowed", MaxSkills)
	}
	return out, nil
}
