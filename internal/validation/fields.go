package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

var aliasRegex = regexp.MustCompile(`^[a-zA-Z0-9_.]{3,50}$`)

// RequireText trims s and checks it is non-empty and at most max runes.
func RequireText(s string, max int) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("must not be empty")
	}
	if utf8.RuneCountInString(s) > max {
		return "", fmt.Errorf("must be at most %d characters", max)
	}
	return s, nil
}

// OptionalText trims s and checks the length bound only.
func OptionalText(s string, max int) (string, error) {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > max {
		return "", fmt.Errorf("must be at most %d characters", max)
	}
	return s, nil
}

// ValidateAlias accepts 3-50 letters, digits, underscores or dots.
func ValidateAlias(alias string) error {
	if !aliasRegex.MatchString(alias) {
		return fmt.Errorf("alias must be 3-50 characters of letters, numbers, '_' or '.'")
	}
	return nil
}

// ValidatePhotoURL accepts an empty value or an absolute http(s) URL.
func ValidatePhotoURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("photo_url must be an absolute http(s) URL")
	}
	return nil
}
