package domain

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	displayNamePattern = regexp.MustCompile(`^[\p{L}0-9 .'_-]{2,60}$`)
	usernamePattern    = regexp.MustCompile(`^[a-zA-Z0-9_.]{3,30}$`)
	phonePattern       = regexp.MustCompile(`^\+?[0-9 ()-]{7,20}$`)
)

func NormalizeUsername(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func ValidateDisplayName(v string) error {
	if !displayNamePattern.MatchString(strings.TrimSpace(v)) {
		return fmt.Errorf("%w: displayName must be 2-60 chars of letters, digits, spaces, dots, apostrophes, hyphens or underscores", ErrInvalidInput)
	}
	return nil
}

func ValidateBio(v string) error {
	if len([]rune(v)) > 500 {
		return fmt.Errorf("%w: bio must be <= 500 chars", ErrInvalidInput)
	}
	return nil
}

func ValidateUsername(v string) error {
	if !usernamePattern.MatchString(strings.TrimSpace(v)) {
		return fmt.Errorf("%w: username must match ^[a-zA-Z0-9_.]{3,30}$", ErrInvalidInput)
	}
	return nil
}

func ValidatePhone(v string) error {
	if v == "" {
		return nil
	}
	if !phonePattern.MatchString(strings.TrimSpace(v)) {
		return fmt.Errorf("%w: invalid phone number", ErrInvalidInput)
	}
	return nil
}

func ValidateWebsite(v string) error {
	if v == "" {
		return nil
	}
	parsed, err := url.Parse(v)
	if err != nil || (parsed.Scheme != "https" && parsed.Scheme != "http") || parsed.Host == "" {
		return fmt.Errorf("%w: invalid website url", ErrInvalidInput)
	}
	return nil
}

func ValidateVisibility(v Visibility) error {
	switch v {
	case VisibilityPublic, VisibilitySchool, VisibilityPrivate:
		return nil
	default:
		return fmt.Errorf("%w: visibility must be public, school or private", ErrInvalidInput)
	}
}
