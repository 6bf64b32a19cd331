// Package validate holds the field-level input checks applied before any
// mutation. Limits match the frontend maxlength attributes.
package validate

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxTitle              = 100
	MaxDescription        = 5000
	MaxProjectName        = 80
	MaxProjectDescription = 2000
	MaxComment            = 3000
	MaxSearch             = 200
	MaxHours              = 999
	MinHours              = 0
)

// Error is a user-visible validation failure on one field.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string { return e.Message }

func fieldError(field, format string, args ...interface{}) *Error {
	return &Error{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Length trims s and rejects it when the trimmed value exceeds max. Limits
// count characters, not bytes, so multibyte input is not penalized.
func Length(field, s string, max int) (string, error) {
	s = strings.TrimSpace(s)
	if n := utf8.RuneCountInString(s); n > max {
		return "", fieldError(field, "%s must be at most %d characters (got %d).", field, max, n)
	}
	return s, nil
}

// Required trims s and rejects empty-after-trim values.
func Required(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fieldError(field, "%s is required.", field)
	}
	return s, nil
}

// Hours parses an estimated-hours form value. Empty means zero; anything
// else must be a float in [MinHours, MaxHours].
func Hours(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fieldError("Estimated hours",
			"Estimated hours must be a number between %d and %d.", MinHours, MaxHours)
	}
	if v < MinHours || v > MaxHours {
		return 0, fieldError("Estimated hours",
			"Estimated hours must be between %d and %d.", MinHours, MaxHours)
	}
	return v, nil
}

// Date parses a YYYY-MM-DD form value. A value that does not parse reports
// ok=false rather than an error: create falls back to unset and update keeps
// the previous stored value. Lenient on purpose.
func Date(raw string) (*time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, false
	}
	return &t, true
}
