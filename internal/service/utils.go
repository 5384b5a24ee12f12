package service

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const dayLayout = "2006-01-02"

// maxEmailLength matches the VARCHAR(256) email columns.
const maxEmailLength = 256

// sanitizeUTF8 removes invalid UTF-8 sequences from string
// This prevents PostgreSQL encoding errors when saving text
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}

	var result strings.Builder
	result.Grow(len(s))

	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError && size == 1 {
			s = s[1:]
			continue
		}
		result.WriteRune(r)
		s = s[size:]
	}

	return result.String()
}

// trimmedOrNil returns nil for a missing or blank value.
func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(sanitizeUTF8(*s))
	if v == "" {
		return nil
	}
	return &v
}

// clampTake bounds a page size to 1..max; def applies only when take is absent.
func clampTake(take *int, max, def int) int {
	if take == nil {
		return def
	}
	switch v := *take; {
	case v < 1:
		return 1
	case v > max:
		return max
	default:
		return v
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// parseInstant accepts YYYY-MM-DD (midnight UTC) or an exact RFC3339 instant.
func parseInstant(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dayLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

// parseDay accepts YYYY-MM-DD or RFC3339 and returns midnight UTC of that day.
func parseDay(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dayLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return truncateDay(t), true
	}
	return time.Time{}, false
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func uuidPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
