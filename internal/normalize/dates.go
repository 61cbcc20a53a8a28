package normalize

import (
	"strings"
	"time"

	"deskinsight/internal/domain"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
	time.RFC3339Nano,
	"2006/01/02",
	"20060102",
	"01/02/2006",
}

// ParseDate reads the ISO-ish date strings found in the ticket documents.
// Values without a zone are taken as UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "None" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// StoredLayout is the form dates take in the relational store. Both SQLite's
// date() and Postgres' ::timestamp read it.
const (
	StoredLayout    = "2006-01-02 15:04:05"
	StoredDayLayout = "2006-01-02"
)

// CanonicalDate rewrites any accepted date layout into StoredLayout, or
// StoredDayLayout when there is no time of day. Values that do not parse,
// "unknown" included, become the sentinel.
func CanonicalDate(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return domain.Sentinel
	}
	t = t.UTC()
	if t.Equal(Day(t)) {
		return t.Format(StoredDayLayout)
	}
	return t.Format(StoredLayout)
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
