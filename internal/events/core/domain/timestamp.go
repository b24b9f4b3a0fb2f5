package domain

import (
	"strings"
	"time"
)

// timestampLayouts are tried in order. Layouts without a zone are read
// as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	dayLayout,
}

// ParseTimestamp converts an ISO-8601 timestamp into a UTC instant.
// Anything that is not a parseable string yields ok=false.
func ParseTimestamp(v any) (t time.Time, ok bool) {
	s, isString := v.(string)
	if !isString {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		parsed, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}
