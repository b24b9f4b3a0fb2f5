package domain

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Relation is an ordered collection of rows. Relations are treated as
// immutable: every pipeline stage returns a new one.
type Relation []Row

// Len returns the number of rows.
func (r Relation) Len() int { return len(r) }

// Empty reports whether the relation has no rows.
func (r Relation) Empty() bool { return len(r) == 0 }

// Columns returns the union of field names populated by any row, in
// order of first appearance. Universal fields are not included.
func (r Relation) Columns() []string {
	seen := make(map[string]bool)
	var cols []string
	for _, row := range r {
		for _, name := range row.fieldOrder() {
			if !seen[name] {
				seen[name] = true
				cols = append(cols, name)
			}
		}
	}
	return cols
}

// HasColumn reports whether any row carries the named field.
func (r Relation) HasColumn(name string) bool {
	for _, row := range r {
		if _, ok := row.Get(name); ok {
			return true
		}
	}
	return false
}

// Values returns the present values of a column in row order.
func (r Relation) Values(name string) []any {
	out := make([]any, 0, len(r))
	for _, row := range r {
		if v, ok := row.Get(name); ok {
			out = append(out, v)
		}
	}
	return out
}

// Filter returns the rows matching keep, preserving order.
func (r Relation) Filter(keep func(Row) bool) Relation {
	out := make(Relation, 0, len(r))
	for _, row := range r {
		if keep(row) {
			out = append(out, row)
		}
	}
	return out
}

// fieldOrder returns the row's field names in insertion order. Rows
// built without a RowBuilder fall back to sorted names.
func (row Row) fieldOrder() []string {
	if len(row.Fields) == 0 {
		return nil
	}
	if len(row.keys) > 0 {
		names := make([]string, 0, len(row.keys))
		for _, n := range row.keys {
			if _, present := row.Fields[n]; present {
				names = append(names, n)
			}
		}
		return names
	}
	names := make([]string, 0, len(row.Fields))
	for n := range row.Fields {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewRow starts a row with its universal fields.
func NewRow(event EventType, deviceID string, rawTimestamp, schemaVersion any) *RowBuilder {
	return &RowBuilder{row: Row{
		Event:         event,
		DeviceID:      deviceID,
		RawTimestamp:  rawTimestamp,
		SchemaVersion: schemaVersion,
	}}
}

// RowBuilder accumulates fields for a Row.
type RowBuilder struct {
	row Row
}

// Set records a field. Nil values are skipped: absence is the only
// representation of a missing value.
func (b *RowBuilder) Set(name string, value any) *RowBuilder {
	if value == nil {
		return b
	}
	if b.row.Fields == nil {
		b.row.Fields = make(map[string]any)
	}
	if _, exists := b.row.Fields[name]; !exists {
		b.row.keys = append(b.row.keys, name)
	}
	b.row.Fields[name] = value
	return b
}

// Row returns the built row.
func (b *RowBuilder) Row() Row {
	return b.row
}

var (
	ErrInvalidWindow = errors.New("invalid time window")
	ErrNoData        = errors.New("no event data")
)

const dayLayout = "2006-01-02"

// Window restricts ingestion to [Since, Until) in UTC. A zero bound is
// open.
type Window struct {
	Since time.Time
	Until time.Time
}

// ParseWindow parses calendar-day bounds. since is inclusive; until
// includes its whole day, so the effective upper bound is until+1 day
// exclusive. Empty strings leave the bound open.
func ParseWindow(since, until string) (Window, error) {
	var w Window
	if since != "" {
		t, err := time.ParseInLocation(dayLayout, since, time.UTC)
		if err != nil {
			return Window{}, fmt.Errorf("%w: since %q: expected YYYY-MM-DD", ErrInvalidWindow, since)
		}
		w.Since = t
	}
	if until != "" {
		t, err := time.ParseInLocation(dayLayout, until, time.UTC)
		if err != nil {
			return Window{}, fmt.Errorf("%w: until %q: expected YYYY-MM-DD", ErrInvalidWindow, until)
		}
		w.Until = t.AddDate(0, 0, 1)
	}
	if !w.Since.IsZero() && !w.Until.IsZero() && !w.Since.Before(w.Until) {
		return Window{}, fmt.Errorf("%w: since %s is after until %s", ErrInvalidWindow, since, until)
	}
	return w, nil
}

// Active reports whether either bound is set.
func (w Window) Active() bool {
	return !w.Since.IsZero() || !w.Until.IsZero()
}

// Contains reports whether a row falls inside the window. Rows without
// a valid timestamp never match an active window.
func (w Window) Contains(row Row) bool {
	if !w.Active() {
		return true
	}
	if !row.TimeValid {
		return false
	}
	if !w.Since.IsZero() && row.Time.Before(w.Since) {
		return false
	}
	if !w.Until.IsZero() && !row.Time.Before(w.Until) {
		return false
	}
	return true
}
