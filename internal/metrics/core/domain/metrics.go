package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Metrics is one report section: metric name to value. Values are
// ints, float64s, nil, nested *Ordered maps or GroupRate.
type Metrics = Ordered[any]

const noteKey = "note"

// Note builds the placeholder section used when a calculator has no data.
func Note(msg string) *Metrics {
	m := NewOrdered[any]()
	m.Set(noteKey, msg)
	return m
}

// NoteOf returns the note of a placeholder section.
func NoteOf(m *Metrics) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.Get(noteKey)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GroupRate is the per-group success statistic.
type GroupRate struct {
	Rate  float64 `json:"rate"`
	Total int     `json:"total"`
}

// Section keys in report order.
const (
	SectionAdoption   = "adoption"
	SectionPrint      = "print_reliability"
	SectionCrash      = "crash_analysis"
	SectionUpdate     = "update_analysis"
	SectionMemory     = "memory_analysis"
	SectionHardware   = "hardware_analysis"
	SectionSettings   = "settings_analysis"
	SectionPanelUsage = "panel_usage_analysis"
	SectionConnection = "connection_analysis"
	SectionPrintStart = "print_start_analysis"
	SectionErrors     = "error_analysis"
)

const (
	fieldGeneratedAt    = "generated_at"
	fieldEventCounts    = "event_counts"
	generatedAtLayout   = time.RFC3339Nano
	sectionUnknownTitle = "OTHER"
)

var sectionTitles = map[string]string{
	SectionAdoption:   "ADOPTION METRICS",
	SectionPrint:      "PRINT RELIABILITY",
	SectionCrash:      "CRASH ANALYSIS",
	SectionUpdate:     "UPDATE ANALYSIS",
	SectionMemory:     "MEMORY ANALYSIS",
	SectionHardware:   "HARDWARE ANALYSIS",
	SectionSettings:   "SETTINGS ANALYSIS",
	SectionPanelUsage: "PANEL USAGE",
	SectionConnection: "CONNECTION STABILITY",
	SectionPrintStart: "PRINT START CONTEXT",
	SectionErrors:     "ERROR ANALYSIS",
}

// SectionTitle returns the human heading for a section key.
func SectionTitle(key string) string {
	if t, ok := sectionTitles[key]; ok {
		return t
	}
	return sectionUnknownTitle
}

type Section struct {
	Key     string
	Title   string
	Metrics *Metrics
}

// Report is the aggregate analytics result of one run.
type Report struct {
	GeneratedAt time.Time
	EventCounts *Ordered[int]
	Sections    []Section
}

// Section looks up a section by key.
func (r *Report) Section(key string) (Section, bool) {
	for _, s := range r.Sections {
		if s.Key == key {
			return s, true
		}
	}
	return Section{}, false
}

func (r *Report) tree() *Ordered[any] {
	top := NewOrdered[any]()
	top.Set(fieldGeneratedAt, r.GeneratedAt.UTC().Format(generatedAtLayout))
	counts := r.EventCounts
	if counts == nil {
		counts = NewOrdered[int]()
	}
	top.Set(fieldEventCounts, counts)
	for _, s := range r.Sections {
		top.Set(s.Key, s.Metrics)
	}
	return top
}

func (r *Report) MarshalJSON() ([]byte, error) {
	return r.tree().MarshalJSON()
}

func (r *Report) UnmarshalJSON(data []byte) error {
	var top Ordered[any]
	if err := top.UnmarshalJSON(data); err != nil {
		return err
	}

	*r = Report{EventCounts: NewOrdered[int]()}
	for _, key := range top.Keys() {
		v, _ := top.Get(key)
		switch key {
		case fieldGeneratedAt:
			s, _ := v.(string)
			t, err := time.Parse(generatedAtLayout, s)
			if err != nil {
				return fmt.Errorf("generated_at: %w", err)
			}
			r.GeneratedAt = t
		case fieldEventCounts:
			if err := decodeCounts(v, r.EventCounts); err != nil {
				return err
			}
		default:
			m, ok := v.(*Metrics)
			if !ok {
				return fmt.Errorf("section %q: expected object", key)
			}
			r.Sections = append(r.Sections, Section{Key: key, Title: SectionTitle(key), Metrics: m})
		}
	}
	return nil
}

func decodeCounts(v any, into *Ordered[int]) error {
	m, ok := v.(*Ordered[any])
	if !ok {
		return fmt.Errorf("event_counts: expected object")
	}
	var err error
	m.Each(func(k string, raw any) {
		f, isNum := raw.(float64)
		if !isNum {
			if err == nil {
				err = fmt.Errorf("event_counts.%s: expected number", k)
			}
			return
		}
		into.Set(k, int(f))
	})
	return err
}

// JSON renders the report as indented JSON.
func (r *Report) JSON() ([]byte, error) {
	raw, err := r.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out json.RawMessage = raw
	return json.MarshalIndent(out, "", "  ")
}
