package domain

import "time"

// RawEvent is one telemetry record as emitted by a device: an untyped
// JSON object carrying at least event, device_id, timestamp and
// schema_version next to its type-specific payload.
type RawEvent map[string]any

// EventType is the value of a raw event's "event" tag.
type EventType string

const (
	EventSession             EventType = "session"
	EventPrintOutcome        EventType = "print_outcome"
	EventCrash               EventType = "crash"
	EventUpdateFailed        EventType = "update_failed"
	EventUpdateSuccess       EventType = "update_success"
	EventMemorySnapshot      EventType = "memory_snapshot"
	EventHardwareProfile     EventType = "hardware_profile"
	EventSettingsSnapshot    EventType = "settings_snapshot"
	EventPanelUsage          EventType = "panel_usage"
	EventConnectionStability EventType = "connection_stability"
	EventPrintStartContext   EventType = "print_start_context"
	EventErrorEncountered    EventType = "error_encountered"
)

// Universal field names present on every normalized row.
const (
	FieldEvent         = "event"
	FieldDeviceID      = "device_id"
	FieldTimestamp     = "timestamp"
	FieldSchemaVersion = "schema_version"
)

// EventTypes lists the recognized types in report order.
var EventTypes = []EventType{
	EventSession,
	EventPrintOutcome,
	EventCrash,
	EventUpdateFailed,
	EventUpdateSuccess,
	EventMemorySnapshot,
	EventHardwareProfile,
	EventSettingsSnapshot,
	EventPanelUsage,
	EventConnectionStability,
	EventPrintStartContext,
	EventErrorEncountered,
}

// Recognized reports whether t has an extraction schema.
func (t EventType) Recognized() bool {
	_, ok := schemas[t]
	return ok
}

// Type returns the event tag, or "" when it is missing or not a string.
func (e RawEvent) Type() EventType {
	s, _ := e[FieldEvent].(string)
	return EventType(s)
}

// DeviceID returns the device identifier, or "" when missing.
func (e RawEvent) DeviceID() string {
	s, _ := e[FieldDeviceID].(string)
	return s
}

// Row is one flattened event. Only fields the event type's schema
// allows are present in Fields; absence means "not reported", never zero.
type Row struct {
	Event         EventType
	DeviceID      string
	RawTimestamp  any
	SchemaVersion any

	// Time is the parsed timestamp in UTC. TimeValid is false when the
	// raw timestamp was missing or malformed.
	Time      time.Time
	TimeValid bool

	Fields map[string]any
	keys   []string
}

// Get looks up a field by name, including the universal fields.
func (r Row) Get(name string) (any, bool) {
	switch name {
	case FieldEvent:
		return string(r.Event), r.Event != ""
	case FieldDeviceID:
		return r.DeviceID, r.DeviceID != ""
	case FieldTimestamp:
		if r.TimeValid {
			return r.Time, true
		}
		return nil, false
	case FieldSchemaVersion:
		return r.SchemaVersion, r.SchemaVersion != nil
	}
	v, ok := r.Fields[name]
	return v, ok
}

// With returns a copy of r carrying name=value. A nil value removes the field.
func (r Row) With(name string, value any) Row {
	fields := make(map[string]any, len(r.Fields)+1)
	for k, v := range r.Fields {
		fields[k] = v
	}
	keys := append([]string(nil), r.keys...)
	if value == nil {
		delete(fields, name)
	} else {
		if _, exists := fields[name]; !exists && len(keys) > 0 {
			keys = append(keys, name)
		}
		fields[name] = value
	}
	r.Fields = fields
	r.keys = keys
	return r
}

// ArchivedEvent is a raw event prepared for the archive table.
type ArchivedEvent struct {
	Event     EventType
	DeviceID  string
	EventTime time.Time // zero when the raw timestamp does not parse
	Payload   RawEvent
	DedupeKey string
}
