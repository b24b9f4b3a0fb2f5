package fiber

import "encoding/json"

// CreateEventRequest documents the shape of a raw telemetry event. The
// handler accepts any JSON object; fields beyond these are archived as is.
// @Description Raw telemetry event
type CreateEventRequest struct {
	Event         string `json:"event" example:"print_outcome"`
	DeviceID      string `json:"device_id" example:"a1b2c3"`
	Timestamp     string `json:"timestamp" example:"2026-02-10T08:00:00Z"`
	SchemaVersion int    `json:"schema_version" example:"1"`
}

type CreateEventResponse struct {
	Status  string `json:"status" example:"created"`
	Message string `json:"message,omitempty"`
}

// BulkCreateEventsRequest wraps a list of raw events. A bare JSON array
// is accepted as well.
type BulkCreateEventsRequest struct {
	Events []json.RawMessage `json:"events" swaggertype:"array,object"`
}

type BulkCreateEventsResponse struct {
	Created    int `json:"created" example:"2"`
	Duplicates int `json:"duplicates" example:"0"`
}

type ErrorResponse struct {
	Error   string `json:"error" example:"invalid_event"`
	Message string `json:"message" example:"Event payload is invalid"`
}
