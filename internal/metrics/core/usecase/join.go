package usecase

import (
	events "telemetry-analytics-service/internal/events/core/domain"
)

// SessionIndex maps device id to the first non-null value of one
// session field, in session relation order.
type SessionIndex map[string]any

// IndexSessionField builds the device lookup for field once so joins
// stay linear in the size of the target relation.
func IndexSessionField(sessions events.Relation, field string) SessionIndex {
	idx := make(SessionIndex)
	for _, row := range sessions {
		if row.DeviceID == "" {
			continue
		}
		if _, seen := idx[row.DeviceID]; seen {
			continue
		}
		if v, ok := row.Get(field); ok {
			idx[row.DeviceID] = v
		}
	}
	return idx
}

// Lookup returns the indexed value for a device.
func (idx SessionIndex) Lookup(deviceID string) (any, bool) {
	v, ok := idx[deviceID]
	return v, ok
}

// JoinSessionField returns a copy of target where every row carries
// field taken from its device's first session reporting it. Rows whose
// device has no such session end up without the field.
func JoinSessionField(target, sessions events.Relation, field string) events.Relation {
	idx := IndexSessionField(sessions, field)
	out := make(events.Relation, len(target))
	for i, row := range target {
		v, _ := idx.Lookup(row.DeviceID)
		out[i] = row.With(field, v)
	}
	return out
}
