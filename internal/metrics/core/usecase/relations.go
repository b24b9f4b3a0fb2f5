package usecase

import (
	events "telemetry-analytics-service/internal/events/core/domain"
)

// Relations is the unified relation split by event type.
type Relations struct {
	All          events.Relation
	Unrecognized int

	byType map[events.EventType]events.Relation
}

// Split partitions the unified relation by event tag, preserving row
// order. Rows with an unrecognized tag are only counted.
func Split(all events.Relation) Relations {
	rels := Relations{
		All:    all,
		byType: make(map[events.EventType]events.Relation, len(events.EventTypes)),
	}
	for _, row := range all {
		if !row.Event.Recognized() {
			rels.Unrecognized++
			continue
		}
		rels.byType[row.Event] = append(rels.byType[row.Event], row)
	}
	return rels
}

// Of returns the relation for t, empty when no row carried that tag.
func (r Relations) Of(t events.EventType) events.Relation {
	return r.byType[t]
}

func (r Relations) Sessions() events.Relation { return r.Of(events.EventSession) }
