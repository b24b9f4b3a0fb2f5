package usecase

import (
	"telemetry-analytics-service/internal/events/core/domain"
)

// Normalize flattens one raw event into a row using the schema of its
// event type. Fields outside the schema are dropped, nested sections
// become "section.key" fields and list fields pass through untouched,
// defaulting to an empty list when the key is missing.
// Unknown event types keep only the universal fields. Normalize never
// fails: a missing or mistyped field is simply absent from the row.
func Normalize(ev domain.RawEvent) domain.Row {
	t := ev.Type()
	b := domain.NewRow(t, ev.DeviceID(), ev[domain.FieldTimestamp], ev[domain.FieldSchemaVersion])

	schema, ok := domain.SchemaFor(t)
	if !ok {
		return b.Row()
	}

	for _, name := range schema.Fields {
		b.Set(name, ev[name])
	}

	for _, section := range schema.Sections {
		sub, ok := ev[section].(map[string]any)
		if !ok {
			continue
		}
		for _, key := range sortedKeys(sub) {
			b.Set(section+"."+key, sub[key])
		}
	}

	// An absent list field is an empty list; an explicit null stays absent.
	for _, name := range schema.Lists {
		v, present := ev[name]
		if !present {
			v = []any{}
		}
		b.Set(name, v)
	}

	return b.Row()
}
