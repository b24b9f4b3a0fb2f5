package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"telemetry-analytics-service/internal/events/core/domain"
	"telemetry-analytics-service/internal/events/core/ports"

	"github.com/lib/pq"
)

const DefaultTable = "telemetry_events"

// EventRepository archives raw events in a single jsonb table and reads
// them back as an event source for the analyzer.
type EventRepository struct {
	db     DB
	table  string
	logger *slog.Logger
}

func NewEventRepository(db DB, table string, logger *slog.Logger) *EventRepository {
	if table == "" {
		table = DefaultTable
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EventRepository{db: db, table: pq.QuoteIdentifier(table), logger: logger}
}

var (
	_ ports.EventRepositoryPort = (*EventRepository)(nil)
	_ ports.EventSourcePort     = (*EventRepository)(nil)
)

// SQL templates, %s is the quoted table name
const (
	createTableSQL = `
CREATE TABLE IF NOT EXISTS %s (
    id          BIGSERIAL PRIMARY KEY,
    event       TEXT        NOT NULL,
    device_id   TEXT        NOT NULL,
    event_time  TIMESTAMPTZ NULL,
    payload     JSONB       NOT NULL,
    dedupe_key  TEXT        NOT NULL UNIQUE,
    received_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

	insertEventSQL = `
INSERT INTO %s (
    event,
    device_id,
    event_time,
    payload,
    dedupe_key
) VALUES (
    $1, $2, $3, $4, $5
)
ON CONFLICT (dedupe_key) DO NOTHING;
`

	selectPayloadsSQL = `
SELECT payload
FROM %s
ORDER BY id;
`
)

// EnsureSchema creates the archive table when it does not exist yet.
func (r *EventRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(createTableSQL, r.table))
	return err
}

func (r *EventRepository) InsertEvent(ctx context.Context, e *domain.ArchivedEvent) (bool, error) {

	var eventTime any
	if !e.EventTime.IsZero() {
		eventTime = e.EventTime.UTC()
	}

	payloadJSON, err := json.Marshal(e.Payload)
	if err != nil {
		return false, err
	}

	res, err := r.db.ExecContext(ctx, fmt.Sprintf(insertEventSQL, r.table),
		string(e.Event),
		e.DeviceID,
		eventTime,
		payloadJSON,
		e.DedupeKey,
	)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	// rows == 1  -> new record
	// rows == 0  -> duplicate (ON CONFLICT DO NOTHING)
	return rows > 0, nil
}

// LoadEvents returns every archived payload in insertion order. Rows
// whose payload does not decode to an object are skipped.
func (r *EventRepository) LoadEvents(ctx context.Context) ([]domain.RawEvent, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(selectPayloadsSQL, r.table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		out     []domain.RawEvent
		skipped int
	)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		evs, err := domain.DecodeRawEvents(payload)
		if err != nil || len(evs) != 1 {
			skipped++
			continue
		}
		out = append(out, evs[0])
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if skipped > 0 {
		r.logger.WarnContext(ctx, "skipped undecodable archived events", "table", r.table, "skipped", skipped)
	}
	r.logger.InfoContext(ctx, "loaded archived events", "table", r.table, "events", len(out))
	return out, nil
}
