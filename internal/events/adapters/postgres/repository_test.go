package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"telemetry-analytics-service/internal/events/core/domain"
)

// fakeResult implements sql.Result for tests.
type fakeResult struct {
	rowsAffected int64
}

func (f *fakeResult) LastInsertId() (int64, error) {
	return 0, errors.New("not implemented")
}

func (f *fakeResult) RowsAffected() (int64, error) {
	return f.rowsAffected, nil
}

// fakeRowScanner implements RowScanner over a list of payloads.
type fakeRowScanner struct {
	payloads [][]byte
	i        int
	err      error
	closed   bool
}

func (f *fakeRowScanner) Next() bool {
	return f.i < len(f.payloads)
}

func (f *fakeRowScanner) Scan(dest ...any) error {
	if len(dest) != 1 {
		return errors.New("dest length mismatch")
	}
	d, ok := dest[0].(*[]byte)
	if !ok {
		return errors.New("unsupported dest type")
	}
	*d = f.payloads[f.i]
	f.i++
	return nil
}

func (f *fakeRowScanner) Err() error {
	return f.err
}

func (f *fakeRowScanner) Close() error {
	f.closed = true
	return nil
}

// fakeDB implements DB interface for tests.
type fakeDB struct {
	ExecFn     func(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryFn    func(ctx context.Context, query string, args ...any) (RowScanner, error)
	lastQuery  string
	lastArgs   []any
	execCalled bool
}

func (f *fakeDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	f.execCalled = true
	f.lastQuery = query
	f.lastArgs = args
	if f.ExecFn != nil {
		return f.ExecFn(ctx, query, args...)
	}
	return &fakeResult{rowsAffected: 1}, nil
}

func (f *fakeDB) QueryContext(ctx context.Context, query string, args ...any) (RowScanner, error) {
	f.lastQuery = query
	f.lastArgs = args
	if f.QueryFn != nil {
		return f.QueryFn(ctx, query, args...)
	}
	return &fakeRowScanner{}, nil
}

func archived() *domain.ArchivedEvent {
	return &domain.ArchivedEvent{
		Event:     domain.EventCrash,
		DeviceID:  "dev_1",
		EventTime: time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC),
		Payload:   domain.RawEvent{"event": "crash", "device_id": "dev_1", "signal": json.Number("11")},
		DedupeKey: "dk",
	}
}

// ------------------------------------------------------------
// INSERT
// ------------------------------------------------------------

func TestEventRepository_InsertEvent_Created(t *testing.T) {
	db := &fakeDB{
		ExecFn: func(ctx context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, `INSERT INTO "telemetry_events"`) {
				t.Fatalf("unexpected query: %s", query)
			}
			return &fakeResult{rowsAffected: 1}, nil
		},
	}

	repo := NewEventRepository(db, "", nil)

	created, err := repo.InsertEvent(context.Background(), archived())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Fatalf("expected created=true, got false")
	}
	if len(db.lastArgs) != 5 {
		t.Fatalf("expected 5 args, got %d", len(db.lastArgs))
	}
	if db.lastArgs[0] != "crash" || db.lastArgs[1] != "dev_1" {
		t.Fatalf("unexpected args %v", db.lastArgs)
	}
	if string(db.lastArgs[3].([]byte)) != `{"device_id":"dev_1","event":"crash","signal":11}` {
		t.Fatalf("unexpected payload %s", db.lastArgs[3])
	}
}

func TestEventRepository_InsertEvent_NullTimeWhenUnparsed(t *testing.T) {
	db := &fakeDB{}
	repo := NewEventRepository(db, "", nil)

	e := archived()
	e.EventTime = time.Time{}
	if _, err := repo.InsertEvent(context.Background(), e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db.lastArgs[2] != nil {
		t.Fatalf("expected NULL event_time, got %v", db.lastArgs[2])
	}
}

func TestEventRepository_InsertEvent_Duplicate(t *testing.T) {
	db := &fakeDB{
		ExecFn: func(ctx context.Context, query string, args ...any) (sql.Result, error) {
			return &fakeResult{rowsAffected: 0}, nil
		},
	}

	repo := NewEventRepository(db, "", nil)

	created, err := repo.InsertEvent(context.Background(), archived())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Fatalf("expected created=false for duplicate")
	}
}

func TestEventRepository_InsertEvent_Error(t *testing.T) {
	db := &fakeDB{
		ExecFn: func(ctx context.Context, query string, args ...any) (sql.Result, error) {
			return nil, errors.New("db error")
		},
	}

	repo := NewEventRepository(db, "", nil)

	created, err := repo.InsertEvent(context.Background(), archived())
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if created {
		t.Fatalf("expected created=false on error")
	}
}

// ------------------------------------------------------------
// SCHEMA / TABLE NAME
// ------------------------------------------------------------

func TestEventRepository_EnsureSchema_QuotesTable(t *testing.T) {
	db := &fakeDB{}
	repo := NewEventRepository(db, `odd"name`, nil)

	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(db.lastQuery, `CREATE TABLE IF NOT EXISTS "odd""name"`) {
		t.Fatalf("expected quoted table name, got: %s", db.lastQuery)
	}
}

// ------------------------------------------------------------
// LOAD
// ------------------------------------------------------------

func TestEventRepository_LoadEvents(t *testing.T) {
	rows := &fakeRowScanner{payloads: [][]byte{
		[]byte(`{"event":"session","device_id":"a","uptime_sec":42}`),
		[]byte(`not json`),
		[]byte(`{"event":"crash","device_id":"b"}`),
	}}
	db := &fakeDB{
		QueryFn: func(ctx context.Context, query string, args ...any) (RowScanner, error) {
			if !strings.Contains(query, "ORDER BY id") {
				t.Fatalf("expected stable ordering, got: %s", query)
			}
			return rows, nil
		},
	}

	repo := NewEventRepository(db, "", nil)

	evs, err := repo.LoadEvents(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(evs) != 2 {
		t.Fatalf("expected 2 events, got %d", len(evs))
	}
	if evs[0].Type() != domain.EventSession || evs[1].DeviceID() != "b" {
		t.Fatalf("unexpected events %v", evs)
	}
	if evs[0]["uptime_sec"] != json.Number("42") {
		t.Fatalf("expected json.Number, got %T", evs[0]["uptime_sec"])
	}
	if !rows.closed {
		t.Fatalf("expected rows to be closed")
	}
}

func TestEventRepository_LoadEvents_Errors(t *testing.T) {
	db := &fakeDB{
		QueryFn: func(ctx context.Context, query string, args ...any) (RowScanner, error) {
			return nil, errors.New("connection refused")
		},
	}
	if _, err := NewEventRepository(db, "", nil).LoadEvents(context.Background()); err == nil {
		t.Fatalf("expected query error")
	}

	db = &fakeDB{
		QueryFn: func(ctx context.Context, query string, args ...any) (RowScanner, error) {
			return &fakeRowScanner{err: errors.New("iteration failed")}, nil
		},
	}
	if _, err := NewEventRepository(db, "", nil).LoadEvents(context.Background()); err == nil {
		t.Fatalf("expected rows error")
	}
}
