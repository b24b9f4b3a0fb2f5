package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"telemetry-analytics-service/internal/clock"
	"telemetry-analytics-service/internal/events/core/domain"
	"telemetry-analytics-service/internal/events/core/ports"
)

var (
	ErrInvalidEvent = errors.New("invalid event")
	ErrFutureTime   = errors.New("timestamp cannot be in the future")
)

// maxClockSkew is how far ahead of the server a device timestamp may be.
const maxClockSkew = time.Hour

// StoreEventUseCase archives raw telemetry events as they arrive from
// devices. Stored events are read back later by the postgres event
// source; nothing here computes metrics.
type StoreEventUseCase struct {
	repo  ports.EventRepositoryPort
	clock clock.Clock
}

func NewStoreEventUseCase(repo ports.EventRepositoryPort, clk clock.Clock) *StoreEventUseCase {
	if clk == nil {
		clk = clock.Real()
	}
	return &StoreEventUseCase{repo: repo, clock: clk}
}

type StoreEventInput struct {
	Event domain.RawEvent
}

func (uc *StoreEventUseCase) Execute(ctx context.Context, in StoreEventInput) (bool, error) {

	if err := uc.validateInput(in); err != nil {
		return false, err
	}

	eventTime, _ := domain.ParseTimestamp(in.Event[domain.FieldTimestamp])

	dedupeKey, err := buildDedupeKey(in.Event)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	e := &domain.ArchivedEvent{
		Event:     in.Event.Type(),
		DeviceID:  in.Event.DeviceID(),
		EventTime: eventTime,
		Payload:   in.Event,
		DedupeKey: dedupeKey,
	}

	created, err := uc.repo.InsertEvent(ctx, e)
	if err != nil {
		return false, err
	}

	return created, nil
}

func buildDedupeKey(ev domain.RawEvent) (string, error) {
	// event + device_id + raw timestamp + payload digest
	payload, err := json.Marshal(ev)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	ts, _ := ev[domain.FieldTimestamp].(string)
	return fmt.Sprintf("%s|%s|%s|%s",
		ev.Type(),
		ev.DeviceID(),
		ts,
		hex.EncodeToString(sum[:8]),
	), nil
}

type BulkCreateEventsInput struct {
	Events []StoreEventInput
}

type BulkCreateEventsResult struct {
	Created    int
	Duplicates int
}

func (uc *StoreEventUseCase) BulkCreateEvents(ctx context.Context, in BulkCreateEventsInput) (BulkCreateEventsResult, error) {
	var res BulkCreateEventsResult

	for i, ev := range in.Events {
		if err := uc.validateInput(ev); err != nil {
			return res, fmt.Errorf("event %d: %w", i, err)
		}
	}

	for _, ev := range in.Events {
		ok, err := uc.Execute(ctx, ev)
		if err != nil {
			return res, err
		}

		if ok {
			res.Created++
		} else {
			res.Duplicates++
		}
	}

	return res, nil
}

func (uc *StoreEventUseCase) validateInput(in StoreEventInput) error {

	if in.Event == nil || in.Event.Type() == "" || in.Event.DeviceID() == "" {
		return ErrInvalidEvent
	}

	if t, ok := domain.ParseTimestamp(in.Event[domain.FieldTimestamp]); ok {
		if t.After(uc.clock.Now().Add(maxClockSkew)) {
			return ErrFutureTime
		}
	}

	return nil
}
