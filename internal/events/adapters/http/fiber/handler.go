package fiber

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"telemetry-analytics-service/internal/events/core/domain"
	"telemetry-analytics-service/internal/events/core/usecase"

	"github.com/gofiber/fiber/v2"
)

type StoreEventUseCase interface {
	Execute(ctx context.Context, in usecase.StoreEventInput) (bool, error)
	BulkCreateEvents(ctx context.Context, in usecase.BulkCreateEventsInput) (usecase.BulkCreateEventsResult, error)
}

type EventHandler struct {
	storeUC StoreEventUseCase
}

func NewEventHandler(storeUC StoreEventUseCase) *EventHandler {
	return &EventHandler{storeUC: storeUC}
}

// CreateEvent godoc
// @Summary Archive a raw telemetry event
// @Description Stores a single device event with idempotency handling
// @Tags Events
// @Accept json
// @Produce json
// @Param request body CreateEventRequest true "Raw event"
// @Success 201 {object} CreateEventResponse
// @Success 200 {object} CreateEventResponse "Duplicate event"
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /events [post]
func (h *EventHandler) CreateEvent(c *fiber.Ctx) error {
	evs, err := domain.DecodeRawEvents(c.Body())
	if err != nil || len(evs) != 1 || bytes.HasPrefix(bytes.TrimSpace(c.Body()), []byte("[")) {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_json",
			Message: "body must be a single JSON object",
		})
	}

	created, err := h.storeUC.Execute(c.UserContext(), usecase.StoreEventInput{Event: evs[0]})
	if err != nil {
		return writeStoreError(c, err)
	}

	if !created {
		resp := CreateEventResponse{
			Status: "duplicate",
		}
		return c.Status(http.StatusOK).JSON(resp)
	}

	resp := CreateEventResponse{
		Status: "created",
	}
	return c.Status(http.StatusCreated).JSON(resp)
}

// BulkCreateEvents godoc
// @Summary Bulk archive raw telemetry events
// @Description Accepts {"events": [...]} or a bare array and stores each event individually
// @Tags Events
// @Accept json
// @Produce json
// @Param request body BulkCreateEventsRequest true "Bulk event payload"
// @Success 201 {object} BulkCreateEventsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /events/bulk [post]
func (h *EventHandler) BulkCreateEvents(c *fiber.Ctx) error {
	evs, err := decodeBulk(c.Body())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_json",
			Message: err.Error(),
		})
	}

	if len(evs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "events_list_required",
		})
	}

	inputs := make([]usecase.StoreEventInput, len(evs))
	for i, ev := range evs {
		inputs[i] = usecase.StoreEventInput{Event: ev}
	}

	result, err := h.storeUC.BulkCreateEvents(
		c.UserContext(),
		usecase.BulkCreateEventsInput{Events: inputs},
	)
	if err != nil {
		return writeStoreError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(BulkCreateEventsResponse{
		Created:    result.Created,
		Duplicates: result.Duplicates,
	})
}

// decodeBulk unwraps {"events": [...]} before decoding the list.
func decodeBulk(body []byte) ([]domain.RawEvent, error) {
	trimmed := bytes.TrimSpace(body)
	if bytes.HasPrefix(trimmed, []byte("{")) {
		var req BulkCreateEventsRequest
		if err := json.Unmarshal(trimmed, &req); err != nil {
			return nil, err
		}
		if req.Events == nil {
			return nil, nil
		}
		list, err := json.Marshal(req.Events)
		if err != nil {
			return nil, err
		}
		trimmed = list
	}
	return domain.DecodeRawEvents(trimmed)
}

func writeStoreError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, usecase.ErrInvalidEvent),
		errors.Is(err, usecase.ErrFutureTime):
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_event",
			Message: err.Error(),
		})
	default:
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Error: "internal_server_error",
		})
	}
}
