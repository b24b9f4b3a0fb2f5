package ports

import (
	"context"

	events "telemetry-analytics-service/internal/events/core/domain"
)

// RelationSourcePort yields the unified, window-filtered relation the
// calculators run on.
type RelationSourcePort interface {
	LoadRelation(ctx context.Context, w events.Window) (events.Relation, error)
}
