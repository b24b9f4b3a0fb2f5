package usecase

import (
	"context"

	events "telemetry-analytics-service/internal/events/core/domain"
	"telemetry-analytics-service/internal/metrics/core/domain"
	"telemetry-analytics-service/internal/metrics/core/ports"
)

var (
	ErrInvalidWindow = events.ErrInvalidWindow
	ErrNoData        = events.ErrNoData
)

type GetReportInput struct {
	Since string // YYYY-MM-DD, inclusive
	Until string // YYYY-MM-DD, inclusive of the whole day
}

type GetReportUseCase struct {
	source    ports.RelationSourcePort
	assembler *Assembler
}

func NewGetReportUseCase(source ports.RelationSourcePort, assembler *Assembler) *GetReportUseCase {
	if assembler == nil {
		assembler = NewAssembler(nil, nil)
	}
	return &GetReportUseCase{source: source, assembler: assembler}
}

// Execute validates the window, loads the filtered relation and
// assembles the report. An empty relation is ErrNoData.
func (uc *GetReportUseCase) Execute(ctx context.Context, in GetReportInput) (*domain.Report, error) {

	w, err := events.ParseWindow(in.Since, in.Until)
	if err != nil {
		return nil, err
	}

	all, err := uc.source.LoadRelation(ctx, w)
	if err != nil {
		return nil, err
	}

	if all.Empty() {
		return nil, ErrNoData
	}

	return uc.assembler.Assemble(ctx, Split(all)), nil
}
