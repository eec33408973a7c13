package in

import (
	"context"

	"calmtrace/internal/modules/relief/dto"
)

type Usecase interface {
	Start(ctx context.Context, input dto.StartInput) (dto.SessionOutput, error)
	End(ctx context.Context, input dto.EndInput) (dto.SessionOutput, error)
	// OnNewSample resolves at most one session: the user's most recently
	// ended session still missing its after-stress reading.
	OnNewSample(ctx context.Context, input dto.SampleObservation) (dto.BackfillOutput, error)
	Get(ctx context.Context, userID, sessionID string) (dto.SessionOutput, error)
	List(ctx context.Context, input dto.ListInput) ([]dto.SessionOutput, error)
	Stats(ctx context.Context, userID string) (dto.StatsOutput, error)

	SaveIntervention(ctx context.Context, input dto.InterventionInput) (dto.InterventionOutput, error)
	GetIntervention(ctx context.Context, interventionID string) (dto.InterventionOutput, error)
	ListInterventions(ctx context.Context) ([]dto.InterventionOutput, error)
}
