package in

import (
	"context"

	"calmtrace/internal/modules/anomaly/dto"
)

type Usecase interface {
	Evaluate(ctx context.Context, input dto.EvaluateInput) (dto.EvaluateOutput, error)
	List(ctx context.Context, input dto.ListInput) ([]dto.EventOutput, error)
	Get(ctx context.Context, userID string, eventID int64) (dto.EventOutput, error)
	ListBetween(ctx context.Context, input dto.RangeInput) ([]dto.EventOutput, error)
	CountBetween(ctx context.Context, input dto.RangeInput) (int, error)
	Delete(ctx context.Context, userID string, eventID int64) error
}
