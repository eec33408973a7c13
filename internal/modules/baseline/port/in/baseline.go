package in

import (
	"context"

	"calmtrace/internal/modules/baseline/dto"
)

type Usecase interface {
	Calculate(ctx context.Context, input dto.CalculateInput) (dto.BaselineOutput, error)
	Update(ctx context.Context, input dto.CalculateInput) (dto.BaselineOutput, error)
	GetActive(ctx context.Context, userID string) (dto.BaselineOutput, error)
	GetByVersion(ctx context.Context, userID string, version int) (dto.BaselineOutput, error)
	History(ctx context.Context, userID string) ([]dto.BaselineOutput, error)
	Activate(ctx context.Context, userID string, version int) (dto.BaselineOutput, error)
	Delete(ctx context.Context, userID string, version int) error
	Assess(ctx context.Context, input dto.AssessInput) (dto.AssessOutput, error)
	// Classify falls back to fixed bands when the user has no active baseline.
	Classify(ctx context.Context, userID string, stressIndex float64) (dto.AssessOutput, error)
}
