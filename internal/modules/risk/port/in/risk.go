package in

import (
	"context"

	"calmtrace/internal/modules/risk/dto"
)

type Usecase interface {
	ComputeDay(ctx context.Context, input dto.ComputeInput) (dto.ScoreOutput, error)
	// ComputeMissing scores date without a diary for every user that has no
	// row for it yet.
	ComputeMissing(ctx context.Context, date string) (dto.MissingOutput, error)
	Get(ctx context.Context, userID, date string) (dto.ScoreOutput, error)
	// List returns scores with From <= date <= To, oldest first.
	List(ctx context.Context, input dto.ListInput) ([]dto.ScoreOutput, error)
	// Recent returns up to the last 30 scores, newest first.
	Recent(ctx context.Context, userID string) ([]dto.ScoreOutput, error)
}
