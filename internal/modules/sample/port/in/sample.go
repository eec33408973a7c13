package in

import (
	"context"
	"time"

	"calmtrace/internal/modules/sample/dto"
)

// Query is the read side other modules resolve samples through. The bool
// result of the single-sample lookups is false when nothing matched.
type Query interface {
	LatestAtOrBefore(ctx context.Context, userID string, at time.Time) (dto.SampleOutput, bool, error)
	EarliestBetween(ctx context.Context, userID string, from, to time.Time) (dto.SampleOutput, bool, error)
	ListCalm(ctx context.Context, input dto.RangeInput, maxLevel int) ([]dto.SampleOutput, error)
	CountBetween(ctx context.Context, input dto.RangeInput) (int, error)
	ListRange(ctx context.Context, input dto.RangeInput) ([]dto.SampleOutput, error)
	FindByIDs(ctx context.Context, ids []int64) ([]dto.SampleOutput, error)
	ListUsers(ctx context.Context) ([]string, error)
}

type Usecase interface {
	Query
	Ingest(ctx context.Context, input dto.IngestInput) (dto.IngestOutput, error)
}
