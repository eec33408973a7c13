package out

import (
	"context"
	"time"

	"calmtrace/internal/modules/sample/domain"
)

type SampleStore interface {
	Append(ctx context.Context, sample domain.Sample) (domain.Sample, error)
	// LatestAtOrBefore orders by (measured_at DESC, id DESC).
	LatestAtOrBefore(ctx context.Context, userID string, at time.Time) (domain.Sample, bool, error)
	// EarliestBetween is inclusive on both ends and orders by (measured_at ASC, id ASC).
	EarliestBetween(ctx context.Context, userID string, from, to time.Time) (domain.Sample, bool, error)
	ListCalm(ctx context.Context, userID string, from, to time.Time, maxLevel int) ([]domain.Sample, error)
	CountBetween(ctx context.Context, userID string, from, to time.Time) (int, error)
	ListRange(ctx context.Context, userID string, from, to time.Time) ([]domain.Sample, error)
	FindByIDs(ctx context.Context, ids []int64) ([]domain.Sample, error)
	ListUsers(ctx context.Context) ([]string, error)
}

// Observer is notified once per stored sample, in per-user arrival order.
type Observer interface {
	Name() string
	Observe(ctx context.Context, sample domain.Sample) (domain.Effect, error)
}
