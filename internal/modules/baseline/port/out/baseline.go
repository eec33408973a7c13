package out

import (
	"context"
	"time"

	"calmtrace/internal/modules/baseline/domain"
)

type BaselineStore interface {
	NextVersion(ctx context.Context, userID string) (int, error)
	Insert(ctx context.Context, baseline domain.Baseline) (domain.Baseline, error)
	DeactivateAll(ctx context.Context, userID string, at time.Time) error
	SetActive(ctx context.Context, userID string, version int, at time.Time) error
	FindActive(ctx context.Context, userID string) (domain.Baseline, bool, error)
	FindByVersion(ctx context.Context, userID string, version int) (domain.Baseline, error)
	List(ctx context.Context, userID string) ([]domain.Baseline, error)
	Delete(ctx context.Context, userID string, version int) error
}

// CalmSampleReader lists calm readings in (measuredAt, id) order.
type CalmSampleReader interface {
	ListCalm(ctx context.Context, userID string, from, to time.Time) ([]domain.CalmReading, error)
}
