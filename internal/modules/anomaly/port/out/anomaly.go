package out

import (
	"context"
	"time"

	"calmtrace/internal/modules/anomaly/domain"
)

type EventStore interface {
	Insert(ctx context.Context, event domain.Event) (domain.Event, error)
	// ExistsDetectedAfter reports an event for userID with detected_at strictly after t.
	ExistsDetectedAfter(ctx context.Context, userID string, t time.Time) (bool, error)
	Get(ctx context.Context, eventID int64) (domain.Event, error)
	List(ctx context.Context, userID string, limit, offset int) ([]domain.Event, error)
	ListBetween(ctx context.Context, userID string, from, to time.Time) ([]domain.Event, error)
	CountBetween(ctx context.Context, userID string, from, to time.Time) (int, error)
	Delete(ctx context.Context, eventID int64) error
}
