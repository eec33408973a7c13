package out

import (
	"context"
	"time"

	"calmtrace/internal/modules/relief/domain"
)

type SessionStore interface {
	Insert(ctx context.Context, session domain.Session) error
	Get(ctx context.Context, sessionID string) (domain.Session, error)
	// MarkEnded fails with ErrSessionAlreadyEnded when ended_at is already set.
	MarkEnded(ctx context.Context, session domain.Session) error
	// LatestEndedUnresolved orders by (ended_at DESC, id DESC).
	LatestEndedUnresolved(ctx context.Context, userID string) (domain.Session, bool, error)
	// ResolveAfter sets after_stress only while it is still NULL.
	ResolveAfter(ctx context.Context, sessionID string, afterStress float64) (bool, error)
	List(ctx context.Context, userID string, from, to time.Time) ([]domain.Session, error)
	StatsByIntervention(ctx context.Context, userID string) ([]domain.InterventionStat, error)
}

type InterventionStore interface {
	Save(ctx context.Context, intervention domain.Intervention) error
	Get(ctx context.Context, interventionID string) (domain.Intervention, error)
	List(ctx context.Context) ([]domain.Intervention, error)
}

// SampleReader resolves readings around session boundaries.
type SampleReader interface {
	LatestAtOrBefore(ctx context.Context, userID string, at time.Time) (domain.Reading, bool, error)
	EarliestBetween(ctx context.Context, userID string, from, to time.Time) (domain.Reading, bool, error)
}
