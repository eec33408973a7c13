package out

import (
	"context"
	"time"

	"calmtrace/internal/modules/risk/domain"
)

type ScoreStore interface {
	// Upsert writes the score for (UserID, ScoreDate), overwriting an
	// existing row in place.
	Upsert(ctx context.Context, score domain.Score) (domain.Score, error)
	Get(ctx context.Context, userID, date string) (domain.Score, error)
	Exists(ctx context.Context, userID, date string) (bool, error)
	List(ctx context.Context, userID, from, to string) ([]domain.Score, error)
	Recent(ctx context.Context, userID string, limit int) ([]domain.Score, error)
}

// AnomalySource lists the sample ids of anomalies detected in [from, to).
type AnomalySource interface {
	SampleIDsBetween(ctx context.Context, userID string, from, to time.Time) ([]int64, error)
}

type SampleSource interface {
	StressIndexes(ctx context.Context, sampleIDs []int64) ([]*float64, error)
	CountBetween(ctx context.Context, userID string, from, to time.Time) (int, error)
	ListUsers(ctx context.Context) ([]string, error)
}
