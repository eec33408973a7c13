package usecase

import (
	"context"
	"time"

	"calmtrace/internal/modules/sample/domain"
	sampledto "calmtrace/internal/modules/sample/dto"
	samplein "calmtrace/internal/modules/sample/port/in"
	sampleout "calmtrace/internal/modules/sample/port/out"
)

type QueryInteractor struct {
	store sampleout.SampleStore
}

// NewQueryInteractor exposes the read side alone so modules that observe
// ingestion can depend on it without a construction cycle.
func NewQueryInteractor(store sampleout.SampleStore) *QueryInteractor {
	return &QueryInteractor{store: store}
}

var _ samplein.Query = (*QueryInteractor)(nil)

func (q *QueryInteractor) LatestAtOrBefore(ctx context.Context, userID string, at time.Time) (sampledto.SampleOutput, bool, error) {
	s, ok, err := q.store.LatestAtOrBefore(ctx, userID, at.UTC())
	if err != nil || !ok {
		return sampledto.SampleOutput{}, false, err
	}
	return toOutput(s), true, nil
}

func (q *QueryInteractor) EarliestBetween(ctx context.Context, userID string, from, to time.Time) (sampledto.SampleOutput, bool, error) {
	s, ok, err := q.store.EarliestBetween(ctx, userID, from.UTC(), to.UTC())
	if err != nil || !ok {
		return sampledto.SampleOutput{}, false, err
	}
	return toOutput(s), true, nil
}

func (q *QueryInteractor) ListCalm(ctx context.Context, input sampledto.RangeInput, maxLevel int) ([]sampledto.SampleOutput, error) {
	if maxLevel <= 0 {
		maxLevel = domain.CalmMaxLevel
	}
	samples, err := q.store.ListCalm(ctx, input.UserID, input.From.UTC(), input.To.UTC(), maxLevel)
	if err != nil {
		return nil, err
	}
	return toOutputs(samples), nil
}

func (q *QueryInteractor) CountBetween(ctx context.Context, input sampledto.RangeInput) (int, error) {
	return q.store.CountBetween(ctx, input.UserID, input.From.UTC(), input.To.UTC())
}

func (q *QueryInteractor) ListRange(ctx context.Context, input sampledto.RangeInput) ([]sampledto.SampleOutput, error) {
	samples, err := q.store.ListRange(ctx, input.UserID, input.From.UTC(), input.To.UTC())
	if err != nil {
		return nil, err
	}
	return toOutputs(samples), nil
}

func (q *QueryInteractor) FindByIDs(ctx context.Context, ids []int64) ([]sampledto.SampleOutput, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	samples, err := q.store.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return toOutputs(samples), nil
}

func (q *QueryInteractor) ListUsers(ctx context.Context) ([]string, error) {
	return q.store.ListUsers(ctx)
}

func toDomain(in sampledto.SampleInput) domain.Sample {
	return domain.Sample{
		UserID:            in.UserID,
		MeasuredAt:        in.MeasuredAt,
		HeartRate:         in.HeartRate,
		HRVSDNN:           in.HRVSDNN,
		HRVRMSSD:          in.HRVRMSSD,
		ObjectTemp:        in.ObjectTemp,
		AmbientTemp:       in.AmbientTemp,
		AccelX:            in.AccelX,
		AccelY:            in.AccelY,
		AccelZ:            in.AccelZ,
		MovementIntensity: in.MovementIntensity,
		StressIndex:       in.StressIndex,
		StressLevel:       in.StressLevel,
		IsAnomaly:         in.IsAnomaly,
		TotalSteps:        in.TotalSteps,
		StepsPerMinute:    in.StepsPerMinute,
		ActivityState:     in.ActivityState,
	}
}

func toOutput(s domain.Sample) sampledto.SampleOutput {
	return sampledto.SampleOutput{
		ID:                s.ID,
		UserID:            s.UserID,
		MeasuredAt:        s.MeasuredAt,
		HeartRate:         s.HeartRate,
		HRVSDNN:           s.HRVSDNN,
		HRVRMSSD:          s.HRVRMSSD,
		ObjectTemp:        s.ObjectTemp,
		AmbientTemp:       s.AmbientTemp,
		AccelX:            s.AccelX,
		AccelY:            s.AccelY,
		AccelZ:            s.AccelZ,
		MovementIntensity: s.MovementIntensity,
		StressIndex:       s.StressIndex,
		StressLevel:       s.StressLevel,
		IsAnomaly:         s.IsAnomaly,
		TotalSteps:        s.TotalSteps,
		StepsPerMinute:    s.StepsPerMinute,
		ActivityState:     s.ActivityState,
		CreatedAt:         s.CreatedAt,
	}
}

func toOutputs(samples []domain.Sample) []sampledto.SampleOutput {
	out := make([]sampledto.SampleOutput, 0, len(samples))
	for _, s := range samples {
		out = append(out, toOutput(s))
	}
	return out
}
