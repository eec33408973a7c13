package out

import (
	"context"

	reliefdto "calmtrace/internal/modules/relief/dto"
	reliefin "calmtrace/internal/modules/relief/port/in"
	"calmtrace/internal/modules/sample/domain"
	sampleout "calmtrace/internal/modules/sample/port/out"
)

// ReliefBackfillObserver offers each stored sample to the pending relief
// session of its user.
type ReliefBackfillObserver struct {
	relief reliefin.Usecase
}

func NewReliefBackfillObserver(relief reliefin.Usecase) sampleout.Observer {
	return &ReliefBackfillObserver{relief: relief}
}

func (o *ReliefBackfillObserver) Name() string { return "relief_backfill" }

func (o *ReliefBackfillObserver) Observe(ctx context.Context, s domain.Sample) (domain.Effect, error) {
	out, err := o.relief.OnNewSample(ctx, reliefdto.SampleObservation{
		UserID:      s.UserID,
		SampleID:    s.ID,
		MeasuredAt:  s.MeasuredAt,
		StressIndex: s.StressIndex,
	})
	if err != nil {
		return domain.EffectNone, err
	}
	if out.Resolved {
		return domain.EffectSessionResolved, nil
	}
	return domain.EffectNone, nil
}
