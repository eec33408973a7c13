package out

import (
	"context"

	anomalydto "calmtrace/internal/modules/anomaly/dto"
	anomalyin "calmtrace/internal/modules/anomaly/port/in"
	"calmtrace/internal/modules/sample/domain"
	sampleout "calmtrace/internal/modules/sample/port/out"
)

// AnomalyObserver hands each stored sample to the anomaly detector.
type AnomalyObserver struct {
	anomalies anomalyin.Usecase
}

func NewAnomalyObserver(anomalies anomalyin.Usecase) sampleout.Observer {
	return &AnomalyObserver{anomalies: anomalies}
}

func (o *AnomalyObserver) Name() string { return "anomaly" }

func (o *AnomalyObserver) Observe(ctx context.Context, s domain.Sample) (domain.Effect, error) {
	out, err := o.anomalies.Evaluate(ctx, anomalydto.EvaluateInput{
		UserID:      s.UserID,
		SampleID:    s.ID,
		StressLevel: s.StressLevel,
		MeasuredAt:  s.MeasuredAt,
	})
	if err != nil {
		return domain.EffectNone, err
	}
	if out.Raised {
		return domain.EffectAnomalyRaised, nil
	}
	return domain.EffectNone, nil
}
