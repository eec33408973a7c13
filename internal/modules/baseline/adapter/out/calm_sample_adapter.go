package out

import (
	"context"
	"time"

	"calmtrace/internal/modules/baseline/domain"
	baselineout "calmtrace/internal/modules/baseline/port/out"
	sampledto "calmtrace/internal/modules/sample/dto"
	samplein "calmtrace/internal/modules/sample/port/in"
)

type CalmSampleAdapter struct {
	samples samplein.Query
}

func NewCalmSampleAdapter(samples samplein.Query) baselineout.CalmSampleReader {
	return &CalmSampleAdapter{samples: samples}
}

func (a *CalmSampleAdapter) ListCalm(ctx context.Context, userID string, from, to time.Time) ([]domain.CalmReading, error) {
	items, err := a.samples.ListCalm(ctx, sampledto.RangeInput{UserID: userID, From: from, To: to}, 0)
	if err != nil {
		return nil, err
	}
	out := make([]domain.CalmReading, 0, len(items))
	for _, s := range items {
		out = append(out, domain.CalmReading{
			MeasuredAt: s.MeasuredAt,
			HRVSDNN:    s.HRVSDNN,
			HRVRMSSD:   s.HRVRMSSD,
			HeartRate:  s.HeartRate,
			ObjectTemp: s.ObjectTemp,
		})
	}
	return out, nil
}
