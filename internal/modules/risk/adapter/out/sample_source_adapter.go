package out

import (
	"context"
	"time"

	riskout "calmtrace/internal/modules/risk/port/out"
	sampledto "calmtrace/internal/modules/sample/dto"
	samplein "calmtrace/internal/modules/sample/port/in"
)

type SampleSourceAdapter struct {
	samples samplein.Query
}

func NewSampleSourceAdapter(samples samplein.Query) riskout.SampleSource {
	return &SampleSourceAdapter{samples: samples}
}

// StressIndexes returns one entry per found sample; missing ids are dropped.
func (a *SampleSourceAdapter) StressIndexes(ctx context.Context, sampleIDs []int64) ([]*float64, error) {
	items, err := a.samples.FindByIDs(ctx, sampleIDs)
	if err != nil {
		return nil, err
	}
	out := make([]*float64, 0, len(items))
	for _, s := range items {
		out = append(out, s.StressIndex)
	}
	return out, nil
}

func (a *SampleSourceAdapter) CountBetween(ctx context.Context, userID string, from, to time.Time) (int, error) {
	return a.samples.CountBetween(ctx, sampledto.RangeInput{UserID: userID, From: from, To: to})
}

func (a *SampleSourceAdapter) ListUsers(ctx context.Context) ([]string, error) {
	return a.samples.ListUsers(ctx)
}
