package out

import (
	"context"
	"time"

	"calmtrace/internal/modules/relief/domain"
	reliefout "calmtrace/internal/modules/relief/port/out"
	sampledto "calmtrace/internal/modules/sample/dto"
	samplein "calmtrace/internal/modules/sample/port/in"
)

type SampleReaderAdapter struct {
	samples samplein.Query
}

func NewSampleReaderAdapter(samples samplein.Query) reliefout.SampleReader {
	return &SampleReaderAdapter{samples: samples}
}

func (a *SampleReaderAdapter) LatestAtOrBefore(ctx context.Context, userID string, at time.Time) (domain.Reading, bool, error) {
	s, ok, err := a.samples.LatestAtOrBefore(ctx, userID, at)
	if err != nil || !ok {
		return domain.Reading{}, false, err
	}
	return toReading(s), true, nil
}

func (a *SampleReaderAdapter) EarliestBetween(ctx context.Context, userID string, from, to time.Time) (domain.Reading, bool, error) {
	s, ok, err := a.samples.EarliestBetween(ctx, userID, from, to)
	if err != nil || !ok {
		return domain.Reading{}, false, err
	}
	return toReading(s), true, nil
}

func toReading(s sampledto.SampleOutput) domain.Reading {
	return domain.Reading{SampleID: s.ID, MeasuredAt: s.MeasuredAt, StressIndex: s.StressIndex}
}
