package in_test

import (
	"context"
	"sync"

	sampledto "calmtrace/internal/modules/sample/dto"
	sampleport "calmtrace/internal/modules/sample/port/in"
)

// fakeIngest records batches and serves them back from ListRange. Other
// query methods are not used by the inbound adapters.
type fakeIngest struct {
	sampleport.Query
	mu      sync.Mutex
	batches [][]sampledto.SampleInput
}

func (f *fakeIngest) Ingest(_ context.Context, input sampledto.IngestInput) (sampledto.IngestOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, input.Samples)
	return sampledto.IngestOutput{Stored: len(input.Samples)}, nil
}

func (f *fakeIngest) ListRange(_ context.Context, input sampledto.RangeInput) ([]sampledto.SampleOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sampledto.SampleOutput, 0)
	for _, batch := range f.batches {
		for _, s := range batch {
			if s.UserID != input.UserID || s.MeasuredAt.Before(input.From) || !s.MeasuredAt.Before(input.To) {
				continue
			}
			out = append(out, sampledto.SampleOutput{UserID: s.UserID, MeasuredAt: s.MeasuredAt, StressLevel: s.StressLevel})
		}
	}
	return out, nil
}
