package service

import (
	"context"
	"fmt"
	"strings"

	"calmtrace/internal/modules/sample/domain"
	sampleout "calmtrace/internal/modules/sample/port/out"
	"calmtrace/internal/platform/clock"
	apperrors "calmtrace/internal/platform/errors"
)

type SampleService struct {
	clock clock.Clock
	store sampleout.SampleStore
}

func NewSampleService(clock clock.Clock, store sampleout.SampleStore) *SampleService {
	return &SampleService{clock: clock, store: store}
}

// Append stores one sample. Range checks belong to the ingestion boundary;
// only the fields needed for ordering are enforced here.
func (s *SampleService) Append(ctx context.Context, sample domain.Sample) (domain.Sample, error) {
	if strings.TrimSpace(sample.UserID) == "" {
		return domain.Sample{}, fmt.Errorf("%w: user id is required", apperrors.ErrInvalidInput)
	}
	if sample.MeasuredAt.IsZero() {
		return domain.Sample{}, fmt.Errorf("%w: measured_at is required", apperrors.ErrInvalidInput)
	}
	sample.ID = 0
	sample.MeasuredAt = sample.MeasuredAt.UTC()
	sample.CreatedAt = s.clock.Now()
	return s.store.Append(ctx, sample)
}
