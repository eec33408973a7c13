package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"calmtrace/internal/modules/anomaly/domain"
	anomalyout "calmtrace/internal/modules/anomaly/port/out"
	"calmtrace/internal/platform/clock"
	apperrors "calmtrace/internal/platform/errors"
	"calmtrace/internal/platform/keylock"
)

type AnomalyService struct {
	clock  clock.Clock
	store  anomalyout.EventStore
	locks  keylock.Locker
	window time.Duration
	log    *logrus.Entry
}

func NewAnomalyService(clock clock.Clock, store anomalyout.EventStore, locks keylock.Locker, window time.Duration, log *logrus.Entry) *AnomalyService {
	return &AnomalyService{clock: clock, store: store, locks: locks, window: window, log: log}
}

// Evaluate raises an event for a high-stress sample unless the user already
// has one detected within the dedup window before now. The window is keyed on
// detection time, so late samples are deduplicated by when they are processed.
func (s *AnomalyService) Evaluate(ctx context.Context, userID string, sampleID int64, stressLevel int) (domain.Event, bool, error) {
	if userID == "" {
		return domain.Event{}, false, fmt.Errorf("%w: user id is required", apperrors.ErrInvalidInput)
	}
	if !domain.Triggers(stressLevel) {
		return domain.Event{}, false, nil
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	now := s.clock.Now()
	recent, err := s.store.ExistsDetectedAfter(ctx, userID, domain.DedupCutoff(now, s.window))
	if err != nil {
		return domain.Event{}, false, err
	}
	if recent {
		s.log.WithFields(logrus.Fields{"user_id": userID, "sample_id": sampleID}).Debug("anomaly suppressed by dedup window")
		return domain.Event{}, false, nil
	}
	event, err := s.store.Insert(ctx, domain.Event{UserID: userID, SampleID: sampleID, DetectedAt: now})
	if err != nil {
		return domain.Event{}, false, err
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "sample_id": sampleID, "event_id": event.ID}).Info("anomaly detected")
	return event, true, nil
}

// Owned loads an event and checks it belongs to userID.
func (s *AnomalyService) Owned(ctx context.Context, userID string, eventID int64) (domain.Event, error) {
	event, err := s.store.Get(ctx, eventID)
	if err != nil {
		return domain.Event{}, err
	}
	if event.UserID != userID {
		return domain.Event{}, apperrors.ErrForbidden
	}
	return event, nil
}

func (s *AnomalyService) Delete(ctx context.Context, userID string, eventID int64) error {
	if _, err := s.Owned(ctx, userID, eventID); err != nil {
		return err
	}
	return s.store.Delete(ctx, eventID)
}
