package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"calmtrace/internal/modules/baseline/domain"
	baselineout "calmtrace/internal/modules/baseline/port/out"
	"calmtrace/internal/platform/clock"
	apperrors "calmtrace/internal/platform/errors"
	"calmtrace/internal/platform/keylock"
	"calmtrace/internal/platform/tx"
)

type BaselineService struct {
	clock        clock.Clock
	store        baselineout.BaselineStore
	samples      baselineout.CalmSampleReader
	txm          tx.Manager
	locks        keylock.Locker
	lookbackDays int
	minSamples   int
	log          *logrus.Entry
}

type Deps struct {
	Clock        clock.Clock
	Store        baselineout.BaselineStore
	Samples      baselineout.CalmSampleReader
	Tx           tx.Manager
	Locks        keylock.Locker
	LookbackDays int
	MinSamples   int
	Log          *logrus.Entry
}

func NewBaselineService(d Deps) *BaselineService {
	if d.Tx == nil {
		d.Tx = tx.NoopManager{}
	}
	return &BaselineService{
		clock:        d.Clock,
		store:        d.Store,
		samples:      d.Samples,
		txm:          d.Tx,
		locks:        d.Locks,
		lookbackDays: d.LookbackDays,
		minSamples:   d.MinSamples,
		log:          d.Log,
	}
}

// Calculate builds a new version from the calm samples of the last
// lookbackDays and makes it the only active one in a single transaction.
func (s *BaselineService) Calculate(ctx context.Context, userID string, lookbackDays int) (domain.Baseline, error) {
	if strings.TrimSpace(userID) == "" {
		return domain.Baseline{}, fmt.Errorf("%w: user id is required", apperrors.ErrInvalidInput)
	}
	if lookbackDays < 1 {
		lookbackDays = s.lookbackDays
	}

	unlock := s.locks.Lock(userID)
	defer unlock()
	return s.calculateLocked(ctx, userID, lookbackDays)
}

// Update recalculates only for users that already have an active baseline.
func (s *BaselineService) Update(ctx context.Context, userID string, lookbackDays int) (domain.Baseline, error) {
	if lookbackDays < 1 {
		lookbackDays = s.lookbackDays
	}
	unlock := s.locks.Lock(userID)
	defer unlock()

	_, ok, err := s.store.FindActive(ctx, userID)
	if err != nil {
		return domain.Baseline{}, err
	}
	if !ok {
		return domain.Baseline{}, apperrors.ErrBaselineNotFound
	}
	return s.calculateLocked(ctx, userID, lookbackDays)
}

func (s *BaselineService) calculateLocked(ctx context.Context, userID string, lookbackDays int) (domain.Baseline, error) {
	now := s.clock.Now()
	from := now.Add(-time.Duration(lookbackDays) * 24 * time.Hour)

	var created domain.Baseline
	err := s.txm.Within(ctx, func(ctx context.Context) error {
		readings, err := s.samples.ListCalm(ctx, userID, from, now)
		if err != nil {
			return err
		}
		if len(readings) < s.minSamples {
			return fmt.Errorf("%w: %d calm samples in %d days, need %d", apperrors.ErrInsufficientData, len(readings), lookbackDays, s.minSamples)
		}
		b := domain.Build(userID, readings)
		b.Version, err = s.store.NextVersion(ctx, userID)
		if err != nil {
			return err
		}
		b.Active = true
		b.CreatedAt = now
		b.UpdatedAt = now
		if err := s.store.DeactivateAll(ctx, userID, now); err != nil {
			return err
		}
		created, err = s.store.Insert(ctx, b)
		return err
	})
	if err != nil {
		return domain.Baseline{}, err
	}
	s.log.WithFields(logrus.Fields{
		"user_id":      userID,
		"version":      created.Version,
		"sample_count": created.SampleCount,
	}).Info("baseline calculated")
	return created, nil
}

func (s *BaselineService) Activate(ctx context.Context, userID string, version int) (domain.Baseline, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	var activated domain.Baseline
	err := s.txm.Within(ctx, func(ctx context.Context) error {
		b, err := s.store.FindByVersion(ctx, userID, version)
		if err != nil {
			return err
		}
		now := s.clock.Now()
		if err := s.store.DeactivateAll(ctx, userID, now); err != nil {
			return err
		}
		if err := s.store.SetActive(ctx, userID, version, now); err != nil {
			return err
		}
		b.Active = true
		b.UpdatedAt = now
		activated = b
		return nil
	})
	if err != nil {
		return domain.Baseline{}, err
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "version": version}).Info("baseline activated")
	return activated, nil
}

func (s *BaselineService) Delete(ctx context.Context, userID string, version int) error {
	unlock := s.locks.Lock(userID)
	defer unlock()

	return s.txm.Within(ctx, func(ctx context.Context) error {
		b, err := s.store.FindByVersion(ctx, userID, version)
		if err != nil {
			return err
		}
		if b.Active {
			return apperrors.ErrCannotDeleteActive
		}
		return s.store.Delete(ctx, userID, version)
	})
}

func (s *BaselineService) Active(ctx context.Context, userID string) (domain.Baseline, error) {
	b, ok, err := s.store.FindActive(ctx, userID)
	if err != nil {
		return domain.Baseline{}, err
	}
	if !ok {
		return domain.Baseline{}, apperrors.ErrBaselineNotFound
	}
	return b, nil
}

// Assess scores a reading against the active baseline.
func (s *BaselineService) Assess(ctx context.Context, userID string, r domain.Reading) (float64, int, domain.Baseline, error) {
	b, err := s.Active(ctx, userID)
	if err != nil {
		return 0, 0, domain.Baseline{}, err
	}
	index := domain.StressIndex(r, b)
	return index, domain.Level(index, &b.Thresholds), b, nil
}

func (s *BaselineService) Classify(ctx context.Context, userID string, index float64) (int, *domain.Baseline, error) {
	if index < 0 || index > 100 {
		return 0, nil, fmt.Errorf("%w: stress index must be within 0-100", apperrors.ErrInvalidInput)
	}
	b, ok, err := s.store.FindActive(ctx, userID)
	if err != nil {
		return 0, nil, err
	}
	if !ok {
		return domain.Level(index, nil), nil, nil
	}
	return domain.Level(index, &b.Thresholds), &b, nil
}
