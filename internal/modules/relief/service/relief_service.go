package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"calmtrace/internal/modules/relief/domain"
	reliefout "calmtrace/internal/modules/relief/port/out"
	"calmtrace/internal/platform/clock"
	apperrors "calmtrace/internal/platform/errors"
	"calmtrace/internal/platform/id"
	"calmtrace/internal/platform/keylock"
	"calmtrace/internal/platform/slug"
	"calmtrace/internal/platform/tx"
)

type ReliefService struct {
	clock         clock.Clock
	idGen         id.Generator
	sessions      reliefout.SessionStore
	interventions reliefout.InterventionStore
	samples       reliefout.SampleReader
	txm           tx.Manager
	locks         keylock.Locker
	window        time.Duration
	log           *logrus.Entry
}

type Deps struct {
	Clock         clock.Clock
	IDs           id.Generator
	Sessions      reliefout.SessionStore
	Interventions reliefout.InterventionStore
	Samples       reliefout.SampleReader
	Tx            tx.Manager
	Locks         keylock.Locker
	PostWindow    time.Duration
	Log           *logrus.Entry
}

func NewReliefService(d Deps) *ReliefService {
	if d.Tx == nil {
		d.Tx = tx.NoopManager{}
	}
	return &ReliefService{
		clock:         d.Clock,
		idGen:         d.IDs,
		sessions:      d.Sessions,
		interventions: d.Interventions,
		samples:       d.Samples,
		txm:           d.Tx,
		locks:         d.Locks,
		window:        d.PostWindow,
		log:           d.Log,
	}
}

func (s *ReliefService) Window() time.Duration { return s.window }

func (s *ReliefService) Now() time.Time { return s.clock.Now() }

// Start opens a session and resolves the reading just before it. When nothing
// is at or before startedAt, one retry at startedAt+1s absorbs device clock
// skew. A session may start with no prior reading.
func (s *ReliefService) Start(ctx context.Context, userID, interventionID string, trigger domain.TriggerType, startedAt *time.Time, anomalyID *int64, gesture string) (domain.Session, error) {
	if strings.TrimSpace(userID) == "" {
		return domain.Session{}, fmt.Errorf("%w: user id is required", apperrors.ErrInvalidInput)
	}
	if strings.TrimSpace(interventionID) == "" {
		return domain.Session{}, apperrors.ErrInterventionNotFound
	}
	if _, err := s.interventions.Get(ctx, interventionID); err != nil {
		return domain.Session{}, err
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	now := s.clock.Now()
	at := now
	if startedAt != nil {
		at = startedAt.UTC()
	}
	session := domain.Session{
		ID:             s.idGen.New(),
		UserID:         userID,
		InterventionID: interventionID,
		TriggerType:    trigger,
		AnomalyID:      anomalyID,
		GestureCode:    gesture,
		StartedAt:      at,
		CreatedAt:      now,
	}

	err := s.txm.Within(ctx, func(ctx context.Context) error {
		before, ok, err := s.samples.LatestAtOrBefore(ctx, userID, at)
		if err != nil {
			return err
		}
		if !ok {
			before, ok, err = s.samples.LatestAtOrBefore(ctx, userID, at.Add(domain.BeforeJitter))
			if err != nil {
				return err
			}
		}
		if ok {
			session.BeforeStress = before.StressIndex
		}
		return s.sessions.Insert(ctx, session)
	})
	if err != nil {
		return domain.Session{}, err
	}
	s.log.WithFields(logrus.Fields{
		"user_id":         userID,
		"session_id":      session.ID,
		"intervention_id": interventionID,
		"before_resolved": session.BeforeStress != nil,
	}).Info("relief session started")
	return session, nil
}

// End closes the session and tries to resolve the first reading in
// [endedAt, endedAt+window]. An unresolved session is left for the backfill.
func (s *ReliefService) End(ctx context.Context, userID, sessionID string, endedAt *time.Time, rating *int) (domain.Session, error) {
	if rating != nil && (*rating < 1 || *rating > 5) {
		return domain.Session{}, fmt.Errorf("%w: rating must be between 1 and 5", apperrors.ErrInvalidInput)
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	var session domain.Session
	err := s.txm.Within(ctx, func(ctx context.Context) error {
		var err error
		session, err = s.Owned(ctx, userID, sessionID)
		if err != nil {
			return err
		}
		if session.EndedAt != nil {
			return apperrors.ErrSessionAlreadyEnded
		}

		end := s.clock.Now()
		if endedAt != nil {
			end = endedAt.UTC()
		}
		duration := domain.DurationSeconds(session.StartedAt, end)
		session.EndedAt = &end
		session.DurationSeconds = &duration
		if rating != nil {
			session.UserRating = rating
		}
		if session.AfterStress == nil {
			after, ok, err := s.samples.EarliestBetween(ctx, userID, end, end.Add(s.window))
			if err != nil {
				return err
			}
			if ok {
				session.AfterStress = after.StressIndex
			}
		}
		return s.sessions.MarkEnded(ctx, session)
	})
	if err != nil {
		return domain.Session{}, err
	}
	s.log.WithFields(logrus.Fields{
		"user_id":          userID,
		"session_id":       sessionID,
		"duration_seconds": *session.DurationSeconds,
		"after_resolved":   session.AfterStress != nil,
	}).Info("relief session ended")
	return session, nil
}

// OnNewSample is the backfill hook. Only the single most recently ended
// unresolved session is considered; older unresolved sessions are never
// revisited once a newer one exists.
func (s *ReliefService) OnNewSample(ctx context.Context, userID string, reading domain.Reading) (domain.Session, bool, error) {
	if reading.StressIndex == nil {
		return domain.Session{}, false, nil
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	var (
		session  domain.Session
		resolved bool
	)
	err := s.txm.Within(ctx, func(ctx context.Context) error {
		candidate, ok, err := s.sessions.LatestEndedUnresolved(ctx, userID)
		if err != nil || !ok {
			return err
		}
		if !candidate.InAfterWindow(reading.MeasuredAt, s.window) {
			return nil
		}
		updated, err := s.sessions.ResolveAfter(ctx, candidate.ID, *reading.StressIndex)
		if err != nil {
			return err
		}
		if updated {
			candidate.AfterStress = reading.StressIndex
			session, resolved = candidate, true
		}
		return nil
	})
	if err != nil {
		return domain.Session{}, false, err
	}
	entry := s.log.WithFields(logrus.Fields{"user_id": userID, "sample_id": reading.SampleID})
	if !resolved {
		entry.Debug("backfill found nothing to resolve")
		return domain.Session{}, false, nil
	}
	entry.WithField("session_id", session.ID).Info("relief session resolved by backfill")
	return session, true, nil
}

// Owned loads a session and checks it belongs to userID.
func (s *ReliefService) Owned(ctx context.Context, userID, sessionID string) (domain.Session, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.Session{}, err
	}
	if session.UserID != userID {
		return domain.Session{}, apperrors.ErrForbidden
	}
	return session, nil
}

func (s *ReliefService) SaveIntervention(ctx context.Context, in domain.Intervention) (domain.Intervention, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Code = strings.TrimSpace(in.Code)
	if in.Code == "" {
		in.Code = slug.Code(in.Name)
	}
	if in.Code == "" || in.Name == "" {
		return domain.Intervention{}, fmt.Errorf("%w: intervention code and name are required", apperrors.ErrInvalidInput)
	}
	if in.DurationSeconds < 0 {
		return domain.Intervention{}, fmt.Errorf("%w: duration must be non-negative", apperrors.ErrInvalidInput)
	}
	if in.ID == "" {
		in.ID = s.idGen.New()
	}
	existing, err := s.interventions.Get(ctx, in.ID)
	switch {
	case err == nil:
		in.CreatedAt = existing.CreatedAt
	case errors.Is(err, apperrors.ErrInterventionNotFound):
		in.CreatedAt = s.clock.Now()
	default:
		return domain.Intervention{}, err
	}
	if err := s.interventions.Save(ctx, in); err != nil {
		return domain.Intervention{}, err
	}
	return in, nil
}
