package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"calmtrace/internal/modules/risk/domain"
	riskout "calmtrace/internal/modules/risk/port/out"
	"calmtrace/internal/platform/clock"
	apperrors "calmtrace/internal/platform/errors"
	"calmtrace/internal/platform/keylock"
)

type RiskService struct {
	clock     clock.Clock
	scores    riskout.ScoreStore
	anomalies riskout.AnomalySource
	samples   riskout.SampleSource
	locks     keylock.Locker
	loc       *time.Location
	log       *logrus.Entry
}

type Deps struct {
	Clock     clock.Clock
	Scores    riskout.ScoreStore
	Anomalies riskout.AnomalySource
	Samples   riskout.SampleSource
	Locks     keylock.Locker
	Location  *time.Location
	Log       *logrus.Entry
}

func NewRiskService(d Deps) *RiskService {
	if d.Location == nil {
		d.Location = time.UTC
	}
	return &RiskService{
		clock:     d.Clock,
		scores:    d.Scores,
		anomalies: d.Anomalies,
		samples:   d.Samples,
		locks:     d.Locks,
		loc:       d.Location,
		log:       d.Log,
	}
}

func (s *RiskService) Location() *time.Location { return s.loc }

// ComputeDay scores one user-day and upserts it. Recomputing the same day
// overwrites the row; concurrent runs for the same user are serialized.
func (s *RiskService) ComputeDay(ctx context.Context, userID, date string, diary *float64) (domain.Score, error) {
	if strings.TrimSpace(userID) == "" {
		return domain.Score{}, fmt.Errorf("%w: user id is required", apperrors.ErrInvalidInput)
	}
	if err := domain.ValidateDiary(diary); err != nil {
		return domain.Score{}, err
	}
	from, to, err := domain.DayBounds(date, s.loc)
	if err != nil {
		return domain.Score{}, err
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	sampleIDs, err := s.anomalies.SampleIDsBetween(ctx, userID, from, to)
	if err != nil {
		return domain.Score{}, err
	}
	var avg float64
	if len(sampleIDs) > 0 {
		stress, err := s.samples.StressIndexes(ctx, sampleIDs)
		if err != nil {
			return domain.Score{}, err
		}
		avg, _ = domain.Mean(stress)
	}
	count, err := s.samples.CountBetween(ctx, userID, from, to)
	if err != nil {
		return domain.Score{}, err
	}

	measurement := domain.MeasurementComponent(len(sampleIDs), avg)
	now := s.clock.Now()
	saved, err := s.scores.Upsert(ctx, domain.Score{
		UserID:               userID,
		ScoreDate:            date,
		RiskScore:            domain.Combine(diary, measurement),
		DiaryComponent:       diary,
		MeasurementComponent: measurement,
		MeasurementCount:     count,
		AnomalyCount:         len(sampleIDs),
		CreatedAt:            now,
		UpdatedAt:            now,
	})
	if err != nil {
		return domain.Score{}, err
	}
	s.log.WithFields(logrus.Fields{
		"user_id":     userID,
		"date":        date,
		"risk_score":  saved.RiskScore,
		"anomalies":   saved.AnomalyCount,
		"measurement": measurement,
	}).Info("daily risk score saved")
	return saved, nil
}

type MissingReport struct {
	Calculated int
	Skipped    int
	Failed     int
}

// ComputeMissing scores date without a diary for every known user that has
// no row for it. Per-user failures are logged and counted.
func (s *RiskService) ComputeMissing(ctx context.Context, date string) (MissingReport, error) {
	if _, _, err := domain.DayBounds(date, s.loc); err != nil {
		return MissingReport{}, err
	}
	users, err := s.samples.ListUsers(ctx)
	if err != nil {
		return MissingReport{}, err
	}

	var report MissingReport
	for _, userID := range users {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		entry := s.log.WithFields(logrus.Fields{"user_id": userID, "date": date})
		exists, err := s.scores.Exists(ctx, userID, date)
		if err != nil {
			entry.WithError(err).Error("check existing risk score")
			report.Failed++
			continue
		}
		if exists {
			entry.Debug("risk score already present")
			report.Skipped++
			continue
		}
		if _, err := s.ComputeDay(ctx, userID, date, nil); err != nil {
			entry.WithError(err).Error("compute risk score")
			report.Failed++
			continue
		}
		report.Calculated++
	}
	s.log.WithFields(logrus.Fields{
		"date":       date,
		"calculated": report.Calculated,
		"skipped":    report.Skipped,
		"failed":     report.Failed,
	}).Info("missing risk scores computed")
	return report, nil
}

// Yesterday is the calendar date before now in the configured timezone.
func (s *RiskService) Yesterday() string {
	return s.clock.Now().In(s.loc).AddDate(0, 0, -1).Format(domain.DateLayout)
}
