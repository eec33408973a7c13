package domain

import (
	"fmt"
	"math"
	"time"

	apperrors "calmtrace/internal/platform/errors"
)

// DateLayout is the calendar-date form of a score date.
const DateLayout = "2006-01-02"

const (
	perAnomalyPoints = 10.0
	stressWeight     = 0.5
	diaryWeight      = 0.5
)

// Score is the composite risk of one user-day. DiaryComponent is nil when no
// diary score was supplied, which is distinct from a diary score of zero.
// SleepComponent is never computed.
type Score struct {
	ID                   int64
	UserID               string
	ScoreDate            string
	RiskScore            float64
	DiaryComponent       *float64
	MeasurementComponent float64
	SleepComponent       *float64
	MeasurementCount     int
	AnomalyCount         int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// MeasurementComponent is 0 without anomalies, otherwise
// min(100, count*10 + avgStress*0.5).
func MeasurementComponent(anomalyCount int, avgStress float64) float64 {
	if anomalyCount == 0 {
		return 0
	}
	return math.Min(100, float64(anomalyCount)*perAnomalyPoints+avgStress*stressWeight)
}

// Combine weights diary and measurement equally, or returns the measurement
// alone when there is no diary score.
func Combine(diary *float64, measurement float64) float64 {
	if diary == nil {
		return measurement
	}
	d := *diary
	return diaryWeight*d + (1-diaryWeight)*measurement
}

// Mean averages the non-nil values; the bool is false when there are none.
func Mean(values []*float64) (float64, bool) {
	var (
		sum float64
		n   int
	)
	for _, v := range values {
		if v == nil {
			continue
		}
		sum += *v
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// DayBounds returns [00:00, next 00:00) of date in loc, as UTC instants.
func DayBounds(date string, loc *time.Location) (time.Time, time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", apperrors.ErrInvalidInput, date)
	}
	return day.UTC(), day.AddDate(0, 0, 1).UTC(), nil
}

func ValidateDiary(score *float64) error {
	if score == nil {
		return nil
	}
	if math.IsNaN(*score) || *score < 0 || *score > 100 {
		return fmt.Errorf("%w: diary score must be within 0-100", apperrors.ErrInvalidInput)
	}
	return nil
}
