package domain

import (
	"math"
	"time"
)

// BeforeJitter is the one-shot tolerance for a "before" sample stamped just
// after the session start.
const BeforeJitter = time.Second

type TriggerType string

const (
	TriggerAutoSuggest TriggerType = "AUTO_SUGGEST"
	TriggerManual      TriggerType = "MANUAL"
)

func ParseTriggerType(raw string) (TriggerType, bool) {
	switch TriggerType(raw) {
	case TriggerAutoSuggest:
		return TriggerAutoSuggest, true
	case TriggerManual, "":
		return TriggerManual, true
	default:
		return "", false
	}
}

type State string

const (
	StateOpen       State = "OPEN"
	StatePending    State = "PENDING"
	StateResolved   State = "RESOLVED"
	StateUnresolved State = "UNRESOLVED"
)

// Reading is the slice of a sample the correlator needs.
type Reading struct {
	SampleID    int64
	MeasuredAt  time.Time
	StressIndex *float64
}

type Session struct {
	ID              string
	UserID          string
	InterventionID  string
	TriggerType     TriggerType
	AnomalyID       *int64
	GestureCode     string
	BeforeStress    *float64
	AfterStress     *float64
	StartedAt       time.Time
	EndedAt         *time.Time
	DurationSeconds *int
	UserRating      *int
	CreatedAt       time.Time
}

// State derives the lifecycle stage. A session whose after-window has passed
// without a reading is permanently unresolved.
func (s Session) State(now time.Time, window time.Duration) State {
	switch {
	case s.EndedAt == nil:
		return StateOpen
	case s.AfterStress != nil:
		return StateResolved
	case now.After(s.EndedAt.Add(window)):
		return StateUnresolved
	default:
		return StatePending
	}
}

// InAfterWindow reports endedAt <= t <= endedAt+window.
func (s Session) InAfterWindow(t time.Time, window time.Duration) bool {
	if s.EndedAt == nil {
		return false
	}
	end := *s.EndedAt
	return !t.Before(end) && !t.After(end.Add(window))
}

// DurationSeconds is max(0, end-start) clamped to the int32 range.
func DurationSeconds(startedAt, endedAt time.Time) int {
	secs := int64(endedAt.Sub(startedAt) / time.Second)
	if secs < 0 {
		return 0
	}
	if secs > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(secs)
}
