package domain

import "time"

// CalmMaxLevel is the highest device stress level treated as calm. Level 0
// means the device did not classify the sample and is never calm.
const CalmMaxLevel = 2

// Sample is one biometric observation. It is immutable once stored; (MeasuredAt, ID)
// orders samples even when timestamps collide.
type Sample struct {
	ID                int64
	UserID            string
	MeasuredAt        time.Time
	HeartRate         *float64
	HRVSDNN           *float64
	HRVRMSSD          *float64
	ObjectTemp        *float64
	AmbientTemp       *float64
	AccelX            *float64
	AccelY            *float64
	AccelZ            *float64
	MovementIntensity *float64
	StressIndex       *float64
	StressLevel       int
	IsAnomaly         bool
	TotalSteps        *int64
	StepsPerMinute    *float64
	ActivityState     string
	CreatedAt         time.Time
}

// Effect is what an observer did with a freshly stored sample.
type Effect int

const (
	EffectNone Effect = iota
	EffectAnomalyRaised
	EffectSessionResolved
)
