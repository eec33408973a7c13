package dto

import "time"

type StartInput struct {
	UserID         string
	InterventionID string
	TriggerType    string
	StartedAt      *time.Time
	AnomalyID      *int64
	GestureCode    string
}

type EndInput struct {
	UserID     string
	SessionID  string
	EndedAt    *time.Time
	UserRating *int
}

// SampleObservation is a freshly stored sample offered to the backfill.
type SampleObservation struct {
	UserID      string
	SampleID    int64
	MeasuredAt  time.Time
	StressIndex *float64
}

type BackfillOutput struct {
	Resolved  bool
	SessionID string
}

type SessionOutput struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	InterventionID  string     `json:"intervention_id"`
	TriggerType     string     `json:"trigger_type"`
	AnomalyID       *int64     `json:"anomaly_id,omitempty"`
	GestureCode     string     `json:"gesture_code,omitempty"`
	BeforeStress    *float64   `json:"before_stress"`
	AfterStress     *float64   `json:"after_stress"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at"`
	DurationSeconds *int       `json:"duration_seconds"`
	UserRating      *int       `json:"user_rating,omitempty"`
	State           string     `json:"state"`
}

type ListInput struct {
	UserID string
	From   time.Time
	To     time.Time
}

type InterventionInput struct {
	ID              string
	Code            string
	Name            string
	Kind            string
	Description     string
	DurationSeconds int
}

type InterventionOutput struct {
	ID              string `json:"id"`
	Code            string `json:"code"`
	Name            string `json:"name"`
	Kind            string `json:"kind"`
	Description     string `json:"description,omitempty"`
	DurationSeconds int    `json:"duration_seconds"`
}

type InterventionStatOutput struct {
	InterventionID string   `json:"intervention_id"`
	Name           string   `json:"name"`
	Sessions       int      `json:"sessions"`
	Measured       int      `json:"measured"`
	AvgChange      *float64 `json:"avg_change"`
}

type StatsOutput struct {
	Interventions []InterventionStatOutput `json:"interventions"`
	MostUsed      string                   `json:"most_used,omitempty"`
	MostEffective string                   `json:"most_effective,omitempty"`
}
