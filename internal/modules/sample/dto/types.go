package dto

import "time"

// SampleInput is a validated reading from the ingestion boundary.
type SampleInput struct {
	UserID            string    `json:"user_id"`
	MeasuredAt        time.Time `json:"measured_at"`
	HeartRate         *float64  `json:"heart_rate,omitempty"`
	HRVSDNN           *float64  `json:"hrv_sdnn,omitempty"`
	HRVRMSSD          *float64  `json:"hrv_rmssd,omitempty"`
	ObjectTemp        *float64  `json:"object_temp,omitempty"`
	AmbientTemp       *float64  `json:"ambient_temp,omitempty"`
	AccelX            *float64  `json:"accel_x,omitempty"`
	AccelY            *float64  `json:"accel_y,omitempty"`
	AccelZ            *float64  `json:"accel_z,omitempty"`
	MovementIntensity *float64  `json:"movement_intensity,omitempty"`
	StressIndex       *float64  `json:"stress_index,omitempty"`
	StressLevel       int       `json:"stress_level"`
	IsAnomaly         bool      `json:"is_anomaly"`
	TotalSteps        *int64    `json:"total_steps,omitempty"`
	StepsPerMinute    *float64  `json:"steps_per_minute,omitempty"`
	ActivityState     string    `json:"activity_state,omitempty"`
}

type SampleOutput struct {
	ID                int64     `json:"id"`
	UserID            string    `json:"user_id"`
	MeasuredAt        time.Time `json:"measured_at"`
	HeartRate         *float64  `json:"heart_rate,omitempty"`
	HRVSDNN           *float64  `json:"hrv_sdnn,omitempty"`
	HRVRMSSD          *float64  `json:"hrv_rmssd,omitempty"`
	ObjectTemp        *float64  `json:"object_temp,omitempty"`
	AmbientTemp       *float64  `json:"ambient_temp,omitempty"`
	AccelX            *float64  `json:"accel_x,omitempty"`
	AccelY            *float64  `json:"accel_y,omitempty"`
	AccelZ            *float64  `json:"accel_z,omitempty"`
	MovementIntensity *float64  `json:"movement_intensity,omitempty"`
	StressIndex       *float64  `json:"stress_index,omitempty"`
	StressLevel       int       `json:"stress_level"`
	IsAnomaly         bool      `json:"is_anomaly"`
	TotalSteps        *int64    `json:"total_steps,omitempty"`
	StepsPerMinute    *float64  `json:"steps_per_minute,omitempty"`
	ActivityState     string    `json:"activity_state,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

type IngestInput struct {
	Samples []SampleInput
}

type IngestOutput struct {
	Stored           int `json:"stored"`
	Failed           int `json:"failed"`
	AnomaliesRaised  int `json:"anomalies_raised"`
	SessionsResolved int `json:"sessions_resolved"`
}

type RangeInput struct {
	UserID string
	From   time.Time
	To     time.Time
}
