package dto

import "time"

type CalculateInput struct {
	UserID       string
	LookbackDays int
}

type MetricOutput struct {
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Count int     `json:"count"`
}

type BaselineOutput struct {
	UserID          string       `json:"user_id"`
	Version         int          `json:"version"`
	Active          bool         `json:"active"`
	HRVSDNN         MetricOutput `json:"hrv_sdnn"`
	HRVRMSSD        MetricOutput `json:"hrv_rmssd"`
	HeartRate       MetricOutput `json:"heart_rate"`
	Temperature     MetricOutput `json:"temperature"`
	ThresholdLow    int          `json:"stress_threshold_low"`
	ThresholdMedium int          `json:"stress_threshold_medium"`
	ThresholdHigh   int          `json:"stress_threshold_high"`
	SampleCount     int          `json:"sample_count"`
	DataStart       time.Time    `json:"data_start"`
	DataEnd         time.Time    `json:"data_end"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

type AssessInput struct {
	UserID            string   `json:"-"`
	HeartRate         *float64 `json:"heart_rate"`
	HRVSDNN           *float64 `json:"hrv_sdnn"`
	HRVRMSSD          *float64 `json:"hrv_rmssd"`
	ObjectTemp        *float64 `json:"object_temp"`
	MovementIntensity *float64 `json:"movement_intensity"`
	ActivityState     string   `json:"activity_state"`
}

type AssessOutput struct {
	StressIndex     float64 `json:"stress_index"`
	StressLevel     int     `json:"stress_level"`
	BaselineVersion int     `json:"baseline_version,omitempty"`
}
