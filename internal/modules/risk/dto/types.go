package dto

import "time"

type ComputeInput struct {
	UserID     string
	Date       string
	DiaryScore *float64
}

type ScoreOutput struct {
	UserID               string    `json:"user_id"`
	ScoreDate            string    `json:"score_date"`
	RiskScore            float64   `json:"risk_score"`
	DiaryComponent       *float64  `json:"diary_component"`
	MeasurementComponent float64   `json:"measurement_component"`
	SleepComponent       *float64  `json:"sleep_component"`
	MeasurementCount     int       `json:"measurement_count"`
	AnomalyCount         int       `json:"anomaly_count"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

type ListInput struct {
	UserID string
	From   string
	To     string
}

type MissingOutput struct {
	Date       string `json:"date"`
	Calculated int    `json:"calculated"`
	Skipped    int    `json:"skipped"`
	Failed     int    `json:"failed"`
}
