package dto

import "time"

type EvaluateInput struct {
	UserID      string
	SampleID    int64
	StressLevel int
	MeasuredAt  time.Time
}

type EvaluateOutput struct {
	Raised bool
	Event  EventOutput
}

type EventOutput struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"user_id"`
	SampleID   int64     `json:"sample_id"`
	DetectedAt time.Time `json:"detected_at"`
}

type ListInput struct {
	UserID string
	Limit  int
	Offset int
}

type RangeInput struct {
	UserID string
	From   time.Time
	To     time.Time
}
