package domain

import "time"

// TriggerLevel is the lowest device stress level that raises an event.
const TriggerLevel = 4

// Event is a deduplicated stress occurrence. DetectedAt is the processing
// time, not the sample's measured time.
type Event struct {
	ID         int64
	UserID     string
	SampleID   int64
	DetectedAt time.Time
}

func Triggers(stressLevel int) bool {
	return stressLevel >= TriggerLevel
}

// DedupCutoff is the instant after which an existing event suppresses a new one.
func DedupCutoff(now time.Time, window time.Duration) time.Time {
	return now.Add(-window)
}
