package domain

import (
	"math"
	"time"
)

// MetricStats is the population mean and standard deviation of one metric.
// Count == 0 means the metric carried no signal; Mean and Std are then 0.
type MetricStats struct {
	Mean  float64
	Std   float64
	Count int
}

// Thresholds split the 0-100 stress index into levels.
type Thresholds struct {
	Low    int
	Medium int
	High   int
}

type Baseline struct {
	ID          int64
	UserID      string
	Version     int
	Active      bool
	HRVSDNN     MetricStats
	HRVRMSSD    MetricStats
	HeartRate   MetricStats
	Temperature MetricStats
	Thresholds  Thresholds
	SampleCount int
	DataStart   time.Time
	DataEnd     time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CalmReading is one calm sample's contribution to a baseline.
type CalmReading struct {
	MeasuredAt time.Time
	HRVSDNN    *float64
	HRVRMSSD   *float64
	HeartRate  *float64
	ObjectTemp *float64
}

// Stats filters out missing and non-positive values before aggregating.
func Stats(values []*float64) MetricStats {
	var (
		sum float64
		n   int
	)
	for _, v := range values {
		if v == nil || *v <= 0 {
			continue
		}
		sum += *v
		n++
	}
	if n == 0 {
		return MetricStats{}
	}
	mean := sum / float64(n)
	var sq float64
	for _, v := range values {
		if v == nil || *v <= 0 {
			continue
		}
		d := *v - mean
		sq += d * d
	}
	return MetricStats{Mean: mean, Std: math.Sqrt(sq / float64(n)), Count: n}
}

// DefaultThresholds are the stress scores at z = 0, 0.5 and 1.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Low:    int(math.Round(ZToScore(0))),
		Medium: int(math.Round(ZToScore(0.5))),
		High:   int(math.Round(ZToScore(1))),
	}
}

// Build aggregates readings, which must be in (measuredAt, id) order. It does
// not enforce the minimum sample count.
func Build(userID string, readings []CalmReading) Baseline {
	sdnn := make([]*float64, 0, len(readings))
	rmssd := make([]*float64, 0, len(readings))
	hr := make([]*float64, 0, len(readings))
	temp := make([]*float64, 0, len(readings))
	for _, r := range readings {
		sdnn = append(sdnn, r.HRVSDNN)
		rmssd = append(rmssd, r.HRVRMSSD)
		hr = append(hr, r.HeartRate)
		temp = append(temp, r.ObjectTemp)
	}
	b := Baseline{
		UserID:      userID,
		HRVSDNN:     Stats(sdnn),
		HRVRMSSD:    Stats(rmssd),
		HeartRate:   Stats(hr),
		Temperature: Stats(temp),
		Thresholds:  DefaultThresholds(),
		SampleCount: len(readings),
	}
	if len(readings) > 0 {
		b.DataStart = readings[0].MeasuredAt
		b.DataEnd = readings[len(readings)-1].MeasuredAt
	}
	return b
}
