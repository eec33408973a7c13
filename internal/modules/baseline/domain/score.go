package domain

import "math"

const (
	// MovementFloor is the fixed movement intensity below which motion adds
	// no stress. Baselines do not track movement.
	MovementFloor = 850.0
	movementSpan  = 200.0

	ActivityWalking  = "WALKING"
	activityDiscount = 0.4
)

type Reading struct {
	HeartRate         *float64
	HRVSDNN           *float64
	HRVRMSSD          *float64
	ObjectTemp        *float64
	MovementIntensity *float64
	// ActivityState is STATIC or WALKING as reported by the device.
	ActivityState string
}

// ZToScore maps a z-score onto 0-100, piecewise linear.
func ZToScore(z float64) float64 {
	switch {
	case z <= -1:
		return 0
	case z <= 0:
		return (z + 1) * 30
	case z <= 1:
		return 30 + z*40
	case z <= 2:
		return 70 + (z-1)*30
	default:
		return 100
	}
}

func zScore(v *float64, m MetricStats) (float64, bool) {
	if v == nil || m.Std <= 0 {
		return 0, false
	}
	return (*v - m.Mean) / m.Std, true
}

// hrvScore is inverted: HRV above the baseline mean means lower stress.
func hrvScore(v *float64, m MetricStats) float64 {
	z, ok := zScore(v, m)
	if !ok {
		return 0
	}
	return 100 - ZToScore(z)
}

// elevatedScore only counts readings above the baseline mean.
func elevatedScore(v *float64, m MetricStats) float64 {
	z, ok := zScore(v, m)
	if !ok || z <= 0 {
		return 0
	}
	return ZToScore(z)
}

func movementScore(v *float64) float64 {
	if v == nil || *v < MovementFloor {
		return 0
	}
	return math.Min((*v-MovementFloor)/movementSpan*100, 100)
}

// StressIndex scores a reading against the baseline, rounded into 1-100.
func StressIndex(r Reading, b Baseline) float64 {
	index := hrvScore(r.HRVSDNN, b.HRVSDNN)*0.30 +
		hrvScore(r.HRVRMSSD, b.HRVRMSSD)*0.30 +
		elevatedScore(r.HeartRate, b.HeartRate)*0.25 +
		elevatedScore(r.ObjectTemp, b.Temperature)*0.10 +
		movementScore(r.MovementIntensity)*0.05

	if r.ActivityState == ActivityWalking {
		index *= activityDiscount
	}
	return math.Max(1, math.Min(100, math.Round(index)))
}

// Level maps a stress index to 1-5. Without thresholds fixed 20-point bands
// apply.
func Level(index float64, th *Thresholds) int {
	if th == nil {
		switch {
		case index <= 20:
			return 1
		case index <= 40:
			return 2
		case index <= 60:
			return 3
		case index <= 80:
			return 4
		default:
			return 5
		}
	}
	switch {
	case index <= float64(th.Low):
		return 1
	case index <= float64(th.Medium):
		return 2
	case index <= float64(th.High):
		return 3
	case index <= float64(th.High+15):
		return 4
	default:
		return 5
	}
}
