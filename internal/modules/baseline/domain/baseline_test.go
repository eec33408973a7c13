package domain_test

import (
	"math"
	"testing"
	"time"

	"calmtrace/internal/modules/baseline/domain"
)

func f(v float64) *float64 { return &v }

func TestStatsFiltersMissingAndNonPositive(t *testing.T) {
	t.Parallel()
	got := domain.Stats([]*float64{f(2), nil, f(4), f(0), f(-3), f(6)})
	if got.Count != 3 || got.Mean != 4 {
		t.Fatalf("unexpected stats %+v", got)
	}
	want := math.Sqrt(8.0 / 3.0)
	if math.Abs(got.Std-want) > 1e-9 {
		t.Fatalf("expected population std %.6f, got %.6f", want, got.Std)
	}
	if empty := domain.Stats([]*float64{nil, f(0)}); empty != (domain.MetricStats{}) {
		t.Fatalf("expected zero stats without signal, got %+v", empty)
	}
}

func TestBuildRecordsRangeAndThresholds(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	readings := []domain.CalmReading{
		{MeasuredAt: start, HeartRate: f(60), HRVRMSSD: f(40)},
		{MeasuredAt: start.Add(time.Hour), HeartRate: f(70), HRVRMSSD: f(50)},
	}
	b := domain.Build("u1", readings)
	if b.SampleCount != 2 || !b.DataStart.Equal(start) || !b.DataEnd.Equal(start.Add(time.Hour)) {
		t.Fatalf("unexpected range %+v", b)
	}
	if b.HeartRate.Mean != 65 || b.HRVSDNN.Count != 0 {
		t.Fatalf("unexpected metrics %+v", b)
	}
	if b.Thresholds != (domain.Thresholds{Low: 30, Medium: 50, High: 70}) {
		t.Fatalf("unexpected thresholds %+v", b.Thresholds)
	}
}

func TestZToScorePiecewise(t *testing.T) {
	t.Parallel()
	cases := []struct{ z, want float64 }{
		{-2, 0}, {-1, 0}, {-0.5, 15}, {0, 30}, {0.5, 50}, {1, 70}, {1.5, 85}, {2, 100}, {3, 100},
	}
	for _, c := range cases {
		if got := domain.ZToScore(c.z); math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("ZToScore(%v) = %v, want %v", c.z, got, c.want)
		}
	}
}

func TestStressIndexWeightsAndActivityDiscount(t *testing.T) {
	t.Parallel()
	b := domain.Baseline{
		HRVSDNN:     domain.MetricStats{Mean: 50, Std: 10},
		HRVRMSSD:    domain.MetricStats{Mean: 40, Std: 10},
		HeartRate:   domain.MetricStats{Mean: 60, Std: 5},
		Temperature: domain.MetricStats{Mean: 33, Std: 0.5},
	}
	// HRV at mean scores 100-30=70 each, HR one std above scores 70, temp at
	// mean adds nothing and movement 100 over the floor scores 50.
	r := domain.Reading{HRVSDNN: f(50), HRVRMSSD: f(40), HeartRate: f(65), ObjectTemp: f(33), MovementIntensity: f(950)}
	want := math.Round(70*0.3 + 70*0.3 + 70*0.25 + 50*0.05)
	if got := domain.StressIndex(r, b); got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}

	r.ActivityState = domain.ActivityWalking
	if got := domain.StressIndex(r, b); got != math.Round(62*0.4) {
		t.Fatalf("expected walking discount %v, got %v", math.Round(62*0.4), got)
	}

	cases := []struct {
		name string
		r    domain.Reading
		want float64
	}{
		{"hr below mean", domain.Reading{HeartRate: f(57.5)}, 1},
		{"temp below mean", domain.Reading{ObjectTemp: f(32.75)}, 1},
		{"temp above mean", domain.Reading{ObjectTemp: f(33.5)}, 7},
		{"hr above mean", domain.Reading{HeartRate: f(67.5)}, 21},
		{"movement under floor", domain.Reading{MovementIntensity: f(849)}, 1},
		{"movement capped", domain.Reading{MovementIntensity: f(1200)}, 5},
		{"static is not discounted", domain.Reading{HeartRate: f(67.5), ActivityState: "STATIC"}, 21},
	}
	for _, c := range cases {
		if got := domain.StressIndex(c.r, b); got != c.want {
			t.Fatalf("%s: expected %v, got %v", c.name, c.want, got)
		}
	}

	missing := domain.StressIndex(domain.Reading{HeartRate: f(65)}, domain.Baseline{HeartRate: domain.MetricStats{Mean: 60}})
	if missing != 1 {
		t.Fatalf("zero std must contribute nothing above the floor, got %v", missing)
	}
}

func TestLevelWithAndWithoutThresholds(t *testing.T) {
	t.Parallel()
	th := domain.DefaultThresholds()
	cases := []struct {
		index float64
		th    *domain.Thresholds
		want  int
	}{
		{30, &th, 1}, {45, &th, 2}, {70, &th, 3}, {85, &th, 4}, {86, &th, 5},
		{20, nil, 1}, {40, nil, 2}, {60, nil, 3}, {80, nil, 4}, {81, nil, 5},
	}
	for _, c := range cases {
		if got := domain.Level(c.index, c.th); got != c.want {
			t.Fatalf("Level(%v, %v) = %d, want %d", c.index, c.th, got, c.want)
		}
	}
}
