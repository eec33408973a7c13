package usecase_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	baselineout "calmtrace/internal/modules/baseline/adapter/out"
	baselinedto "calmtrace/internal/modules/baseline/dto"
	baselinein "calmtrace/internal/modules/baseline/port/in"
	"calmtrace/internal/modules/baseline/service"
	"calmtrace/internal/modules/baseline/usecase"
	sampleoutadapter "calmtrace/internal/modules/sample/adapter/out"
	sampledomain "calmtrace/internal/modules/sample/domain"
	sampleout "calmtrace/internal/modules/sample/port/out"
	sampleusecase "calmtrace/internal/modules/sample/usecase"
	apperrors "calmtrace/internal/platform/errors"
	"calmtrace/internal/platform/keylock"
	"calmtrace/internal/platform/logging"
	"calmtrace/internal/platform/sqlitedb"
	"calmtrace/internal/platform/tx"
)

var now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type fixedClock time.Time

func (f fixedClock) Now() time.Time { return time.Time(f) }

type fixture struct {
	uc      baselinein.Usecase
	samples sampleout.SampleStore
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db, err := sqlitedb.Open(filepath.Join(t.TempDir(), "calmtrace.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	samples, err := sampleoutadapter.NewSQLiteSampleStore(db)
	if err != nil {
		t.Fatalf("sample store: %v", err)
	}
	store, err := baselineout.NewSQLiteBaselineStore(db)
	if err != nil {
		t.Fatalf("baseline store: %v", err)
	}
	svc := service.NewBaselineService(service.Deps{
		Clock:        fixedClock(now),
		Store:        store,
		Samples:      baselineout.NewCalmSampleAdapter(sampleusecase.NewQueryInteractor(samples)),
		Tx:           tx.NewSQLManager(db),
		Locks:        keylock.New(),
		LookbackDays: 3,
		MinSamples:   10,
		Log:          logging.Discard(),
	})
	return fixture{uc: usecase.NewInteractor(svc, store), samples: samples}
}

func (f fixture) seed(t *testing.T, userID string, n, level int, hr float64) {
	t.Helper()
	for i := 0; i < n; i++ {
		heartRate := hr + float64(i%2)*10
		sdnn := 50.0
		_, err := f.samples.Append(context.Background(), sampledomain.Sample{
			UserID:      userID,
			MeasuredAt:  now.Add(-time.Duration(i+1) * time.Hour),
			HeartRate:   &heartRate,
			HRVSDNN:     &sdnn,
			StressLevel: level,
			CreatedAt:   now,
		})
		if err != nil {
			t.Fatalf("append sample: %v", err)
		}
	}
}

func TestCalculateRejectsTooFewCalmSamples(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "u1", 9, 1, 60)
	f.seed(t, "u1", 5, 4, 60)

	_, err := f.uc.Calculate(ctx, baselinedto.CalculateInput{UserID: "u1"})
	if !errors.Is(err, apperrors.ErrInsufficientData) {
		t.Fatalf("expected insufficient data, got %v", err)
	}
	history, err := f.uc.History(ctx, "u1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected no baseline rows, got %d", len(history))
	}
}

func TestCalculateIgnoresUnclassifiedSamples(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "u1", 10, 0, 120)

	_, err := f.uc.Calculate(ctx, baselinedto.CalculateInput{UserID: "u1"})
	if !errors.Is(err, apperrors.ErrInsufficientData) {
		t.Fatalf("expected level 0 samples not to count as calm, got %v", err)
	}
	history, err := f.uc.History(ctx, "u1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected no baseline rows, got %d", len(history))
	}
}

func TestCalculateAggregatesCalmSamples(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seed(t, "u1", 10, 2, 60)

	out, err := f.uc.Calculate(context.Background(), baselinedto.CalculateInput{UserID: "u1"})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if out.Version != 1 || !out.Active || out.SampleCount != 10 {
		t.Fatalf("unexpected baseline: %+v", out)
	}
	if out.HeartRate.Mean != 65 || out.HeartRate.Std != 5 || out.HeartRate.Count != 10 {
		t.Fatalf("unexpected heart rate stats: %+v", out.HeartRate)
	}
	if out.HRVRMSSD.Count != 0 {
		t.Fatalf("expected empty rmssd stats, got %+v", out.HRVRMSSD)
	}
	if out.ThresholdLow != 30 || out.ThresholdMedium != 50 || out.ThresholdHigh != 70 {
		t.Fatalf("unexpected thresholds: %+v", out)
	}
	if !out.DataStart.Equal(now.Add(-10*time.Hour)) || !out.DataEnd.Equal(now.Add(-time.Hour)) {
		t.Fatalf("unexpected data range: %s - %s", out.DataStart, out.DataEnd)
	}
}

func TestCalculateHonorsLookbackWindow(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		hr := 60.0
		if _, err := f.samples.Append(ctx, sampledomain.Sample{
			UserID:      "u1",
			MeasuredAt:  now.Add(-time.Duration(4*24+i) * time.Hour),
			HeartRate:   &hr,
			StressLevel: 1,
		}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	_, err := f.uc.Calculate(ctx, baselinedto.CalculateInput{UserID: "u1"})
	if !errors.Is(err, apperrors.ErrInsufficientData) {
		t.Fatalf("expected stale samples to be ignored, got %v", err)
	}
	out, err := f.uc.Calculate(ctx, baselinedto.CalculateInput{UserID: "u1", LookbackDays: 5})
	if err != nil {
		t.Fatalf("calculate with wider window: %v", err)
	}
	if out.SampleCount != 10 {
		t.Fatalf("expected 10 samples, got %d", out.SampleCount)
	}
}

func TestVersionsIncrementAndOnlyLatestIsActive(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "u1", 12, 1, 60)

	for want := 1; want <= 3; want++ {
		out, err := f.uc.Calculate(ctx, baselinedto.CalculateInput{UserID: "u1"})
		if err != nil {
			t.Fatalf("calculate %d: %v", want, err)
		}
		if out.Version != want {
			t.Fatalf("expected version %d, got %d", want, out.Version)
		}
	}
	history, err := f.uc.History(ctx, "u1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 3 || history[0].Version != 3 {
		t.Fatalf("expected newest first, got %+v", history)
	}
	active := 0
	for _, b := range history {
		if b.Active {
			active++
		}
	}
	if active != 1 || !history[0].Active {
		t.Fatalf("expected only version 3 active, got %d active", active)
	}
}

func TestActivateSwitchesVersionAndDeleteGuardsActive(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "u1", 10, 1, 60)
	for i := 0; i < 2; i++ {
		if _, err := f.uc.Calculate(ctx, baselinedto.CalculateInput{UserID: "u1"}); err != nil {
			t.Fatalf("calculate: %v", err)
		}
	}

	if _, err := f.uc.Activate(ctx, "u1", 1); err != nil {
		t.Fatalf("activate: %v", err)
	}
	active, err := f.uc.GetActive(ctx, "u1")
	if err != nil {
		t.Fatalf("get active: %v", err)
	}
	if active.Version != 1 {
		t.Fatalf("expected version 1 active, got %d", active.Version)
	}

	if err := f.uc.Delete(ctx, "u1", 1); !errors.Is(err, apperrors.ErrCannotDeleteActive) {
		t.Fatalf("expected cannot delete active, got %v", err)
	}
	if err := f.uc.Delete(ctx, "u1", 2); err != nil {
		t.Fatalf("delete inactive: %v", err)
	}
	if _, err := f.uc.GetByVersion(ctx, "u1", 2); !errors.Is(err, apperrors.ErrBaselineNotFound) {
		t.Fatalf("expected deleted version to be gone, got %v", err)
	}
	if _, err := f.uc.Activate(ctx, "u1", 9); !errors.Is(err, apperrors.ErrBaselineNotFound) {
		t.Fatalf("expected not found for unknown version, got %v", err)
	}
	if _, err := f.uc.Activate(ctx, "u2", 1); !errors.Is(err, apperrors.ErrBaselineNotFound) {
		t.Fatalf("expected other user's version to be unreachable, got %v", err)
	}
}

func TestUpdateRequiresActiveBaseline(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.seed(t, "u1", 10, 1, 60)

	_, err := f.uc.Update(context.Background(), baselinedto.CalculateInput{UserID: "u1"})
	if !errors.Is(err, apperrors.ErrBaselineNotFound) {
		t.Fatalf("expected baseline not found, got %v", err)
	}
}

func TestConcurrentCalculateAndActivateKeepOneActive(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "u1", 10, 1, 60)
	if _, err := f.uc.Calculate(ctx, baselinedto.CalculateInput{UserID: "u1"}); err != nil {
		t.Fatalf("calculate: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := f.uc.Calculate(ctx, baselinedto.CalculateInput{UserID: "u1"}); err != nil {
				errs <- err
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := f.uc.Activate(ctx, "u1", 1); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent op: %v", err)
	}

	history, err := f.uc.History(ctx, "u1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 9 {
		t.Fatalf("expected 9 versions, got %d", len(history))
	}
	active := 0
	for _, b := range history {
		if b.Active {
			active++
		}
	}
	if active != 1 {
		t.Fatalf("expected exactly one active baseline, got %d", active)
	}
}

func TestAssessAndClassify(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	fallback, err := f.uc.Classify(ctx, "u1", 45)
	if err != nil {
		t.Fatalf("classify without baseline: %v", err)
	}
	if fallback.StressLevel != 3 || fallback.BaselineVersion != 0 {
		t.Fatalf("expected fixed band level 3, got %+v", fallback)
	}
	if _, err := f.uc.Assess(ctx, baselinedto.AssessInput{UserID: "u1"}); !errors.Is(err, apperrors.ErrBaselineNotFound) {
		t.Fatalf("expected assess without baseline to fail, got %v", err)
	}
	if _, err := f.uc.Classify(ctx, "u1", 101); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected out of range index to fail, got %v", err)
	}

	f.seed(t, "u1", 10, 1, 60)
	if _, err := f.uc.Calculate(ctx, baselinedto.CalculateInput{UserID: "u1"}); err != nil {
		t.Fatalf("calculate: %v", err)
	}
	hr := 72.5
	out, err := f.uc.Assess(ctx, baselinedto.AssessInput{UserID: "u1", HeartRate: &hr})
	if err != nil {
		t.Fatalf("assess: %v", err)
	}
	// heart rate z = 1.5 scores 85 at weight 0.25; sdnn has no spread and the
	// other metrics are missing.
	if out.StressIndex != 21 || out.BaselineVersion != 1 {
		t.Fatalf("unexpected assessment: %+v", out)
	}
	if out.StressLevel != 1 {
		t.Fatalf("expected level 1 against thresholds 30/50/70, got %d", out.StressLevel)
	}

	walking, err := f.uc.Assess(ctx, baselinedto.AssessInput{UserID: "u1", HeartRate: &hr, ActivityState: " walking "})
	if err != nil {
		t.Fatalf("assess walking: %v", err)
	}
	if walking.StressIndex != 9 {
		t.Fatalf("expected walking discount to give 9, got %v", walking.StressIndex)
	}
}
