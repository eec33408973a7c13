package usecase_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	sampleoutadapter "calmtrace/internal/modules/sample/adapter/out"
	"calmtrace/internal/modules/sample/domain"
	sampledto "calmtrace/internal/modules/sample/dto"
	samplein "calmtrace/internal/modules/sample/port/in"
	sampleout "calmtrace/internal/modules/sample/port/out"
	"calmtrace/internal/modules/sample/service"
	"calmtrace/internal/modules/sample/usecase"
	"calmtrace/internal/platform/logging"
	"calmtrace/internal/platform/sqlitedb"
)

var t0 = time.Date(2026, 3, 4, 14, 0, 0, 0, time.UTC)

type fixedClock time.Time

func (f fixedClock) Now() time.Time { return time.Time(f) }

// recorder remembers the order each user's samples were observed in and
// returns a configured effect or error per stress level.
type recorder struct {
	name    string
	mu      sync.Mutex
	seen    map[string][]int64
	effects map[int]domain.Effect
	fail    map[int]error
}

func newRecorder(name string) *recorder {
	return &recorder{name: name, seen: map[string][]int64{}, effects: map[int]domain.Effect{}, fail: map[int]error{}}
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) Observe(_ context.Context, s domain.Sample) (domain.Effect, error) {
	r.mu.Lock()
	r.seen[s.UserID] = append(r.seen[s.UserID], s.ID)
	r.mu.Unlock()
	if err := r.fail[s.StressLevel]; err != nil {
		return domain.EffectNone, err
	}
	return r.effects[s.StressLevel], nil
}

func newUsecase(t *testing.T, observers ...sampleout.Observer) samplein.Usecase {
	t.Helper()
	db, err := sqlitedb.Open(filepath.Join(t.TempDir(), "calmtrace.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	store, err := sampleoutadapter.NewSQLiteSampleStore(db)
	if err != nil {
		t.Fatalf("sample store: %v", err)
	}
	svc := service.NewSampleService(fixedClock(t0), store)
	return usecase.NewInteractor(svc, usecase.NewQueryInteractor(store), 4, logging.Discard(), observers...)
}

func input(userID string, at time.Time, level int) sampledto.SampleInput {
	stress := float64(level * 20)
	return sampledto.SampleInput{UserID: userID, MeasuredAt: at, StressLevel: level, StressIndex: &stress}
}

func TestIngestStoresAndCountsEffects(t *testing.T) {
	t.Parallel()
	anomalies := newRecorder("anomaly")
	anomalies.effects[4] = domain.EffectAnomalyRaised
	relief := newRecorder("relief")
	relief.effects[1] = domain.EffectSessionResolved
	uc := newUsecase(t, anomalies, relief)

	out, err := uc.Ingest(context.Background(), sampledto.IngestInput{Samples: []sampledto.SampleInput{
		input("u1", t0, 4),
		input("u2", t0, 1),
		input("u1", t0.Add(time.Minute), 1),
	}})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if out.Stored != 3 || out.Failed != 0 || out.AnomaliesRaised != 1 || out.SessionsResolved != 2 {
		t.Fatalf("unexpected report: %+v", out)
	}
	count, err := uc.CountBetween(context.Background(), sampledto.RangeInput{UserID: "u1", From: t0, To: t0.Add(time.Hour)})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 samples for u1, got %d", count)
	}
}

func TestIngestKeepsPerUserArrivalOrder(t *testing.T) {
	t.Parallel()
	obs := newRecorder("order")
	uc := newUsecase(t, obs)

	samples := make([]sampledto.SampleInput, 0, 40)
	for i := 0; i < 20; i++ {
		// Later arrivals carry earlier timestamps to show order follows arrival.
		samples = append(samples, input("u1", t0.Add(-time.Duration(i)*time.Second), 1))
		samples = append(samples, input("u2", t0.Add(-time.Duration(i)*time.Second), 1))
	}
	if _, err := uc.Ingest(context.Background(), sampledto.IngestInput{Samples: samples}); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	for _, user := range []string{"u1", "u2"} {
		ids := obs.seen[user]
		if len(ids) != 20 {
			t.Fatalf("expected 20 observations for %s, got %d", user, len(ids))
		}
		for i := 1; i < len(ids); i++ {
			if ids[i] <= ids[i-1] {
				t.Fatalf("observations for %s out of order: %v", user, ids)
			}
		}
	}
}

func TestIngestIsolatesFailures(t *testing.T) {
	t.Parallel()
	flaky := newRecorder("flaky")
	flaky.fail[5] = errors.New("observer down")
	after := newRecorder("after")
	after.effects[1] = domain.EffectSessionResolved
	uc := newUsecase(t, flaky, after)

	out, err := uc.Ingest(context.Background(), sampledto.IngestInput{Samples: []sampledto.SampleInput{
		input("u1", t0, 5),
		{UserID: "u1"},
		input("u1", t0.Add(time.Minute), 1),
	}})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if out.Stored != 2 || out.Failed != 2 || out.SessionsResolved != 1 {
		t.Fatalf("unexpected report: %+v", out)
	}
	if len(after.seen["u1"]) != 2 {
		t.Fatalf("expected the second observer to still see both stored samples, got %v", after.seen["u1"])
	}
}

func TestIngestStopsOnCancelledContext(t *testing.T) {
	t.Parallel()
	uc := newUsecase(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := uc.Ingest(ctx, sampledto.IngestInput{Samples: []sampledto.SampleInput{input("u1", t0, 1)}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if out.Stored != 0 {
		t.Fatalf("expected nothing stored, got %+v", out)
	}
}

func TestQueryOrderingAndCalmFilter(t *testing.T) {
	t.Parallel()
	uc := newUsecase(t)
	ctx := context.Background()
	if _, err := uc.Ingest(ctx, sampledto.IngestInput{Samples: []sampledto.SampleInput{
		input("u1", t0, 1),
		input("u1", t0, 3),
		input("u1", t0.Add(30*time.Second), 0),
		input("u1", t0.Add(time.Minute), 2),
	}}); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	latest, ok, err := uc.LatestAtOrBefore(ctx, "u1", t0)
	if err != nil || !ok {
		t.Fatalf("latest: %v %v", ok, err)
	}
	if latest.StressLevel != 3 {
		t.Fatalf("expected the higher id to win the tie, got level %d", latest.StressLevel)
	}
	earliest, ok, err := uc.EarliestBetween(ctx, "u1", t0, t0.Add(time.Minute))
	if err != nil || !ok {
		t.Fatalf("earliest: %v %v", ok, err)
	}
	if earliest.StressLevel != 1 {
		t.Fatalf("expected the lower id to win the tie, got level %d", earliest.StressLevel)
	}
	calm, err := uc.ListCalm(ctx, sampledto.RangeInput{UserID: "u1", From: t0, To: t0.Add(time.Minute)}, 0)
	if err != nil {
		t.Fatalf("list calm: %v", err)
	}
	if len(calm) != 2 || calm[0].StressLevel != 1 || calm[1].StressLevel != 2 {
		t.Fatalf("expected unclassified and stressed samples filtered out, got %+v", calm)
	}
	users, err := uc.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 1 || users[0] != "u1" {
		t.Fatalf("unexpected users: %v", users)
	}
}
