package out

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"calmtrace/internal/modules/sample/domain"
	sampleout "calmtrace/internal/modules/sample/port/out"
	"calmtrace/internal/platform/tx"
)

type SQLiteSampleStore struct {
	db *sql.DB
}

func NewSQLiteSampleStore(db *sql.DB) (sampleout.SampleStore, error) {
	store := &SQLiteSampleStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteSampleStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS samples (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id TEXT NOT NULL,
  measured_at INTEGER NOT NULL,
  heart_rate REAL,
  hrv_sdnn REAL,
  hrv_rmssd REAL,
  object_temp REAL,
  ambient_temp REAL,
  accel_x REAL,
  accel_y REAL,
  accel_z REAL,
  movement_intensity REAL,
  stress_index REAL,
  stress_level INTEGER NOT NULL,
  is_anomaly INTEGER NOT NULL DEFAULT 0,
  total_steps INTEGER,
  steps_per_minute REAL,
  activity_state TEXT,
  created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_samples_user_time ON samples(user_id, measured_at, id);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create samples table: %w", err)
	}
	return nil
}

const sampleColumns = `id, user_id, measured_at, heart_rate, hrv_sdnn, hrv_rmssd, object_temp, ambient_temp,
  accel_x, accel_y, accel_z, movement_intensity, stress_index, stress_level, is_anomaly,
  total_steps, steps_per_minute, activity_state, created_at`

func (s *SQLiteSampleStore) Append(ctx context.Context, sample domain.Sample) (domain.Sample, error) {
	const stmt = `
INSERT INTO samples (user_id, measured_at, heart_rate, hrv_sdnn, hrv_rmssd, object_temp, ambient_temp,
  accel_x, accel_y, accel_z, movement_intensity, stress_index, stress_level, is_anomaly,
  total_steps, steps_per_minute, activity_state, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx, stmt,
		sample.UserID,
		sample.MeasuredAt.UnixMilli(),
		sample.HeartRate,
		sample.HRVSDNN,
		sample.HRVRMSSD,
		sample.ObjectTemp,
		sample.AmbientTemp,
		sample.AccelX,
		sample.AccelY,
		sample.AccelZ,
		sample.MovementIntensity,
		sample.StressIndex,
		sample.StressLevel,
		sample.IsAnomaly,
		sample.TotalSteps,
		sample.StepsPerMinute,
		sample.ActivityState,
		sample.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return domain.Sample{}, fmt.Errorf("insert sample: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Sample{}, fmt.Errorf("sample id: %w", err)
	}
	sample.ID = id
	sample.MeasuredAt = fromMillis(sample.MeasuredAt.UnixMilli())
	sample.CreatedAt = fromMillis(sample.CreatedAt.UnixMilli())
	return sample, nil
}

func (s *SQLiteSampleStore) LatestAtOrBefore(ctx context.Context, userID string, at time.Time) (domain.Sample, bool, error) {
	query := `SELECT ` + sampleColumns + ` FROM samples
WHERE user_id = ? AND measured_at <= ?
ORDER BY measured_at DESC, id DESC
LIMIT 1`
	return s.one(ctx, "latest sample", query, userID, at.UnixMilli())
}

func (s *SQLiteSampleStore) EarliestBetween(ctx context.Context, userID string, from, to time.Time) (domain.Sample, bool, error) {
	query := `SELECT ` + sampleColumns + ` FROM samples
WHERE user_id = ? AND measured_at >= ? AND measured_at <= ?
ORDER BY measured_at ASC, id ASC
LIMIT 1`
	return s.one(ctx, "earliest sample", query, userID, from.UnixMilli(), to.UnixMilli())
}

func (s *SQLiteSampleStore) ListCalm(ctx context.Context, userID string, from, to time.Time, maxLevel int) ([]domain.Sample, error) {
	query := `SELECT ` + sampleColumns + ` FROM samples
WHERE user_id = ? AND measured_at >= ? AND measured_at <= ? AND stress_level BETWEEN 1 AND ?
ORDER BY measured_at ASC, id ASC`
	return s.many(ctx, "calm samples", query, userID, from.UnixMilli(), to.UnixMilli(), maxLevel)
}

func (s *SQLiteSampleStore) ListRange(ctx context.Context, userID string, from, to time.Time) ([]domain.Sample, error) {
	query := `SELECT ` + sampleColumns + ` FROM samples
WHERE user_id = ? AND measured_at >= ? AND measured_at < ?
ORDER BY measured_at ASC, id ASC`
	return s.many(ctx, "sample range", query, userID, from.UnixMilli(), to.UnixMilli())
}

func (s *SQLiteSampleStore) CountBetween(ctx context.Context, userID string, from, to time.Time) (int, error) {
	var n int
	err := tx.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM samples WHERE user_id = ? AND measured_at >= ? AND measured_at < ?`,
		userID, from.UnixMilli(), to.UnixMilli(),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count samples: %w", err)
	}
	return n, nil
}

func (s *SQLiteSampleStore) FindByIDs(ctx context.Context, ids []int64) ([]domain.Sample, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := `SELECT ` + sampleColumns + ` FROM samples WHERE id IN (` + placeholders + `) ORDER BY measured_at ASC, id ASC`
	return s.many(ctx, "samples by id", query, args...)
}

func (s *SQLiteSampleStore) ListUsers(ctx context.Context) ([]string, error) {
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx, `SELECT DISTINCT user_id FROM samples ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	users := make([]string, 0)
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func (s *SQLiteSampleStore) one(ctx context.Context, what, query string, args ...any) (domain.Sample, bool, error) {
	samples, err := s.many(ctx, what, query, args...)
	if err != nil {
		return domain.Sample{}, false, err
	}
	if len(samples) == 0 {
		return domain.Sample{}, false, nil
	}
	return samples[0], true, nil
}

func (s *SQLiteSampleStore) many(ctx context.Context, what, query string, args ...any) ([]domain.Sample, error) {
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", what, err)
	}
	defer rows.Close()

	samples := make([]domain.Sample, 0)
	for rows.Next() {
		var (
			sample     domain.Sample
			measuredAt int64
			createdAt  int64
			state      sql.NullString
		)
		if err := rows.Scan(
			&sample.ID,
			&sample.UserID,
			&measuredAt,
			&sample.HeartRate,
			&sample.HRVSDNN,
			&sample.HRVRMSSD,
			&sample.ObjectTemp,
			&sample.AmbientTemp,
			&sample.AccelX,
			&sample.AccelY,
			&sample.AccelZ,
			&sample.MovementIntensity,
			&sample.StressIndex,
			&sample.StressLevel,
			&sample.IsAnomaly,
			&sample.TotalSteps,
			&sample.StepsPerMinute,
			&state,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan %s: %w", what, err)
		}
		sample.MeasuredAt = fromMillis(measuredAt)
		sample.CreatedAt = fromMillis(createdAt)
		sample.ActivityState = state.String
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", what, err)
	}
	return samples, nil
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
