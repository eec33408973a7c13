package out

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"calmtrace/internal/modules/baseline/domain"
	baselineout "calmtrace/internal/modules/baseline/port/out"
	apperrors "calmtrace/internal/platform/errors"
	"calmtrace/internal/platform/tx"
)

type SQLiteBaselineStore struct {
	db *sql.DB
}

func NewSQLiteBaselineStore(db *sql.DB) (baselineout.BaselineStore, error) {
	store := &SQLiteBaselineStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

// The partial unique index keeps at most one active version per user even if
// a writer bypasses the service lock.
func (s *SQLiteBaselineStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS baselines (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id TEXT NOT NULL,
  version INTEGER NOT NULL,
  active INTEGER NOT NULL DEFAULT 0,
  hrv_sdnn_mean REAL NOT NULL,
  hrv_sdnn_std REAL NOT NULL,
  hrv_sdnn_count INTEGER NOT NULL,
  hrv_rmssd_mean REAL NOT NULL,
  hrv_rmssd_std REAL NOT NULL,
  hrv_rmssd_count INTEGER NOT NULL,
  heart_rate_mean REAL NOT NULL,
  heart_rate_std REAL NOT NULL,
  heart_rate_count INTEGER NOT NULL,
  temperature_mean REAL NOT NULL,
  temperature_std REAL NOT NULL,
  temperature_count INTEGER NOT NULL,
  threshold_low INTEGER NOT NULL,
  threshold_medium INTEGER NOT NULL,
  threshold_high INTEGER NOT NULL,
  sample_count INTEGER NOT NULL,
  data_start INTEGER,
  data_end INTEGER,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL,
  UNIQUE(user_id, version)
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_baselines_one_active ON baselines(user_id) WHERE active = 1;
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create baselines table: %w", err)
	}
	return nil
}

func (s *SQLiteBaselineStore) NextVersion(ctx context.Context, userID string) (int, error) {
	var next int
	err := tx.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) + 1 FROM baselines WHERE user_id = ?`, userID).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next baseline version: %w", err)
	}
	return next, nil
}

func (s *SQLiteBaselineStore) Insert(ctx context.Context, b domain.Baseline) (domain.Baseline, error) {
	const stmt = `
INSERT INTO baselines (
  user_id, version, active,
  hrv_sdnn_mean, hrv_sdnn_std, hrv_sdnn_count,
  hrv_rmssd_mean, hrv_rmssd_std, hrv_rmssd_count,
  heart_rate_mean, heart_rate_std, heart_rate_count,
  temperature_mean, temperature_std, temperature_count,
  threshold_low, threshold_medium, threshold_high,
  sample_count, data_start, data_end, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx, stmt,
		b.UserID, b.Version, boolInt(b.Active),
		b.HRVSDNN.Mean, b.HRVSDNN.Std, b.HRVSDNN.Count,
		b.HRVRMSSD.Mean, b.HRVRMSSD.Std, b.HRVRMSSD.Count,
		b.HeartRate.Mean, b.HeartRate.Std, b.HeartRate.Count,
		b.Temperature.Mean, b.Temperature.Std, b.Temperature.Count,
		b.Thresholds.Low, b.Thresholds.Medium, b.Thresholds.High,
		b.SampleCount, b.DataStart.UnixMilli(), b.DataEnd.UnixMilli(),
		b.CreatedAt.UnixMilli(), b.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return domain.Baseline{}, fmt.Errorf("insert baseline: %w", err)
	}
	b.ID, err = res.LastInsertId()
	if err != nil {
		return domain.Baseline{}, fmt.Errorf("baseline id: %w", err)
	}
	return b, nil
}

func (s *SQLiteBaselineStore) DeactivateAll(ctx context.Context, userID string, at time.Time) error {
	_, err := tx.Executor(ctx, s.db).ExecContext(ctx,
		`UPDATE baselines SET active = 0, updated_at = ? WHERE user_id = ? AND active = 1`, at.UnixMilli(), userID)
	if err != nil {
		return fmt.Errorf("deactivate baselines: %w", err)
	}
	return nil
}

func (s *SQLiteBaselineStore) SetActive(ctx context.Context, userID string, version int, at time.Time) error {
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx,
		`UPDATE baselines SET active = 1, updated_at = ? WHERE user_id = ? AND version = ?`, at.UnixMilli(), userID, version)
	if err != nil {
		return fmt.Errorf("activate baseline: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("activate baseline: %w", err)
	}
	if n == 0 {
		return apperrors.ErrBaselineNotFound
	}
	return nil
}

func (s *SQLiteBaselineStore) FindActive(ctx context.Context, userID string) (domain.Baseline, bool, error) {
	items, err := s.query(ctx, `WHERE user_id = ? AND active = 1`, userID)
	if err != nil {
		return domain.Baseline{}, false, err
	}
	if len(items) == 0 {
		return domain.Baseline{}, false, nil
	}
	return items[0], true, nil
}

func (s *SQLiteBaselineStore) FindByVersion(ctx context.Context, userID string, version int) (domain.Baseline, error) {
	items, err := s.query(ctx, `WHERE user_id = ? AND version = ?`, userID, version)
	if err != nil {
		return domain.Baseline{}, err
	}
	if len(items) == 0 {
		return domain.Baseline{}, apperrors.ErrBaselineNotFound
	}
	return items[0], nil
}

func (s *SQLiteBaselineStore) List(ctx context.Context, userID string) ([]domain.Baseline, error) {
	return s.query(ctx, `WHERE user_id = ? ORDER BY version DESC`, userID)
}

func (s *SQLiteBaselineStore) Delete(ctx context.Context, userID string, version int) error {
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx,
		`DELETE FROM baselines WHERE user_id = ? AND version = ?`, userID, version)
	if err != nil {
		return fmt.Errorf("delete baseline: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete baseline: %w", err)
	}
	if n == 0 {
		return apperrors.ErrBaselineNotFound
	}
	return nil
}

func (s *SQLiteBaselineStore) query(ctx context.Context, tail string, args ...any) ([]domain.Baseline, error) {
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx, `
SELECT id, user_id, version, active,
  hrv_sdnn_mean, hrv_sdnn_std, hrv_sdnn_count,
  hrv_rmssd_mean, hrv_rmssd_std, hrv_rmssd_count,
  heart_rate_mean, heart_rate_std, heart_rate_count,
  temperature_mean, temperature_std, temperature_count,
  threshold_low, threshold_medium, threshold_high,
  sample_count, data_start, data_end, created_at, updated_at
FROM baselines `+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("query baselines: %w", err)
	}
	defer rows.Close()
	items := make([]domain.Baseline, 0)
	for rows.Next() {
		var (
			b                    domain.Baseline
			active               int
			dataStart, dataEnd   sql.NullInt64
			createdAt, updatedAt int64
		)
		if err := rows.Scan(&b.ID, &b.UserID, &b.Version, &active,
			&b.HRVSDNN.Mean, &b.HRVSDNN.Std, &b.HRVSDNN.Count,
			&b.HRVRMSSD.Mean, &b.HRVRMSSD.Std, &b.HRVRMSSD.Count,
			&b.HeartRate.Mean, &b.HeartRate.Std, &b.HeartRate.Count,
			&b.Temperature.Mean, &b.Temperature.Std, &b.Temperature.Count,
			&b.Thresholds.Low, &b.Thresholds.Medium, &b.Thresholds.High,
			&b.SampleCount, &dataStart, &dataEnd, &createdAt, &updatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan baseline: %w", err)
		}
		b.Active = active == 1
		if dataStart.Valid {
			b.DataStart = time.UnixMilli(dataStart.Int64).UTC()
		}
		if dataEnd.Valid {
			b.DataEnd = time.UnixMilli(dataEnd.Int64).UTC()
		}
		b.CreatedAt = time.UnixMilli(createdAt).UTC()
		b.UpdatedAt = time.UnixMilli(updatedAt).UTC()
		items = append(items, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate baselines: %w", err)
	}
	return items, nil
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
