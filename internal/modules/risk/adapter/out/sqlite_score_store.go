package out

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"calmtrace/internal/modules/risk/domain"
	riskout "calmtrace/internal/modules/risk/port/out"
	apperrors "calmtrace/internal/platform/errors"
	"calmtrace/internal/platform/tx"
)

type SQLiteScoreStore struct {
	db *sql.DB
}

func NewSQLiteScoreStore(db *sql.DB) (riskout.ScoreStore, error) {
	store := &SQLiteScoreStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteScoreStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS daily_risk_scores (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id TEXT NOT NULL,
  score_date TEXT NOT NULL,
  risk_score REAL NOT NULL,
  diary_component REAL,
  measurement_component REAL NOT NULL,
  sleep_component REAL,
  measurement_count INTEGER NOT NULL DEFAULT 0,
  anomaly_count INTEGER NOT NULL DEFAULT 0,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL,
  UNIQUE(user_id, score_date)
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create daily_risk_scores table: %w", err)
	}
	return nil
}

// Upsert keeps the row id and created_at of an existing (user, date) row.
func (s *SQLiteScoreStore) Upsert(ctx context.Context, score domain.Score) (domain.Score, error) {
	const stmt = `
INSERT INTO daily_risk_scores (
  user_id, score_date, risk_score, diary_component, measurement_component, sleep_component,
  measurement_count, anomaly_count, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id, score_date) DO UPDATE SET
  risk_score=excluded.risk_score,
  diary_component=excluded.diary_component,
  measurement_component=excluded.measurement_component,
  sleep_component=excluded.sleep_component,
  measurement_count=excluded.measurement_count,
  anomaly_count=excluded.anomaly_count,
  updated_at=excluded.updated_at
RETURNING id, created_at;
`
	var createdAt int64
	err := tx.Executor(ctx, s.db).QueryRowContext(ctx, stmt,
		score.UserID, score.ScoreDate, score.RiskScore, score.DiaryComponent, score.MeasurementComponent, score.SleepComponent,
		score.MeasurementCount, score.AnomalyCount, score.CreatedAt.UnixMilli(), score.UpdatedAt.UnixMilli(),
	).Scan(&score.ID, &createdAt)
	if err != nil {
		return domain.Score{}, fmt.Errorf("upsert risk score: %w", err)
	}
	score.CreatedAt = time.UnixMilli(createdAt).UTC()
	return score, nil
}

func (s *SQLiteScoreStore) Get(ctx context.Context, userID, date string) (domain.Score, error) {
	items, err := s.query(ctx, `WHERE user_id = ? AND score_date = ?`, userID, date)
	if err != nil {
		return domain.Score{}, err
	}
	if len(items) == 0 {
		return domain.Score{}, apperrors.ErrRiskScoreNotFound
	}
	return items[0], nil
}

func (s *SQLiteScoreStore) Exists(ctx context.Context, userID, date string) (bool, error) {
	var n int
	err := tx.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT COUNT(1) FROM daily_risk_scores WHERE user_id = ? AND score_date = ?`, userID, date).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check risk score: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteScoreStore) List(ctx context.Context, userID, from, to string) ([]domain.Score, error) {
	return s.query(ctx, `WHERE user_id = ? AND score_date >= ? AND score_date <= ? ORDER BY score_date ASC`, userID, from, to)
}

func (s *SQLiteScoreStore) Recent(ctx context.Context, userID string, limit int) ([]domain.Score, error) {
	return s.query(ctx, `WHERE user_id = ? ORDER BY score_date DESC LIMIT ?`, userID, limit)
}

func (s *SQLiteScoreStore) query(ctx context.Context, tail string, args ...any) ([]domain.Score, error) {
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx, `
SELECT id, user_id, score_date, risk_score, diary_component, measurement_component, sleep_component,
  measurement_count, anomaly_count, created_at, updated_at
FROM daily_risk_scores `+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("query risk scores: %w", err)
	}
	defer rows.Close()
	items := make([]domain.Score, 0)
	for rows.Next() {
		var (
			sc                   domain.Score
			createdAt, updatedAt int64
		)
		if err := rows.Scan(&sc.ID, &sc.UserID, &sc.ScoreDate, &sc.RiskScore, &sc.DiaryComponent,
			&sc.MeasurementComponent, &sc.SleepComponent, &sc.MeasurementCount, &sc.AnomalyCount,
			&createdAt, &updatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan risk score: %w", err)
		}
		sc.CreatedAt = time.UnixMilli(createdAt).UTC()
		sc.UpdatedAt = time.UnixMilli(updatedAt).UTC()
		items = append(items, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate risk scores: %w", err)
	}
	return items, nil
}
