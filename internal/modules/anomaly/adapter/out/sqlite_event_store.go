package out

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"calmtrace/internal/modules/anomaly/domain"
	anomalyout "calmtrace/internal/modules/anomaly/port/out"
	apperrors "calmtrace/internal/platform/errors"
	"calmtrace/internal/platform/tx"
)

type SQLiteEventStore struct {
	db *sql.DB
}

func NewSQLiteEventStore(db *sql.DB) (anomalyout.EventStore, error) {
	store := &SQLiteEventStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteEventStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS anomaly_events (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id TEXT NOT NULL,
  sample_id INTEGER NOT NULL,
  detected_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_anomaly_events_user_time ON anomaly_events(user_id, detected_at);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create anomaly_events table: %w", err)
	}
	return nil
}

func (s *SQLiteEventStore) Insert(ctx context.Context, event domain.Event) (domain.Event, error) {
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx,
		`INSERT INTO anomaly_events (user_id, sample_id, detected_at) VALUES (?, ?, ?)`,
		event.UserID, event.SampleID, event.DetectedAt.UnixMilli(),
	)
	if err != nil {
		return domain.Event{}, fmt.Errorf("insert anomaly event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Event{}, fmt.Errorf("anomaly event id: %w", err)
	}
	event.ID = id
	event.DetectedAt = time.UnixMilli(event.DetectedAt.UnixMilli()).UTC()
	return event, nil
}

func (s *SQLiteEventStore) ExistsDetectedAfter(ctx context.Context, userID string, t time.Time) (bool, error) {
	var exists int
	err := tx.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM anomaly_events WHERE user_id = ? AND detected_at > ?)`,
		userID, t.UnixMilli(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check recent anomaly: %w", err)
	}
	return exists == 1, nil
}

func (s *SQLiteEventStore) Get(ctx context.Context, eventID int64) (domain.Event, error) {
	events, err := s.query(ctx, `SELECT id, user_id, sample_id, detected_at FROM anomaly_events WHERE id = ?`, eventID)
	if err != nil {
		return domain.Event{}, err
	}
	if len(events) == 0 {
		return domain.Event{}, apperrors.ErrAnomalyNotFound
	}
	return events[0], nil
}

func (s *SQLiteEventStore) List(ctx context.Context, userID string, limit, offset int) ([]domain.Event, error) {
	return s.query(ctx, `
SELECT id, user_id, sample_id, detected_at FROM anomaly_events
WHERE user_id = ?
ORDER BY detected_at DESC, id DESC
LIMIT ? OFFSET ?`, userID, limit, offset)
}

func (s *SQLiteEventStore) ListBetween(ctx context.Context, userID string, from, to time.Time) ([]domain.Event, error) {
	return s.query(ctx, `
SELECT id, user_id, sample_id, detected_at FROM anomaly_events
WHERE user_id = ? AND detected_at >= ? AND detected_at < ?
ORDER BY detected_at ASC, id ASC`, userID, from.UnixMilli(), to.UnixMilli())
}

func (s *SQLiteEventStore) CountBetween(ctx context.Context, userID string, from, to time.Time) (int, error) {
	var n int
	err := tx.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM anomaly_events WHERE user_id = ? AND detected_at >= ? AND detected_at < ?`,
		userID, from.UnixMilli(), to.UnixMilli(),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count anomaly events: %w", err)
	}
	return n, nil
}

func (s *SQLiteEventStore) Delete(ctx context.Context, eventID int64) error {
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx, `DELETE FROM anomaly_events WHERE id = ?`, eventID)
	if err != nil {
		return fmt.Errorf("delete anomaly event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete anomaly event: %w", err)
	}
	if n == 0 {
		return apperrors.ErrAnomalyNotFound
	}
	return nil
}

func (s *SQLiteEventStore) query(ctx context.Context, query string, args ...any) ([]domain.Event, error) {
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query anomaly events: %w", err)
	}
	defer rows.Close()
	events := make([]domain.Event, 0)
	for rows.Next() {
		var (
			e          domain.Event
			detectedAt int64
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.SampleID, &detectedAt); err != nil {
			return nil, fmt.Errorf("scan anomaly event: %w", err)
		}
		e.DetectedAt = time.UnixMilli(detectedAt).UTC()
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate anomaly events: %w", err)
	}
	return events, nil
}
