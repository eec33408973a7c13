package out

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"calmtrace/internal/modules/relief/domain"
	reliefout "calmtrace/internal/modules/relief/port/out"
	apperrors "calmtrace/internal/platform/errors"
	"calmtrace/internal/platform/tx"
)

type SQLiteSessionStore struct {
	db *sql.DB
}

func NewSQLiteSessionStore(db *sql.DB) (reliefout.SessionStore, error) {
	store := &SQLiteSessionStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteSessionStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS relief_sessions (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  intervention_id TEXT NOT NULL REFERENCES interventions(id),
  trigger_type TEXT NOT NULL,
  anomaly_id INTEGER,
  gesture_code TEXT,
  before_stress REAL,
  after_stress REAL,
  started_at INTEGER NOT NULL,
  ended_at INTEGER,
  duration_seconds INTEGER,
  user_rating INTEGER,
  created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_relief_sessions_user_ended ON relief_sessions(user_id, ended_at);
CREATE INDEX IF NOT EXISTS idx_relief_sessions_user_started ON relief_sessions(user_id, started_at);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create relief_sessions table: %w", err)
	}
	return nil
}

const sessionColumns = `id, user_id, intervention_id, trigger_type, anomaly_id, gesture_code, before_stress, after_stress,
  started_at, ended_at, duration_seconds, user_rating, created_at`

func (s *SQLiteSessionStore) Insert(ctx context.Context, session domain.Session) error {
	const stmt = `
INSERT INTO relief_sessions (id, user_id, intervention_id, trigger_type, anomaly_id, gesture_code, before_stress,
  after_stress, started_at, ended_at, duration_seconds, user_rating, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`
	_, err := tx.Executor(ctx, s.db).ExecContext(ctx, stmt,
		session.ID,
		session.UserID,
		session.InterventionID,
		string(session.TriggerType),
		session.AnomalyID,
		session.GestureCode,
		session.BeforeStress,
		session.AfterStress,
		session.StartedAt.UnixMilli(),
		millisPtr(session.EndedAt),
		session.DurationSeconds,
		session.UserRating,
		session.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert relief session: %w", err)
	}
	return nil
}

func (s *SQLiteSessionStore) Get(ctx context.Context, sessionID string) (domain.Session, error) {
	sessions, err := s.query(ctx, `SELECT `+sessionColumns+` FROM relief_sessions WHERE id = ?`, sessionID)
	if err != nil {
		return domain.Session{}, err
	}
	if len(sessions) == 0 {
		return domain.Session{}, apperrors.ErrSessionNotFound
	}
	return sessions[0], nil
}

func (s *SQLiteSessionStore) MarkEnded(ctx context.Context, session domain.Session) error {
	const stmt = `
UPDATE relief_sessions
SET ended_at = ?, duration_seconds = ?, user_rating = ?, after_stress = COALESCE(after_stress, ?)
WHERE id = ? AND ended_at IS NULL;
`
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx, stmt,
		millisPtr(session.EndedAt),
		session.DurationSeconds,
		session.UserRating,
		session.AfterStress,
		session.ID,
	)
	if err != nil {
		return fmt.Errorf("end relief session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("end relief session: %w", err)
	}
	if n == 0 {
		return apperrors.ErrSessionAlreadyEnded
	}
	return nil
}

func (s *SQLiteSessionStore) LatestEndedUnresolved(ctx context.Context, userID string) (domain.Session, bool, error) {
	sessions, err := s.query(ctx, `SELECT `+sessionColumns+` FROM relief_sessions
WHERE user_id = ? AND ended_at IS NOT NULL AND after_stress IS NULL
ORDER BY ended_at DESC, id DESC
LIMIT 1`, userID)
	if err != nil {
		return domain.Session{}, false, err
	}
	if len(sessions) == 0 {
		return domain.Session{}, false, nil
	}
	return sessions[0], true, nil
}

func (s *SQLiteSessionStore) ResolveAfter(ctx context.Context, sessionID string, afterStress float64) (bool, error) {
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx,
		`UPDATE relief_sessions SET after_stress = ? WHERE id = ? AND after_stress IS NULL`,
		afterStress, sessionID,
	)
	if err != nil {
		return false, fmt.Errorf("resolve relief session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("resolve relief session: %w", err)
	}
	return n == 1, nil
}

func (s *SQLiteSessionStore) List(ctx context.Context, userID string, from, to time.Time) ([]domain.Session, error) {
	return s.query(ctx, `SELECT `+sessionColumns+` FROM relief_sessions
WHERE user_id = ? AND started_at >= ? AND started_at < ?
ORDER BY started_at DESC, id DESC`, userID, from.UnixMilli(), to.UnixMilli())
}

func (s *SQLiteSessionStore) StatsByIntervention(ctx context.Context, userID string) ([]domain.InterventionStat, error) {
	const query = `
SELECT s.intervention_id, i.name, COUNT(*),
  SUM(CASE WHEN s.before_stress IS NOT NULL AND s.after_stress IS NOT NULL THEN 1 ELSE 0 END),
  AVG(CASE WHEN s.before_stress IS NOT NULL AND s.after_stress IS NOT NULL THEN s.after_stress - s.before_stress END)
FROM relief_sessions s
JOIN interventions i ON i.id = s.intervention_id
WHERE s.user_id = ?
GROUP BY s.intervention_id, i.name
ORDER BY s.intervention_id`
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query relief stats: %w", err)
	}
	defer rows.Close()
	stats := make([]domain.InterventionStat, 0)
	for rows.Next() {
		var st domain.InterventionStat
		if err := rows.Scan(&st.InterventionID, &st.Name, &st.Sessions, &st.Measured, &st.AvgChange); err != nil {
			return nil, fmt.Errorf("scan relief stats: %w", err)
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate relief stats: %w", err)
	}
	return stats, nil
}

func (s *SQLiteSessionStore) query(ctx context.Context, query string, args ...any) ([]domain.Session, error) {
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query relief sessions: %w", err)
	}
	defer rows.Close()
	sessions := make([]domain.Session, 0)
	for rows.Next() {
		var (
			session   domain.Session
			trigger   string
			gesture   sql.NullString
			startedAt int64
			endedAt   sql.NullInt64
			createdAt int64
		)
		if err := rows.Scan(
			&session.ID,
			&session.UserID,
			&session.InterventionID,
			&trigger,
			&session.AnomalyID,
			&gesture,
			&session.BeforeStress,
			&session.AfterStress,
			&startedAt,
			&endedAt,
			&session.DurationSeconds,
			&session.UserRating,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan relief session: %w", err)
		}
		session.TriggerType = domain.TriggerType(trigger)
		session.GestureCode = gesture.String
		session.StartedAt = time.UnixMilli(startedAt).UTC()
		session.CreatedAt = time.UnixMilli(createdAt).UTC()
		if endedAt.Valid {
			t := time.UnixMilli(endedAt.Int64).UTC()
			session.EndedAt = &t
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate relief sessions: %w", err)
	}
	return sessions, nil
}

func millisPtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}
