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

type SQLiteInterventionStore struct {
	db *sql.DB
}

func NewSQLiteInterventionStore(db *sql.DB) (reliefout.InterventionStore, error) {
	store := &SQLiteInterventionStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteInterventionStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS interventions (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  kind TEXT,
  description TEXT,
  duration_seconds INTEGER NOT NULL DEFAULT 0,
  created_at INTEGER NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create interventions table: %w", err)
	}
	return nil
}

func (s *SQLiteInterventionStore) Save(ctx context.Context, it domain.Intervention) error {
	const stmt = `
INSERT INTO interventions (id, code, name, kind, description, duration_seconds, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  code=excluded.code,
  name=excluded.name,
  kind=excluded.kind,
  description=excluded.description,
  duration_seconds=excluded.duration_seconds;
`
	_, err := tx.Executor(ctx, s.db).ExecContext(ctx, stmt,
		it.ID, it.Code, it.Name, it.Kind, it.Description, it.DurationSeconds, it.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("upsert intervention: %w", err)
	}
	return nil
}

func (s *SQLiteInterventionStore) Get(ctx context.Context, interventionID string) (domain.Intervention, error) {
	items, err := s.query(ctx, `WHERE id = ?`, interventionID)
	if err != nil {
		return domain.Intervention{}, err
	}
	if len(items) == 0 {
		return domain.Intervention{}, apperrors.ErrInterventionNotFound
	}
	return items[0], nil
}

func (s *SQLiteInterventionStore) List(ctx context.Context) ([]domain.Intervention, error) {
	return s.query(ctx, `ORDER BY code`)
}

func (s *SQLiteInterventionStore) query(ctx context.Context, tail string, args ...any) ([]domain.Intervention, error) {
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx,
		`SELECT id, code, name, kind, description, duration_seconds, created_at FROM interventions `+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("query interventions: %w", err)
	}
	defer rows.Close()
	items := make([]domain.Intervention, 0)
	for rows.Next() {
		var (
			it          domain.Intervention
			kind, descr sql.NullString
			createdAt   int64
		)
		if err := rows.Scan(&it.ID, &it.Code, &it.Name, &kind, &descr, &it.DurationSeconds, &createdAt); err != nil {
			return nil, fmt.Errorf("scan intervention: %w", err)
		}
		it.Kind = kind.String
		it.Description = descr.String
		it.CreatedAt = time.UnixMilli(createdAt).UTC()
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interventions: %w", err)
	}
	return items, nil
}
