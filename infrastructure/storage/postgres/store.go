// Package postgres persists session records in PostgreSQL. Position,
// judgments, decision, and cycle history are stored as JSONB so the schema
// survives additions to the domain model without migrations.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/candor-ai/go-tribunal/internal/domain"
	"github.com/candor-ai/go-tribunal/internal/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id              TEXT PRIMARY KEY,
	position        JSONB NOT NULL,
	judgments       JSONB NOT NULL DEFAULT '[]',
	decision        JSONB,
	iteration_count INTEGER NOT NULL DEFAULT 0,
	history         JSONB NOT NULL DEFAULT '[]',
	created_at      TIMESTAMPTZ NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS sessions_created_at_idx ON sessions (created_at DESC);
`

// SessionStore implements ports.SessionStore over PostgreSQL.
type SessionStore struct {
	db *sqlx.DB
}

var _ ports.SessionStore = (*SessionStore)(nil)

// Open connects to the database, applies the schema, and returns a store.
func Open(ctx context.Context, dsn string, maxOpenConns int) (*SessionStore, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &SessionStore{db: db}, nil
}

// NewSessionStore wraps an existing connection without applying the schema.
func NewSessionStore(db *sqlx.DB) *SessionStore {
	return &SessionStore{db: db}
}

// Close releases the connection pool.
func (s *SessionStore) Close() error { return s.db.Close() }

// sessionRow is the scan target for the sessions table.
type sessionRow struct {
	ID         string          `db:"id"`
	Position   json.RawMessage `db:"position"`
	Judgments  json.RawMessage `db:"judgments"`
	Decision   json.RawMessage `db:"decision"`
	Iterations int             `db:"iteration_count"`
	History    json.RawMessage `db:"history"`
	CreatedAt  sql.NullTime    `db:"created_at"`
}

// Save upserts the record keyed by session id.
func (s *SessionStore) Save(ctx context.Context, record domain.SessionRecord) error {
	position, err := json.Marshal(record.Position)
	if err != nil {
		return fmt.Errorf("marshaling position: %w", err)
	}
	judgments, err := json.Marshal(record.Judgments)
	if err != nil {
		return fmt.Errorf("marshaling judgments: %w", err)
	}
	history, err := json.Marshal(record.History)
	if err != nil {
		return fmt.Errorf("marshaling history: %w", err)
	}
	var decision any
	if record.Decision != nil {
		raw, err := json.Marshal(record.Decision)
		if err != nil {
			return fmt.Errorf("marshaling decision: %w", err)
		}
		decision = raw
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, position, judgments, decision, iteration_count, history, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (id) DO UPDATE
		SET position = EXCLUDED.position,
		    judgments = EXCLUDED.judgments,
		    decision = EXCLUDED.decision,
		    iteration_count = EXCLUDED.iteration_count,
		    history = EXCLUDED.history,
		    updated_at = NOW()
	`, record.ID, position, judgments, decision, record.Iterations, history, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving session %s: %w", record.ID, err)
	}
	return nil
}

// Get retrieves a record by session id, returning ports.ErrNotFound when it
// does not exist.
func (s *SessionStore) Get(ctx context.Context, id string) (domain.SessionRecord, error) {
	var row sessionRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, position, judgments, decision, iteration_count, history, created_at
		FROM sessions
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SessionRecord{}, fmt.Errorf("%w: session %s", ports.ErrNotFound, id)
	}
	if err != nil {
		return domain.SessionRecord{}, fmt.Errorf("loading session %s: %w", id, err)
	}
	return row.toRecord()
}

// List returns the most recent records, newest first, up to limit.
func (s *SessionStore) List(ctx context.Context, limit int) ([]domain.SessionRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []sessionRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, position, judgments, decision, iteration_count, history, created_at
		FROM sessions
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}

	records := make([]domain.SessionRecord, 0, len(rows))
	for _, row := range rows {
		record, err := row.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (r sessionRow) toRecord() (domain.SessionRecord, error) {
	record := domain.SessionRecord{
		ID:         r.ID,
		Iterations: r.Iterations,
	}
	if r.CreatedAt.Valid {
		record.CreatedAt = r.CreatedAt.Time
	}
	if err := json.Unmarshal(r.Position, &record.Position); err != nil {
		return domain.SessionRecord{}, fmt.Errorf("unmarshaling position for session %s: %w", r.ID, err)
	}
	if len(r.Judgments) > 0 {
		if err := json.Unmarshal(r.Judgments, &record.Judgments); err != nil {
			return domain.SessionRecord{}, fmt.Errorf("unmarshaling judgments for session %s: %w", r.ID, err)
		}
	}
	if len(r.Decision) > 0 && string(r.Decision) != "null" {
		record.Decision = &domain.Decision{}
		if err := json.Unmarshal(r.Decision, record.Decision); err != nil {
			return domain.SessionRecord{}, fmt.Errorf("unmarshaling decision for session %s: %w", r.ID, err)
		}
	}
	if len(r.History) > 0 {
		if err := json.Unmarshal(r.History, &record.History); err != nil {
			return domain.SessionRecord{}, fmt.Errorf("unmarshaling history for session %s: %w", r.ID, err)
		}
	}
	return record, nil
}
