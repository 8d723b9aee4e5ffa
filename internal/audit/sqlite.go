// Package audit persists the write-once compliance records of report runs.
// Records are stored as JSON documents alongside a few indexed columns for
// retrieval; there is deliberately no update path.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/dental-report-engine/internal/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS audit_records (
	run_id       TEXT PRIMARY KEY,
	session_id   TEXT NOT NULL,
	final_outcome TEXT NOT NULL,
	started_at   TIMESTAMP NOT NULL,
	completed_at TIMESTAMP NOT NULL,
	record       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_session ON audit_records(session_id, started_at DESC);
`

// SQLiteStore is the embedded audit store for single-node deployments and
// local development.
type SQLiteStore struct {
	logger *logrus.Logger
	db     *sql.DB
}

// NewSQLiteStore opens (or creates) the audit database and applies the
// schema. WAL mode keeps report runs and audit reads from blocking each
// other.
func NewSQLiteStore(logger *logrus.Logger, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create audit schema: %w", err)
	}

	logger.WithField("path", path).Info("Opened SQLite audit store")
	return &SQLiteStore{logger: logger, db: db}, nil
}

// Save inserts a completed record. A duplicate run id is an error, never an
// overwrite.
func (s *SQLiteStore) Save(ctx context.Context, record *domain.AuditRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal audit record: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO audit_records (run_id, session_id, final_outcome, started_at, completed_at, record)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		record.RunID, record.SessionID, record.FinalOutcome.String(),
		record.StartedAt, record.CompletedAt, string(payload))
	if err != nil {
		return fmt.Errorf("failed to insert audit record: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"run_id":     record.RunID,
		"session_id": record.SessionID,
		"outcome":    record.FinalOutcome.String(),
	}).Debug("Persisted audit record")
	return nil
}

// GetBySession returns the most recent record for a session, or ErrNotFound.
func (s *SQLiteStore) GetBySession(ctx context.Context, sessionID string) (*domain.AuditRecord, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM audit_records WHERE session_id = ? ORDER BY started_at DESC LIMIT 1`,
		sessionID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("audit record for session %s: %w", sessionID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query audit record: %w", err)
	}

	var record domain.AuditRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, fmt.Errorf("failed to decode audit record: %w", err)
	}
	return &record, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
