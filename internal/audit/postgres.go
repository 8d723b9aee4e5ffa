package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/dental-report-engine/internal/domain"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS audit_records (
	run_id        TEXT PRIMARY KEY,
	session_id    TEXT NOT NULL,
	final_outcome TEXT NOT NULL,
	started_at    TIMESTAMPTZ NOT NULL,
	completed_at  TIMESTAMPTZ NOT NULL,
	record        JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_session ON audit_records(session_id, started_at DESC);
`

// PostgresConfig configures the shared audit store.
type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string
	MaxConns int
}

// PostgresStore is the audit store for multi-node deployments.
type PostgresStore struct {
	logger *logrus.Logger
	db     *sql.DB
}

// NewPostgresStore connects, verifies the connection and applies the schema.
func NewPostgresStore(logger *logrus.Logger, cfg PostgresConfig) (*PostgresStore, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Database, cfg.Username, cfg.Password, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping audit database: %w", err)
	}

	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create audit schema: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"host":     cfg.Host,
		"database": cfg.Database,
	}).Info("Connected to Postgres audit store")
	return &PostgresStore{logger: logger, db: db}, nil
}

// NewPostgresStoreWithDB wraps an existing connection; tests use this with a
// mock.
func NewPostgresStoreWithDB(logger *logrus.Logger, db *sql.DB) *PostgresStore {
	return &PostgresStore{logger: logger, db: db}
}

// Save inserts a completed record. Duplicates are rejected by the primary
// key; records are never updated.
func (s *PostgresStore) Save(ctx context.Context, record *domain.AuditRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal audit record: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO audit_records (run_id, session_id, final_outcome, started_at, completed_at, record)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		record.RunID, record.SessionID, record.FinalOutcome.String(),
		record.StartedAt, record.CompletedAt, payload)
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
func (s *PostgresStore) GetBySession(ctx context.Context, sessionID string) (*domain.AuditRecord, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM audit_records WHERE session_id = $1 ORDER BY started_at DESC LIMIT 1`,
		sessionID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("audit record for session %s: %w", sessionID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query audit record: %w", err)
	}

	var record domain.AuditRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("failed to decode audit record: %w", err)
	}
	return &record, nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
