package audit

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dental-report-engine/internal/domain"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testRecord(runID, sessionID string, startedAt time.Time) *domain.AuditRecord {
	return &domain.AuditRecord{
		RunID:        runID,
		SessionID:    sessionID,
		StartedAt:    startedAt,
		CompletedAt:  startedAt.Add(40 * time.Millisecond),
		SelectedTone: "balanced_warm",
		FinalOutcome: domain.OutcomePass,
		ScenarioMatch: &domain.ScenarioMatchResult{
			MatchedScenario: "SC_SINGLE_IMPLANT",
			Confidence:      domain.ConfidenceHigh,
			Score:           29,
		},
	}
}

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(testLogger(), filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteSaveAndGetBySession(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	record := testRecord("run-1", "session-1", time.Now().UTC())
	require.NoError(t, store.Save(ctx, record))

	got, err := store.GetBySession(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, domain.OutcomePass, got.FinalOutcome)
	require.NotNil(t, got.ScenarioMatch)
	assert.Equal(t, "SC_SINGLE_IMPLANT", got.ScenarioMatch.MatchedScenario)
}

func TestSQLiteGetBySessionReturnsLatestRun(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC()

	require.NoError(t, store.Save(ctx, testRecord("run-old", "session-1", base.Add(-time.Hour))))
	require.NoError(t, store.Save(ctx, testRecord("run-new", "session-1", base)))

	got, err := store.GetBySession(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, "run-new", got.RunID)
}

func TestSQLiteGetBySessionNotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.GetBySession(context.Background(), "no-such-session")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSQLiteSaveRejectsDuplicateRunID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	record := testRecord("run-1", "session-1", time.Now().UTC())
	require.NoError(t, store.Save(ctx, record))

	err := store.Save(ctx, record)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert audit record")
}
