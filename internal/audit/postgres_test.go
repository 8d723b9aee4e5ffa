package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dental-report-engine/internal/domain"
)

func TestPostgresSave(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	store := NewPostgresStoreWithDB(testLogger(), db)

	record := testRecord("run-1", "session-1", time.Now().UTC())
	mock.ExpectExec("INSERT INTO audit_records").
		WithArgs(record.RunID, record.SessionID, "PASS",
			record.StartedAt, record.CompletedAt, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Save(context.Background(), record))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSaveInsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	store := NewPostgresStoreWithDB(testLogger(), db)

	mock.ExpectExec("INSERT INTO audit_records").
		WillReturnError(errors.New("duplicate key value violates unique constraint"))

	err = store.Save(context.Background(), testRecord("run-1", "session-1", time.Now().UTC()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert audit record")
}

func TestPostgresGetBySession(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	store := NewPostgresStoreWithDB(testLogger(), db)

	record := testRecord("run-1", "session-1", time.Now().UTC())
	payload, err := json.Marshal(record)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT record FROM audit_records WHERE session_id").
		WithArgs("session-1").
		WillReturnRows(sqlmock.NewRows([]string{"record"}).AddRow(payload))

	got, err := store.GetBySession(context.Background(), "session-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, "balanced_warm", got.SelectedTone)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetBySessionNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	store := NewPostgresStoreWithDB(testLogger(), db)

	mock.ExpectQuery("SELECT record FROM audit_records WHERE session_id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"record"}))

	_, err = store.GetBySession(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostgresGetBySessionCorruptPayload(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	store := NewPostgresStoreWithDB(testLogger(), db)

	mock.ExpectQuery("SELECT record FROM audit_records WHERE session_id").
		WithArgs("session-1").
		WillReturnRows(sqlmock.NewRows([]string{"record"}).AddRow([]byte("{broken")))

	_, err = store.GetBySession(context.Background(), "session-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode audit record")
}
