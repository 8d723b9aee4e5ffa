package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dental-report-engine/internal/compose"
	"github.com/dental-report-engine/internal/config"
	"github.com/dental-report-engine/internal/content"
	"github.com/dental-report-engine/internal/domain"
	"github.com/dental-report-engine/internal/drivers"
	"github.com/dental-report-engine/internal/intake"
	"github.com/dental-report-engine/internal/pipeline"
	"github.com/dental-report-engine/internal/qa"
	"github.com/dental-report-engine/internal/rules"
	"github.com/dental-report-engine/internal/scenario"
	"github.com/dental-report-engine/internal/tone"
	pkgcontent "github.com/dental-report-engine/pkg/content"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type memAuditStore struct {
	records []*domain.AuditRecord
}

func (m *memAuditStore) Save(_ context.Context, record *domain.AuditRecord) error {
	m.records = append(m.records, record)
	return nil
}

func (m *memAuditStore) GetBySession(_ context.Context, sessionID string) (*domain.AuditRecord, error) {
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].SessionID == sessionID {
			return m.records[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memAuditStore) Close() error { return nil }

func newTestServer(t *testing.T) (*Server, *memAuditStore) {
	t.Helper()
	logger := testLogger()
	rs := rules.Builtin()
	audits := &memAuditStore{}

	tones := tone.NewSelector(logger, rs)
	store := pkgcontent.NewStaticStore(rs, pkgcontent.SeedDocuments())
	p := pipeline.New(logger,
		intake.NewValidator(logger, rs),
		intake.NewExtractor(logger, rs),
		drivers.NewDeriver(logger, rs),
		scenario.NewScorer(logger, rs),
		tones,
		content.NewSelector(logger, rs, tones),
		compose.NewComposer(logger, rs, store, compose.NewResolver(logger, rs)),
		qa.NewGate(logger, rs, qa.NewLeakageDetector(logger, rs), qa.NewStructureValidator(logger, rs), nil, false),
		audits,
		pipeline.Config{})

	cfg := &config.Config{}
	cfg.Server.RateLimitRPS = 100
	cfg.Server.RateLimitBurst = 100
	return NewServer(logger, cfg, rs, p, audits), audits
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func validRequestBody(sessionID string) map[string]any {
	return map[string]any{
		"session_id": sessionID,
		"answers": []map[string]any{
			{"question_id": "Q5", "answer": "no"},
			{"question_id": "Q6a", "answer": "one_missing"},
			{"question_id": "Q6b", "answer": "front"},
			{"question_id": "Q11", "answer": "very_important"},
		},
		"metadata": map[string]string{"name": "Anna"},
	}
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s.Router(), http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, body["rules_version"])
	assert.NotEmpty(t, w.Header().Get("X-Correlation-ID"))
}

func TestGenerateReport(t *testing.T) {
	s, audits := newTestServer(t)

	w := doJSON(t, s.Router(), http.MethodPost, "/api/v1/reports", validRequestBody("session-1"))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Success bool           `json:"success"`
		Outcome domain.Outcome `json:"outcome"`
		RunID   string         `json:"run_id"`
		Report  *domain.ComposedReport
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, domain.OutcomePass, body.Outcome)
	assert.NotEmpty(t, body.RunID)
	require.NotNil(t, body.Report)
	assert.Equal(t, "SC_SINGLE_IMPLANT", body.Report.ScenarioID)

	require.Len(t, audits.records, 1)
	assert.Equal(t, body.RunID, audits.records[0].RunID)
}

func TestGenerateReportRejectsMalformedBody(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s.Router(), http.MethodPost, "/api/v1/reports",
		map[string]any{"language": "en"}) // no session_id, no answers

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestGenerateReportBlockedIntake(t *testing.T) {
	s, audits := newTestServer(t)

	body := map[string]any{
		"session_id": "session-2",
		"answers": []map[string]any{
			{"question_id": "Q5", "answer": "maybe-later"},
		},
	}
	w := doJSON(t, s.Router(), http.MethodPost, "/api/v1/reports", body)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var resp struct {
		Success bool            `json:"success"`
		Outcome domain.Outcome  `json:"outcome"`
		Report  json.RawMessage `json:"report"`
		Error   string          `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, domain.OutcomeBlock, resp.Outcome)
	assert.Equal(t, "null", string(resp.Report)) // blocked reports are withheld
	assert.Contains(t, resp.Error, "intake validation failed")

	// blocked runs still leave an audit record
	require.Len(t, audits.records, 1)
	assert.Equal(t, domain.OutcomeBlock, audits.records[0].FinalOutcome)
}

func TestGetAudit(t *testing.T) {
	s, audits := newTestServer(t)
	audits.records = append(audits.records, &domain.AuditRecord{
		RunID:        "run-1",
		SessionID:    "session-9",
		StartedAt:    time.Now().UTC(),
		FinalOutcome: domain.OutcomePass,
	})

	w := doJSON(t, s.Router(), http.MethodGet, "/api/v1/audits/session-9", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var record domain.AuditRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	assert.Equal(t, "run-1", record.RunID)
}

func TestGetAuditNotFound(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s.Router(), http.MethodGet, "/api/v1/audits/unknown-session", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "no audit record")
}

func TestSecurityHeaders(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s.Router(), http.MethodGet, "/health", nil)

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s.Router(), http.MethodOptions, "/api/v1/reports", nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
}
