// Package evaluator is the HTTP client for the optional report evaluation
// service. Its verdict is advisory: the QA gate folds it in, the pipeline
// never waits on it beyond the configured timeout.
package evaluator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/dental-report-engine/internal/domain"
)

// Config configures the evaluator client.
type Config struct {
	BaseURL   string        `json:"base_url"`
	Timeout   time.Duration `json:"timeout"`
	RateLimit float64       `json:"rate_limit"` // requests per second
}

// Client calls the evaluation service.
type Client struct {
	logger  *logrus.Logger
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates an evaluator client.
func NewClient(logger *logrus.Logger, cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 5
	}
	return &Client{
		logger:  logger,
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), int(cfg.RateLimit)+1),
	}
}

// evaluateRequest is the wire payload. The full report text goes out; the
// service sees only composed content, never raw intake data.
type evaluateRequest struct {
	SessionID  string                   `json:"session_id"`
	ScenarioID string                   `json:"scenario_id"`
	Tone       string                   `json:"tone"`
	Language   string                   `json:"language"`
	Sections   []domain.ComposedSection `json:"sections"`
}

type evaluateResponse struct {
	Recommendation string   `json:"recommendation"`
	Score          float64  `json:"score"`
	Reasons        []string `json:"reasons"`
}

// Evaluate submits a composed report and returns the verdict.
func (c *Client) Evaluate(ctx context.Context, report *domain.ComposedReport) (*domain.EvaluatorVerdict, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("evaluator rate limit wait: %w", err)
	}

	payload, err := json.Marshal(evaluateRequest{
		SessionID:  report.SessionID,
		ScenarioID: report.ScenarioID,
		Tone:       report.Tone,
		Language:   report.Language,
		Sections:   report.Sections,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal evaluation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/evaluate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build evaluation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("evaluation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("evaluation service returned status %d", resp.StatusCode)
	}

	var body evaluateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode evaluation response: %w", err)
	}

	recommendation := domain.Outcome(body.Recommendation)
	if !recommendation.IsValid() {
		return nil, fmt.Errorf("evaluation service returned unknown recommendation %q", body.Recommendation)
	}

	c.logger.WithFields(logrus.Fields{
		"session_id":     report.SessionID,
		"recommendation": recommendation.String(),
		"score":          body.Score,
	}).Debug("Received evaluator verdict")

	return &domain.EvaluatorVerdict{
		Recommendation: recommendation,
		Score:          body.Score,
		Reasons:        body.Reasons,
	}, nil
}
