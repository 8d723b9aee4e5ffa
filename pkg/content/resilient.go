package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/dental-report-engine/internal/domain"
)

// ResilientStore wraps a content store with a circuit breaker so a broken
// backend fails fast instead of stalling every report run on timeouts.
type ResilientStore struct {
	logger  *logrus.Logger
	inner   domain.ContentStore
	breaker *gobreaker.CircuitBreaker
}

// NewResilientStore creates the circuit-breaker wrapper.
func NewResilientStore(logger *logrus.Logger, inner domain.ContentStore) *ResilientStore {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ContentStore",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Content store circuit breaker state changed")
		},
	})
	return &ResilientStore{logger: logger, inner: inner, breaker: breaker}
}

// Get fetches through the breaker. An open breaker surfaces as an error,
// which the composer treats like any other store failure: the run ends in an
// auditable block rather than a partial report.
func (s *ResilientStore) Get(ctx context.Context, contentID, tone, language string) (*domain.ContentDocument, error) {
	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.inner.Get(ctx, contentID, tone, language)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			return nil, fmt.Errorf("content store unavailable (circuit breaker open)")
		}
		return nil, err
	}
	if result == nil {
		return nil, nil
	}
	doc, _ := result.(*domain.ContentDocument)
	return doc, nil
}

// State exposes the breaker state for health reporting.
func (s *ResilientStore) State() gobreaker.State {
	return s.breaker.State()
}
