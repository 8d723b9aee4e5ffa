// Package tone picks the communication style for a report from the derived
// driver state.
package tone

import (
	"github.com/sirupsen/logrus"

	"github.com/dental-report-engine/internal/domain"
	"github.com/dental-report-engine/internal/rules"
)

// Selector resolves the report tone. Tone candidates are evaluated in the
// configured priority order and the first one with a matching trigger wins;
// the default tone needs no trigger and closes the chain.
type Selector struct {
	logger *logrus.Logger
	rules  *rules.RuleSet
}

// NewSelector creates a tone selector.
func NewSelector(logger *logrus.Logger, rs *rules.RuleSet) *Selector {
	return &Selector{logger: logger, rules: rs}
}

// Select returns the tone id for a session.
func (s *Selector) Select(state *domain.DriverState) string {
	for _, toneID := range s.rules.TonePriority {
		profile := s.rules.Tone(toneID)
		if profile == nil {
			continue
		}
		for _, trigger := range profile.Triggers {
			if state.Matches(trigger.Driver, trigger.Values) {
				s.logger.WithFields(logrus.Fields{
					"session_id": state.SessionID,
					"tone":       toneID,
					"driver":     trigger.Driver.String(),
					"value":      state.Value(trigger.Driver),
				}).Debug("Selected tone by driver trigger")
				return toneID
			}
		}
	}

	s.logger.WithFields(logrus.Fields{
		"session_id": state.SessionID,
		"tone":       s.rules.DefaultTone,
	}).Debug("No tone trigger matched; using the default tone")
	return s.rules.DefaultTone
}

// SectionTone returns the tone a section renders in. The next-steps section
// always renders autonomy-supportive regardless of the report tone, so the
// closing recommendation leaves the decision with the patient.
func (s *Selector) SectionTone(section int, reportTone string) string {
	if section == s.rules.NextStepsSection {
		return s.rules.AutonomyTone
	}
	return reportTone
}
