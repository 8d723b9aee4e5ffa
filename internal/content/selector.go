// Package content chooses the content units of a report: the scenario body,
// warning blocks, contextual blocks, reusable modules and static boilerplate.
// Suppression marks a selection instead of dropping it, so the audit trail
// shows everything that was considered.
package content

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/dental-report-engine/internal/domain"
	"github.com/dental-report-engine/internal/rules"
	"github.com/dental-report-engine/internal/tone"
)

// Selector assembles the content selection list for one session.
type Selector struct {
	logger *logrus.Logger
	rules  *rules.RuleSet
	tones  *tone.Selector
}

// NewSelector creates a content selector.
func NewSelector(logger *logrus.Logger, rs *rules.RuleSet, tones *tone.Selector) *Selector {
	return &Selector{logger: logger, rules: rs, tones: tones}
}

// suppressionSet is the session-specific view of the suppression rules.
// Patterns keep their configuration order so the recorded reason is stable.
type suppressionSet struct {
	sections map[int]string // section -> triggering rule description
	patterns []blockedPattern
}

type blockedPattern struct {
	pattern string
	reason  string
}

// Select produces the ordered content selections for a session. Selections
// follow the configuration order of their tables; ordering within a section
// happens at composition via priorities.
func (s *Selector) Select(state *domain.DriverState, match *domain.ScenarioMatchResult, reportTone string, tags map[string]bool) []domain.ContentSelection {
	sup := s.buildSuppression(state)
	var selections []domain.ContentSelection

	// The scenario body anchors the report and is never suppressed.
	selections = append(selections, domain.ContentSelection{
		ContentID:     match.MatchedScenario,
		Type:          domain.ContentScenario,
		TargetSection: s.rules.ScenarioSection,
		Tone:          s.tones.SectionTone(s.rules.ScenarioSection, reportTone),
		Priority:      s.rules.ScenarioPriority,
	})

	// Warning blocks target the warnings section and are only ever
	// pattern-suppressed: a safety rule must not silence an unrelated warning
	// by blocking the whole section.
	for _, block := range s.rules.ABlocks {
		if !state.Matches(block.Trigger.Driver, block.Trigger.Values) {
			continue
		}
		sel := domain.ContentSelection{
			ContentID:     block.ID,
			Type:          domain.ContentABlock,
			TargetSection: s.rules.WarningsSection,
			Tone:          s.tones.SectionTone(s.rules.WarningsSection, reportTone),
		}
		if reason, blocked := sup.patternBlocked(block.ID); blocked {
			sel.Suppressed = true
			sel.SuppressionReason = reason
		}
		selections = append(selections, sel)
	}

	for _, block := range s.rules.BBlocks {
		if !state.Matches(block.Trigger.Driver, block.Trigger.Values) {
			continue
		}
		sel := domain.ContentSelection{
			ContentID:     block.ID,
			Type:          domain.ContentBBlock,
			TargetSection: block.TargetSection,
			Tone:          s.tones.SectionTone(block.TargetSection, reportTone),
		}
		if reason, blocked := sup.sectionBlocked(block.TargetSection); blocked {
			sel.Suppressed = true
			sel.SuppressionReason = reason
		} else if reason, blocked := sup.patternBlocked(block.ID); blocked {
			sel.Suppressed = true
			sel.SuppressionReason = reason
		}
		selections = append(selections, sel)
	}

	for _, module := range s.rules.Modules {
		if !s.moduleTriggered(module, state, tags) {
			continue
		}
		for _, section := range module.Sections {
			sel := domain.ContentSelection{
				ContentID:     module.ID,
				Type:          domain.ContentModule,
				TargetSection: section,
				Tone:          s.tones.SectionTone(section, reportTone),
				Priority:      module.Priority,
			}
			if reason, blocked := sup.sectionBlocked(section); blocked {
				sel.Suppressed = true
				sel.SuppressionReason = reason
			} else if reason, blocked := sup.patternBlocked(module.ID); blocked {
				sel.Suppressed = true
				sel.SuppressionReason = reason
			}
			selections = append(selections, sel)
		}
	}

	for _, static := range s.rules.Statics {
		staticTone := s.tones.SectionTone(static.Section, reportTone)
		if static.PinnedTone != "" {
			staticTone = static.PinnedTone
		}
		selections = append(selections, domain.ContentSelection{
			ContentID:     static.ID,
			Type:          domain.ContentStatic,
			TargetSection: static.Section,
			Tone:          staticTone,
			Priority:      static.Priority,
		})
	}

	suppressed := 0
	for _, sel := range selections {
		if sel.Suppressed {
			suppressed++
		}
	}
	s.logger.WithFields(logrus.Fields{
		"session_id": state.SessionID,
		"selections": len(selections),
		"suppressed": suppressed,
	}).Info("Completed content selection")

	return selections
}

func (s *Selector) moduleTriggered(m rules.Module, state *domain.DriverState, tags map[string]bool) bool {
	if m.TriggerDriver != nil {
		return state.Matches(m.TriggerDriver.Driver, m.TriggerDriver.Values)
	}
	return m.TriggerTag != "" && tags[m.TriggerTag]
}

func (s *Selector) buildSuppression(state *domain.DriverState) *suppressionSet {
	sup := &suppressionSet{sections: map[int]string{}}
	for _, rule := range s.rules.Suppression {
		if state.Value(rule.Driver) != rule.Value {
			continue
		}
		desc := fmt.Sprintf("suppressed by %s=%s", rule.Driver, rule.Value)
		for _, section := range rule.BlockedSections {
			if _, exists := sup.sections[section]; !exists {
				sup.sections[section] = desc
			}
		}
		for _, pattern := range rule.BlockedPatterns {
			sup.patterns = append(sup.patterns, blockedPattern{pattern: pattern, reason: desc})
		}
	}
	return sup
}

func (p *suppressionSet) sectionBlocked(section int) (string, bool) {
	reason, ok := p.sections[section]
	return reason, ok
}

// patternBlocked matches a content id against the blocked patterns in their
// configuration order. A trailing '*' makes a pattern a prefix match,
// otherwise matching is exact.
func (p *suppressionSet) patternBlocked(contentID string) (string, bool) {
	for _, bp := range p.patterns {
		if strings.HasSuffix(bp.pattern, "*") {
			if strings.HasPrefix(contentID, strings.TrimSuffix(bp.pattern, "*")) {
				return bp.reason, true
			}
		} else if bp.pattern == contentID {
			return bp.reason, true
		}
	}
	return "", false
}
