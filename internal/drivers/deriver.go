// Package drivers reduces the extracted tag set to the fixed set of typed
// driver values that every downstream decision keys on.
package drivers

import (
	"math"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/dental-report-engine/internal/domain"
	"github.com/dental-report-engine/internal/rules"
)

const fallbackConfidence = 0.5

// Deriver evaluates the configured derivation rules for every driver.
// Every configured driver produces exactly one value per run; there are no
// optional drivers.
type Deriver struct {
	logger *logrus.Logger
	rules  *rules.RuleSet
}

// NewDeriver creates a driver deriver.
func NewDeriver(logger *logrus.Logger, rs *rules.RuleSet) *Deriver {
	return &Deriver{logger: logger, rules: rs}
}

// matchedRule is a rule that fired, together with the tags that made it fire.
type matchedRule struct {
	rule rules.DriverRule
	tags []string
}

// Derive builds the complete driver state for a session from the extracted
// tags. The returned state is immutable by convention.
func (d *Deriver) Derive(sessionID string, tags []domain.ExtractedTag) *domain.DriverState {
	tagSet := make(map[string]bool, len(tags))
	for _, t := range tags {
		tagSet[t.Tag] = true
	}

	state := &domain.DriverState{
		SessionID: sessionID,
		Drivers:   make(map[domain.DriverID]domain.DriverValue, len(d.rules.Drivers)),
	}

	for _, spec := range d.rules.Drivers {
		value := d.deriveOne(spec, tagSet, state)
		state.Drivers[spec.ID] = value
	}

	d.logger.WithFields(logrus.Fields{
		"session_id": sessionID,
		"drivers":    len(state.Drivers),
		"conflicts":  len(state.Conflicts),
		"fallbacks":  len(state.FallbacksApplied),
	}).Info("Completed driver derivation")

	return state
}

func (d *Deriver) deriveOne(spec rules.DriverSpec, tagSet map[string]bool, state *domain.DriverState) domain.DriverValue {
	var matched []matchedRule
	for _, rule := range spec.Rules {
		if hit, contributing := evaluateRule(rule, tagSet); hit {
			matched = append(matched, matchedRule{rule: rule, tags: contributing})
		}
	}

	if len(matched) == 0 {
		state.FallbacksApplied = append(state.FallbacksApplied, spec.ID)
		return domain.DriverValue{
			DriverID:   spec.ID,
			Layer:      spec.Layer,
			Value:      spec.Fallback,
			Source:     domain.SourceFallback,
			Confidence: fallbackConfidence,
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].rule.Priority < matched[j].rule.Priority
	})

	var nonAdditive, additive []matchedRule
	for _, m := range matched {
		if m.rule.Additive {
			additive = append(additive, m)
		} else {
			nonAdditive = append(nonAdditive, m)
		}
	}

	var value string
	var sourceTags []string
	switch {
	case len(nonAdditive) > 0:
		winner := nonAdditive[0]
		value = winner.rule.Value
		sourceTags = winner.tags
		d.recordConflict(spec.ID, nonAdditive, state)
	default:
		// Additive rules never conflict: their values combine in priority
		// order into one composite driver value.
		value = combineAdditive(additive)
		for _, m := range additive {
			sourceTags = append(sourceTags, m.tags...)
		}
	}

	sourceTags = dedupe(sourceTags)
	return domain.DriverValue{
		DriverID:   spec.ID,
		Layer:      spec.Layer,
		Value:      value,
		Source:     domain.SourceDerived,
		SourceTags: sourceTags,
		Confidence: derivedConfidence(len(sourceTags)),
	}
}

// recordConflict notes when two or more non-additive rules matched with
// differing values. Resolution is always "lowest priority number wins";
// the conflict is recorded for the audit trail, never escalated.
func (d *Deriver) recordConflict(id domain.DriverID, matched []matchedRule, state *domain.DriverState) {
	if len(matched) < 2 {
		return
	}
	values := []string{matched[0].rule.Value}
	differing := false
	for _, m := range matched[1:] {
		if m.rule.Value != matched[0].rule.Value {
			differing = true
		}
		values = append(values, m.rule.Value)
	}
	if !differing {
		return
	}

	state.Conflicts = append(state.Conflicts, domain.DriverConflict{
		DriverID:        id,
		CandidateValues: values,
		ResolvedValue:   matched[0].rule.Value,
		WinningPriority: matched[0].rule.Priority,
	})
	d.logger.WithFields(logrus.Fields{
		"driver":   id.String(),
		"values":   values,
		"resolved": matched[0].rule.Value,
	}).Debug("Resolved driver rule conflict by priority")
}

// evaluateRule checks a rule's tag condition and returns the tags that
// contributed to the match.
func evaluateRule(rule rules.DriverRule, tagSet map[string]bool) (bool, []string) {
	switch {
	case len(rule.Tags) > 0:
		return allOf(rule.Tags, tagSet)
	case len(rule.TagsAll) > 0:
		return allOf(rule.TagsAll, tagSet)
	case len(rule.TagsAny) > 0:
		var present []string
		for _, t := range rule.TagsAny {
			if tagSet[t] {
				present = append(present, t)
			}
		}
		return len(present) > 0, present
	default:
		return false, nil
	}
}

func allOf(required []string, tagSet map[string]bool) (bool, []string) {
	for _, t := range required {
		if !tagSet[t] {
			return false, nil
		}
	}
	return true, required
}

func combineAdditive(matched []matchedRule) string {
	var parts []string
	seen := map[string]bool{}
	for _, m := range matched {
		if !seen[m.rule.Value] {
			seen[m.rule.Value] = true
			parts = append(parts, m.rule.Value)
		}
	}
	return strings.Join(parts, "+")
}

// derivedConfidence scores a derived value by how many tags supported it:
// min(1, n*0.3 + 0.4), rounded to two decimals.
func derivedConfidence(matchedTagCount int) float64 {
	c := math.Min(1, float64(matchedTagCount)*0.3+0.4)
	return math.Round(c*100) / 100
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
