// Package scenario matches a derived driver state against the configured
// clinical narrative scenarios and picks exactly one winner with a confidence
// band. Acute safety findings bypass scoring entirely; when nothing scores
// well enough a three-step fallback cascade guarantees a usable result.
package scenario

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/dental-report-engine/internal/domain"
	"github.com/dental-report-engine/internal/rules"
)

// Scorer evaluates every scorable scenario profile against a driver state.
type Scorer struct {
	logger *logrus.Logger
	rules  *rules.RuleSet
}

// NewScorer creates a scenario scorer.
func NewScorer(logger *logrus.Logger, rs *rules.RuleSet) *Scorer {
	return &Scorer{logger: logger, rules: rs}
}

// Match picks the scenario for a session. The result always names a valid
// scenario: a safety override, a threshold-clearing winner, or one of the
// fallback steps.
func (s *Scorer) Match(state *domain.DriverState) *domain.ScenarioMatchResult {
	if trigger := s.safetyTriggered(state); trigger != "" {
		s.logger.WithFields(logrus.Fields{
			"session_id": state.SessionID,
			"trigger":    trigger,
		}).Warn("Safety override: routing to the safety scenario")
		return &domain.ScenarioMatchResult{
			MatchedScenario: s.rules.SafetyScenarioID,
			Confidence:      domain.ConfidenceHigh,
			Score:           100,
			SafetyOverride:  true,
		}
	}

	scores := s.scoreAll(state, false)
	if winner, conf, ok := s.pickWinner(scores); ok {
		return &domain.ScenarioMatchResult{
			MatchedScenario: winner.ScenarioID,
			Confidence:      conf,
			Score:           winner.Score,
			AllScores:       scores,
		}
	}

	return s.fallback(state, scores)
}

// safetyTriggered returns the name of the first matching safety trigger, or
// "" when none match. Triggers are OR-combined.
func (s *Scorer) safetyTriggered(state *domain.DriverState) string {
	for _, t := range s.rules.SafetyTriggers {
		if state.Matches(t.Driver, t.Values) {
			return fmt.Sprintf("%s=%s", t.Driver, state.Value(t.Driver))
		}
	}
	return ""
}

// scoreAll scores every scorable scenario. In relaxed mode, L3 driver entries
// contribute no points and fallback-valued L3 requirements are waived
// (fallback step one).
func (s *Scorer) scoreAll(state *domain.DriverState, relaxed bool) []domain.ScenarioScore {
	var scores []domain.ScenarioScore
	for _, sc := range s.rules.Scenarios {
		if sc.IsSafety || sc.IsFallback {
			continue
		}
		scores = append(scores, s.scoreOne(sc, state, relaxed))
	}
	return scores
}

func (s *Scorer) scoreOne(sc rules.ScenarioProfile, state *domain.DriverState, relaxed bool) domain.ScenarioScore {
	score := domain.ScenarioScore{ScenarioID: sc.ID}

	// excluding checks are never relaxed
	for _, id := range orderedDrivers(sc.Excluding) {
		if state.Matches(id, sc.Excluding[id]) {
			score.Excluded = true
			score.ExclusionReason = fmt.Sprintf("%s=%s", id, state.Value(id))
			score.Score = domain.ScoreExcluded
			score.Breakdown = append(score.Breakdown, domain.ScoreContribution{
				DriverID: id, Kind: "excluding", Matched: true, Points: domain.ScoreExcluded,
			})
			return score
		}
	}

	for _, id := range orderedDrivers(sc.Required) {
		if !state.Matches(id, sc.Required[id]) {
			if relaxed && s.waivable(id, state) {
				continue
			}
			score.Excluded = true
			score.ExclusionReason = fmt.Sprintf("required %s not matched", id)
			score.Score = domain.ScoreExcluded
			score.Breakdown = append(score.Breakdown, domain.ScoreContribution{
				DriverID: id, Kind: "required", Matched: false, Points: domain.ScoreExcluded,
			})
			return score
		}
		score.MatchedRequired++
		score.Breakdown = append(score.Breakdown, domain.ScoreContribution{
			DriverID: id, Kind: "required", Matched: true,
		})
	}

	for _, id := range orderedDrivers(sc.Strong) {
		if s.skipContribution(id, relaxed) {
			continue
		}
		matched := state.Matches(id, sc.Strong[id])
		points := 0.0
		if matched {
			points = s.rules.Weights.Strong
			score.MatchedStrong++
			score.Score += points
		}
		score.Breakdown = append(score.Breakdown, domain.ScoreContribution{
			DriverID: id, Kind: "strong", Matched: matched, Points: points,
		})
	}

	for _, id := range orderedDrivers(sc.Supporting) {
		if s.skipContribution(id, relaxed) {
			continue
		}
		matched := state.Matches(id, sc.Supporting[id])
		points := 0.0
		if matched {
			points = s.rules.Weights.Supporting
			score.MatchedSupporting++
			score.Score += points
		}
		score.Breakdown = append(score.Breakdown, domain.ScoreContribution{
			DriverID: id, Kind: "supporting", Matched: matched, Points: points,
		})
	}

	return score
}

// skipContribution drops narrative-layer strong/supporting entries in the
// relaxed pass.
func (s *Scorer) skipContribution(id domain.DriverID, relaxed bool) bool {
	if !relaxed {
		return false
	}
	spec := s.rules.Driver(id)
	return spec != nil && spec.Layer == domain.LayerNarrative
}

// waivable reports whether a mismatched required driver may be waived in the
// relaxed pass. Only narrative drivers whose value is a mere fallback qualify:
// the intake said nothing, so the requirement is unknown rather than
// contradicted. A derived narrative value that mismatches still excludes.
func (s *Scorer) waivable(id domain.DriverID, state *domain.DriverState) bool {
	spec := s.rules.Driver(id)
	if spec == nil || spec.Layer != domain.LayerNarrative {
		return false
	}
	return state.Drivers[id].Source == domain.SourceFallback
}

// pickWinner returns the highest-scoring non-excluded scenario if it clears
// at least the LOW band; scores that only reach the FALLBACK band go through
// the cascade instead. Ties resolve by the configured priority order, never
// by iteration order.
func (s *Scorer) pickWinner(scores []domain.ScenarioScore) (domain.ScenarioScore, domain.Confidence, bool) {
	best, ok := s.bestScore(scores)
	if !ok {
		return domain.ScenarioScore{}, "", false
	}
	conf, ok := s.confidenceFor(best.Score)
	if !ok || conf == domain.ConfidenceFallback {
		return domain.ScenarioScore{}, "", false
	}
	return best, conf, true
}

func (s *Scorer) bestScore(scores []domain.ScenarioScore) (domain.ScenarioScore, bool) {
	candidates := make([]domain.ScenarioScore, 0, len(scores))
	for _, sc := range scores {
		if !sc.Excluded {
			candidates = append(candidates, sc)
		}
	}
	if len(candidates) == 0 {
		return domain.ScenarioScore{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return s.priorityRank(candidates[i].ScenarioID) < s.priorityRank(candidates[j].ScenarioID)
	})
	return candidates[0], true
}

func (s *Scorer) priorityRank(scenarioID string) int {
	for i, id := range s.rules.PriorityOrder {
		if id == scenarioID {
			return i
		}
	}
	return len(s.rules.PriorityOrder)
}

// confidenceFor maps a score onto the configured bands (validated strictly
// descending). A score below the lowest band has no confidence at all.
func (s *Scorer) confidenceFor(score float64) (domain.Confidence, bool) {
	for _, t := range s.rules.Thresholds {
		if score >= t.MinScore {
			return t.Confidence, true
		}
	}
	return "", false
}

// fallback runs the cascade: a relaxed re-score without narrative drivers,
// forced to MEDIUM if it clears the LOW band, then the archetype for the
// mouth situation (LOW), then the generic scenario (FALLBACK, score 0).
func (s *Scorer) fallback(state *domain.DriverState, originalScores []domain.ScenarioScore) *domain.ScenarioMatchResult {
	relaxed := s.scoreAll(state, true)
	if best, ok := s.bestScore(relaxed); ok {
		if conf, clears := s.confidenceFor(best.Score); clears && conf != domain.ConfidenceFallback {
			s.logger.WithFields(logrus.Fields{
				"session_id": state.SessionID,
				"scenario":   best.ScenarioID,
			}).Info("Scenario matched after relaxing lifestyle drivers")
			return &domain.ScenarioMatchResult{
				MatchedScenario: best.ScenarioID,
				Confidence:      domain.ConfidenceMedium,
				Score:           best.Score,
				AllScores:       originalScores,
				FallbackUsed:    true,
				FallbackReason:  "no scenario cleared the thresholds; re-scored without lifestyle drivers",
			}
		}
	}

	situation := state.Value(domain.DriverMouthSituation)
	if archetype, ok := s.rules.ArchetypeBySituation[situation]; ok {
		s.logger.WithFields(logrus.Fields{
			"session_id": state.SessionID,
			"situation":  situation,
			"scenario":   archetype,
		}).Info("Scenario matched by mouth-situation archetype")
		return &domain.ScenarioMatchResult{
			MatchedScenario: archetype,
			Confidence:      domain.ConfidenceLow,
			AllScores:       originalScores,
			FallbackUsed:    true,
			FallbackReason:  fmt.Sprintf("archetype for mouth situation %q", situation),
		}
	}

	s.logger.WithField("session_id", state.SessionID).
		Warn("No scenario matched; using the generic fallback")
	return &domain.ScenarioMatchResult{
		MatchedScenario: s.rules.FallbackScenarioID,
		Confidence:      domain.ConfidenceFallback,
		AllScores:       originalScores,
		FallbackUsed:    true,
		FallbackReason:  "no scenario or archetype matched",
	}
}

// orderedDrivers iterates a scenario driver map in the fixed driver order so
// scoring breakdowns are byte-identical across runs.
func orderedDrivers(m map[domain.DriverID][]string) []domain.DriverID {
	if len(m) == 0 {
		return nil
	}
	out := make([]domain.DriverID, 0, len(m))
	for _, id := range domain.AllDriverIDs {
		if _, ok := m[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
