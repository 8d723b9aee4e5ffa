package content

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dental-report-engine/internal/domain"
	"github.com/dental-report-engine/internal/rules"
	"github.com/dental-report-engine/internal/tone"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func stateWith(rs *rules.RuleSet, overrides map[domain.DriverID]string) *domain.DriverState {
	state := &domain.DriverState{
		SessionID: "test-session",
		Drivers:   make(map[domain.DriverID]domain.DriverValue, len(rs.Drivers)),
	}
	for _, spec := range rs.Drivers {
		value := spec.Fallback
		if v, ok := overrides[spec.ID]; ok {
			value = v
		}
		state.Drivers[spec.ID] = domain.DriverValue{
			DriverID: spec.ID, Layer: spec.Layer, Value: value, Source: domain.SourceDerived,
		}
	}
	return state
}

func newTestSelector(rs *rules.RuleSet) *Selector {
	return NewSelector(testLogger(), rs, tone.NewSelector(testLogger(), rs))
}

func genericMatch() *domain.ScenarioMatchResult {
	return &domain.ScenarioMatchResult{MatchedScenario: "SC_GENERIC", Confidence: domain.ConfidenceFallback}
}

func findSelection(t *testing.T, selections []domain.ContentSelection, contentID string, section int) domain.ContentSelection {
	t.Helper()
	for _, sel := range selections {
		if sel.ContentID == contentID && sel.TargetSection == section {
			return sel
		}
	}
	t.Fatalf("selection %s for section %d not found", contentID, section)
	return domain.ContentSelection{}
}

func hasSelection(selections []domain.ContentSelection, contentID string) bool {
	for _, sel := range selections {
		if sel.ContentID == contentID {
			return true
		}
	}
	return false
}

func TestSelectAnchorsScenario(t *testing.T) {
	rs := rules.Builtin()
	s := newTestSelector(rs)

	match := &domain.ScenarioMatchResult{MatchedScenario: "SC_SINGLE_IMPLANT", Confidence: domain.ConfidenceHigh}
	selections := s.Select(stateWith(rs, nil), match, "balanced_warm", nil)

	anchor := findSelection(t, selections, "SC_SINGLE_IMPLANT", rs.ScenarioSection)
	assert.Equal(t, domain.ContentScenario, anchor.Type)
	assert.Equal(t, rs.ScenarioPriority, anchor.Priority)
	assert.False(t, anchor.Suppressed)
}

func TestSelectScenarioAnchorSurvivesSuppression(t *testing.T) {
	rs := rules.Builtin()
	s := newTestSelector(rs)

	// surgical contraindication suppresses section 8 and implant patterns, but
	// the scenario anchor is exempt even when its id would match a pattern
	state := stateWith(rs, map[domain.DriverID]string{
		domain.DriverMedicalConstraints: "surgical_contraindicated",
	})
	match := &domain.ScenarioMatchResult{MatchedScenario: "SC_SAFETY", SafetyOverride: true}

	selections := s.Select(state, match, "balanced_warm", nil)

	anchor := findSelection(t, selections, "SC_SAFETY", rs.ScenarioSection)
	assert.False(t, anchor.Suppressed)
}

func TestSelectWarningBlocks(t *testing.T) {
	rs := rules.Builtin()
	s := newTestSelector(rs)

	state := stateWith(rs, map[domain.DriverID]string{
		domain.DriverClinicalPriority: "urgent",
		domain.DriverPregnancyStatus:  "pregnant",
	})

	selections := s.Select(state, genericMatch(), "balanced_warm", nil)

	acute := findSelection(t, selections, "a_acute_symptoms", rs.WarningsSection)
	assert.Equal(t, domain.ContentABlock, acute.Type)
	assert.False(t, acute.Suppressed)

	pregnancy := findSelection(t, selections, "a_pregnancy_notice", rs.WarningsSection)
	assert.False(t, pregnancy.Suppressed)

	assert.False(t, hasSelection(selections, "a_smoking_risk"))
}

func TestSelectSectionSuppressionMarksBlocks(t *testing.T) {
	rs := rules.Builtin()
	s := newTestSelector(rs)

	// pregnancy blocks section 7, where the cost overview lives
	state := stateWith(rs, map[domain.DriverID]string{
		domain.DriverPregnancyStatus:   "pregnant",
		domain.DriverBudgetSensitivity: "high",
	})

	selections := s.Select(state, genericMatch(), "balanced_warm", nil)

	cost := findSelection(t, selections, "b_cost_overview", 7)
	require.True(t, cost.Suppressed)
	assert.Contains(t, cost.SuppressionReason, "pregnancy_status=pregnant")
}

func TestSelectPatternSuppressionMarksBlocks(t *testing.T) {
	rs := rules.Builtin()
	s := newTestSelector(rs)

	// single gap triggers the implant explainer; the contraindication pattern
	// b_implant_* suppresses it
	state := stateWith(rs, map[domain.DriverID]string{
		domain.DriverMouthSituation:     "single_gap",
		domain.DriverMedicalConstraints: "surgical_contraindicated",
	})

	selections := s.Select(state, genericMatch(), "balanced_warm", nil)

	implant := findSelection(t, selections, "b_implant_explainer", 4)
	require.True(t, implant.Suppressed)
	assert.Contains(t, implant.SuppressionReason, "surgical_contraindicated")

	// the bridge explainer shares the section but not the pattern
	assert.False(t, hasSelection(selections, "b_bridge_explainer"))
}

func TestSelectModules(t *testing.T) {
	rs := rules.Builtin()
	s := newTestSelector(rs)

	t.Run("driver trigger", func(t *testing.T) {
		state := stateWith(rs, map[domain.DriverID]string{
			domain.DriverTreatmentExperience: "first_time",
		})
		selections := s.Select(state, genericMatch(), "balanced_warm", nil)

		mod := findSelection(t, selections, "mod_first_time_reassure", 6)
		assert.Equal(t, domain.ContentModule, mod.Type)
		assert.Equal(t, 30, mod.Priority)
	})

	t.Run("tag trigger emits one selection per target section", func(t *testing.T) {
		selections := s.Select(stateWith(rs, nil), genericMatch(), "balanced_warm",
			map[string]bool{"smoker": true})

		findSelection(t, selections, "mod_smoker_healing", 6)
		findSelection(t, selections, "mod_smoker_healing", 9)
	})

	t.Run("pattern suppression applies to modules", func(t *testing.T) {
		state := stateWith(rs, map[domain.DriverID]string{
			domain.DriverTimeAvailability: "flexible",
			domain.DriverSymptomAcuity:    "active",
		})
		selections := s.Select(state, genericMatch(), "balanced_warm", nil)

		mod := findSelection(t, selections, "mod_elective_timing", 6)
		assert.True(t, mod.Suppressed)
	})
}

func TestSelectStatics(t *testing.T) {
	rs := rules.Builtin()
	s := newTestSelector(rs)

	selections := s.Select(stateWith(rs, nil), genericMatch(), "empathic_calm", nil)

	for _, static := range rs.Statics {
		sel := findSelection(t, selections, static.ID, static.Section)
		assert.Equal(t, domain.ContentStatic, sel.Type)
		assert.False(t, sel.Suppressed)
	}

	// pinned statics keep their tone regardless of the report tone
	nextSteps := findSelection(t, selections, "static_next_steps", rs.NextStepsSection)
	assert.Equal(t, "autonomy_supportive", nextSteps.Tone)

	disclaimer := findSelection(t, selections, "static_disclaimer", 12)
	assert.Equal(t, "empathic_calm", disclaimer.Tone)
}

func TestSelectIsDeterministic(t *testing.T) {
	rs := rules.Builtin()
	s := newTestSelector(rs)
	state := stateWith(rs, map[domain.DriverID]string{
		domain.DriverMouthSituation:     "single_gap",
		domain.DriverMedicalConstraints: "surgical_contraindicated",
		domain.DriverPregnancyStatus:    "pregnant",
	})
	tags := map[string]bool{"smoker": true, "age_senior": true}

	first := s.Select(state, genericMatch(), "balanced_warm", tags)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, s.Select(state, genericMatch(), "balanced_warm", tags))
	}
}
