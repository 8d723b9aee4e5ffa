package drivers

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dental-report-engine/internal/domain"
	"github.com/dental-report-engine/internal/rules"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func tagsFromNames(names ...string) []domain.ExtractedTag {
	tags := make([]domain.ExtractedTag, len(names))
	for i, n := range names {
		tags[i] = domain.ExtractedTag{Tag: n, SourceQuestion: "test", SourceAnswer: n}
	}
	return tags
}

func TestDeriveProducesEveryDriver(t *testing.T) {
	d := NewDeriver(testLogger(), rules.Builtin())

	state := d.Derive("s-1", nil)

	require.Len(t, state.Drivers, len(domain.AllDriverIDs))
	for _, id := range domain.AllDriverIDs {
		dv, ok := state.Drivers[id]
		require.True(t, ok, "driver %s missing", id)
		assert.Equal(t, domain.SourceFallback, dv.Source)
		assert.Equal(t, 0.5, dv.Confidence)
		assert.NotEmpty(t, dv.Value)
	}
	assert.Len(t, state.FallbacksApplied, len(domain.AllDriverIDs))
}

func TestDeriveMatchesRules(t *testing.T) {
	d := NewDeriver(testLogger(), rules.Builtin())

	state := d.Derive("s-2", tagsFromNames("gap_single", "anxiety_high"))

	assert.Equal(t, "single_gap", state.Value(domain.DriverMouthSituation))
	assert.Equal(t, "high", state.Value(domain.DriverAnxietyLevel))

	dv := state.Drivers[domain.DriverMouthSituation]
	assert.Equal(t, domain.SourceDerived, dv.Source)
	assert.Equal(t, []string{"gap_single"}, dv.SourceTags)
	assert.Equal(t, 0.7, dv.Confidence) // 1 tag: 0.3 + 0.4
}

func TestDeriveTagsAnyCountsPresentTags(t *testing.T) {
	d := NewDeriver(testLogger(), rules.Builtin())

	state := d.Derive("s-3", tagsFromNames("symptom_pain", "symptom_swelling"))

	dv := state.Drivers[domain.DriverClinicalPriority]
	assert.Equal(t, "urgent", dv.Value)
	assert.ElementsMatch(t, []string{"symptom_pain", "symptom_swelling"}, dv.SourceTags)
	assert.Equal(t, 1.0, dv.Confidence) // 2 tags: min(1, 0.6+0.4)
}

func TestDeriveConflictResolvedByPriority(t *testing.T) {
	d := NewDeriver(testLogger(), rules.Builtin())

	// pain (priority 1, urgent) and gap_most (priority 3, elevated) both
	// match clinical_priority with differing values
	state := d.Derive("s-4", tagsFromNames("symptom_pain", "gap_most"))

	assert.Equal(t, "urgent", state.Value(domain.DriverClinicalPriority))
	require.Len(t, state.Conflicts, 1)
	conflict := state.Conflicts[0]
	assert.Equal(t, domain.DriverClinicalPriority, conflict.DriverID)
	assert.Equal(t, "urgent", conflict.ResolvedValue)
	assert.Equal(t, 1, conflict.WinningPriority)
	assert.Equal(t, []string{"urgent", "elevated"}, conflict.CandidateValues)
}

func TestDeriveSameValueMatchesAreNoConflict(t *testing.T) {
	d := NewDeriver(testLogger(), rules.Builtin())

	// pref_detailed matches decision_style twice (priorities 1 and 2), both
	// with value analytical
	state := d.Derive("s-5", tagsFromNames("pref_detailed", "budget_balanced"))

	assert.Equal(t, "analytical", state.Value(domain.DriverDecisionStyle))
	assert.Empty(t, state.Conflicts)
}

func TestDeriveAdditiveRulesCombine(t *testing.T) {
	d := NewDeriver(testLogger(), rules.Builtin())

	state := d.Derive("s-6", tagsFromNames("motive_chewing", "motive_health", "motive_speech"))

	dv := state.Drivers[domain.DriverMotivation]
	assert.Equal(t, "function+health+speech", dv.Value)
	assert.Equal(t, domain.SourceDerived, dv.Source)
	assert.Equal(t, 1.0, dv.Confidence) // 3 tags

	// additive matches never register as conflicts
	for _, c := range state.Conflicts {
		assert.NotEqual(t, domain.DriverMotivation, c.DriverID)
	}
}

func TestDeriveIsDeterministic(t *testing.T) {
	d := NewDeriver(testLogger(), rules.Builtin())
	tags := tagsFromNames("symptom_pain", "gap_most", "motive_health", "motive_chewing", "smoker")

	first := d.Derive("s-7", tags)
	for i := 0; i < 10; i++ {
		again := d.Derive("s-7", tags)
		require.Equal(t, first.Drivers, again.Drivers)
		require.Equal(t, first.Conflicts, again.Conflicts)
	}
}
