package qa

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dental-report-engine/internal/domain"
	"github.com/dental-report-engine/internal/rules"
)

type fakeEvaluator struct {
	verdict *domain.EvaluatorVerdict
	err     error
	calls   int
}

func (f *fakeEvaluator) Evaluate(context.Context, *domain.ComposedReport) (*domain.EvaluatorVerdict, error) {
	f.calls++
	return f.verdict, f.err
}

func newGate(rs *rules.RuleSet, evaluator domain.Evaluator, canBlock bool) *Gate {
	return NewGate(testLogger(), rs,
		NewLeakageDetector(testLogger(), rs),
		NewStructureValidator(testLogger(), rs),
		evaluator, canBlock)
}

func TestCheckPassesCleanReport(t *testing.T) {
	g := newGate(rules.Builtin(), nil, false)

	result := g.Check(context.Background(), cleanReport("balanced_warm"))

	assert.Equal(t, domain.OutcomePass, result.Outcome)
	assert.Equal(t, domain.OutcomePass, result.RuleOutcome)
	assert.Empty(t, result.Reasons)
}

func TestCheckBlocksOnCriticalViolation(t *testing.T) {
	g := newGate(rules.Builtin(), nil, false)

	report := cleanReport("balanced_warm")
	report.Sections[3].Text = "We guarantee the implant never fails."

	result := g.Check(context.Background(), report)

	assert.Equal(t, domain.OutcomeBlock, result.Outcome)
	assert.Equal(t, 2, result.CriticalViolations)
	require.NotEmpty(t, result.Reasons)
	assert.Contains(t, result.Reasons[0], "critical semantic violations")
}

func TestCheckBlocksOnMissingRequiredSection(t *testing.T) {
	g := newGate(rules.Builtin(), nil, false)

	report := cleanReport("balanced_warm")
	report.Sections = report.Sections[:len(report.Sections)-1] // drop the disclaimer

	result := g.Check(context.Background(), report)

	assert.Equal(t, domain.OutcomeBlock, result.Outcome)
	require.NotEmpty(t, result.Reasons)
	assert.Contains(t, result.Reasons[0], "structural issues")
}

func TestCheckFlagsOnSemanticWarningBudget(t *testing.T) {
	g := newGate(rules.Builtin(), nil, false)

	// three warning hits against a budget of two
	report := cleanReport("balanced_warm")
	report.Sections[1].Text = "You must act, as this is the only option and there is no alternative."

	result := g.Check(context.Background(), report)

	assert.Equal(t, domain.OutcomeFlag, result.Outcome)
	assert.Equal(t, 3, result.WarningViolations)
	assert.Zero(t, result.CriticalViolations)
}

func TestCheckFlagsOnStructuralWarningBudget(t *testing.T) {
	g := newGate(rules.Builtin(), nil, false)

	// four degraded sections against a budget of three
	report := cleanReport("balanced_warm")
	for i := 0; i < 4; i++ {
		report.Sections[i].Degraded = true
	}

	result := g.Check(context.Background(), report)

	assert.Equal(t, domain.OutcomeFlag, result.Outcome)
	require.NotEmpty(t, result.Reasons)
	assert.Contains(t, result.Reasons[0], "structural warnings")
}

func TestCheckWarningsWithinBudgetStillPass(t *testing.T) {
	g := newGate(rules.Builtin(), nil, false)

	report := cleanReport("balanced_warm")
	report.Sections[2].Degraded = true
	report.PlaceholdersUnresolved = []string{"TOOTH_COUNT"}

	result := g.Check(context.Background(), report)

	assert.Equal(t, domain.OutcomePass, result.Outcome)
	assert.Len(t, result.StructuralIssues, 2)
}

func TestCheckFlagsLowMatchConfidence(t *testing.T) {
	tests := []struct {
		name       string
		confidence domain.Confidence
		want       domain.Outcome
	}{
		{"high passes", domain.ConfidenceHigh, domain.OutcomePass},
		{"medium passes", domain.ConfidenceMedium, domain.OutcomePass},
		{"low flags", domain.ConfidenceLow, domain.OutcomeFlag},
		{"fallback flags", domain.ConfidenceFallback, domain.OutcomeFlag},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGate(rules.Builtin(), nil, false)

			report := cleanReport("balanced_warm")
			report.Confidence = tt.confidence

			result := g.Check(context.Background(), report)

			assert.Equal(t, tt.want, result.Outcome)
			if tt.want == domain.OutcomeFlag {
				require.NotEmpty(t, result.Reasons)
				assert.Contains(t, result.Reasons[0], "confidence")
			}
		})
	}
}

func TestCheckEvaluatorTightensOnly(t *testing.T) {
	tests := []struct {
		name           string
		recommendation domain.Outcome
		canBlock       bool
		want           domain.Outcome
		wantDowngraded bool
	}{
		{"pass verdict keeps pass", domain.OutcomePass, false, domain.OutcomePass, false},
		{"flag verdict upgrades pass", domain.OutcomeFlag, false, domain.OutcomeFlag, false},
		{"block verdict downgraded without trust", domain.OutcomeBlock, false, domain.OutcomeFlag, true},
		{"block verdict honored with trust", domain.OutcomeBlock, true, domain.OutcomeBlock, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval := &fakeEvaluator{verdict: &domain.EvaluatorVerdict{Recommendation: tt.recommendation, Score: 0.4}}
			g := newGate(rules.Builtin(), eval, tt.canBlock)

			result := g.Check(context.Background(), cleanReport("balanced_warm"))

			assert.Equal(t, tt.want, result.Outcome)
			assert.Equal(t, domain.OutcomePass, result.RuleOutcome)
			require.NotNil(t, result.Evaluator)
			assert.Equal(t, tt.wantDowngraded, result.Evaluator.Downgraded)
			assert.Equal(t, 1, eval.calls)
		})
	}
}

func TestCheckEvaluatorErrorIsAdvisory(t *testing.T) {
	eval := &fakeEvaluator{err: errors.New("timeout")}
	g := newGate(rules.Builtin(), eval, true)

	result := g.Check(context.Background(), cleanReport("balanced_warm"))

	assert.Equal(t, domain.OutcomePass, result.Outcome)
	assert.Nil(t, result.Evaluator)
}

func TestCheckEvaluatorSkippedOnRuleBlock(t *testing.T) {
	eval := &fakeEvaluator{verdict: &domain.EvaluatorVerdict{Recommendation: domain.OutcomePass}}
	g := newGate(rules.Builtin(), eval, true)

	report := cleanReport("balanced_warm")
	report.Sections[0].Text = "A risk-free miracle."

	result := g.Check(context.Background(), report)

	assert.Equal(t, domain.OutcomeBlock, result.Outcome)
	assert.Zero(t, eval.calls)
}
