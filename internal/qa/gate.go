package qa

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dental-report-engine/internal/domain"
	"github.com/dental-report-engine/internal/rules"
)

// Gate makes the final release decision for a composed report. The decision
// is rule-based; an optional advisory evaluator can tighten it but never
// loosen it.
type Gate struct {
	logger            *logrus.Logger
	rules             *rules.RuleSet
	detector          *LeakageDetector
	validator         *StructureValidator
	evaluator         domain.Evaluator
	evaluatorCanBlock bool
}

// NewGate creates a QA gate. evaluator may be nil.
func NewGate(logger *logrus.Logger, rs *rules.RuleSet, detector *LeakageDetector,
	validator *StructureValidator, evaluator domain.Evaluator, evaluatorCanBlock bool) *Gate {
	return &Gate{
		logger:            logger,
		rules:             rs,
		detector:          detector,
		validator:         validator,
		evaluator:         evaluator,
		evaluatorCanBlock: evaluatorCanBlock,
	}
}

// Check runs the semantic scan, the structural checks and the tier decision.
func (g *Gate) Check(ctx context.Context, report *domain.ComposedReport) *domain.QAResult {
	result := &domain.QAResult{
		Violations:       g.detector.Scan(report),
		StructuralIssues: g.validator.Validate(report),
	}

	structuralErrors, structuralWarnings := 0, 0
	for _, issue := range result.StructuralIssues {
		if issue.Blocking {
			structuralErrors++
		} else {
			structuralWarnings++
		}
	}
	for _, v := range result.Violations {
		if v.Severity == domain.SeverityCritical {
			result.CriticalViolations++
		} else {
			result.WarningViolations++
		}
	}

	limits := g.rules.QA
	switch {
	case result.CriticalViolations > limits.MaxCriticalViolations:
		result.RuleOutcome = domain.OutcomeBlock
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("%d critical semantic violations (limit %d)", result.CriticalViolations, limits.MaxCriticalViolations))
	case structuralErrors > limits.MaxStructuralErrors:
		result.RuleOutcome = domain.OutcomeBlock
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("%d blocking structural issues (limit %d)", structuralErrors, limits.MaxStructuralErrors))
	case result.WarningViolations > limits.MaxSemanticWarnings:
		result.RuleOutcome = domain.OutcomeFlag
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("%d semantic warnings (limit %d)", result.WarningViolations, limits.MaxSemanticWarnings))
	case structuralWarnings > limits.MaxStructuralWarnings:
		result.RuleOutcome = domain.OutcomeFlag
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("%d structural warnings (limit %d)", structuralWarnings, limits.MaxStructuralWarnings))
	case report.Confidence == domain.ConfidenceLow || report.Confidence == domain.ConfidenceFallback:
		result.RuleOutcome = domain.OutcomeFlag
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("scenario match confidence %s", report.Confidence))
	default:
		result.RuleOutcome = domain.OutcomePass
	}

	result.Outcome = result.RuleOutcome
	if result.RuleOutcome != domain.OutcomeBlock && g.evaluator != nil {
		g.applyEvaluator(ctx, report, result)
	}

	g.logger.WithFields(logrus.Fields{
		"session_id":          report.SessionID,
		"outcome":             result.Outcome.String(),
		"rule_outcome":        result.RuleOutcome.String(),
		"critical_violations": result.CriticalViolations,
		"warning_violations":  result.WarningViolations,
		"structural_issues":   len(result.StructuralIssues),
	}).Info("QA gate decision")
	return result
}

// applyEvaluator folds the advisory verdict into the outcome. The verdict
// can only tighten: FLAG always propagates, BLOCK propagates only when the
// evaluator is trusted to block and is otherwise downgraded to FLAG. An
// evaluator failure is itself advisory and leaves the rule outcome as is.
func (g *Gate) applyEvaluator(ctx context.Context, report *domain.ComposedReport, result *domain.QAResult) {
	verdict, err := g.evaluator.Evaluate(ctx, report)
	if err != nil {
		g.logger.WithError(err).WithField("session_id", report.SessionID).
			Warn("Report evaluator unavailable; keeping the rule-based outcome")
		return
	}
	result.Evaluator = verdict

	switch verdict.Recommendation {
	case domain.OutcomeBlock:
		if g.evaluatorCanBlock {
			result.Outcome = domain.OutcomeBlock
			result.Reasons = append(result.Reasons, "evaluator recommended BLOCK")
		} else {
			verdict.Downgraded = true
			result.Outcome = domain.OutcomeFlag
			result.Reasons = append(result.Reasons, "evaluator recommended BLOCK, downgraded to FLAG")
		}
	case domain.OutcomeFlag:
		if result.Outcome == domain.OutcomePass {
			result.Outcome = domain.OutcomeFlag
			result.Reasons = append(result.Reasons, "evaluator recommended FLAG")
		}
	}
}
