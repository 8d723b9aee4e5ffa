package qa

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dental-report-engine/internal/domain"
	"github.com/dental-report-engine/internal/rules"
)

// Structural issue codes.
const (
	CodeMissingRequiredSection = "MISSING_REQUIRED_SECTION"
	CodeSuppressedRequired     = "SUPPRESSED_REQUIRED_SECTION"
	CodeEmptySection           = "EMPTY_SECTION"
	CodeDegradedSection        = "DEGRADED_SECTION"
	CodeUnresolvedPlaceholder  = "UNRESOLVED_PLACEHOLDER"
	CodeReportTooShort         = "REPORT_TOO_SHORT"
)

// minReportWords is the sanity floor below which a report is suspiciously
// thin even when all sections are present.
const minReportWords = 50

// StructureValidator checks a composed report for completeness.
type StructureValidator struct {
	logger *logrus.Logger
	rules  *rules.RuleSet
}

// NewStructureValidator creates a composition validator.
func NewStructureValidator(logger *logrus.Logger, rs *rules.RuleSet) *StructureValidator {
	return &StructureValidator{logger: logger, rules: rs}
}

// Validate returns every structural finding. Blocking issues fail the gate
// outright; the rest count against the warning budget.
func (v *StructureValidator) Validate(report *domain.ComposedReport) []domain.StructuralIssue {
	var issues []domain.StructuralIssue

	present := make(map[int]*domain.ComposedSection, len(report.Sections))
	for i := range report.Sections {
		present[report.Sections[i].Section] = &report.Sections[i]
	}
	suppressed := make(map[int]bool, len(report.SuppressedSections))
	for _, n := range report.SuppressedSections {
		suppressed[n] = true
	}

	for _, layout := range v.rules.Sections {
		section, ok := present[layout.Number]
		if !ok {
			if !layout.Required {
				continue
			}
			if suppressed[layout.Number] && layout.Suppressible {
				issues = append(issues, domain.StructuralIssue{
					Section: layout.Number,
					Code:    CodeSuppressedRequired,
					Message: fmt.Sprintf("required section %d suppressed by a safety rule", layout.Number),
				})
				continue
			}
			issues = append(issues, domain.StructuralIssue{
				Section:  layout.Number,
				Code:     CodeMissingRequiredSection,
				Message:  fmt.Sprintf("required section %d (%s) is missing", layout.Number, layout.Title),
				Blocking: true,
			})
			continue
		}

		if section.WordCount == 0 {
			issues = append(issues, domain.StructuralIssue{
				Section: layout.Number,
				Code:    CodeEmptySection,
				Message: fmt.Sprintf("section %d rendered empty", layout.Number),
			})
		}
		if section.Degraded {
			issues = append(issues, domain.StructuralIssue{
				Section: layout.Number,
				Code:    CodeDegradedSection,
				Message: fmt.Sprintf("section %d lost content to retrieval failures", layout.Number),
			})
		}
	}

	for _, token := range report.PlaceholdersUnresolved {
		issues = append(issues, domain.StructuralIssue{
			Code:     CodeUnresolvedPlaceholder,
			Message:  fmt.Sprintf("placeholder %s left unresolved", token),
			Blocking: v.rules.QA.BlockOnUnresolvedPlaceholders,
		})
	}

	if report.TotalWordCount < minReportWords {
		issues = append(issues, domain.StructuralIssue{
			Code:    CodeReportTooShort,
			Message: fmt.Sprintf("report has %d words, expected at least %d", report.TotalWordCount, minReportWords),
		})
	}

	if len(issues) > 0 {
		v.logger.WithFields(logrus.Fields{
			"session_id": report.SessionID,
			"issues":     len(issues),
		}).Debug("Structural findings for composed report")
	}
	return issues
}
