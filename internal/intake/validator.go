// Package intake validates raw questionnaire answers and extracts semantic
// tags from them. Validation is the only stage allowed to reject a run
// outright before any driver logic executes.
package intake

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/dental-report-engine/internal/domain"
	"github.com/dental-report-engine/internal/rules"
)

// ValidationResult is the non-throwing outcome of intake validation.
type ValidationResult struct {
	Valid    bool                  `json:"valid"`
	Errors   []*domain.IntakeError `json:"errors,omitempty"`
	Warnings []string              `json:"warnings,omitempty"`
}

// Validator checks raw answers against the per-question schema and the
// required/conditional rule set.
type Validator struct {
	logger *logrus.Logger
	rules  *rules.RuleSet
}

// NewValidator creates an intake validator.
func NewValidator(logger *logrus.Logger, rs *rules.RuleSet) *Validator {
	return &Validator{logger: logger, rules: rs}
}

// Validate checks every answer. It never returns an error itself; callers
// that want a throwing variant use MustValidate.
func (v *Validator) Validate(answers []domain.QuestionAnswer) *ValidationResult {
	result := &ValidationResult{Valid: true}

	byQuestion := make(map[string]domain.QuestionAnswer, len(answers))
	for _, a := range answers {
		q := v.rules.Question(a.QuestionID)
		if q == nil {
			result.addError(&domain.IntakeError{
				QuestionID: a.QuestionID,
				Code:       domain.IntakeUnknownQuestion,
				Message:    "question is not part of the configured questionnaire",
			})
			continue
		}
		byQuestion[a.QuestionID] = a
	}

	for _, q := range v.rules.Questions {
		answer, answered := byQuestion[q.ID]
		if answered && answer.Skipped {
			answered = false
		}

		if q.Conditional != nil && !v.conditionApplies(q, byQuestion) {
			// Not applicable: an answer here is ignored with a warning, a
			// missing answer is simply fine.
			if answered {
				result.Warnings = append(result.Warnings, fmt.Sprintf(
					"answer to %s ignored: question not applicable for parent %s",
					q.ID, q.Conditional.ParentID))
			}
			continue
		}

		if !answered {
			if q.Required {
				result.addError(&domain.IntakeError{
					QuestionID: q.ID,
					Code:       domain.IntakeMissingRequired,
					Message:    "required question was not answered",
					Expected:   q.AllowedValues,
				})
			}
			continue
		}

		v.validateAnswer(q, answer, result)
	}

	v.logger.WithFields(logrus.Fields{
		"answers":  len(answers),
		"valid":    result.Valid,
		"errors":   len(result.Errors),
		"warnings": len(result.Warnings),
	}).Debug("Completed intake validation")

	return result
}

// MustValidate wraps Validate and returns an error when the intake is
// invalid, carrying the first per-question error message.
func (v *Validator) MustValidate(answers []domain.QuestionAnswer) (*ValidationResult, error) {
	result := v.Validate(answers)
	if !result.Valid {
		return result, fmt.Errorf("intake validation failed with %d errors: %s",
			len(result.Errors), result.Errors[0].Error())
	}
	return result, nil
}

func (v *Validator) validateAnswer(q rules.Question, answer domain.QuestionAnswer, result *ValidationResult) {
	switch q.Type {
	case rules.QuestionMultiChoice:
		if !answer.IsMulti() {
			result.addError(&domain.IntakeError{
				QuestionID: q.ID,
				Code:       domain.IntakeWrongShape,
				Message:    "expected a list of answers for a multi-select question",
				Expected:   q.AllowedValues,
			})
			return
		}
		for _, val := range answer.Values {
			v.checkMembership(q, val, result)
		}

	case rules.QuestionChoice:
		if answer.IsMulti() {
			result.addError(&domain.IntakeError{
				QuestionID: q.ID,
				Code:       domain.IntakeWrongShape,
				Message:    "expected a single answer for a single-select question",
				Expected:   q.AllowedValues,
			})
			return
		}
		v.checkMembership(q, answer.Value, result)

	case rules.QuestionNumericRange:
		if answer.IsMulti() {
			result.addError(&domain.IntakeError{
				QuestionID: q.ID,
				Code:       domain.IntakeWrongShape,
				Message:    "expected a single numeric answer",
			})
			return
		}
		if _, err := strconv.Atoi(strings.TrimSpace(answer.Value)); err != nil {
			result.addError(&domain.IntakeError{
				QuestionID: q.ID,
				Code:       domain.IntakeNotNumeric,
				Message:    fmt.Sprintf("answer %q is not an integer", answer.Value),
			})
		}

	case rules.QuestionText:
		// free text, nothing to check
	}
}

func (v *Validator) checkMembership(q rules.Question, value string, result *ValidationResult) {
	normalized := NormalizeAnswer(value)
	for _, allowed := range q.AllowedValues {
		if normalized == allowed {
			return
		}
	}
	result.addError(&domain.IntakeError{
		QuestionID: q.ID,
		Code:       domain.IntakeInvalidValue,
		Message:    fmt.Sprintf("answer %q is not an allowed value", value),
		Expected:   q.AllowedValues,
	})
}

// conditionApplies reports whether a conditional question is applicable
// given the parent's answer.
func (v *Validator) conditionApplies(q rules.Question, byQuestion map[string]domain.QuestionAnswer) bool {
	parent, ok := byQuestion[q.Conditional.ParentID]
	if !ok || parent.Skipped {
		return false
	}
	for _, parentValue := range parent.AllValues() {
		normalized := NormalizeAnswer(parentValue)
		for _, accepted := range q.Conditional.ParentValues {
			if normalized == accepted {
				return true
			}
		}
	}
	return false
}

func (r *ValidationResult) addError(err *domain.IntakeError) {
	r.Valid = false
	r.Errors = append(r.Errors, err)
}
