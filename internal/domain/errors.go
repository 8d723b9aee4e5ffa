package domain

import "fmt"

// IntakeError reports a per-question input problem together with the
// expected value set, so the caller can correct and resubmit.
type IntakeError struct {
	QuestionID string   `json:"question_id"`
	Code       string   `json:"code"`
	Message    string   `json:"message"`
	Expected   []string `json:"expected,omitempty"`
}

// Error implements the error interface.
func (e *IntakeError) Error() string {
	return fmt.Sprintf("intake error for question '%s': %s", e.QuestionID, e.Message)
}

// Intake error codes.
const (
	IntakeMissingRequired = "MISSING_REQUIRED"
	IntakeUnknownQuestion = "UNKNOWN_QUESTION"
	IntakeInvalidValue    = "INVALID_VALUE"
	IntakeWrongShape      = "WRONG_SHAPE"
	IntakeNotApplicable   = "NOT_APPLICABLE"
	IntakeNotNumeric      = "NOT_NUMERIC"
)

// ConfigError reports a rule-table problem detected at load time. Config
// errors are fatal to process startup, never to a single run.
type ConfigError struct {
	Table   string `json:"table"`
	Ref     string `json:"ref,omitempty"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Ref != "" {
		return fmt.Sprintf("config error in table '%s' (%s): %s", e.Table, e.Ref, e.Message)
	}
	return fmt.Sprintf("config error in table '%s': %s", e.Table, e.Message)
}
