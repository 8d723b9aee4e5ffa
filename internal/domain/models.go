package domain

import (
	"math"
	"time"
)

// QuestionAnswer is a single raw questionnaire answer as provided by the
// caller. Multi-select questions carry Values, scalar questions Value.
// The struct is owned by the caller and treated as immutable.
type QuestionAnswer struct {
	QuestionID string   `json:"question_id"`
	Value      string   `json:"answer,omitempty"`
	Values     []string `json:"answers,omitempty"`
	Skipped    bool     `json:"skipped,omitempty"`
}

// IsMulti reports whether the answer carries multiple selected values.
func (a QuestionAnswer) IsMulti() bool {
	return len(a.Values) > 0
}

// AllValues returns the selected values regardless of shape.
func (a QuestionAnswer) AllValues() []string {
	if a.IsMulti() {
		return a.Values
	}
	if a.Value == "" {
		return nil
	}
	return []string{a.Value}
}

// Intake is the pipeline entry payload.
type Intake struct {
	SessionID string            `json:"session_id"`
	Timestamp time.Time         `json:"timestamp"`
	Language  string            `json:"language,omitempty"`
	Answers   []QuestionAnswer  `json:"answers"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// ExtractedTag is a semantic tag with its provenance for the audit trail.
// Many tags may share a source question (multi-select answers).
type ExtractedTag struct {
	Tag            string `json:"tag"`
	SourceQuestion string `json:"source_question"`
	SourceAnswer   string `json:"source_answer"`
}

// DriverValue is the resolved value of one driver for one session.
type DriverValue struct {
	DriverID   DriverID    `json:"driver_id"`
	Layer      Layer       `json:"layer"`
	Value      string      `json:"value"`
	Source     ValueSource `json:"source"`
	SourceTags []string    `json:"source_tags,omitempty"`
	Confidence float64     `json:"confidence"`
}

// DriverConflict records two or more non-additive rules for the same driver
// matching with differing values. Conflicts are resolved by rule priority
// (lowest number wins) and recorded, never escalated to an error.
type DriverConflict struct {
	DriverID        DriverID `json:"driver_id"`
	CandidateValues []string `json:"candidate_values"`
	ResolvedValue   string   `json:"resolved_value"`
	WinningPriority int      `json:"winning_priority"`
}

// DriverState is the complete derived signal set for one session. It is
// built once by the driver deriver and immutable afterwards.
type DriverState struct {
	SessionID        string                   `json:"session_id"`
	Drivers          map[DriverID]DriverValue `json:"drivers"`
	Conflicts        []DriverConflict         `json:"conflicts,omitempty"`
	FallbacksApplied []DriverID               `json:"fallbacks_applied,omitempty"`
}

// Value returns the resolved value for a driver, or "" if absent. A complete
// state carries every configured driver, so "" only occurs on malformed
// states (e.g. the empty state of a validation-failed run).
func (s *DriverState) Value(id DriverID) string {
	if s == nil {
		return ""
	}
	if dv, ok := s.Drivers[id]; ok {
		return dv.Value
	}
	return ""
}

// Matches reports whether the driver currently holds one of the given values.
func (s *DriverState) Matches(id DriverID, accepted []string) bool {
	current := s.Value(id)
	if current == "" {
		return false
	}
	for _, v := range accepted {
		if v == current {
			return true
		}
	}
	return false
}

// ScoreExcluded is the score assigned to excluded scenarios. An excluded
// scenario can never win, not even by tie-break.
var ScoreExcluded = math.Inf(-1)

// ScoreContribution is one entry of a scenario score breakdown.
type ScoreContribution struct {
	DriverID DriverID `json:"driver_id"`
	Kind     string   `json:"kind"` // required | strong | supporting | excluding
	Matched  bool     `json:"matched"`
	Points   float64  `json:"points"`
}

// ScenarioScore is the scoring result for one scenario profile.
type ScenarioScore struct {
	ScenarioID        string              `json:"scenario_id"`
	Score             float64             `json:"score"`
	MatchedRequired   int                 `json:"matched_required"`
	MatchedStrong     int                 `json:"matched_strong"`
	MatchedSupporting int                 `json:"matched_supporting"`
	Excluded          bool                `json:"excluded"`
	ExclusionReason   string              `json:"exclusion_reason,omitempty"`
	Breakdown         []ScoreContribution `json:"breakdown,omitempty"`
}

// ScenarioMatchResult is the final scenario decision for a session.
type ScenarioMatchResult struct {
	MatchedScenario string          `json:"matched_scenario"`
	Confidence      Confidence      `json:"confidence"`
	Score           float64         `json:"score"`
	AllScores       []ScenarioScore `json:"all_scores,omitempty"`
	FallbackUsed    bool            `json:"fallback_used"`
	FallbackReason  string          `json:"fallback_reason,omitempty"`
	SafetyOverride  bool            `json:"safety_override,omitempty"`
}

// ContentSelection is one content unit chosen for the report. Suppression is
// a flag, never a deletion: suppressed selections stay in the list for the
// audit trail and are skipped at composition.
type ContentSelection struct {
	ContentID         string      `json:"content_id"`
	Type              ContentType `json:"type"`
	TargetSection     int         `json:"target_section"`
	Tone              string      `json:"tone"`
	Priority          int         `json:"priority"`
	Suppressed        bool        `json:"suppressed"`
	SuppressionReason string      `json:"suppression_reason,omitempty"`
}

// ComposedSection is a fully assembled report section.
type ComposedSection struct {
	Section   int      `json:"section"`
	Title     string   `json:"title"`
	Text      string   `json:"text"`
	WordCount int      `json:"word_count"`
	Sources   []string `json:"sources,omitempty"` // content IDs in render order
	Degraded  bool     `json:"degraded,omitempty"`
}

// ComposedReport is the assembled, placeholder-resolved report.
type ComposedReport struct {
	SessionID              string            `json:"session_id"`
	ScenarioID             string            `json:"scenario_id"`
	Tone                   string            `json:"tone"`
	Language               string            `json:"language"`
	Confidence             Confidence        `json:"confidence"`
	Sections               []ComposedSection `json:"sections"`
	TotalWordCount         int               `json:"total_word_count"`
	WarningsIncluded       bool              `json:"warnings_included"`
	SuppressedSections     []int             `json:"suppressed_sections,omitempty"`
	PlaceholdersResolved   int               `json:"placeholders_resolved"`
	PlaceholdersUnresolved []string          `json:"placeholders_unresolved,omitempty"`
}

// ViolationLocation points at the section and character position of a
// semantic violation.
type ViolationLocation struct {
	Section  int `json:"section"`
	Position int `json:"position"`
}

// SemanticViolation is a banned-phrase hit found in composed text.
type SemanticViolation struct {
	Phrase   string            `json:"phrase"`
	Location ViolationLocation `json:"location"`
	Severity Severity          `json:"severity"`
	Rule     string            `json:"rule"`
}

// StructuralIssue is a completeness finding of the composition validator.
type StructuralIssue struct {
	Section int    `json:"section,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Blocking bool  `json:"blocking"`
}

// TraceEvent is one sanitized entry of the decision trace.
type TraceEvent struct {
	Stage      string    `json:"stage"`
	Action     string    `json:"action"`
	Input      any       `json:"input,omitempty"`
	Output     any       `json:"output,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// EvaluatorVerdict is the advisory LLM evaluator's recommendation. It can
// only ever make the final outcome more conservative.
type EvaluatorVerdict struct {
	Recommendation Outcome  `json:"recommendation"`
	Score          float64  `json:"score"`
	Reasons        []string `json:"reasons,omitempty"`
	Downgraded     bool     `json:"downgraded,omitempty"` // BLOCK downgraded to FLAG by config
}

// QAResult is the gate decision with everything that went into it.
type QAResult struct {
	Outcome            Outcome             `json:"outcome"`
	RuleOutcome        Outcome             `json:"rule_outcome"`
	Violations         []SemanticViolation `json:"violations,omitempty"`
	CriticalViolations int                 `json:"critical_violations"`
	WarningViolations  int                 `json:"warning_violations"`
	StructuralIssues   []StructuralIssue   `json:"structural_issues,omitempty"`
	Reasons            []string            `json:"reasons,omitempty"`
	Evaluator          *EvaluatorVerdict   `json:"evaluator,omitempty"`
}

// AuditRecord is the write-once compliance record of one pipeline run. It is
// created exactly once per run, success or not, and never mutated after
// completion.
type AuditRecord struct {
	RunID         string               `json:"run_id"`
	SessionID     string               `json:"session_id"`
	StartedAt     time.Time            `json:"started_at"`
	CompletedAt   time.Time            `json:"completed_at"`
	Intake        *Intake              `json:"intake,omitempty"`
	Tags          []ExtractedTag       `json:"tags,omitempty"`
	DriverState   *DriverState         `json:"driver_state,omitempty"`
	ScenarioMatch *ScenarioMatchResult `json:"scenario_match,omitempty"`
	SelectedTone  string               `json:"selected_tone,omitempty"`
	Selections    []ContentSelection   `json:"selections,omitempty"`
	Report        *ComposedReport      `json:"report,omitempty"`
	QA            *QAResult            `json:"qa,omitempty"`
	DecisionTrace []TraceEvent         `json:"decision_trace"`
	FinalOutcome  Outcome              `json:"final_outcome"`
	Error         string               `json:"error,omitempty"`
}

// RunResult is what the pipeline returns to the caller. The audit record is
// always present, even on validation failure or internal error.
type RunResult struct {
	Success bool            `json:"success"`
	Outcome Outcome         `json:"outcome"`
	Report  *ComposedReport `json:"report,omitempty"`
	Audit   *AuditRecord    `json:"audit"`
	Error   string          `json:"error,omitempty"`
}
