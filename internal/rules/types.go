// Package rules holds the declarative, versioned rule tables that govern the
// report decision pipeline: intake schema, tag extraction, driver derivation,
// scenario profiles, tone profiles, content triggers, section layout,
// placeholder definitions and the semantic banned-phrase lists.
//
// Tables are loaded once at process start, schema- and reference-validated,
// and treated as read-only for the process lifetime. A validation failure is
// fatal to startup, never to a single run.
package rules

import (
	"github.com/dental-report-engine/internal/domain"
)

// QuestionType describes the answer shape of a questionnaire question.
type QuestionType string

const (
	QuestionChoice       QuestionType = "choice"
	QuestionMultiChoice  QuestionType = "multi_choice"
	QuestionNumericRange QuestionType = "numeric_range"
	QuestionText         QuestionType = "text"
)

// Condition makes a question applicable only when its parent question was
// answered with one of the given values.
type Condition struct {
	ParentID     string   `json:"parent_id"`
	ParentValues []string `json:"parent_values"`
}

// NumericBucket maps an integer answer range onto a tag. Buckets must be
// configured non-overlapping; overlap is rejected at load time.
type NumericBucket struct {
	Min int    `json:"min"`
	Max int    `json:"max"`
	Tag string `json:"tag"`
}

// Question is the validation schema of one questionnaire question.
type Question struct {
	ID            string          `json:"id"`
	Type          QuestionType    `json:"type"`
	Required      bool            `json:"required"`
	AllowedValues []string        `json:"allowed_values,omitempty"`
	Buckets       []NumericBucket `json:"buckets,omitempty"`
	Conditional   *Condition      `json:"conditional,omitempty"`
}

// AnswerTagRule maps one normalized answer of one question to semantic tags.
type AnswerTagRule struct {
	QuestionID string   `json:"question_id"`
	Answer     string   `json:"answer"`
	Tags       []string `json:"tags"`
}

// DriverRule is one derivation rule for a driver. Exactly one of Tags,
// TagsAll or TagsAny must be set: Tags and TagsAll are all-of conditions,
// TagsAny is at-least-one-of. Lower priority numbers are stronger.
type DriverRule struct {
	Priority int      `json:"priority"`
	Tags     []string `json:"tags,omitempty"`
	TagsAll  []string `json:"tags_all,omitempty"`
	TagsAny  []string `json:"tags_any,omitempty"`
	Value    string   `json:"value"`
	Additive bool     `json:"additive,omitempty"`
}

// DriverSpec configures one driver: its layer, its ordered rule list and the
// fallback value applied when no rule matches.
type DriverSpec struct {
	ID       domain.DriverID `json:"id"`
	Layer    domain.Layer    `json:"layer"`
	Fallback string          `json:"fallback"`
	Rules    []DriverRule    `json:"rules"`
}

// DriverMatch is a (driver, accepted values) condition.
type DriverMatch struct {
	Driver domain.DriverID `json:"driver"`
	Values []string        `json:"values"`
}

// ScenarioProfile describes one clinical narrative scenario in terms of the
// driver state it fits.
type ScenarioProfile struct {
	ID         string                        `json:"id"`
	Name       string                        `json:"name"`
	Required   map[domain.DriverID][]string  `json:"required,omitempty"`
	Strong     map[domain.DriverID][]string  `json:"strong,omitempty"`
	Supporting map[domain.DriverID][]string  `json:"supporting,omitempty"`
	Excluding  map[domain.DriverID][]string  `json:"excluding,omitempty"`
	IsSafety   bool                          `json:"is_safety,omitempty"`
	IsFallback bool                          `json:"is_fallback,omitempty"`
}

// ScoringWeights are the fixed contributions of matched strong and
// supporting drivers.
type ScoringWeights struct {
	Strong     float64 `json:"strong"`
	Supporting float64 `json:"supporting"`
}

// ConfidenceThreshold binds a confidence band to a minimum score. Bands are
// evaluated top-down; the first band whose MinScore is cleared wins.
type ConfidenceThreshold struct {
	Confidence domain.Confidence `json:"confidence"`
	MinScore   float64           `json:"min_score"`
}

// ToneTrigger is one (driver, accepted values) entry of a tone profile.
type ToneTrigger struct {
	Driver domain.DriverID `json:"driver"`
	Values []string        `json:"values"`
}

// ToneProfile is a configured communication style.
type ToneProfile struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Triggers      []ToneTrigger `json:"triggers,omitempty"`
	BannedLexicon []string      `json:"banned_lexicon,omitempty"`
	FallbackChain []string      `json:"fallback_chain,omitempty"`
}

// SuppressionRule blocks sections and block-id patterns when a safety driver
// holds a given value. Patterns may end in '*' for prefix matching.
type SuppressionRule struct {
	Driver          domain.DriverID `json:"driver"`
	Value           string          `json:"value"`
	BlockedSections []int           `json:"blocked_sections,omitempty"`
	BlockedPatterns []string        `json:"blocked_patterns,omitempty"`
}

// ABlock is a warning block. A-blocks always target the warnings section and
// are only ever pattern-suppressed, never section-suppressed.
type ABlock struct {
	ID      string      `json:"id"`
	Trigger DriverMatch `json:"trigger"`
}

// BBlock is a contextual/explanatory block with a fixed target section.
type BBlock struct {
	ID            string      `json:"id"`
	Trigger       DriverMatch `json:"trigger"`
	TargetSection int         `json:"target_section"`
}

// Module is a reusable text snippet. It fires on a driver match or on the
// presence of a specific tag, may target multiple sections, and carries a
// priority used purely for ordering within a section (lower than the
// scenario priority inserts before the scenario content).
type Module struct {
	ID            string       `json:"id"`
	TriggerDriver *DriverMatch `json:"trigger_driver,omitempty"`
	TriggerTag    string       `json:"trigger_tag,omitempty"`
	Sections      []int        `json:"sections"`
	Priority      int          `json:"priority"`
}

// StaticBlock is fixed boilerplate always appended to the report.
type StaticBlock struct {
	ID         string `json:"id"`
	Section    int    `json:"section"`
	PinnedTone string `json:"pinned_tone,omitempty"`
	Priority   int    `json:"priority"`
}

// Section is one entry of the fixed report layout table.
type Section struct {
	Number       int    `json:"number"`
	Title        string `json:"title"`
	Required     bool   `json:"required"`
	Suppressible bool   `json:"suppressible"`
}

// PlaceholderDef declares a known placeholder token with an optional intake
// metadata key remapping and a definition-specific fallback.
type PlaceholderDef struct {
	Token       string `json:"token"`
	MetadataKey string `json:"metadata_key,omitempty"`
	Fallback    string `json:"fallback,omitempty"`
}

// PhraseCategory groups banned phrases under a human-readable rule
// explanation for violation reports.
type PhraseCategory struct {
	Category    string   `json:"category"`
	Explanation string   `json:"explanation"`
	Phrases     []string `json:"phrases"`
}

// SemanticRules is the tone-independent banned-phrase configuration.
type SemanticRules struct {
	GlobalBanned    []string         `json:"global_banned"`
	CriticalPhrases []string         `json:"critical_phrases"`
	Categories      []PhraseCategory `json:"categories"`
}

// QALimits configures the QA gate tiers.
type QALimits struct {
	MaxCriticalViolations         int  `json:"max_critical_violations"`
	MaxStructuralErrors           int  `json:"max_structural_errors"`
	MaxSemanticWarnings           int  `json:"max_semantic_warnings"`
	MaxStructuralWarnings         int  `json:"max_structural_warnings"`
	BlockOnUnresolvedPlaceholders bool `json:"block_on_unresolved_placeholders"`
}

// RuleSet is the complete, versioned rule configuration of the pipeline.
type RuleSet struct {
	Version string `json:"version"`

	Questions []Question      `json:"questions"`
	TagTable  []AnswerTagRule `json:"tag_table"`
	Drivers   []DriverSpec    `json:"drivers"`

	Scenarios            []ScenarioProfile     `json:"scenarios"`
	Weights              ScoringWeights        `json:"weights"`
	Thresholds           []ConfidenceThreshold `json:"thresholds"`
	PriorityOrder        []string              `json:"priority_order"`
	SafetyTriggers       []DriverMatch         `json:"safety_triggers"`
	SafetyScenarioID     string                `json:"safety_scenario_id"`
	FallbackScenarioID   string                `json:"fallback_scenario_id"`
	ArchetypeBySituation map[string]string     `json:"archetype_by_situation"`

	Tones        []ToneProfile `json:"tones"`
	DefaultTone  string        `json:"default_tone"`
	AutonomyTone string        `json:"autonomy_tone"`
	TonePriority []string      `json:"tone_priority"`

	Suppression []SuppressionRule `json:"suppression"`
	ABlocks     []ABlock          `json:"a_blocks"`
	BBlocks     []BBlock          `json:"b_blocks"`
	Modules     []Module          `json:"modules"`
	Statics     []StaticBlock     `json:"statics"`

	Sections         []Section `json:"sections"`
	WarningsSection  int       `json:"warnings_section"`
	NextStepsSection int       `json:"next_steps_section"`
	ScenarioSection  int       `json:"scenario_section"`
	ScenarioPriority int       `json:"scenario_priority"`

	Placeholders        []PlaceholderDef  `json:"placeholders"`
	PlaceholderDefaults map[string]string `json:"placeholder_defaults"`

	Semantic SemanticRules `json:"semantic"`
	QA       QALimits      `json:"qa"`
}

// Question returns the question schema for an ID, or nil if unknown.
func (r *RuleSet) Question(id string) *Question {
	for i := range r.Questions {
		if r.Questions[i].ID == id {
			return &r.Questions[i]
		}
	}
	return nil
}

// Driver returns the driver spec for an ID, or nil if unknown.
func (r *RuleSet) Driver(id domain.DriverID) *DriverSpec {
	for i := range r.Drivers {
		if r.Drivers[i].ID == id {
			return &r.Drivers[i]
		}
	}
	return nil
}

// Scenario returns the scenario profile for an ID, or nil if unknown.
func (r *RuleSet) Scenario(id string) *ScenarioProfile {
	for i := range r.Scenarios {
		if r.Scenarios[i].ID == id {
			return &r.Scenarios[i]
		}
	}
	return nil
}

// Tone returns the tone profile for an ID, or nil if unknown.
func (r *RuleSet) Tone(id string) *ToneProfile {
	for i := range r.Tones {
		if r.Tones[i].ID == id {
			return &r.Tones[i]
		}
	}
	return nil
}

// Section returns the layout entry for a section number, or nil if unknown.
func (r *RuleSet) Section(number int) *Section {
	for i := range r.Sections {
		if r.Sections[i].Number == number {
			return &r.Sections[i]
		}
	}
	return nil
}

// TagsFor returns the configured tags for a question/answer pair.
func (r *RuleSet) TagsFor(questionID, normalizedAnswer string) []string {
	for i := range r.TagTable {
		if r.TagTable[i].QuestionID == questionID && r.TagTable[i].Answer == normalizedAnswer {
			return r.TagTable[i].Tags
		}
	}
	return nil
}
