package rules

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/dental-report-engine/internal/domain"
)

var placeholderToken = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// Validate checks referential integrity of the rule set: every referenced
// driver, tone, scenario and section must exist in the corresponding closed
// set. Called once at load time so that bad configuration fails the process
// at startup instead of a patient run.
func (r *RuleSet) Validate() error {
	if r.Version == "" {
		return &domain.ConfigError{Table: "rule_set", Message: "version is required"}
	}

	if err := r.validateQuestions(); err != nil {
		return err
	}
	if err := r.validateTagTable(); err != nil {
		return err
	}
	if err := r.validateDrivers(); err != nil {
		return err
	}
	if err := r.validateScenarios(); err != nil {
		return err
	}
	if err := r.validateThresholds(); err != nil {
		return err
	}
	if err := r.validateTones(); err != nil {
		return err
	}
	if err := r.validateSections(); err != nil {
		return err
	}
	if err := r.validateContent(); err != nil {
		return err
	}
	if err := r.validatePlaceholders(); err != nil {
		return err
	}

	return nil
}

func (r *RuleSet) validateQuestions() error {
	seen := map[string]bool{}
	for _, q := range r.Questions {
		if q.ID == "" {
			return &domain.ConfigError{Table: "questions", Message: "question with empty id"}
		}
		if seen[q.ID] {
			return &domain.ConfigError{Table: "questions", Ref: q.ID, Message: "duplicate question id"}
		}
		seen[q.ID] = true

		switch q.Type {
		case QuestionChoice, QuestionMultiChoice:
			if len(q.AllowedValues) == 0 {
				return &domain.ConfigError{Table: "questions", Ref: q.ID, Message: "choice question without allowed values"}
			}
		case QuestionNumericRange:
			if len(q.Buckets) == 0 {
				return &domain.ConfigError{Table: "questions", Ref: q.ID, Message: "numeric_range question without buckets"}
			}
			if err := validateBuckets(q.ID, q.Buckets); err != nil {
				return err
			}
		case QuestionText:
			// free text carries no value constraints
		default:
			return &domain.ConfigError{Table: "questions", Ref: q.ID, Message: fmt.Sprintf("unknown question type %q", q.Type)}
		}
	}

	// Conditionals can only reference existing parents.
	for _, q := range r.Questions {
		if q.Conditional == nil {
			continue
		}
		parent := r.Question(q.Conditional.ParentID)
		if parent == nil {
			return &domain.ConfigError{Table: "questions", Ref: q.ID,
				Message: fmt.Sprintf("conditional references unknown parent %q", q.Conditional.ParentID)}
		}
		if len(q.Conditional.ParentValues) == 0 {
			return &domain.ConfigError{Table: "questions", Ref: q.ID, Message: "conditional without parent values"}
		}
	}
	return nil
}

// validateBuckets rejects overlapping numeric ranges. Overlap would make the
// extracted tag depend on configuration iteration order, so it is a startup
// error rather than a silently resolved ambiguity.
func validateBuckets(questionID string, buckets []NumericBucket) error {
	sorted := make([]NumericBucket, len(buckets))
	copy(sorted, buckets)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Min < sorted[j].Min })

	for i, b := range sorted {
		if b.Min > b.Max {
			return &domain.ConfigError{Table: "questions", Ref: questionID,
				Message: fmt.Sprintf("bucket %q has min > max", b.Tag)}
		}
		if i > 0 && b.Min <= sorted[i-1].Max {
			return &domain.ConfigError{Table: "questions", Ref: questionID,
				Message: fmt.Sprintf("buckets %q and %q overlap", sorted[i-1].Tag, b.Tag)}
		}
	}
	return nil
}

func (r *RuleSet) validateTagTable() error {
	for _, rule := range r.TagTable {
		if r.Question(rule.QuestionID) == nil {
			return &domain.ConfigError{Table: "tag_table", Ref: rule.Answer,
				Message: fmt.Sprintf("references unknown question %q", rule.QuestionID)}
		}
		if len(rule.Tags) == 0 {
			return &domain.ConfigError{Table: "tag_table", Ref: rule.QuestionID + "/" + rule.Answer,
				Message: "rule maps to no tags"}
		}
	}
	return nil
}

func (r *RuleSet) validateDrivers() error {
	seen := map[domain.DriverID]bool{}
	for _, spec := range r.Drivers {
		if !spec.ID.IsValid() {
			return &domain.ConfigError{Table: "drivers", Ref: spec.ID.String(), Message: "unknown driver id"}
		}
		if seen[spec.ID] {
			return &domain.ConfigError{Table: "drivers", Ref: spec.ID.String(), Message: "duplicate driver spec"}
		}
		seen[spec.ID] = true

		if !spec.Layer.IsValid() {
			return &domain.ConfigError{Table: "drivers", Ref: spec.ID.String(),
				Message: fmt.Sprintf("invalid layer %q", spec.Layer)}
		}
		if spec.Fallback == "" {
			return &domain.ConfigError{Table: "drivers", Ref: spec.ID.String(), Message: "driver without fallback value"}
		}
		for i, rule := range spec.Rules {
			shapes := 0
			if len(rule.Tags) > 0 {
				shapes++
			}
			if len(rule.TagsAll) > 0 {
				shapes++
			}
			if len(rule.TagsAny) > 0 {
				shapes++
			}
			if shapes != 1 {
				return &domain.ConfigError{Table: "drivers", Ref: spec.ID.String(),
					Message: fmt.Sprintf("rule %d must set exactly one of tags, tags_all, tags_any", i)}
			}
			if rule.Value == "" {
				return &domain.ConfigError{Table: "drivers", Ref: spec.ID.String(),
					Message: fmt.Sprintf("rule %d has empty value", i)}
			}
		}
	}

	// Every known driver produces exactly one value per run, so every known
	// driver needs a spec.
	for _, id := range domain.AllDriverIDs {
		if !seen[id] {
			return &domain.ConfigError{Table: "drivers", Ref: id.String(), Message: "driver has no spec"}
		}
	}
	return nil
}

func (r *RuleSet) validateScenarios() error {
	seen := map[string]bool{}
	for _, sc := range r.Scenarios {
		if sc.ID == "" {
			return &domain.ConfigError{Table: "scenarios", Message: "scenario with empty id"}
		}
		if seen[sc.ID] {
			return &domain.ConfigError{Table: "scenarios", Ref: sc.ID, Message: "duplicate scenario id"}
		}
		seen[sc.ID] = true

		for _, m := range []map[domain.DriverID][]string{sc.Required, sc.Strong, sc.Supporting, sc.Excluding} {
			for id := range m {
				if !id.IsValid() {
					return &domain.ConfigError{Table: "scenarios", Ref: sc.ID,
						Message: fmt.Sprintf("references unknown driver %q", id)}
				}
			}
		}
	}

	safety := r.Scenario(r.SafetyScenarioID)
	if safety == nil || !safety.IsSafety {
		return &domain.ConfigError{Table: "scenarios", Ref: r.SafetyScenarioID, Message: "safety scenario missing or not flagged is_safety"}
	}
	fallback := r.Scenario(r.FallbackScenarioID)
	if fallback == nil || !fallback.IsFallback {
		return &domain.ConfigError{Table: "scenarios", Ref: r.FallbackScenarioID, Message: "fallback scenario missing or not flagged is_fallback"}
	}

	// The tie-break priority order must cover every scorable scenario.
	ordered := map[string]bool{}
	for _, id := range r.PriorityOrder {
		if r.Scenario(id) == nil {
			return &domain.ConfigError{Table: "priority_order", Ref: id, Message: "unknown scenario in priority order"}
		}
		ordered[id] = true
	}
	for _, sc := range r.Scenarios {
		if sc.IsSafety || sc.IsFallback {
			continue
		}
		if !ordered[sc.ID] {
			return &domain.ConfigError{Table: "priority_order", Ref: sc.ID, Message: "scenario missing from priority order"}
		}
	}

	if len(r.SafetyTriggers) == 0 {
		return &domain.ConfigError{Table: "safety_triggers", Message: "at least one safety trigger is required"}
	}
	for _, t := range r.SafetyTriggers {
		if !t.Driver.IsValid() {
			return &domain.ConfigError{Table: "safety_triggers",
				Message: fmt.Sprintf("references unknown driver %q", t.Driver)}
		}
		if len(t.Values) == 0 {
			return &domain.ConfigError{Table: "safety_triggers", Ref: t.Driver.String(), Message: "trigger without values"}
		}
	}

	for situation, scenarioID := range r.ArchetypeBySituation {
		if r.Scenario(scenarioID) == nil {
			return &domain.ConfigError{Table: "archetype_by_situation", Ref: situation,
				Message: fmt.Sprintf("references unknown scenario %q", scenarioID)}
		}
	}
	return nil
}

func (r *RuleSet) validateThresholds() error {
	if len(r.Thresholds) == 0 {
		return &domain.ConfigError{Table: "thresholds", Message: "at least one confidence threshold is required"}
	}
	for i, t := range r.Thresholds {
		if !t.Confidence.IsValid() {
			return &domain.ConfigError{Table: "thresholds", Message: fmt.Sprintf("invalid confidence %q", t.Confidence)}
		}
		if i > 0 && t.MinScore >= r.Thresholds[i-1].MinScore {
			return &domain.ConfigError{Table: "thresholds",
				Message: "thresholds must be ordered by strictly descending min_score"}
		}
	}
	return nil
}

func (r *RuleSet) validateTones() error {
	seen := map[string]bool{}
	for _, tone := range r.Tones {
		if tone.ID == "" {
			return &domain.ConfigError{Table: "tones", Message: "tone with empty id"}
		}
		if seen[tone.ID] {
			return &domain.ConfigError{Table: "tones", Ref: tone.ID, Message: "duplicate tone id"}
		}
		seen[tone.ID] = true

		for _, trig := range tone.Triggers {
			if !trig.Driver.IsValid() {
				return &domain.ConfigError{Table: "tones", Ref: tone.ID,
					Message: fmt.Sprintf("trigger references unknown driver %q", trig.Driver)}
			}
			if len(trig.Values) == 0 {
				return &domain.ConfigError{Table: "tones", Ref: tone.ID, Message: "trigger without accepted values"}
			}
		}
	}

	for _, tone := range r.Tones {
		for _, fb := range tone.FallbackChain {
			if !seen[fb] {
				return &domain.ConfigError{Table: "tones", Ref: tone.ID,
					Message: fmt.Sprintf("fallback chain references unknown tone %q", fb)}
			}
		}
	}

	if !seen[r.DefaultTone] {
		return &domain.ConfigError{Table: "tones", Ref: r.DefaultTone, Message: "default tone not configured"}
	}
	if !seen[r.AutonomyTone] {
		return &domain.ConfigError{Table: "tones", Ref: r.AutonomyTone, Message: "autonomy tone not configured"}
	}
	for _, id := range r.TonePriority {
		if !seen[id] {
			return &domain.ConfigError{Table: "tone_priority", Ref: id, Message: "unknown tone in priority order"}
		}
		if id == r.DefaultTone {
			return &domain.ConfigError{Table: "tone_priority", Ref: id, Message: "default tone must not appear in priority order"}
		}
	}
	return nil
}

func (r *RuleSet) validateSections() error {
	seen := map[int]bool{}
	for _, s := range r.Sections {
		if seen[s.Number] {
			return &domain.ConfigError{Table: "sections", Ref: fmt.Sprintf("%d", s.Number), Message: "duplicate section number"}
		}
		seen[s.Number] = true
	}
	for name, n := range map[string]int{
		"warnings_section":   r.WarningsSection,
		"next_steps_section": r.NextStepsSection,
		"scenario_section":   r.ScenarioSection,
	} {
		if !seen[n] {
			return &domain.ConfigError{Table: "sections", Ref: name,
				Message: fmt.Sprintf("references unknown section %d", n)}
		}
	}
	return nil
}

func (r *RuleSet) validateContent() error {
	sectionExists := func(n int) bool { return r.Section(n) != nil }

	for _, rule := range r.Suppression {
		if !rule.Driver.IsValid() {
			return &domain.ConfigError{Table: "suppression", Ref: string(rule.Driver), Message: "unknown driver"}
		}
		spec := r.Driver(rule.Driver)
		if spec != nil && spec.Layer != domain.LayerSafety {
			return &domain.ConfigError{Table: "suppression", Ref: string(rule.Driver),
				Message: "suppression rules may only key on L1 safety drivers"}
		}
		for _, n := range rule.BlockedSections {
			if !sectionExists(n) {
				return &domain.ConfigError{Table: "suppression", Ref: string(rule.Driver),
					Message: fmt.Sprintf("blocks unknown section %d", n)}
			}
		}
	}

	for _, b := range r.ABlocks {
		if !b.Trigger.Driver.IsValid() {
			return &domain.ConfigError{Table: "a_blocks", Ref: b.ID, Message: "unknown trigger driver"}
		}
	}
	for _, b := range r.BBlocks {
		if !b.Trigger.Driver.IsValid() {
			return &domain.ConfigError{Table: "b_blocks", Ref: b.ID, Message: "unknown trigger driver"}
		}
		if !sectionExists(b.TargetSection) {
			return &domain.ConfigError{Table: "b_blocks", Ref: b.ID,
				Message: fmt.Sprintf("targets unknown section %d", b.TargetSection)}
		}
	}
	for _, m := range r.Modules {
		hasDriver := m.TriggerDriver != nil
		hasTag := m.TriggerTag != ""
		if hasDriver == hasTag {
			return &domain.ConfigError{Table: "modules", Ref: m.ID,
				Message: "module must have exactly one trigger (driver or tag)"}
		}
		if hasDriver && !m.TriggerDriver.Driver.IsValid() {
			return &domain.ConfigError{Table: "modules", Ref: m.ID, Message: "unknown trigger driver"}
		}
		if len(m.Sections) == 0 {
			return &domain.ConfigError{Table: "modules", Ref: m.ID, Message: "module targets no sections"}
		}
		for _, n := range m.Sections {
			if !sectionExists(n) {
				return &domain.ConfigError{Table: "modules", Ref: m.ID,
					Message: fmt.Sprintf("targets unknown section %d", n)}
			}
		}
	}
	for _, s := range r.Statics {
		if !sectionExists(s.Section) {
			return &domain.ConfigError{Table: "statics", Ref: s.ID,
				Message: fmt.Sprintf("targets unknown section %d", s.Section)}
		}
		if s.PinnedTone != "" && r.Tone(s.PinnedTone) == nil {
			return &domain.ConfigError{Table: "statics", Ref: s.ID,
				Message: fmt.Sprintf("pins unknown tone %q", s.PinnedTone)}
		}
	}
	return nil
}

func (r *RuleSet) validatePlaceholders() error {
	seen := map[string]bool{}
	for _, def := range r.Placeholders {
		if !placeholderToken.MatchString(def.Token) {
			return &domain.ConfigError{Table: "placeholders", Ref: def.Token,
				Message: "token must be UPPER_SNAKE_CASE"}
		}
		if seen[def.Token] {
			return &domain.ConfigError{Table: "placeholders", Ref: def.Token, Message: "duplicate token"}
		}
		seen[def.Token] = true
	}
	return nil
}
