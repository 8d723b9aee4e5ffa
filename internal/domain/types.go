// Package domain contains the core entities of the report decision pipeline:
// questionnaire answers, extracted tags, derived drivers, scenario matches,
// content selections, composed reports and the audit record.
//
// Everything in this package is created fresh per pipeline run and is safe to
// share only after the producing stage has returned.
package domain

import "errors"

// DriverID identifies one of the fixed set of derived patient signals.
// The set is closed: rule tables referencing an unknown driver fail at load
// time, never at request time.
type DriverID string

const (
	// L1 safety drivers
	DriverClinicalPriority   DriverID = "clinical_priority"
	DriverMedicalConstraints DriverID = "medical_constraints"
	DriverPregnancyStatus    DriverID = "pregnancy_status"
	DriverSymptomAcuity      DriverID = "symptom_acuity"

	// L2 personalization drivers
	DriverAnxietyLevel        DriverID = "anxiety_level"
	DriverInformationDepth    DriverID = "information_depth"
	DriverDecisionStyle       DriverID = "decision_style"
	DriverBudgetSensitivity   DriverID = "budget_sensitivity"
	DriverTimeAvailability    DriverID = "time_availability"
	DriverAestheticFocus      DriverID = "aesthetic_focus"
	DriverTreatmentExperience DriverID = "treatment_experience"

	// L3 narrative drivers
	DriverMouthSituation   DriverID = "mouth_situation"
	DriverToothRegion      DriverID = "tooth_region"
	DriverFunctionalImpact DriverID = "functional_impact"
	DriverSocialImpact     DriverID = "social_impact"
	DriverLifestyleFocus   DriverID = "lifestyle_focus"
	DriverMotivation       DriverID = "motivation"
	DriverNarrativeArc     DriverID = "narrative_arc"
)

// AllDriverIDs lists every known driver in a fixed order. Iteration over this
// slice, never over maps, keeps pipeline output deterministic.
var AllDriverIDs = []DriverID{
	DriverClinicalPriority,
	DriverMedicalConstraints,
	DriverPregnancyStatus,
	DriverSymptomAcuity,
	DriverAnxietyLevel,
	DriverInformationDepth,
	DriverDecisionStyle,
	DriverBudgetSensitivity,
	DriverTimeAvailability,
	DriverAestheticFocus,
	DriverTreatmentExperience,
	DriverMouthSituation,
	DriverToothRegion,
	DriverFunctionalImpact,
	DriverSocialImpact,
	DriverLifestyleFocus,
	DriverMotivation,
	DriverNarrativeArc,
}

// IsValid reports whether the driver ID belongs to the closed enumeration.
func (d DriverID) IsValid() bool {
	for _, known := range AllDriverIDs {
		if d == known {
			return true
		}
	}
	return false
}

// String returns the string representation of the driver ID.
func (d DriverID) String() string {
	return string(d)
}

// Layer classifies a driver into the safety, personalization or narrative
// layer. The layer is fixed per driver by configuration and never inferred at
// runtime.
type Layer string

const (
	LayerSafety          Layer = "L1"
	LayerPersonalization Layer = "L2"
	LayerNarrative       Layer = "L3"
)

// IsValid validates the layer value.
func (l Layer) IsValid() bool {
	switch l {
	case LayerSafety, LayerPersonalization, LayerNarrative:
		return true
	default:
		return false
	}
}

// ValueSource records how a driver value was obtained.
type ValueSource string

const (
	SourceDerived  ValueSource = "derived"
	SourceFallback ValueSource = "fallback"
)

// Confidence expresses how well a scenario profile matched the driver state.
type Confidence string

const (
	ConfidenceHigh     Confidence = "HIGH"
	ConfidenceMedium   Confidence = "MEDIUM"
	ConfidenceLow      Confidence = "LOW"
	ConfidenceFallback Confidence = "FALLBACK"
)

// IsValid validates the confidence value.
func (c Confidence) IsValid() bool {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow, ConfidenceFallback:
		return true
	default:
		return false
	}
}

// String returns the string representation of the confidence level.
func (c Confidence) String() string {
	return string(c)
}

// Outcome is the QA gate verdict exposed to callers for routing.
type Outcome string

const (
	OutcomePass  Outcome = "PASS"
	OutcomeFlag  Outcome = "FLAG"
	OutcomeBlock Outcome = "BLOCK"
)

// IsValid validates the outcome value.
func (o Outcome) IsValid() bool {
	switch o {
	case OutcomePass, OutcomeFlag, OutcomeBlock:
		return true
	default:
		return false
	}
}

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	return string(o)
}

// Deliverable reports whether a report with this outcome may reach the
// patient without human review.
func (o Outcome) Deliverable() bool {
	return o == OutcomePass
}

// LogFields returns structured logging fields for audit trails.
func (o Outcome) LogFields() map[string]any {
	return map[string]any{
		"outcome":     string(o),
		"deliverable": o.Deliverable(),
		"blocked":     o == OutcomeBlock,
	}
}

// ContentType categorizes a content selection.
type ContentType string

const (
	ContentScenario ContentType = "scenario"
	ContentABlock   ContentType = "a_block"
	ContentBBlock   ContentType = "b_block"
	ContentModule   ContentType = "module"
	ContentStatic   ContentType = "static"
)

// IsValid validates the content type.
func (t ContentType) IsValid() bool {
	switch t {
	case ContentScenario, ContentABlock, ContentBBlock, ContentModule, ContentStatic:
		return true
	default:
		return false
	}
}

// Severity grades a semantic violation.
type Severity string

const (
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// Validation errors shared across the pipeline.
var (
	ErrNotFound          = errors.New("not found")
	ErrUnknownQuestion   = errors.New("unknown question id")
	ErrUnknownDriver     = errors.New("unknown driver id")
	ErrInvalidConfidence = errors.New("invalid confidence level")
	ErrInvalidOutcome    = errors.New("invalid QA outcome")
)
