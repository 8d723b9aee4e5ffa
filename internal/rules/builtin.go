package rules

import (
	"github.com/dental-report-engine/internal/domain"
)

// Builtin returns the shipped default rule set for the tooth-replacement
// questionnaire. Deployments override it with an external JSON document via
// Load; the builtin set is also the fixture used across package tests.
func Builtin() *RuleSet {
	return &RuleSet{
		Version: "2.4.0",

		Questions: []Question{
			{ID: "Q1", Type: QuestionNumericRange, Buckets: []NumericBucket{
				{Min: 0, Max: 17, Tag: "age_minor"},
				{Min: 18, Max: 39, Tag: "age_young_adult"},
				{Min: 40, Max: 59, Tag: "age_middle"},
				{Min: 60, Max: 120, Tag: "age_senior"},
			}},
			{ID: "Q2", Type: QuestionChoice, AllowedValues: []string{"female", "male", "other"}},
			{ID: "Q3", Type: QuestionChoice, AllowedValues: []string{"yes", "no", "unsure"},
				Conditional: &Condition{ParentID: "Q2", ParentValues: []string{"female", "other"}}},
			{ID: "Q4", Type: QuestionMultiChoice, AllowedValues: []string{
				"diabetes", "osteoporosis", "heart_condition", "immune_disorder", "bleeding_disorder", "none"}},
			{ID: "Q5", Type: QuestionChoice, Required: true, AllowedValues: []string{
				"yes_pain", "yes_swelling", "yes_loose", "no"}},
			{ID: "Q6a", Type: QuestionChoice, Required: true, AllowedValues: []string{
				"one_missing", "several_missing", "most_missing", "all_missing", "none_missing"}},
			{ID: "Q6b", Type: QuestionChoice, AllowedValues: []string{"front", "back", "both"},
				Conditional: &Condition{ParentID: "Q6a", ParentValues: []string{
					"one_missing", "several_missing", "most_missing", "all_missing"}}},
			{ID: "Q7", Type: QuestionChoice, AllowedValues: []string{"recent", "under_year", "over_year", "many_years"}},
			{ID: "Q8", Type: QuestionChoice, AllowedValues: []string{"very_anxious", "somewhat_anxious", "calm"}},
			{ID: "Q9", Type: QuestionChoice, AllowedValues: []string{"detailed", "overview", "essentials"}},
			{ID: "Q10", Type: QuestionChoice, AllowedValues: []string{"cost_sensitive", "balanced", "quality_first"}},
			{ID: "Q11", Type: QuestionChoice, AllowedValues: []string{"very_important", "important", "secondary"}},
			{ID: "Q12", Type: QuestionChoice, AllowedValues: []string{"asap", "months", "flexible"}},
			{ID: "Q13", Type: QuestionMultiChoice, AllowedValues: []string{
				"implant_before", "denture_before", "crown_bridge_before", "none"}},
			{ID: "Q14", Type: QuestionMultiChoice, AllowedValues: []string{
				"chewing", "appearance", "speech", "confidence", "health"}},
			{ID: "Q15", Type: QuestionChoice, AllowedValues: []string{"smoker", "former", "non_smoker"}},
		},

		TagTable: []AnswerTagRule{
			{QuestionID: "Q3", Answer: "yes", Tags: []string{"pregnant_yes"}},
			{QuestionID: "Q3", Answer: "unsure", Tags: []string{"pregnant_unsure"}},
			{QuestionID: "Q4", Answer: "diabetes", Tags: []string{"cond_diabetes"}},
			{QuestionID: "Q4", Answer: "osteoporosis", Tags: []string{"cond_osteoporosis"}},
			{QuestionID: "Q4", Answer: "heart_condition", Tags: []string{"cond_heart"}},
			{QuestionID: "Q4", Answer: "immune_disorder", Tags: []string{"cond_immune"}},
			{QuestionID: "Q4", Answer: "bleeding_disorder", Tags: []string{"cond_bleeding"}},
			{QuestionID: "Q5", Answer: "yes_pain", Tags: []string{"symptom_pain", "symptom_active"}},
			{QuestionID: "Q5", Answer: "yes_swelling", Tags: []string{"symptom_swelling", "symptom_active"}},
			{QuestionID: "Q5", Answer: "yes_loose", Tags: []string{"symptom_loose", "symptom_active"}},
			{QuestionID: "Q6a", Answer: "one_missing", Tags: []string{"gap_single"}},
			{QuestionID: "Q6a", Answer: "several_missing", Tags: []string{"gap_several"}},
			{QuestionID: "Q6a", Answer: "most_missing", Tags: []string{"gap_most"}},
			{QuestionID: "Q6a", Answer: "all_missing", Tags: []string{"gap_all"}},
			{QuestionID: "Q6b", Answer: "front", Tags: []string{"region_front"}},
			{QuestionID: "Q6b", Answer: "back", Tags: []string{"region_back"}},
			{QuestionID: "Q6b", Answer: "both", Tags: []string{"region_both"}},
			{QuestionID: "Q7", Answer: "recent", Tags: []string{"duration_recent"}},
			{QuestionID: "Q7", Answer: "under_year", Tags: []string{"duration_under_year"}},
			{QuestionID: "Q7", Answer: "over_year", Tags: []string{"duration_over_year"}},
			{QuestionID: "Q7", Answer: "many_years", Tags: []string{"duration_many_years"}},
			{QuestionID: "Q8", Answer: "very_anxious", Tags: []string{"anxiety_high"}},
			{QuestionID: "Q8", Answer: "somewhat_anxious", Tags: []string{"anxiety_some"}},
			{QuestionID: "Q8", Answer: "calm", Tags: []string{"anxiety_none"}},
			{QuestionID: "Q9", Answer: "detailed", Tags: []string{"pref_detailed"}},
			{QuestionID: "Q9", Answer: "overview", Tags: []string{"pref_overview"}},
			{QuestionID: "Q9", Answer: "essentials", Tags: []string{"pref_essentials"}},
			{QuestionID: "Q10", Answer: "cost_sensitive", Tags: []string{"budget_tight"}},
			{QuestionID: "Q10", Answer: "balanced", Tags: []string{"budget_balanced"}},
			{QuestionID: "Q10", Answer: "quality_first", Tags: []string{"budget_quality"}},
			{QuestionID: "Q11", Answer: "very_important", Tags: []string{"aesthetics_high"}},
			{QuestionID: "Q11", Answer: "important", Tags: []string{"aesthetics_mid"}},
			{QuestionID: "Q11", Answer: "secondary", Tags: []string{"aesthetics_low"}},
			{QuestionID: "Q12", Answer: "asap", Tags: []string{"time_asap"}},
			{QuestionID: "Q12", Answer: "months", Tags: []string{"time_months"}},
			{QuestionID: "Q12", Answer: "flexible", Tags: []string{"time_flexible"}},
			{QuestionID: "Q13", Answer: "implant_before", Tags: []string{"exp_implant"}},
			{QuestionID: "Q13", Answer: "denture_before", Tags: []string{"exp_denture"}},
			{QuestionID: "Q13", Answer: "crown_bridge_before", Tags: []string{"exp_crown_bridge"}},
			{QuestionID: "Q14", Answer: "chewing", Tags: []string{"motive_chewing"}},
			{QuestionID: "Q14", Answer: "appearance", Tags: []string{"motive_appearance"}},
			{QuestionID: "Q14", Answer: "speech", Tags: []string{"motive_speech"}},
			{QuestionID: "Q14", Answer: "confidence", Tags: []string{"motive_confidence"}},
			{QuestionID: "Q14", Answer: "health", Tags: []string{"motive_health"}},
			{QuestionID: "Q15", Answer: "smoker", Tags: []string{"smoker"}},
			{QuestionID: "Q15", Answer: "former", Tags: []string{"former_smoker"}},
		},

		Drivers: []DriverSpec{
			{ID: domain.DriverClinicalPriority, Layer: domain.LayerSafety, Fallback: "routine", Rules: []DriverRule{
				{Priority: 1, TagsAny: []string{"symptom_pain", "symptom_swelling"}, Value: "urgent"},
				{Priority: 2, Tags: []string{"symptom_loose"}, Value: "semi_urgent"},
				{Priority: 3, TagsAny: []string{"gap_most", "gap_all"}, Value: "elevated"},
			}},
			{ID: domain.DriverMedicalConstraints, Layer: domain.LayerSafety, Fallback: "none", Rules: []DriverRule{
				{Priority: 1, TagsAny: []string{"cond_bleeding", "cond_immune"}, Value: "surgical_contraindicated"},
				{Priority: 2, TagsAny: []string{"cond_osteoporosis", "cond_diabetes", "cond_heart"}, Value: "caution"},
			}},
			{ID: domain.DriverPregnancyStatus, Layer: domain.LayerSafety, Fallback: "not_pregnant", Rules: []DriverRule{
				{Priority: 1, Tags: []string{"pregnant_yes"}, Value: "pregnant"},
				{Priority: 2, Tags: []string{"pregnant_unsure"}, Value: "possibly_pregnant"},
			}},
			{ID: domain.DriverSymptomAcuity, Layer: domain.LayerSafety, Fallback: "none", Rules: []DriverRule{
				{Priority: 1, TagsAny: []string{"symptom_active"}, Value: "active"},
			}},
			{ID: domain.DriverAnxietyLevel, Layer: domain.LayerPersonalization, Fallback: "moderate", Rules: []DriverRule{
				{Priority: 1, Tags: []string{"anxiety_high"}, Value: "high"},
				{Priority: 2, Tags: []string{"anxiety_some"}, Value: "moderate"},
				{Priority: 3, Tags: []string{"anxiety_none"}, Value: "low"},
			}},
			{ID: domain.DriverInformationDepth, Layer: domain.LayerPersonalization, Fallback: "overview", Rules: []DriverRule{
				{Priority: 1, Tags: []string{"pref_detailed"}, Value: "detailed"},
				{Priority: 2, Tags: []string{"pref_overview"}, Value: "overview"},
				{Priority: 3, Tags: []string{"pref_essentials"}, Value: "essentials"},
			}},
			{ID: domain.DriverDecisionStyle, Layer: domain.LayerPersonalization, Fallback: "balanced", Rules: []DriverRule{
				{Priority: 1, TagsAll: []string{"pref_detailed", "budget_balanced"}, Value: "analytical"},
				{Priority: 2, Tags: []string{"pref_detailed"}, Value: "analytical"},
				{Priority: 3, Tags: []string{"pref_essentials"}, Value: "pragmatic"},
			}},
			{ID: domain.DriverBudgetSensitivity, Layer: domain.LayerPersonalization, Fallback: "balanced", Rules: []DriverRule{
				{Priority: 1, Tags: []string{"budget_tight"}, Value: "high"},
				{Priority: 2, Tags: []string{"budget_quality"}, Value: "low"},
			}},
			{ID: domain.DriverTimeAvailability, Layer: domain.LayerPersonalization, Fallback: "planned", Rules: []DriverRule{
				{Priority: 1, Tags: []string{"time_asap"}, Value: "urgent"},
				{Priority: 2, Tags: []string{"time_flexible"}, Value: "flexible"},
			}},
			{ID: domain.DriverAestheticFocus, Layer: domain.LayerPersonalization, Fallback: "medium", Rules: []DriverRule{
				{Priority: 1, Tags: []string{"aesthetics_high"}, Value: "high"},
				{Priority: 2, TagsAny: []string{"motive_appearance", "region_front"}, Value: "high"},
				{Priority: 3, Tags: []string{"aesthetics_low"}, Value: "low"},
			}},
			{ID: domain.DriverTreatmentExperience, Layer: domain.LayerPersonalization, Fallback: "first_time", Rules: []DriverRule{
				{Priority: 1, TagsAny: []string{"exp_implant", "exp_denture", "exp_crown_bridge"}, Value: "experienced"},
			}},
			{ID: domain.DriverMouthSituation, Layer: domain.LayerNarrative, Fallback: "unclear", Rules: []DriverRule{
				{Priority: 1, Tags: []string{"gap_single"}, Value: "single_gap"},
				{Priority: 2, Tags: []string{"gap_several"}, Value: "multiple_gaps"},
				{Priority: 3, Tags: []string{"gap_most"}, Value: "few_remaining"},
				{Priority: 4, Tags: []string{"gap_all"}, Value: "edentulous"},
			}},
			{ID: domain.DriverToothRegion, Layer: domain.LayerNarrative, Fallback: "unknown", Rules: []DriverRule{
				{Priority: 1, Tags: []string{"region_front"}, Value: "visible_zone"},
				{Priority: 2, Tags: []string{"region_back"}, Value: "posterior"},
				{Priority: 3, Tags: []string{"region_both"}, Value: "mixed"},
			}},
			{ID: domain.DriverFunctionalImpact, Layer: domain.LayerNarrative, Fallback: "unspecified", Rules: []DriverRule{
				{Priority: 1, TagsAny: []string{"motive_chewing", "symptom_loose"}, Value: "chewing_impaired"},
				{Priority: 2, Tags: []string{"motive_speech"}, Value: "speech_affected"},
			}},
			{ID: domain.DriverSocialImpact, Layer: domain.LayerNarrative, Fallback: "low", Rules: []DriverRule{
				{Priority: 1, TagsAny: []string{"motive_appearance", "motive_confidence"}, Value: "high"},
			}},
			{ID: domain.DriverLifestyleFocus, Layer: domain.LayerNarrative, Fallback: "general", Rules: []DriverRule{
				{Priority: 1, Tags: []string{"smoker"}, Value: "smoking"},
				{Priority: 2, Tags: []string{"former_smoker"}, Value: "former_smoking"},
			}},
			{ID: domain.DriverMotivation, Layer: domain.LayerNarrative, Fallback: "general", Rules: []DriverRule{
				{Priority: 1, Tags: []string{"motive_chewing"}, Value: "function", Additive: true},
				{Priority: 2, TagsAny: []string{"motive_appearance", "motive_confidence"}, Value: "appearance", Additive: true},
				{Priority: 3, Tags: []string{"motive_health"}, Value: "health", Additive: true},
				{Priority: 4, Tags: []string{"motive_speech"}, Value: "speech", Additive: true},
			}},
			{ID: domain.DriverNarrativeArc, Layer: domain.LayerNarrative, Fallback: "neutral", Rules: []DriverRule{
				{Priority: 1, Tags: []string{"duration_recent"}, Value: "new_situation"},
				{Priority: 2, Tags: []string{"duration_many_years"}, Value: "long_standing"},
			}},
		},

		Scenarios: []ScenarioProfile{
			{
				ID: "SC_SAFETY", Name: "Acute findings first", IsSafety: true,
			},
			{
				ID: "SC_SINGLE_IMPLANT", Name: "Single gap, implant-oriented",
				Required: map[domain.DriverID][]string{
					domain.DriverMouthSituation: {"single_gap"},
				},
				Strong: map[domain.DriverID][]string{
					domain.DriverAestheticFocus: {"high"},
					domain.DriverToothRegion:    {"visible_zone"},
				},
				Supporting: map[domain.DriverID][]string{
					domain.DriverSocialImpact:   {"high"},
					domain.DriverNarrativeArc:   {"new_situation"},
					domain.DriverBudgetSensitivity: {"low", "balanced"},
				},
				Excluding: map[domain.DriverID][]string{
					domain.DriverMedicalConstraints: {"surgical_contraindicated"},
				},
			},
			{
				ID: "SC_MULTI_BRIDGE", Name: "Multiple gaps, bridge or partial",
				Required: map[domain.DriverID][]string{
					domain.DriverMouthSituation: {"multiple_gaps"},
				},
				Strong: map[domain.DriverID][]string{
					domain.DriverFunctionalImpact: {"chewing_impaired"},
				},
				Supporting: map[domain.DriverID][]string{
					domain.DriverBudgetSensitivity: {"high", "balanced"},
					domain.DriverToothRegion:       {"posterior", "mixed"},
					domain.DriverNarrativeArc:      {"long_standing"},
				},
			},
			{
				ID: "SC_FULL_ARCH", Name: "Few remaining teeth, full-arch restoration",
				Required: map[domain.DriverID][]string{
					domain.DriverMouthSituation: {"few_remaining"},
				},
				Strong: map[domain.DriverID][]string{
					domain.DriverFunctionalImpact: {"chewing_impaired"},
					domain.DriverClinicalPriority: {"elevated"},
				},
				Supporting: map[domain.DriverID][]string{
					domain.DriverSocialImpact: {"high"},
					domain.DriverNarrativeArc: {"long_standing"},
				},
				Excluding: map[domain.DriverID][]string{
					domain.DriverMedicalConstraints: {"surgical_contraindicated"},
				},
			},
			{
				ID: "SC_EDENTULOUS_DENTURE", Name: "Edentulous, denture-oriented",
				Required: map[domain.DriverID][]string{
					domain.DriverMouthSituation: {"edentulous"},
				},
				Strong: map[domain.DriverID][]string{
					domain.DriverFunctionalImpact: {"chewing_impaired", "speech_affected"},
				},
				Supporting: map[domain.DriverID][]string{
					domain.DriverBudgetSensitivity: {"high"},
					domain.DriverTreatmentExperience: {"experienced"},
				},
			},
			{
				ID: "SC_ANXIOUS_GENTLE", Name: "Anxiety-led gentle path",
				Required: map[domain.DriverID][]string{
					domain.DriverAnxietyLevel: {"high"},
				},
				Strong: map[domain.DriverID][]string{
					domain.DriverTreatmentExperience: {"first_time"},
				},
				Supporting: map[domain.DriverID][]string{
					domain.DriverMouthSituation:  {"single_gap", "multiple_gaps"},
					domain.DriverInformationDepth: {"essentials", "overview"},
				},
			},
			{
				ID: "SC_GENERIC", Name: "General orientation", IsFallback: true,
			},
		},
		Weights:    ScoringWeights{Strong: 10, Supporting: 3},
		Thresholds: []ConfidenceThreshold{
			{Confidence: domain.ConfidenceHigh, MinScore: 25},
			{Confidence: domain.ConfidenceMedium, MinScore: 15},
			{Confidence: domain.ConfidenceLow, MinScore: 8},
			{Confidence: domain.ConfidenceFallback, MinScore: 3},
		},
		PriorityOrder: []string{
			"SC_SINGLE_IMPLANT", "SC_FULL_ARCH", "SC_MULTI_BRIDGE",
			"SC_EDENTULOUS_DENTURE", "SC_ANXIOUS_GENTLE",
		},
		SafetyTriggers: []DriverMatch{
			{Driver: domain.DriverClinicalPriority, Values: []string{"urgent"}},
			{Driver: domain.DriverMedicalConstraints, Values: []string{"surgical_contraindicated"}},
		},
		SafetyScenarioID:   "SC_SAFETY",
		FallbackScenarioID: "SC_GENERIC",
		ArchetypeBySituation: map[string]string{
			"single_gap":    "SC_SINGLE_IMPLANT",
			"multiple_gaps": "SC_MULTI_BRIDGE",
			"few_remaining": "SC_FULL_ARCH",
			"edentulous":    "SC_EDENTULOUS_DENTURE",
		},

		Tones: []ToneProfile{
			{
				ID: "empathic_calm", Name: "Empathic-Calm",
				Triggers: []ToneTrigger{
					{Driver: domain.DriverAnxietyLevel, Values: []string{"high"}},
					{Driver: domain.DriverPregnancyStatus, Values: []string{"pregnant", "possibly_pregnant"}},
				},
				BannedLexicon: []string{"drilling", "surgical removal", "bone loss"},
				FallbackChain: []string{"balanced_warm"},
			},
			{
				ID: "factual_detailed", Name: "Factual-Detailed",
				Triggers: []ToneTrigger{
					{Driver: domain.DriverInformationDepth, Values: []string{"detailed"}},
					{Driver: domain.DriverDecisionStyle, Values: []string{"analytical"}},
				},
				BannedLexicon: []string{"simply trust us"},
				FallbackChain: []string{"balanced_warm"},
			},
			{
				ID: "efficient_clear", Name: "Efficient-Clear",
				Triggers: []ToneTrigger{
					{Driver: domain.DriverDecisionStyle, Values: []string{"pragmatic"}},
					{Driver: domain.DriverTimeAvailability, Values: []string{"urgent"}},
				},
				BannedLexicon: []string{"take all the time you need"},
				FallbackChain: []string{"balanced_warm"},
			},
			{
				ID: "autonomy_supportive", Name: "Autonomy-Supportive",
				// Never auto-triggers; selected only via the next-steps
				// section override and pinned statics.
				BannedLexicon: []string{"you must", "you should immediately", "the only option"},
				FallbackChain: []string{"balanced_warm"},
			},
			{
				ID: "balanced_warm", Name: "Balanced-Warm",
				BannedLexicon: []string{},
			},
		},
		DefaultTone:  "balanced_warm",
		AutonomyTone: "autonomy_supportive",
		TonePriority: []string{"empathic_calm", "efficient_clear", "factual_detailed", "autonomy_supportive"},

		Suppression: []SuppressionRule{
			{Driver: domain.DriverMedicalConstraints, Value: "surgical_contraindicated",
				BlockedSections: []int{8}, BlockedPatterns: []string{"b_implant_*", "mod_implant_*"}},
			{Driver: domain.DriverPregnancyStatus, Value: "pregnant",
				BlockedSections: []int{7}, BlockedPatterns: []string{"mod_elective_*"}},
			{Driver: domain.DriverPregnancyStatus, Value: "possibly_pregnant",
				BlockedPatterns: []string{"mod_elective_*"}},
			{Driver: domain.DriverSymptomAcuity, Value: "active",
				BlockedPatterns: []string{"mod_elective_*"}},
		},

		ABlocks: []ABlock{
			{ID: "a_acute_symptoms", Trigger: DriverMatch{Driver: domain.DriverClinicalPriority, Values: []string{"urgent", "semi_urgent"}}},
			{ID: "a_pregnancy_notice", Trigger: DriverMatch{Driver: domain.DriverPregnancyStatus, Values: []string{"pregnant", "possibly_pregnant"}}},
			{ID: "a_medical_caution", Trigger: DriverMatch{Driver: domain.DriverMedicalConstraints, Values: []string{"caution", "surgical_contraindicated"}}},
			{ID: "a_smoking_risk", Trigger: DriverMatch{Driver: domain.DriverLifestyleFocus, Values: []string{"smoking"}}},
		},

		BBlocks: []BBlock{
			{ID: "b_implant_explainer", TargetSection: 4,
				Trigger: DriverMatch{Driver: domain.DriverMouthSituation, Values: []string{"single_gap"}}},
			{ID: "b_bridge_explainer", TargetSection: 4,
				Trigger: DriverMatch{Driver: domain.DriverMouthSituation, Values: []string{"multiple_gaps"}}},
			{ID: "b_denture_explainer", TargetSection: 4,
				Trigger: DriverMatch{Driver: domain.DriverMouthSituation, Values: []string{"few_remaining", "edentulous"}}},
			{ID: "b_cost_overview", TargetSection: 7,
				Trigger: DriverMatch{Driver: domain.DriverBudgetSensitivity, Values: []string{"high", "balanced"}}},
			{ID: "b_aesthetic_zone", TargetSection: 8,
				Trigger: DriverMatch{Driver: domain.DriverToothRegion, Values: []string{"visible_zone", "mixed"}}},
			{ID: "b_anxiety_support", TargetSection: 6,
				Trigger: DriverMatch{Driver: domain.DriverAnxietyLevel, Values: []string{"high"}}},
		},

		Modules: []Module{
			{ID: "mod_first_time_reassure", Sections: []int{6}, Priority: 30,
				TriggerDriver: &DriverMatch{Driver: domain.DriverTreatmentExperience, Values: []string{"first_time"}}},
			{ID: "mod_smoker_healing", Sections: []int{6, 9}, Priority: 70, TriggerTag: "smoker"},
			{ID: "mod_senior_comfort", Sections: []int{9}, Priority: 70, TriggerTag: "age_senior"},
			{ID: "mod_elective_timing", Sections: []int{6}, Priority: 70,
				TriggerDriver: &DriverMatch{Driver: domain.DriverTimeAvailability, Values: []string{"flexible"}}},
			{ID: "mod_chewing_focus", Sections: []int{3}, Priority: 70,
				TriggerDriver: &DriverMatch{Driver: domain.DriverFunctionalImpact, Values: []string{"chewing_impaired"}}},
		},

		Statics: []StaticBlock{
			// Every required section keeps at least one unconditional source
			// so a sparse intake still yields a structurally complete report.
			{ID: "static_greeting", Section: 1, Priority: 10},
			{ID: "static_findings_intro", Section: 3, Priority: 10},
			{ID: "static_options_overview", Section: 4, Priority: 10},
			{ID: "static_general_notes", Section: 10, Priority: 90},
			{ID: "static_next_steps", Section: 11, PinnedTone: "autonomy_supportive", Priority: 50},
			{ID: "static_disclaimer", Section: 12, Priority: 50},
		},

		Sections: []Section{
			{Number: 1, Title: "Greeting", Required: true},
			{Number: 2, Title: "Your situation", Required: true},
			{Number: 3, Title: "What we noticed", Required: true},
			{Number: 4, Title: "Treatment options", Required: true},
			{Number: 5, Title: "Comparing the options"},
			{Number: 6, Title: "What to expect"},
			{Number: 7, Title: "Costs", Suppressible: true},
			{Number: 8, Title: "Aesthetics", Suppressible: true},
			{Number: 9, Title: "Lifestyle"},
			{Number: 10, Title: "Important notes", Required: true},
			{Number: 11, Title: "Next steps", Required: true},
			{Number: 12, Title: "Disclaimer", Required: true},
		},
		WarningsSection:  10,
		NextStepsSection: 11,
		ScenarioSection:  2,
		ScenarioPriority: 50,

		Placeholders: []PlaceholderDef{
			{Token: "PATIENT_NAME", MetadataKey: "name", Fallback: "there"},
			{Token: "CLINIC_NAME", MetadataKey: "clinic"},
			{Token: "PATIENT_AGE", MetadataKey: "age"},
			{Token: "TOOTH_COUNT"},
			{Token: "TIMELINE_ESTIMATE", Fallback: "a few months"},
			{Token: "COST_RANGE"},
		},
		PlaceholderDefaults: map[string]string{
			"CLINIC_NAME": "our practice",
			"COST_RANGE":  "a range your dentist will outline with you",
		},

		Semantic: SemanticRules{
			GlobalBanned: []string{
				"guarantee", "guaranteed", "100% success", "100 % success",
				"risk-free", "no risks", "painless forever", "miracle",
				"you must", "the only option", "no alternative",
				"best clinic", "better than any", "market leader",
				"cheapest", "never fails", "always works", "cure",
				"permanent solution forever",
			},
			CriticalPhrases: []string{
				"guarantee", "100% success", "100 % success", "risk-free",
				"no risks", "miracle", "never fails", "always works",
			},
			Categories: []PhraseCategory{
				{Category: "guarantee", Explanation: "Absolute success or guarantee claims are not permitted in medical communication",
					Phrases: []string{"guarantee", "guaranteed", "100% success", "100 % success", "never fails", "always works", "permanent solution forever"}},
				{Category: "autonomy", Explanation: "Directive language undermines patient autonomy",
					Phrases: []string{"you must", "the only option", "no alternative"}},
				{Category: "risk_disclosure", Explanation: "Treatments carry risks that must not be denied",
					Phrases: []string{"risk-free", "no risks", "painless forever"}},
				{Category: "accuracy", Explanation: "Overstated curative claims misrepresent the treatment",
					Phrases: []string{"miracle", "cure"}},
				{Category: "competitive", Explanation: "Comparative or competitive claims are not permitted",
					Phrases: []string{"best clinic", "better than any", "market leader", "cheapest"}},
			},
		},

		QA: QALimits{
			MaxCriticalViolations:         0,
			MaxStructuralErrors:           0,
			MaxSemanticWarnings:           2,
			MaxStructuralWarnings:         3,
			BlockOnUnresolvedPlaceholders: false,
		},
	}
}
