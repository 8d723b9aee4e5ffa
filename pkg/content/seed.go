package content

import (
	"github.com/dental-report-engine/internal/domain"
)

// SeedDocuments returns the built-in English content set in the default
// tone. Tone-specific variants live in the content database; the fallback
// chain routes every tone here when no variant exists.
func SeedDocuments() []domain.ContentDocument {
	docs := []domain.ContentDocument{
		// scenarios
		{ContentID: "SC_SAFETY", Text: "Dear {{PATIENT_NAME}}, thank you for completing the questionnaire. Some of your answers point to findings that a dentist should look at before any tooth-replacement planning. Please arrange an examination at {{CLINIC_NAME}} soon; the options below are for your orientation once the acute situation is addressed."},
		{ContentID: "SC_SINGLE_IMPLANT", Text: "You described a single missing tooth. In this situation many patients consider a single implant with a crown, which replaces the tooth without touching its healthy neighbours. A bridge is a proven alternative when an implant is not an option. Your dentist at {{CLINIC_NAME}} can confirm which path fits your mouth."},
		{ContentID: "SC_MULTI_BRIDGE", Text: "You described several missing teeth. Depending on where the gaps sit, a bridge, a partial denture or implants can close them, and the options differ in effort, durability and cost. An examination will show which teeth can serve as anchors."},
		{ContentID: "SC_FULL_ARCH", Text: "With only a few natural teeth remaining, the question is usually how to restore a full, stable row of teeth. Implant-supported full-arch restorations and well-fitted full dentures are the main directions, and the right one depends on bone condition and your priorities."},
		{ContentID: "SC_EDENTULOUS_DENTURE", Text: "You described a mouth without remaining teeth. A complete denture restores appearance and speech, and implant-retained variants add stability for chewing. Both paths start with an impression appointment at {{CLINIC_NAME}}."},
		{ContentID: "SC_ANXIOUS_GENTLE", Text: "Many people feel uneasy about dental treatment, and your answers suggest this matters to you. Every step described here can be taken at your pace, with breaks, clear explanations and, where helpful, sedation options. Nothing happens without your agreement."},
		{ContentID: "SC_GENERIC", Text: "Thank you for your answers. They give a first picture of your situation, and the overview below explains the usual ways missing teeth are replaced. An examination will make the picture precise enough for a concrete recommendation."},

		// warning blocks
		{ContentID: "a_acute_symptoms", Text: "You reported pain, swelling or loose teeth. These symptoms should be examined promptly, independent of any replacement planning."},
		{ContentID: "a_pregnancy_notice", Text: "Because of a possible pregnancy, elective procedures and X-rays are usually postponed. Please mention this at your appointment."},
		{ContentID: "a_medical_caution", Text: "Your medical history calls for coordination between your dentist and your treating physician before surgical steps are planned."},
		{ContentID: "a_smoking_risk", Text: "Smoking slows healing in the mouth and raises the risk of implant complications. Your dentist can discuss what this means for your options."},

		// contextual blocks
		{ContentID: "b_implant_explainer", Text: "An implant is a small titanium post placed in the jawbone that carries a crown. Healing typically takes {{TIMELINE_ESTIMATE}}, after which the new tooth feels close to a natural one."},
		{ContentID: "b_bridge_explainer", Text: "A bridge closes a gap by anchoring an artificial tooth to crowns on the neighbouring teeth. It is a well-established solution and does not require surgery."},
		{ContentID: "b_denture_explainer", Text: "A removable denture replaces many or all teeth at once. Modern dentures can be combined with implants for a firmer hold."},
		{ContentID: "b_cost_overview", Text: "Costs vary with the chosen solution and the condition of your mouth; expect {{COST_RANGE}}. You will receive a written estimate before anything begins."},
		{ContentID: "b_aesthetic_zone", Text: "Because the visible front area is involved, shaping and colour of the replacement receive particular attention so the result blends with your smile."},
		{ContentID: "b_anxiety_support", Text: "If appointments feel daunting, tell the practice team. Longer time slots, step-by-step explanations and sedation can make treatment considerably easier."},

		// modules
		{ContentID: "mod_first_time_reassure", Text: "This would be your first tooth replacement, so every term and step will be explained before anything is decided."},
		{ContentID: "mod_smoker_healing", Text: "Reducing or pausing smoking around surgical appointments measurably improves healing."},
		{ContentID: "mod_senior_comfort", Text: "Solutions can be chosen with easy daily handling and cleaning in mind."},
		{ContentID: "mod_elective_timing", Text: "Since you are not in a hurry, the stages can be scheduled around {{TIMELINE_ESTIMATE}} at whatever pace suits you."},
		{ContentID: "mod_chewing_focus", Text: "Restoring comfortable chewing on {{TOOTH_COUNT}} is a central goal of the options described here."},

		// statics
		{ContentID: "static_greeting", Text: "Dear {{PATIENT_NAME}}, this report summarises what your questionnaire answers tell us and which directions are worth discussing."},
		{ContentID: "static_findings_intro", Text: "From your answers we noted the points below. They are observations, not a diagnosis."},
		{ContentID: "static_options_overview", Text: "The usual ways to replace missing teeth are implants, bridges and dentures. Which of them suits you depends on your mouth, your health and your preferences."},
		{ContentID: "static_general_notes", Text: "Please bring a current medication list to your appointment and mention any changes in your health."},
		{ContentID: "static_next_steps", Text: "When you feel ready, you can book an examination at {{CLINIC_NAME}}. You decide the pace; this report is meant to prepare the conversation, and all questions are welcome."},
		{ContentID: "static_disclaimer", Text: "This report was generated from your questionnaire answers. It offers orientation only and does not replace a dental examination, diagnosis or treatment plan."},
	}

	for i := range docs {
		docs[i].Tone = "balanced_warm"
		docs[i].Language = "en"
		docs[i].Version = 1
	}

	// A softer variant where the wording difference carries weight.
	docs = append(docs, domain.ContentDocument{
		ContentID: "b_implant_explainer", Tone: "empathic_calm", Language: "en", Version: 1,
		Text: "An implant is a small artificial tooth root that carries the new tooth. The placement itself is a short, routine procedure under local anaesthesia, and healing simply needs {{TIMELINE_ESTIMATE}} of patience.",
	})
	return docs
}
