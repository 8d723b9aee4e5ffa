package qa

import (
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dental-report-engine/internal/domain"
	"github.com/dental-report-engine/internal/rules"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func makeSection(number int, title, text string) domain.ComposedSection {
	return domain.ComposedSection{
		Section:   number,
		Title:     title,
		Text:      text,
		WordCount: len(strings.Fields(text)),
	}
}

// cleanReport builds a structurally complete report with harmless text.
func cleanReport(tone string) *domain.ComposedReport {
	report := &domain.ComposedReport{
		SessionID:  "test-session",
		ScenarioID: "SC_GENERIC",
		Tone:       tone,
		Language:   "en",
		Confidence: domain.ConfidenceHigh,
		Sections: []domain.ComposedSection{
			makeSection(1, "Greeting", "Dear Anna, this report summarises what your answers tell us."),
			makeSection(2, "Your situation", "You described a single missing tooth in the visible area."),
			makeSection(3, "What we noticed", "From your answers we noted the points below as observations."),
			makeSection(4, "Treatment options", "Implants, bridges and dentures are the usual replacement paths."),
			makeSection(10, "Important notes", "Please bring a current medication list to your appointment."),
			makeSection(11, "Next steps", "When you feel ready, you can book an examination appointment."),
			makeSection(12, "Disclaimer", "This report offers orientation only and does not replace an examination."),
		},
		WarningsIncluded: true,
	}
	for _, s := range report.Sections {
		report.TotalWordCount += s.WordCount
	}
	return report
}

func TestScanCleanReport(t *testing.T) {
	d := NewLeakageDetector(testLogger(), rules.Builtin())

	assert.Empty(t, d.Scan(cleanReport("balanced_warm")))
}

func TestScanCriticalPhrase(t *testing.T) {
	d := NewLeakageDetector(testLogger(), rules.Builtin())

	report := cleanReport("balanced_warm")
	report.Sections[3].Text = "We guarantee a perfect result with this implant."

	violations := d.Scan(report)
	require.Len(t, violations, 1)
	assert.Equal(t, "guarantee", violations[0].Phrase)
	assert.Equal(t, domain.SeverityCritical, violations[0].Severity)
	assert.Equal(t, "guarantee", violations[0].Rule)
	assert.Equal(t, 4, violations[0].Location.Section)
	assert.Equal(t, 3, violations[0].Location.Position)
}

func TestScanCriticalPhraseVariant(t *testing.T) {
	d := NewLeakageDetector(testLogger(), rules.Builtin())

	// "guaranteed" carries the critical phrase "guarantee" inside it and is
	// graded just as critical
	report := cleanReport("balanced_warm")
	report.Sections[3].Text = "Results are guaranteed for life."

	violations := d.Scan(report)
	require.Len(t, violations, 1)
	assert.Equal(t, "guaranteed", violations[0].Phrase)
	assert.Equal(t, domain.SeverityCritical, violations[0].Severity)
}

func TestScanWarningPhrase(t *testing.T) {
	d := NewLeakageDetector(testLogger(), rules.Builtin())

	report := cleanReport("balanced_warm")
	report.Sections[5].Text = "At this point you must schedule the surgery."

	violations := d.Scan(report)
	require.Len(t, violations, 1)
	assert.Equal(t, "you must", violations[0].Phrase)
	assert.Equal(t, domain.SeverityWarning, violations[0].Severity)
	assert.Equal(t, "autonomy", violations[0].Rule)
}

func TestScanIsCaseInsensitive(t *testing.T) {
	d := NewLeakageDetector(testLogger(), rules.Builtin())

	report := cleanReport("balanced_warm")
	report.Sections[0].Text = "This treatment is RISK-FREE and very comfortable."

	violations := d.Scan(report)
	require.Len(t, violations, 1)
	assert.Equal(t, "risk-free", violations[0].Phrase)
}

func TestScanRespectsWordBoundaries(t *testing.T) {
	d := NewLeakageDetector(testLogger(), rules.Builtin())

	// "secure" and "procure" contain "cure" but are not hits
	report := cleanReport("balanced_warm")
	report.Sections[1].Text = "A secure fit helps you procure a comfortable bite."

	assert.Empty(t, d.Scan(report))

	report.Sections[1].Text = "This will cure the problem."
	violations := d.Scan(report)
	require.Len(t, violations, 1)
	assert.Equal(t, "cure", violations[0].Phrase)
}

func TestScanSymbolEdgedPhrase(t *testing.T) {
	d := NewLeakageDetector(testLogger(), rules.Builtin())

	report := cleanReport("balanced_warm")
	report.Sections[2].Text = "Our clinic reports 100 % success with implants."

	violations := d.Scan(report)
	require.NotEmpty(t, violations)
	assert.Equal(t, domain.SeverityCritical, violations[0].Severity)
}

func TestScanToneLexicon(t *testing.T) {
	d := NewLeakageDetector(testLogger(), rules.Builtin())

	report := cleanReport("empathic_calm")
	report.Sections[3].Text = "The drilling takes only a few minutes."

	violations := d.Scan(report)
	require.Len(t, violations, 1)
	assert.Equal(t, "drilling", violations[0].Phrase)
	assert.Equal(t, "tone_lexicon:empathic_calm", violations[0].Rule)
	assert.Equal(t, domain.SeverityWarning, violations[0].Severity)

	// the same text is fine in a tone without that lexicon entry
	report.Tone = "balanced_warm"
	assert.Empty(t, d.Scan(report))
}

func TestScanMultipleHitsKeepSectionOrder(t *testing.T) {
	d := NewLeakageDetector(testLogger(), rules.Builtin())

	report := cleanReport("balanced_warm")
	report.Sections[1].Text = "A miracle result is guaranteed."
	report.Sections[4].Text = "Implants are the only option here."

	violations := d.Scan(report)
	require.Len(t, violations, 3)
	assert.Equal(t, 2, violations[0].Location.Section)
	assert.Equal(t, 2, violations[1].Location.Section)
	assert.Equal(t, 10, violations[2].Location.Section)
	assert.Equal(t, "the only option", violations[2].Phrase)
}

func TestExplain(t *testing.T) {
	d := NewLeakageDetector(testLogger(), rules.Builtin())

	assert.Contains(t, d.Explain("guarantee"), "guarantee")
	assert.NotEmpty(t, d.Explain("autonomy"))
	assert.Empty(t, d.Explain("tone_lexicon:empathic_calm"))
}
