// Package qa vets a composed report before release: semantic leakage
// scanning, structural completeness checks and the final gate decision.
package qa

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"

	"github.com/dental-report-engine/internal/domain"
	"github.com/dental-report-engine/internal/rules"
)

// bannedPhrase is one compiled entry of the merged banned list.
type bannedPhrase struct {
	phrase   string
	pattern  *regexp.Regexp
	severity domain.Severity
	rule     string
}

// LeakageDetector scans composed text for banned phrases. The scan list is
// the tone-independent global list merged with the banned lexicon of the
// report's tone; matching is case-insensitive on word boundaries.
type LeakageDetector struct {
	logger *logrus.Logger
	rules  *rules.RuleSet
}

// NewLeakageDetector creates a semantic leakage detector.
func NewLeakageDetector(logger *logrus.Logger, rs *rules.RuleSet) *LeakageDetector {
	return &LeakageDetector{logger: logger, rules: rs}
}

// Scan returns every banned-phrase hit in the report, in section order and
// within a section in phrase-list order.
func (d *LeakageDetector) Scan(report *domain.ComposedReport) []domain.SemanticViolation {
	phrases := d.compile(report.Tone)

	var violations []domain.SemanticViolation
	for _, section := range report.Sections {
		for _, bp := range phrases {
			for _, loc := range bp.pattern.FindAllStringIndex(section.Text, -1) {
				violations = append(violations, domain.SemanticViolation{
					Phrase:   bp.phrase,
					Severity: bp.severity,
					Rule:     bp.rule,
					Location: domain.ViolationLocation{
						Section:  section.Section,
						Position: loc[0],
					},
				})
			}
		}
	}

	if len(violations) > 0 {
		d.logger.WithFields(logrus.Fields{
			"session_id": report.SessionID,
			"violations": len(violations),
		}).Warn("Semantic leakage detected in composed report")
	}
	return violations
}

func (d *LeakageDetector) compile(toneID string) []bannedPhrase {
	var compiled []bannedPhrase
	seen := map[string]bool{}
	add := func(phrase, rule string) {
		key := strings.ToLower(phrase)
		if phrase == "" || seen[key] {
			return
		}
		seen[key] = true
		compiled = append(compiled, bannedPhrase{
			phrase:   phrase,
			pattern:  phrasePattern(phrase),
			severity: d.severityFor(key),
			rule:     rule,
		})
	}

	for _, p := range d.rules.Semantic.GlobalBanned {
		add(p, d.categoryFor(p))
	}
	if profile := d.rules.Tone(toneID); profile != nil {
		for _, p := range profile.BannedLexicon {
			add(p, "tone_lexicon:"+toneID)
		}
	}
	return compiled
}

// severityFor grades a banned phrase: CRITICAL when any configured critical
// phrase is contained in it ("guaranteed" carries "guarantee"), WARNING
// otherwise.
func (d *LeakageDetector) severityFor(phrase string) domain.Severity {
	for _, p := range d.rules.Semantic.CriticalPhrases {
		if strings.Contains(phrase, strings.ToLower(p)) {
			return domain.SeverityCritical
		}
	}
	return domain.SeverityWarning
}

// categoryFor names the configured phrase category a global phrase belongs
// to, for violation reports.
func (d *LeakageDetector) categoryFor(phrase string) string {
	lower := strings.ToLower(phrase)
	for _, cat := range d.rules.Semantic.Categories {
		for _, p := range cat.Phrases {
			if strings.ToLower(p) == lower {
				return cat.Category
			}
		}
	}
	return "global"
}

// Explain returns the human-readable explanation for a violation rule, or ""
// for rules without one (tone lexicons).
func (d *LeakageDetector) Explain(rule string) string {
	for _, cat := range d.rules.Semantic.Categories {
		if cat.Category == rule {
			return cat.Explanation
		}
	}
	return ""
}

// phrasePattern builds a case-insensitive matcher with word boundaries where
// the phrase edges are word characters. Phrases starting or ending in symbols
// ("100 % success") skip the boundary on that side.
func phrasePattern(phrase string) *regexp.Regexp {
	quoted := regexp.QuoteMeta(phrase)
	runes := []rune(phrase)
	prefix, suffix := "", ""
	if isWordRune(runes[0]) {
		prefix = `\b`
	}
	if isWordRune(runes[len(runes)-1]) {
		suffix = `\b`
	}
	return regexp.MustCompile(`(?i)` + prefix + quoted + suffix)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
