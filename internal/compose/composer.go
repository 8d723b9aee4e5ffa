package compose

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/dental-report-engine/internal/domain"
	"github.com/dental-report-engine/internal/rules"
)

// Composer turns a content selection list into the final sectioned report.
type Composer struct {
	logger   *logrus.Logger
	rules    *rules.RuleSet
	store    domain.ContentStore
	resolver *Resolver
}

// NewComposer creates a report composer.
func NewComposer(logger *logrus.Logger, rs *rules.RuleSet, store domain.ContentStore, resolver *Resolver) *Composer {
	return &Composer{logger: logger, rules: rs, store: store, resolver: resolver}
}

// Compose assembles the report. Missing content degrades or omits the
// affected section and the structural validator decides afterwards whether
// the result is still deliverable; store errors fail the run so the pipeline
// records an auditable block instead of delivering a partial report.
func (c *Composer) Compose(ctx context.Context, intake *domain.Intake, state *domain.DriverState,
	match *domain.ScenarioMatchResult, reportTone string,
	selections []domain.ContentSelection, custom map[string]string) (*domain.ComposedReport, error) {

	values := Values{
		Metadata:   intake.Metadata,
		Calculated: c.calculatedValues(intake, state),
		Custom:     custom,
	}

	report := &domain.ComposedReport{
		SessionID:  intake.SessionID,
		ScenarioID: match.MatchedScenario,
		Tone:       reportTone,
		Language:   intake.Language,
		Confidence: match.Confidence,
	}

	bySection := make(map[int][]domain.ContentSelection)
	suppressedSections := map[int]bool{}
	for _, sel := range selections {
		if sel.Suppressed {
			suppressedSections[sel.TargetSection] = true
			continue
		}
		bySection[sel.TargetSection] = append(bySection[sel.TargetSection], sel)
	}

	unresolvedSet := map[string]bool{}
	for _, layout := range c.rules.Sections {
		active := bySection[layout.Number]
		if len(active) == 0 {
			if suppressedSections[layout.Number] {
				report.SuppressedSections = append(report.SuppressedSections, layout.Number)
			}
			continue
		}

		section, err := c.composeSection(ctx, layout, active, values, unresolvedSet, report)
		if err != nil {
			return nil, err
		}
		if section == nil {
			// every retrieval came back empty; the omitted section stays
			// visible to the validator and the audit record
			report.SuppressedSections = append(report.SuppressedSections, layout.Number)
			continue
		}
		report.Sections = append(report.Sections, *section)
		report.TotalWordCount += section.WordCount
		if layout.Number == c.rules.WarningsSection {
			report.WarningsIncluded = true
		}
	}

	for token := range unresolvedSet {
		report.PlaceholdersUnresolved = append(report.PlaceholdersUnresolved, token)
	}
	sort.Strings(report.PlaceholdersUnresolved)

	c.logger.WithFields(logrus.Fields{
		"session_id": intake.SessionID,
		"scenario":   match.MatchedScenario,
		"tone":       reportTone,
		"sections":   len(report.Sections),
		"words":      report.TotalWordCount,
		"unresolved": len(report.PlaceholdersUnresolved),
	}).Info("Composed report")

	return report, nil
}

func (c *Composer) composeSection(ctx context.Context, layout rules.Section,
	active []domain.ContentSelection, values Values,
	unresolvedSet map[string]bool, report *domain.ComposedReport) (*domain.ComposedSection, error) {

	// lower priority renders first; config order breaks ties
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Priority < active[j].Priority
	})

	section := &domain.ComposedSection{
		Section: layout.Number,
		Title:   layout.Title,
	}

	var parts []string
	for _, sel := range active {
		doc, err := c.store.Get(ctx, sel.ContentID, sel.Tone, report.Language)
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve content %s: %w", sel.ContentID, err)
		}
		if doc == nil {
			c.logger.WithFields(logrus.Fields{
				"content_id": sel.ContentID,
				"tone":       sel.Tone,
				"section":    layout.Number,
			}).Warn("Content missing; section degraded")
			section.Degraded = true
			continue
		}

		res := c.resolver.Resolve(doc.Text, values)
		report.PlaceholdersResolved += res.Resolved
		for _, token := range res.Unresolved {
			unresolvedSet[token] = true
		}
		parts = append(parts, res.Text)
		section.Sources = append(section.Sources, sel.ContentID)
	}

	if len(parts) == 0 {
		return nil, nil
	}
	section.Text = strings.Join(parts, "\n\n")
	section.WordCount = len(strings.Fields(section.Text))
	return section, nil
}

// calculatedValues derives placeholder values from the intake itself, for
// tokens that no metadata key carries directly.
func (c *Composer) calculatedValues(intake *domain.Intake, state *domain.DriverState) map[string]string {
	calc := map[string]string{}

	switch state.Value(domain.DriverMouthSituation) {
	case "single_gap":
		calc["TOOTH_COUNT"] = "one tooth"
	case "multiple_gaps":
		calc["TOOTH_COUNT"] = "several teeth"
	case "few_remaining":
		calc["TOOTH_COUNT"] = "most teeth"
	case "edentulous":
		calc["TOOTH_COUNT"] = "all teeth"
	}

	switch state.Value(domain.DriverTimeAvailability) {
	case "urgent":
		calc["TIMELINE_ESTIMATE"] = "the coming weeks"
	case "flexible":
		calc["TIMELINE_ESTIMATE"] = "the coming months"
	}

	return calc
}
