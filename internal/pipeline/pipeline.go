// Package pipeline orchestrates a full report run: validation, tag
// extraction, driver derivation, scenario matching, tone and content
// selection, composition and the QA gate. Every run produces exactly one
// write-once audit record, whatever happens in between.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dental-report-engine/internal/compose"
	"github.com/dental-report-engine/internal/content"
	"github.com/dental-report-engine/internal/domain"
	"github.com/dental-report-engine/internal/drivers"
	"github.com/dental-report-engine/internal/intake"
	"github.com/dental-report-engine/internal/qa"
	"github.com/dental-report-engine/internal/scenario"
	"github.com/dental-report-engine/internal/tone"
	"github.com/dental-report-engine/internal/trace"
)

// Pipeline wires the decision stages together.
type Pipeline struct {
	logger          *logrus.Logger
	validator       *intake.Validator
	extractor       *intake.Extractor
	deriver         *drivers.Deriver
	scorer          *scenario.Scorer
	tones           *tone.Selector
	selector        *content.Selector
	composer        *compose.Composer
	gate            *qa.Gate
	audits          domain.AuditStore
	defaultLanguage string
}

// Config is the pipeline's own configuration surface.
type Config struct {
	DefaultLanguage string
}

// New creates a pipeline. audits may be nil in tests; runs then skip
// persistence.
func New(logger *logrus.Logger, validator *intake.Validator, extractor *intake.Extractor,
	deriver *drivers.Deriver, scorer *scenario.Scorer, tones *tone.Selector,
	selector *content.Selector, composer *compose.Composer, gate *qa.Gate,
	audits domain.AuditStore, cfg Config) *Pipeline {

	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = "en"
	}
	return &Pipeline{
		logger:          logger,
		validator:       validator,
		extractor:       extractor,
		deriver:         deriver,
		scorer:          scorer,
		tones:           tones,
		selector:        selector,
		composer:        composer,
		gate:            gate,
		audits:          audits,
		defaultLanguage: cfg.DefaultLanguage,
	}
}

// Run executes the full pipeline for one intake. It never returns an error:
// failures become a BLOCK outcome with the reason in the result and the
// audit record. custom carries caller-side placeholder overrides and may be
// nil.
func (p *Pipeline) Run(ctx context.Context, in *domain.Intake, custom map[string]string) (result *domain.RunResult) {
	collector := trace.NewCollector()
	audit := &domain.AuditRecord{
		RunID:     uuid.New().String(),
		SessionID: in.SessionID,
		StartedAt: time.Now().UTC(),
		Intake:    in,
	}
	if in.Language == "" {
		in.Language = p.defaultLanguage
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.WithFields(logrus.Fields{
				"session_id": in.SessionID,
				"run_id":     audit.RunID,
				"panic":      fmt.Sprint(r),
			}).Error("Pipeline run panicked")
			result = p.finish(ctx, audit, collector, domain.OutcomeBlock, nil,
				fmt.Sprintf("internal error: %v", r))
		}
	}()

	p.logger.WithFields(logrus.Fields{
		"session_id": in.SessionID,
		"run_id":     audit.RunID,
		"answers":    len(in.Answers),
	}).Info("Starting report run")

	// Stage 1: intake validation. Invalid intake blocks before any driver
	// logic runs.
	start := time.Now()
	validation := p.validator.Validate(in.Answers)
	collector.Record("intake", "validate", map[string]any{"answers": len(in.Answers)},
		validation, time.Since(start))
	if !validation.Valid {
		return p.finish(ctx, audit, collector, domain.OutcomeBlock, nil,
			fmt.Sprintf("intake validation failed: %s", validation.Errors[0].Error()))
	}

	start = time.Now()
	extraction := p.extractor.Extract(in.Answers)
	audit.Tags = extraction.Tags
	collector.Record("intake", "extract_tags", nil,
		map[string]any{"tags": len(extraction.Tags)}, time.Since(start))

	start = time.Now()
	state := p.deriver.Derive(in.SessionID, extraction.Tags)
	audit.DriverState = state
	collector.Record("drivers", "derive", nil, map[string]any{
		"conflicts": len(state.Conflicts),
		"fallbacks": len(state.FallbacksApplied),
	}, time.Since(start))

	start = time.Now()
	match := p.scorer.Match(state)
	audit.ScenarioMatch = match
	collector.Record("scenario", "match", nil, map[string]any{
		"scenario":        match.MatchedScenario,
		"confidence":      match.Confidence,
		"safety_override": match.SafetyOverride,
		"fallback_used":   match.FallbackUsed,
	}, time.Since(start))

	start = time.Now()
	reportTone := p.tones.Select(state)
	audit.SelectedTone = reportTone
	collector.Record("tone", "select", nil, map[string]any{"tone": reportTone}, time.Since(start))

	start = time.Now()
	selections := p.selector.Select(state, match, reportTone, extraction.TagSet())
	audit.Selections = selections
	collector.Record("content", "select", nil,
		map[string]any{"selections": len(selections)}, time.Since(start))

	start = time.Now()
	report, err := p.composer.Compose(ctx, in, state, match, reportTone, selections, custom)
	if err != nil {
		collector.Record("compose", "compose", nil, map[string]any{"error": err.Error()}, time.Since(start))
		return p.finish(ctx, audit, collector, domain.OutcomeBlock, nil,
			fmt.Sprintf("composition failed: %v", err))
	}
	audit.Report = report
	collector.Record("compose", "compose", nil, map[string]any{
		"sections": len(report.Sections),
		"words":    report.TotalWordCount,
	}, time.Since(start))

	start = time.Now()
	qaResult := p.gate.Check(ctx, report)
	audit.QA = qaResult
	collector.Record("qa", "gate", nil, map[string]any{
		"outcome":    qaResult.Outcome,
		"violations": len(qaResult.Violations),
		"structural": len(qaResult.StructuralIssues),
	}, time.Since(start))

	return p.finish(ctx, audit, collector, qaResult.Outcome, report, "")
}

// finish seals the audit record, persists it and shapes the caller result.
// A blocked report is withheld from the caller but stays in the audit.
func (p *Pipeline) finish(ctx context.Context, audit *domain.AuditRecord, collector *trace.Collector,
	outcome domain.Outcome, report *domain.ComposedReport, errMsg string) *domain.RunResult {

	audit.CompletedAt = time.Now().UTC()
	audit.DecisionTrace = collector.Events()
	audit.FinalOutcome = outcome
	audit.Error = errMsg

	if p.audits != nil {
		if err := p.audits.Save(ctx, audit); err != nil {
			p.logger.WithError(err).WithField("run_id", audit.RunID).
				Error("Failed to persist audit record")
		}
	}

	result := &domain.RunResult{
		Success: outcome != domain.OutcomeBlock,
		Outcome: outcome,
		Audit:   audit,
		Error:   errMsg,
	}
	if outcome != domain.OutcomeBlock {
		result.Report = report
	}

	p.logger.WithFields(logrus.Fields{
		"session_id": audit.SessionID,
		"run_id":     audit.RunID,
		"outcome":    outcome.String(),
		"duration":   audit.CompletedAt.Sub(audit.StartedAt).String(),
	}).Info("Completed report run")
	return result
}
