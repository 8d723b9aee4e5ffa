// Package setup assembles the engine from configuration: logger, rule set,
// content and audit backends, evaluator and the pipeline itself.
package setup

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dental-report-engine/internal/audit"
	"github.com/dental-report-engine/internal/compose"
	"github.com/dental-report-engine/internal/config"
	contentsel "github.com/dental-report-engine/internal/content"
	"github.com/dental-report-engine/internal/domain"
	"github.com/dental-report-engine/internal/drivers"
	"github.com/dental-report-engine/internal/intake"
	"github.com/dental-report-engine/internal/pipeline"
	"github.com/dental-report-engine/internal/qa"
	"github.com/dental-report-engine/internal/rules"
	"github.com/dental-report-engine/internal/scenario"
	"github.com/dental-report-engine/internal/tone"
	contentstore "github.com/dental-report-engine/pkg/content"
	"github.com/dental-report-engine/pkg/evaluator"
)

// Engine bundles everything a command needs to serve or run reports.
type Engine struct {
	Logger   *logrus.Logger
	Rules    *rules.RuleSet
	Pipeline *pipeline.Pipeline
	Audits   domain.AuditStore

	closers []func() error
}

// Close releases backend connections in reverse construction order.
func (e *Engine) Close() error {
	var firstErr error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// NewLogger builds the process logger from configuration.
func NewLogger(cfg config.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}

// Build assembles the engine. Every failure here is fatal to startup.
func Build(cfg *config.Config) (*Engine, error) {
	logger := NewLogger(cfg.Logging)

	rs, err := loadRules(cfg, logger)
	if err != nil {
		return nil, err
	}

	engine := &Engine{Logger: logger, Rules: rs}

	store, err := buildContentStore(cfg, logger, rs, engine)
	if err != nil {
		return nil, err
	}

	audits, err := buildAuditStore(cfg, logger)
	if err != nil {
		engine.Close()
		return nil, err
	}
	engine.Audits = audits
	engine.closers = append(engine.closers, audits.Close)

	var eval domain.Evaluator
	if cfg.QA.EvaluatorEnabled {
		eval = evaluator.NewClient(logger, evaluator.Config{
			BaseURL: cfg.QA.EvaluatorURL,
			Timeout: cfg.QA.EvaluatorTimeout,
		})
	}

	tones := tone.NewSelector(logger, rs)
	resolver := compose.NewResolver(logger, rs)
	gate := qa.NewGate(logger, rs,
		qa.NewLeakageDetector(logger, rs),
		qa.NewStructureValidator(logger, rs),
		eval, cfg.QA.EvaluatorCanBlock)

	engine.Pipeline = pipeline.New(logger,
		intake.NewValidator(logger, rs),
		intake.NewExtractor(logger, rs),
		drivers.NewDeriver(logger, rs),
		scenario.NewScorer(logger, rs),
		tones,
		contentsel.NewSelector(logger, rs, tones),
		compose.NewComposer(logger, rs, store, resolver),
		gate,
		audits,
		pipeline.Config{DefaultLanguage: cfg.Pipeline.DefaultLanguage})

	return engine, nil
}

func loadRules(cfg *config.Config, logger *logrus.Logger) (*rules.RuleSet, error) {
	if cfg.Rules.Path == "" {
		rs := rules.Builtin()
		if err := rs.Validate(); err != nil {
			return nil, fmt.Errorf("built-in rule set invalid: %w", err)
		}
		logger.WithField("version", rs.Version).Info("Using built-in rule set")
		return rs, nil
	}
	return rules.Load(cfg.Rules.Path, logger)
}

func buildContentStore(cfg *config.Config, logger *logrus.Logger, rs *rules.RuleSet, engine *Engine) (domain.ContentStore, error) {
	var store domain.ContentStore

	switch cfg.Content.Backend {
	case "mongo":
		mongo, err := contentstore.NewMongoStore(logger, rs, contentstore.MongoConfig{
			URI:        cfg.Content.MongoURI,
			Database:   cfg.Content.MongoDatabase,
			Collection: cfg.Content.MongoCollection,
			Timeout:    cfg.Content.MongoTimeout,
		})
		if err != nil {
			return nil, err
		}
		engine.closers = append(engine.closers, func() error {
			return mongo.Close(context.Background())
		})
		store = mongo
	default:
		store = contentstore.NewStaticStore(rs, contentstore.SeedDocuments())
	}

	if cfg.Content.CacheEnabled {
		cached, err := contentstore.NewCachedStore(logger, store, contentstore.CacheConfig{
			RedisURL: cfg.Content.RedisURL,
			TTL:      cfg.Content.CacheTTL,
			LRUSize:  cfg.Content.CacheLRUSize,
		})
		if err != nil {
			return nil, err
		}
		engine.closers = append(engine.closers, cached.Close)
		store = cached
	}

	if cfg.Content.BreakerEnabled {
		store = contentstore.NewResilientStore(logger, store)
	}
	return store, nil
}

func buildAuditStore(cfg *config.Config, logger *logrus.Logger) (domain.AuditStore, error) {
	switch cfg.Audit.Backend {
	case "postgres":
		return audit.NewPostgresStore(logger, audit.PostgresConfig{
			Host:     cfg.Audit.Host,
			Port:     cfg.Audit.Port,
			Database: cfg.Audit.Database,
			Username: cfg.Audit.Username,
			Password: cfg.Audit.Password,
			SSLMode:  cfg.Audit.SSLMode,
			MaxConns: cfg.Audit.MaxConns,
		})
	default:
		return audit.NewSQLiteStore(logger, cfg.Audit.SQLitePath)
	}
}
