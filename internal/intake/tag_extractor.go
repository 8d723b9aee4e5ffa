package intake

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/dental-report-engine/internal/domain"
	"github.com/dental-report-engine/internal/rules"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9_]`)
var whitespace = regexp.MustCompile(`\s+`)

// NormalizeAnswer brings a raw answer into table-lookup form: lowercase,
// trimmed, whitespace collapsed to underscores, non-alphanumerics stripped.
func NormalizeAnswer(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = whitespace.ReplaceAllString(s, "_")
	return nonAlnum.ReplaceAllString(s, "")
}

// ExtractionResult is the tag extractor output: the flat tag list with
// provenance (deliberately not deduplicated; downstream consumers set-ify as
// needed) plus the required questions that were missing.
type ExtractionResult struct {
	Tags            []domain.ExtractedTag `json:"tags"`
	MissingRequired []string              `json:"missing_required,omitempty"`
}

// TagSet returns the deduplicated tag names.
func (r *ExtractionResult) TagSet() map[string]bool {
	set := make(map[string]bool, len(r.Tags))
	for _, t := range r.Tags {
		set[t.Tag] = true
	}
	return set
}

// Extractor maps validated answers to semantic tags via the configured
// answer→tags table and numeric range buckets.
type Extractor struct {
	logger *logrus.Logger
	rules  *rules.RuleSet
}

// NewExtractor creates a tag extractor.
func NewExtractor(logger *logrus.Logger, rs *rules.RuleSet) *Extractor {
	return &Extractor{logger: logger, rules: rs}
}

// Extract walks the configured questions in order and produces tags for
// every answered one. Iteration order is the configuration order, keeping
// the output byte-identical across runs for the same intake.
func (e *Extractor) Extract(answers []domain.QuestionAnswer) *ExtractionResult {
	result := &ExtractionResult{}

	byQuestion := make(map[string]domain.QuestionAnswer, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a
	}

	for _, q := range e.rules.Questions {
		answer, ok := byQuestion[q.ID]
		if !ok || answer.Skipped {
			if q.Required {
				result.MissingRequired = append(result.MissingRequired, q.ID)
			}
			continue
		}

		if q.Type == rules.QuestionNumericRange {
			e.extractNumeric(q, answer, result)
			continue
		}

		for _, raw := range answer.AllValues() {
			normalized := NormalizeAnswer(raw)
			for _, tag := range e.rules.TagsFor(q.ID, normalized) {
				result.Tags = append(result.Tags, domain.ExtractedTag{
					Tag:            tag,
					SourceQuestion: q.ID,
					SourceAnswer:   raw,
				})
			}
		}
	}

	e.logger.WithFields(logrus.Fields{
		"tags":             len(result.Tags),
		"missing_required": len(result.MissingRequired),
	}).Debug("Completed tag extraction")

	return result
}

// extractNumeric parses the answer as an integer and maps it into the first
// matching bucket. Buckets are validated non-overlapping at load time, so
// first-match is unambiguous.
func (e *Extractor) extractNumeric(q rules.Question, answer domain.QuestionAnswer, result *ExtractionResult) {
	n, err := strconv.Atoi(strings.TrimSpace(answer.Value))
	if err != nil {
		e.logger.WithFields(logrus.Fields{
			"question": q.ID,
			"answer":   answer.Value,
		}).Warn("Skipping non-numeric answer for numeric_range question")
		return
	}
	for _, bucket := range q.Buckets {
		if n >= bucket.Min && n <= bucket.Max {
			result.Tags = append(result.Tags, domain.ExtractedTag{
				Tag:            bucket.Tag,
				SourceQuestion: q.ID,
				SourceAnswer:   answer.Value,
			})
			return
		}
	}
}
