// Package compose assembles the final report: it retrieves the selected
// content in the selected tone, orders it into the fixed section layout and
// resolves placeholder tokens against the intake.
package compose

import (
	"regexp"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/dental-report-engine/internal/rules"
)

// placeholderPattern matches {{UPPER_SNAKE}} tokens. Anything else that looks
// vaguely like a placeholder is left alone and will surface as a semantic
// finding instead.
var placeholderPattern = regexp.MustCompile(`\{\{([A-Z][A-Z0-9_]*)\}\}`)

// Resolution is the outcome of resolving all placeholders in one text.
type Resolution struct {
	Text       string
	Resolved   int
	Unresolved []string
}

// Resolver substitutes placeholder tokens in content text. Sources are tried
// in a fixed order: intake metadata (with per-token key remapping), values
// calculated from the intake, caller-provided custom values, the token's own
// fallback, then the global default table. Tokens no source can satisfy stay
// verbatim in the text and are reported.
type Resolver struct {
	logger *logrus.Logger
	rules  *rules.RuleSet
}

// NewResolver creates a placeholder resolver.
func NewResolver(logger *logrus.Logger, rs *rules.RuleSet) *Resolver {
	return &Resolver{logger: logger, rules: rs}
}

// Values bundles the per-session placeholder sources.
type Values struct {
	Metadata   map[string]string // raw intake metadata
	Calculated map[string]string // derived from answers/drivers by the composer
	Custom     map[string]string // caller-provided overrides
}

// Resolve substitutes every known token in text.
func (r *Resolver) Resolve(text string, values Values) Resolution {
	res := Resolution{}
	seenUnresolved := map[string]bool{}

	res.Text = placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		token := placeholderPattern.FindStringSubmatch(match)[1]
		if value, ok := r.lookup(token, values); ok {
			res.Resolved++
			return value
		}
		if !seenUnresolved[token] {
			seenUnresolved[token] = true
			res.Unresolved = append(res.Unresolved, token)
		}
		return match
	})

	sort.Strings(res.Unresolved)
	return res
}

func (r *Resolver) lookup(token string, values Values) (string, bool) {
	def := r.definition(token)

	metadataKey := token
	if def != nil && def.MetadataKey != "" {
		metadataKey = def.MetadataKey
	}
	if v, ok := values.Metadata[metadataKey]; ok && v != "" {
		return v, true
	}
	if v, ok := values.Calculated[token]; ok && v != "" {
		return v, true
	}
	if v, ok := values.Custom[token]; ok && v != "" {
		return v, true
	}
	if def != nil && def.Fallback != "" {
		return def.Fallback, true
	}
	if v, ok := r.rules.PlaceholderDefaults[token]; ok && v != "" {
		return v, true
	}
	return "", false
}

func (r *Resolver) definition(token string) *rules.PlaceholderDef {
	for i := range r.rules.Placeholders {
		if r.rules.Placeholders[i].Token == token {
			return &r.rules.Placeholders[i]
		}
	}
	return nil
}
