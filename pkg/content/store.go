// Package content provides the retrieval backends for report text: a MongoDB
// store for production, an in-memory store for tests and seed data, plus
// caching and circuit-breaker wrappers. All stores resolve tone fallback
// chains themselves so the composer only ever asks once.
package content

import (
	"github.com/dental-report-engine/internal/rules"
)

// toneCandidates returns the tones to try for a lookup, in order: the
// requested tone, its configured fallback chain, then the default tone.
func toneCandidates(rs *rules.RuleSet, tone string) []string {
	candidates := []string{tone}
	seen := map[string]bool{tone: true}
	if profile := rs.Tone(tone); profile != nil {
		for _, fb := range profile.FallbackChain {
			if !seen[fb] {
				seen[fb] = true
				candidates = append(candidates, fb)
			}
		}
	}
	if !seen[rs.DefaultTone] {
		candidates = append(candidates, rs.DefaultTone)
	}
	return candidates
}
