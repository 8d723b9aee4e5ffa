package content

import (
	"context"
	"fmt"

	"github.com/dental-report-engine/internal/domain"
	"github.com/dental-report-engine/internal/rules"
)

// StaticStore serves content from an in-memory document set. It backs tests,
// local development and seed fixtures.
type StaticStore struct {
	rules *rules.RuleSet
	docs  map[string]*domain.ContentDocument
}

// NewStaticStore indexes the given documents. Later duplicates of the same
// (id, tone, language) win, so fixtures can override seed data.
func NewStaticStore(rs *rules.RuleSet, docs []domain.ContentDocument) *StaticStore {
	s := &StaticStore{rules: rs, docs: make(map[string]*domain.ContentDocument, len(docs))}
	for i := range docs {
		doc := docs[i]
		s.docs[storeKey(doc.ContentID, doc.Tone, doc.Language)] = &doc
	}
	return s
}

// Get looks the document up, walking the tone fallback chain. A miss across
// the whole chain is (nil, nil).
func (s *StaticStore) Get(_ context.Context, contentID, tone, language string) (*domain.ContentDocument, error) {
	for _, candidate := range toneCandidates(s.rules, tone) {
		if doc, ok := s.docs[storeKey(contentID, candidate, language)]; ok {
			return doc, nil
		}
	}
	return nil, nil
}

func storeKey(contentID, tone, language string) string {
	return fmt.Sprintf("%s|%s|%s", contentID, tone, language)
}
