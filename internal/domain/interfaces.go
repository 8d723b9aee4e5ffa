package domain

import (
	"context"
)

// ContentDocument is a retrievable unit of report text.
type ContentDocument struct {
	ContentID string `json:"content_id" bson:"content_id"`
	Tone      string `json:"tone" bson:"tone"`
	Language  string `json:"language" bson:"language"`
	Title     string `json:"title,omitempty" bson:"title,omitempty"`
	Text      string `json:"text" bson:"text"`
	Version   int    `json:"version,omitempty" bson:"version,omitempty"`
}

// ContentStore retrieves content text by id, tone and language. A missing
// document is (nil, nil), not an error: the composer degrades the affected
// section instead of failing the run.
type ContentStore interface {
	Get(ctx context.Context, contentID, tone, language string) (*ContentDocument, error)
}

// AuditStore persists audit records. Records are write-once: Save inserts,
// there is no update path.
type AuditStore interface {
	Save(ctx context.Context, record *AuditRecord) error
	GetBySession(ctx context.Context, sessionID string) (*AuditRecord, error)
	Close() error
}

// Evaluator is the optional advisory report evaluator. Its verdict may only
// ever make the QA outcome more conservative; errors are advisory too and
// never change the rule-based outcome.
type Evaluator interface {
	Evaluate(ctx context.Context, report *ComposedReport) (*EvaluatorVerdict, error)
}
