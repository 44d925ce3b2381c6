// Package index implements an optional secondary SQL index over the
// content-addressed store, accelerating list_case/stats/prune_case at
// scale without the store ever losing the filesystem layout as its source
// of truth: the index is rebuildable from raw/+derived/ at any time and is
// never consulted for correctness, only for speed.
package index

import (
	"context"
	"time"

	"github.com/evidence-toolkit/evitool/internal/schema"
)

// Record is the flattened row the index keeps per piece of evidence.
type Record struct {
	SHA256     schema.SHA256Hex
	CaseID     string
	Filename   string
	MimeType   string
	FileSize   int64
	IngestedAt time.Time
	Analyzed   bool
}

// Stats mirrors store.Stats for callers that only have index access.
type Stats struct {
	EvidenceCount int
	TotalBytes    int64
	AnalyzedCount int
	CaseCount     int
}

// Index is the secondary-index contract. Every method must tolerate being
// called against a database that has drifted from the filesystem (e.g.
// after an external `rm`). The store falls back to the filesystem only
// when an index call returns an error; an answer from a drifted index is
// returned as is.
type Index interface {
	Upsert(ctx context.Context, rec Record) error
	MarkAnalyzed(ctx context.Context, hash schema.SHA256Hex) error
	Remove(ctx context.Context, hash schema.SHA256Hex) error
	ListCase(ctx context.Context, caseID string) ([]schema.SHA256Hex, error)
	Stats(ctx context.Context) (Stats, error)
	Close() error
}
