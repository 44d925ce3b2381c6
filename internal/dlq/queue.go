// Package dlq implements the retry queue for evidence whose analysis
// ended in a transient LLM failure (spec §5's "a configurable retry
// policy is permitted for transient statuses", §7's propagation policy).
// It is not a module in the closed spec.md list; the CLI (analyze and
// retry-failed) uses it to track and re-drive LLMUnavailable/LLMIncomplete failures
// without re-reading every analysis file on every run.
package dlq

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	evierrors "github.com/evidence-toolkit/evitool/internal/errors"
	"github.com/evidence-toolkit/evitool/internal/logging"
	"github.com/evidence-toolkit/evitool/internal/schema"
)

// Entry represents one evidence item whose most recent analysis attempt
// failed with a retryable error.
type Entry struct {
	SHA256       schema.SHA256Hex       `json:"sha256"`
	CaseID       string                 `json:"case_id"`
	ErrorKind    string                 `json:"error_kind"`
	ErrorMessage string                 `json:"error_message"`
	RetryCount   int                    `json:"retry_count"`
	LastRetryAt  *time.Time             `json:"last_retry_at,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// Stats summarizes a case's queue contents.
type Stats struct {
	CaseID           string `json:"case_id"`
	TotalEntries     int    `json:"total_entries"`
	RetryableEntries int    `json:"retryable_entries"`
	ExhaustedEntries int    `json:"exhausted_entries"`
}

// Queue manages evidence whose analysis needs to be retried. One JSON
// file per case under root/dlq/<case_id>.json holds the full entry list;
// a Queue value serializes all access to a case's file through a mutex,
// since the toolkit has no database to lean on for that.
type Queue struct {
	root string
	mu   sync.Mutex
	log  *logging.Logger
}

// NewQueue creates a retry queue rooted at dir (created if absent).
func NewQueue(dir string) (*Queue, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create dlq directory: %w", err)
	}
	return &Queue{root: dir, log: logging.With("component", "dlq")}, nil
}

func (q *Queue) casePath(caseID string) string {
	return filepath.Join(q.root, caseID+".json")
}

// Enqueue adds or updates hash's entry for caseID. cause must be a
// retryable *errors.Error (LLMUnavailable or LLMIncomplete); any other
// kind is rejected rather than queued, since refusals and validation
// failures are not meant to be retried (spec §7).
func (q *Queue) Enqueue(ctx context.Context, caseID string, hash schema.SHA256Hex, cause error, metadata map[string]interface{}) error {
	if err := ctx.Err(); err != nil {
		return evierrors.CancelRequestedErr()
	}
	kind := evierrors.KindOf(cause)
	if kind != evierrors.LLMUnavailable && kind != evierrors.LLMIncomplete {
		return evierrors.InternalErrf("dlq: refusing to enqueue non-retryable error kind %s", kind)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	entries, err := q.load(caseID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	found := false
	for i := range entries {
		if entries[i].SHA256 == hash {
			entries[i].ErrorKind = kind.String()
			entries[i].ErrorMessage = cause.Error()
			entries[i].RetryCount++
			entries[i].LastRetryAt = &now
			entries[i].UpdatedAt = now
			entries[i].Metadata = metadata
			found = true
			break
		}
	}
	if !found {
		entries = append(entries, Entry{
			SHA256:       hash,
			CaseID:       caseID,
			ErrorKind:    kind.String(),
			ErrorMessage: cause.Error(),
			RetryCount:   0,
			CreatedAt:    now,
			UpdatedAt:    now,
			Metadata:     metadata,
		})
	}

	if err := q.save(caseID, entries); err != nil {
		return err
	}
	q.log.Warn("evidence enqueued to retry queue",
		"case_id", caseID, "sha256", shortHash(hash), "error_kind", kind.String())
	return nil
}

// GetPendingRetries returns caseID's entries with retry_count < maxRetries,
// oldest first.
func (q *Queue) GetPendingRetries(ctx context.Context, caseID string, maxRetries int) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, evierrors.CancelRequestedErr()
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	entries, err := q.load(caseID)
	if err != nil {
		return nil, err
	}
	var pending []Entry
	for _, e := range entries {
		if e.RetryCount < maxRetries {
			pending = append(pending, e)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
	return pending, nil
}

// MarkResolved removes hash's entry from caseID's queue after a
// successful retry.
func (q *Queue) MarkResolved(ctx context.Context, caseID string, hash schema.SHA256Hex) error {
	if err := ctx.Err(); err != nil {
		return evierrors.CancelRequestedErr()
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	entries, err := q.load(caseID)
	if err != nil {
		return err
	}
	kept := entries[:0]
	removed := false
	for _, e := range entries {
		if e.SHA256 == hash {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	if !removed {
		return nil
	}
	if err := q.save(caseID, kept); err != nil {
		return err
	}
	q.log.Info("evidence resolved and removed from retry queue", "case_id", caseID, "sha256", shortHash(hash))
	return nil
}

// GetStats summarizes caseID's queue against maxRetries.
func (q *Queue) GetStats(caseID string, maxRetries int) (*Stats, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	entries, err := q.load(caseID)
	if err != nil {
		return nil, err
	}
	stats := &Stats{CaseID: caseID, TotalEntries: len(entries)}
	for _, e := range entries {
		if e.RetryCount >= maxRetries {
			stats.ExhaustedEntries++
		} else {
			stats.RetryableEntries++
		}
	}
	return stats, nil
}

// GetRecentFailures returns caseID's limit most recently updated entries.
func (q *Queue) GetRecentFailures(caseID string, limit int) ([]Entry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	entries, err := q.load(caseID)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].UpdatedAt.After(entries[j].UpdatedAt) })
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// PurgeOld removes entries older than olderThan across every case file
// in the queue directory and returns the count removed.
func (q *Queue) PurgeOld(olderThan time.Duration) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	files, err := os.ReadDir(q.root)
	if err != nil {
		return 0, fmt.Errorf("read dlq directory: %w", err)
	}

	cutoff := time.Now().Add(-olderThan)
	removed := 0
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".json" {
			continue
		}
		caseID := f.Name()[:len(f.Name())-len(".json")]
		entries, err := q.load(caseID)
		if err != nil {
			return removed, err
		}
		kept := entries[:0]
		for _, e := range entries {
			if e.CreatedAt.Before(cutoff) {
				removed++
				continue
			}
			kept = append(kept, e)
		}
		if len(kept) != len(entries) {
			if err := q.save(caseID, kept); err != nil {
				return removed, err
			}
		}
	}
	if removed > 0 {
		q.log.Info("purged old retry queue entries", "count", removed, "older_than", olderThan)
	}
	return removed, nil
}

func (q *Queue) load(caseID string) ([]Entry, error) {
	data, err := os.ReadFile(q.casePath(caseID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read dlq file for case %s: %w", caseID, err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("corrupt dlq file for case %s: %w", caseID, err)
	}
	return entries, nil
}

func (q *Queue) save(caseID string, entries []Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal dlq entries: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(q.root, "write-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, q.casePath(caseID))
}

func shortHash(h schema.SHA256Hex) string {
	s := string(h)
	if len(s) > 8 {
		return s[:8]
	}
	return s
}
