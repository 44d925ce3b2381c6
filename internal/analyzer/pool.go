package analyzer

import (
	"context"

	"golang.org/x/sync/semaphore"

	"github.com/evidence-toolkit/evitool/internal/schema"
)

// DefaultMaxConcurrent is the batch pool's default concurrency cap.
const DefaultMaxConcurrent = 5

// BatchResult pairs one hash's analysis outcome with its error, if any;
// a failed item never aborts the rest of the batch (spec §5's per-item
// isolation rule).
type BatchResult struct {
	Hash     schema.SHA256Hex
	Analysis *schema.UnifiedAnalysis
	Err      error
}

// AnalyzeBatch runs Analyze over hashes with at most maxConcurrent
// in flight at once, honoring ctx cancellation between dispatch of each
// item and before each item's LLM call (Analyze itself checks ctx.Err()
// on entry). Results are returned in hash order regardless of completion
// order, but completion itself is unordered/concurrent.
func AnalyzeBatch(ctx context.Context, d Deps, hashes []schema.SHA256Hex, caseType, actor string, maxConcurrent int) []BatchResult {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}

	results := make([]BatchResult, len(hashes))
	sem := semaphore.NewWeighted(int64(maxConcurrent))
	done := make(chan struct{}, len(hashes))

	for i, h := range hashes {
		i, h := i, h
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = BatchResult{Hash: h, Err: ctx.Err()}
			done <- struct{}{}
			continue
		}
		go func() {
			defer sem.Release(1)
			defer func() { done <- struct{}{} }()

			ua, err := Analyze(ctx, d, h, caseType, actor)
			results[i] = BatchResult{Hash: h, Analysis: ua, Err: err}
		}()
	}

	for range hashes {
		<-done
	}
	return results
}
