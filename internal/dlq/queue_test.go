package dlq

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	evierrors "github.com/evidence-toolkit/evitool/internal/errors"
)

func newTestQueue(t *testing.T) *Queue {
	t.Helper()
	q, err := NewQueue(t.TempDir())
	require.NoError(t, err)
	return q
}

func TestEnqueue_RejectsNonRetryableKind(t *testing.T) {
	q := newTestQueue(t)
	err := q.Enqueue(context.Background(), "C1", "deadbeef", evierrors.LLMRefusedErr("model refused"), nil)
	require.Error(t, err)
}

func TestEnqueue_NewEntryThenRetryIncrementsCount(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	err := q.Enqueue(ctx, "C1", "deadbeef", evierrors.LLMUnavailableErr(nil, "timeout"), nil)
	require.NoError(t, err)

	pending, err := q.GetPendingRetries(ctx, "C1", 2)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, 0, pending[0].RetryCount)

	err = q.Enqueue(ctx, "C1", "deadbeef", evierrors.LLMIncompleteErr("still incomplete", nil), nil)
	require.NoError(t, err)

	pending, err = q.GetPendingRetries(ctx, "C1", 2)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, 1, pending[0].RetryCount)
	require.Equal(t, "LLMIncomplete", pending[0].ErrorKind)
}

func TestGetPendingRetries_ExcludesExhaustedEntries(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "C1", "aaaa", evierrors.LLMUnavailableErr(nil, "down"), nil))
	for i := 0; i < 2; i++ {
		require.NoError(t, q.Enqueue(ctx, "C1", "aaaa", evierrors.LLMUnavailableErr(nil, "still down"), nil))
	}

	pending, err := q.GetPendingRetries(ctx, "C1", 2)
	require.NoError(t, err)
	require.Empty(t, pending)

	stats, err := q.GetStats("C1", 2)
	require.NoError(t, err)
	require.Equal(t, 1, stats.TotalEntries)
	require.Equal(t, 1, stats.ExhaustedEntries)
	require.Equal(t, 0, stats.RetryableEntries)
}

func TestMarkResolved_RemovesEntry(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "C1", "aaaa", evierrors.LLMUnavailableErr(nil, "down"), nil))
	require.NoError(t, q.MarkResolved(ctx, "C1", "aaaa"))

	pending, err := q.GetPendingRetries(ctx, "C1", 5)
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestMarkResolved_UnknownHashIsNoop(t *testing.T) {
	q := newTestQueue(t)
	require.NoError(t, q.MarkResolved(context.Background(), "C1", "never-enqueued"))
}

func TestPurgeOld_RemovesEntriesOlderThanCutoffAcrossCases(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "C1", "aaaa", evierrors.LLMUnavailableErr(nil, "down"), nil))
	require.NoError(t, q.Enqueue(ctx, "C2", "bbbb", evierrors.LLMUnavailableErr(nil, "down"), nil))

	removed, err := q.PurgeOld(-time.Hour) // cutoff in the future relative to now: everything qualifies
	require.NoError(t, err)
	require.Equal(t, 2, removed)

	stats, err := q.GetStats("C1", 5)
	require.NoError(t, err)
	require.Equal(t, 0, stats.TotalEntries)
}

func TestGetRecentFailures_OrdersByMostRecentlyUpdated(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "C1", "aaaa", evierrors.LLMUnavailableErr(nil, "down"), nil))
	require.NoError(t, q.Enqueue(ctx, "C1", "bbbb", evierrors.LLMUnavailableErr(nil, "down"), nil))
	require.NoError(t, q.Enqueue(ctx, "C1", "aaaa", evierrors.LLMUnavailableErr(nil, "down again"), nil))

	recent, err := q.GetRecentFailures("C1", 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	require.Equal(t, "aaaa", string(recent[0].SHA256))
}
