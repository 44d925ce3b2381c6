package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evidence-toolkit/evitool/internal/schema"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	local, err := OpenBolt(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { local.Close() })
	return NewManager(local, nil)
}

func TestSnapshotKey_StableUnderHashReordering(t *testing.T) {
	a := SnapshotKey("C1", []schema.SHA256Hex{"aaa", "bbb"})
	b := SnapshotKey("C1", []schema.SHA256Hex{"bbb", "aaa"})
	require.Equal(t, a, b)
}

func TestSnapshotKey_DiffersByCaseOrHashSet(t *testing.T) {
	base := SnapshotKey("C1", []schema.SHA256Hex{"aaa", "bbb"})
	require.NotEqual(t, base, SnapshotKey("C2", []schema.SHA256Hex{"aaa", "bbb"}))
	require.NotEqual(t, base, SnapshotKey("C1", []schema.SHA256Hex{"aaa", "bbb", "ccc"}))
}

func TestManager_CorrelationRoundTripsThroughLocalTier(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	key := SnapshotKey("C1", []schema.SHA256Hex{"aaa"})

	_, found, err := m.GetCorrelation(ctx, key)
	require.NoError(t, err)
	require.False(t, found)

	want := schema.CorrelationAnalysis{CaseID: "C1", EvidenceCount: 1}
	require.NoError(t, m.SetCorrelation(ctx, key, want))

	got, found, err := m.GetCorrelation(ctx, key)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, want.CaseID, got.CaseID)
}

func TestManager_CaseSummaryRoundTripsThroughLocalTier(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	key := SnapshotKey("C1", []schema.SHA256Hex{"aaa"})

	want := schema.CaseSummary{CaseID: "C1", EvidenceCount: 1}
	require.NoError(t, m.SetCaseSummary(ctx, key, want))

	got, found, err := m.GetCaseSummary(ctx, key)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, want.CaseID, got.CaseID)
}

func TestManager_InvalidateRemovesBothValueKinds(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	key := SnapshotKey("C1", []schema.SHA256Hex{"aaa"})

	require.NoError(t, m.SetCorrelation(ctx, key, schema.CorrelationAnalysis{CaseID: "C1"}))
	require.NoError(t, m.SetCaseSummary(ctx, key, schema.CaseSummary{CaseID: "C1"}))
	require.NoError(t, m.Invalidate(ctx, key))

	_, found, err := m.GetCorrelation(ctx, key)
	require.NoError(t, err)
	require.False(t, found)

	_, found, err = m.GetCaseSummary(ctx, key)
	require.NoError(t, err)
	require.False(t, found)
}
