package index

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/evidence-toolkit/evitool/internal/schema"
)

func newTestSQLiteIndex(t *testing.T) *SQLiteIndex {
	t.Helper()
	idx, err := NewSQLiteIndex(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestSQLiteIndex_UpsertThenListCaseReturnsHash(t *testing.T) {
	idx := newTestSQLiteIndex(t)
	ctx := context.Background()

	rec := Record{SHA256: "aaa", CaseID: "CASE-1", Filename: "a.pdf", MimeType: "application/pdf", FileSize: 100, IngestedAt: time.Now().UTC()}
	require.NoError(t, idx.Upsert(ctx, rec))

	hashes, err := idx.ListCase(ctx, "CASE-1")
	require.NoError(t, err)
	require.Equal(t, []schema.SHA256Hex{"aaa"}, hashes)
}

func TestSQLiteIndex_ListCaseIgnoresOtherCases(t *testing.T) {
	idx := newTestSQLiteIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, Record{SHA256: "aaa", CaseID: "CASE-1", IngestedAt: time.Now().UTC()}))
	require.NoError(t, idx.Upsert(ctx, Record{SHA256: "bbb", CaseID: "CASE-2", IngestedAt: time.Now().UTC()}))

	hashes, err := idx.ListCase(ctx, "CASE-1")
	require.NoError(t, err)
	require.Equal(t, []schema.SHA256Hex{"aaa"}, hashes)
}

func TestSQLiteIndex_MarkAnalyzedReflectedInStats(t *testing.T) {
	idx := newTestSQLiteIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, Record{SHA256: "aaa", CaseID: "CASE-1", FileSize: 50, IngestedAt: time.Now().UTC()}))
	require.NoError(t, idx.MarkAnalyzed(ctx, "aaa"))

	st, err := idx.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, st.EvidenceCount)
	require.Equal(t, 1, st.AnalyzedCount)
	require.Equal(t, 1, st.CaseCount)
	require.EqualValues(t, 50, st.TotalBytes)
}

func TestSQLiteIndex_RemoveDropsHashFromEveryCase(t *testing.T) {
	idx := newTestSQLiteIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, Record{SHA256: "aaa", CaseID: "CASE-1", IngestedAt: time.Now().UTC()}))
	require.NoError(t, idx.Upsert(ctx, Record{SHA256: "aaa", CaseID: "CASE-2", IngestedAt: time.Now().UTC()}))
	require.NoError(t, idx.Remove(ctx, "aaa"))

	hashes, err := idx.ListCase(ctx, "CASE-1")
	require.NoError(t, err)
	require.Empty(t, hashes)

	hashes, err = idx.ListCase(ctx, "CASE-2")
	require.NoError(t, err)
	require.Empty(t, hashes)
}

func TestSQLiteIndex_UpsertPreservesAnalyzedFlagOnReingest(t *testing.T) {
	idx := newTestSQLiteIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, Record{SHA256: "aaa", CaseID: "CASE-1", IngestedAt: time.Now().UTC()}))
	require.NoError(t, idx.MarkAnalyzed(ctx, "aaa"))

	require.NoError(t, idx.Upsert(ctx, Record{SHA256: "aaa", CaseID: "CASE-1", Filename: "renamed.pdf", IngestedAt: time.Now().UTC()}))

	st, err := idx.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, st.AnalyzedCount)
}
