package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/evidence-toolkit/evitool/internal/schema"
	"github.com/evidence-toolkit/evitool/internal/store/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	root := t.TempDir()
	s, err := Open(root)
	require.NoError(t, err)
	return s
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "evidence.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIngest_NewEvidence(t *testing.T) {
	s := newTestStore(t)
	path := writeTempFile(t, "A meeting with HR on 15 March 2024 was cancelled.")

	result, err := s.Ingest(context.Background(), path, "C1", "tester")
	require.NoError(t, err)
	assert.False(t, result.AlreadyExists)
	assert.Len(t, string(result.SHA256), 64)

	original, err := s.GetOriginalPath(result.SHA256)
	require.NoError(t, err)
	assert.FileExists(t, original)

	events, err := s.readCustody(result.SHA256)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "ingest", string(events[0].EventType))
}

func TestIngest_DuplicateAcrossTwoCases(t *testing.T) {
	s := newTestStore(t)
	path := writeTempFile(t, "duplicate bytes")

	r1, err := s.Ingest(context.Background(), path, "C1", "tester")
	require.NoError(t, err)
	require.False(t, r1.AlreadyExists)

	r2, err := s.Ingest(context.Background(), path, "C2", "tester")
	require.NoError(t, err)
	require.True(t, r2.AlreadyExists)
	assert.Equal(t, r1.SHA256, r2.SHA256)

	events, err := s.readCustody(r1.SHA256)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "ingest", string(events[0].EventType))
	assert.Equal(t, "case_association", string(events[1].EventType))

	rawEntries, err := os.ReadDir(s.path("raw"))
	require.NoError(t, err)
	assert.Len(t, rawEntries, 1)

	c1, err := s.ListCase("C1")
	require.NoError(t, err)
	c2, err := s.ListCase("C2")
	require.NoError(t, err)
	assert.Equal(t, []string{string(r1.SHA256)}, []string{string(c1[0])})
	assert.Equal(t, []string{string(r2.SHA256)}, []string{string(c2[0])})
}

func TestIngest_SameCaseIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	path := writeTempFile(t, "idempotent")

	r1, err := s.Ingest(context.Background(), path, "C1", "tester")
	require.NoError(t, err)
	_, err = s.Ingest(context.Background(), path, "C1", "tester")
	require.NoError(t, err)

	hashes, err := s.ListCase("C1")
	require.NoError(t, err)
	assert.Len(t, hashes, 1)
	assert.Equal(t, r1.SHA256, hashes[0])
}

func TestListCase_OrderedByFirstIngestThenHash(t *testing.T) {
	s := newTestStore(t)
	p1 := writeTempFile(t, "first evidence")
	p2 := writeTempFile(t, "second evidence")

	r1, err := s.Ingest(context.Background(), p1, "C1", "tester")
	require.NoError(t, err)
	r2, err := s.Ingest(context.Background(), p2, "C1", "tester")
	require.NoError(t, err)

	hashes, err := s.ListCase("C1")
	require.NoError(t, err)
	require.Len(t, hashes, 2)
	assert.Equal(t, r1.SHA256, hashes[0])
	assert.Equal(t, r2.SHA256, hashes[1])
}

func TestStats_ReflectsIngestedEvidence(t *testing.T) {
	s := newTestStore(t)
	path := writeTempFile(t, "stats content")
	_, err := s.Ingest(context.Background(), path, "C1", "tester")
	require.NoError(t, err)

	st, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, st.EvidenceCount)
	assert.Equal(t, 1, st.CaseCount)
	assert.Equal(t, 0, st.AnalyzedCount)
}

func TestPruneCase_RemovesOnlyOrphanedEvidence(t *testing.T) {
	s := newTestStore(t)
	shared := writeTempFile(t, "shared evidence")
	solo := writeTempFile(t, "solo evidence")

	rShared, err := s.Ingest(context.Background(), shared, "C1", "tester")
	require.NoError(t, err)
	_, err = s.Ingest(context.Background(), shared, "C2", "tester")
	require.NoError(t, err)
	rSolo, err := s.Ingest(context.Background(), solo, "C1", "tester")
	require.NoError(t, err)

	result, err := s.PruneCase("C1", false)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{string(rSolo.SHA256)}, stringsOf(result.Removed))

	original, err := s.GetOriginalPath(rShared.SHA256)
	require.NoError(t, err)
	assert.NotEmpty(t, original)

	original, err = s.GetOriginalPath(rSolo.SHA256)
	require.NoError(t, err)
	assert.Empty(t, original)
}

func stringsOf(hashes []schema.SHA256Hex) []string {
	out := make([]string, len(hashes))
	for i, h := range hashes {
		out[i] = string(h)
	}
	return out
}

func newTestStoreWithIndex(t *testing.T) (*Store, index.Index) {
	t.Helper()
	idx, err := index.NewSQLiteIndex(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	root := t.TempDir()
	s, err := Open(root, WithIndex(idx))
	require.NoError(t, err)
	return s, idx
}

func TestListCase_WithIndexAttached_ReadsThroughIndex(t *testing.T) {
	s, idx := newTestStoreWithIndex(t)
	path := writeTempFile(t, "indexed evidence")

	result, err := s.Ingest(context.Background(), path, "C1", "tester")
	require.NoError(t, err)

	hashes, err := idx.ListCase(context.Background(), "C1")
	require.NoError(t, err)
	require.Equal(t, []schema.SHA256Hex{result.SHA256}, hashes)

	hashes, err = s.ListCase("C1")
	require.NoError(t, err)
	assert.Equal(t, []schema.SHA256Hex{result.SHA256}, hashes)
}

func TestStats_WithIndexAttached_CountsAnalyzedAfterSaveAnalysis(t *testing.T) {
	s, idx := newTestStoreWithIndex(t)
	path := writeTempFile(t, "analyzed evidence")

	result, err := s.Ingest(context.Background(), path, "C1", "tester")
	require.NoError(t, err)

	meta, err := s.ReadMetadata(result.SHA256)
	require.NoError(t, err)

	require.NoError(t, s.SaveAnalysis(result.SHA256, schema.UnifiedAnalysis{
		SchemaVersion:     "1.0.0",
		EvidenceType:      schema.EvidenceDocument,
		AnalysisTimestamp: time.Now().UTC(),
		Metadata:          meta,
		CaseIDs:           []string{"C1"},
		DocumentAnalysis: &schema.DocumentAnalysis{
			Summary:           "memo",
			DocumentType:      schema.DocTypeLetter,
			Sentiment:         schema.SentimentNeutral,
			LegalSignificance: schema.SignificanceLow,
			ConfidenceOverall: 0.9123,
		},
	}, "tester"))

	ist, err := idx.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, ist.AnalyzedCount)

	st, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, st.AnalyzedCount)
}

func TestPruneCase_WithIndexAttached_RemovesOrphanFromIndex(t *testing.T) {
	s, idx := newTestStoreWithIndex(t)
	solo := writeTempFile(t, "solo indexed evidence")

	_, err := s.Ingest(context.Background(), solo, "C1", "tester")
	require.NoError(t, err)

	_, err = s.PruneCase("C1", false)
	require.NoError(t, err)

	hashes, err := idx.ListCase(context.Background(), "C1")
	require.NoError(t, err)
	assert.Empty(t, hashes)
}
