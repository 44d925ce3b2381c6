package correlate

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/evidence-toolkit/evitool/internal/logging"
	"github.com/evidence-toolkit/evitool/internal/prompts"
	"github.com/evidence-toolkit/evitool/internal/schema"
	"github.com/evidence-toolkit/evitool/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(t.TempDir())
	require.NoError(t, err)
	return s
}

func ingestAndAnalyze(t *testing.T, s *store.Store, caseID, filename, text string, da schema.DocumentAnalysis) schema.SHA256Hex {
	t.Helper()
	path := filepath.Join(t.TempDir(), filename)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))

	res, err := s.Ingest(context.Background(), path, caseID, "tester")
	require.NoError(t, err)

	ua := schema.UnifiedAnalysis{
		SchemaVersion:     "1.0.0",
		EvidenceType:      schema.EvidenceDocument,
		AnalysisTimestamp: time.Now().UTC(),
		Metadata:          schemaMetadata(t, s, res.SHA256),
		CaseIDs:           []string{caseID},
		DocumentAnalysis:  &da,
	}
	require.NoError(t, s.SaveAnalysis(res.SHA256, ua, "tester"))
	return res.SHA256
}

func schemaMetadata(t *testing.T, s *store.Store, hash schema.SHA256Hex) schema.FileMetadata {
	t.Helper()
	meta, err := s.ReadMetadata(hash)
	require.NoError(t, err)
	return meta
}

func baseDeps(t *testing.T, s *store.Store) Deps {
	t.Helper()
	reg, err := prompts.Load("")
	require.NoError(t, err)
	return Deps{
		Store:   s,
		Prompts: reg,
		Log:     logging.With("test", "correlate"),
	}
}

func TestCorrelate_EntityAcrossTwoDocumentsIsCorrelated(t *testing.T) {
	s := newTestStore(t)

	entity := schema.DocumentEntity{
		Name:       "Jane Doe",
		Type:       schema.EntityPerson,
		Confidence: 0.9,
		Context:    "sender",
	}
	ingestAndAnalyze(t, s, "C1", "a.txt", "Jane Doe sent a memo.", schema.DocumentAnalysis{
		Summary:           "memo from Jane Doe",
		Entities:          []schema.DocumentEntity{entity},
		DocumentType:      schema.DocTypeLetter,
		Sentiment:         schema.SentimentNeutral,
		LegalSignificance: schema.SignificanceLow,
		ConfidenceOverall: 0.9,
	})

	entity2 := entity
	entity2.Name = "Doe, Jane"
	ingestAndAnalyze(t, s, "C1", "b.txt", "Doe, Jane replied.", schema.DocumentAnalysis{
		Summary:           "reply from Jane Doe",
		Entities:          []schema.DocumentEntity{entity2},
		DocumentType:      schema.DocTypeLetter,
		Sentiment:         schema.SentimentNeutral,
		LegalSignificance: schema.SignificanceLow,
		ConfidenceOverall: 0.85,
	})

	d := baseDeps(t, s)
	result, err := Correlate(context.Background(), d, "C1")
	require.NoError(t, err)
	require.Equal(t, 2, result.EvidenceCount)
	require.Len(t, result.CorrelatedEntities, 1)
	require.Equal(t, 2, result.CorrelatedEntities[0].OccurrenceCount)
	require.InDelta(t, 0.9, result.CorrelatedEntities[0].ConfidenceAverage, 0.001)
}

func TestCorrelate_SingleOccurrenceEntityNotCorrelated(t *testing.T) {
	s := newTestStore(t)
	ingestAndAnalyze(t, s, "C2", "solo.txt", "Only one mention of Bob Smith.", schema.DocumentAnalysis{
		Summary: "solo document",
		Entities: []schema.DocumentEntity{{
			Name: "Bob Smith", Type: schema.EntityPerson, Confidence: 0.8, Context: "author",
		}},
		DocumentType:      schema.DocTypeLetter,
		Sentiment:         schema.SentimentNeutral,
		LegalSignificance: schema.SignificanceLow,
		ConfidenceOverall: 0.8,
	})

	d := baseDeps(t, s)
	result, err := Correlate(context.Background(), d, "C2")
	require.NoError(t, err)
	require.Empty(t, result.CorrelatedEntities)
}

func TestCorrelate_EmptyCaseIDRejected(t *testing.T) {
	s := newTestStore(t)
	d := baseDeps(t, s)
	_, err := Correlate(context.Background(), d, "")
	require.Error(t, err)
}

func TestCorrelate_UnknownCaseProducesEmptyResult(t *testing.T) {
	s := newTestStore(t)
	d := baseDeps(t, s)
	result, err := Correlate(context.Background(), d, "does-not-exist")
	require.NoError(t, err)
	require.Equal(t, 0, result.EvidenceCount)
}
