package aggregate

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

func ingestDocument(t *testing.T, s *store.Store, caseID, filename, text string, da schema.DocumentAnalysis) schema.SHA256Hex {
	t.Helper()
	path := filepath.Join(t.TempDir(), filename)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))

	res, err := s.Ingest(context.Background(), path, caseID, "tester")
	require.NoError(t, err)

	meta, err := s.ReadMetadata(res.SHA256)
	require.NoError(t, err)

	ua := schema.UnifiedAnalysis{
		SchemaVersion:     "1.0.0",
		EvidenceType:      schema.EvidenceDocument,
		AnalysisTimestamp: time.Now().UTC(),
		Metadata:          meta,
		CaseIDs:           []string{caseID},
		DocumentAnalysis:  &da,
	}
	require.NoError(t, s.SaveAnalysis(res.SHA256, ua, "tester"))
	return res.SHA256
}

func baseDeps(t *testing.T, s *store.Store) Deps {
	t.Helper()
	reg, err := prompts.Load("")
	require.NoError(t, err)
	return Deps{
		Store:   s,
		Prompts: reg,
		Log:     logging.With("test", "aggregate"),
	}
}

func TestAggregate_QuotedStatementsGroupedBySpeaker(t *testing.T) {
	s := newTestStore(t)

	ingestDocument(t, s, "C1", "a.txt", "Jane Doe said something.", schema.DocumentAnalysis{
		Summary: "memo",
		Entities: []schema.DocumentEntity{{
			Name: "Jane Doe", Type: schema.EntityPerson, Confidence: 0.9,
			Context: "quote", QuotedText: schema.Some("I never received the email."),
		}},
		DocumentType:      schema.DocTypeLetter,
		Sentiment:         schema.SentimentHostile,
		LegalSignificance: schema.SignificanceMedium,
		ConfidenceOverall: 0.9,
	})
	ingestDocument(t, s, "C1", "b.txt", "Doe, Jane replied again.", schema.DocumentAnalysis{
		Summary: "reply",
		Entities: []schema.DocumentEntity{{
			Name: "Doe, Jane", Type: schema.EntityPerson, Confidence: 0.8,
			Context: "quote", QuotedText: schema.Some("That is not what happened."),
		}},
		DocumentType:      schema.DocTypeLetter,
		Sentiment:         schema.SentimentNeutral,
		LegalSignificance: schema.SignificanceLow,
		ConfidenceOverall: 0.8,
	})

	d := baseDeps(t, s)
	summary, err := Aggregate(context.Background(), d, "C1", "generic", schema.CorrelationAnalysis{CaseID: "C1"})
	require.NoError(t, err)
	require.Equal(t, 2, summary.EvidenceCount)
	require.Len(t, summary.OverallAssessment.QuotedStatements, 1)
	require.Len(t, summary.OverallAssessment.QuotedStatements[0].Statements, 2)
	require.False(t, summary.ExecutiveSummary.Present)
}

func TestAggregate_EmptyCaseIDRejected(t *testing.T) {
	s := newTestStore(t)
	d := baseDeps(t, s)
	_, err := Aggregate(context.Background(), d, "", "generic", schema.CorrelationAnalysis{})
	require.Error(t, err)
}

func TestAggregate_RelationshipNetworkIgnoresPartiallyMentionedEntity(t *testing.T) {
	s := newTestStore(t)
	ingestDocument(t, s, "C4", "org.txt", "org chart", schema.DocumentAnalysis{
		Summary: "org chart reference",
		Entities: []schema.DocumentEntity{
			{Name: "Jane Doe", Type: schema.EntityPerson, Confidence: 0.9, Context: "employee",
				Relationship: schema.Some("escalated a complaint that names john smith and references john davies only incidentally")},
			{Name: "John Smith", Type: schema.EntityPerson, Confidence: 0.9, Context: "manager"},
			{Name: "John Davies Okafor", Type: schema.EntityPerson, Confidence: 0.9, Context: "unrelated manager"},
		},
		DocumentType:      schema.DocTypeLetter,
		Sentiment:         schema.SentimentNeutral,
		LegalSignificance: schema.SignificanceLow,
		ConfidenceOverall: 0.9,
	})

	d := baseDeps(t, s)
	summary, err := Aggregate(context.Background(), d, "C4", "generic", schema.CorrelationAnalysis{CaseID: "C4"})
	require.NoError(t, err)
	edges := summary.OverallAssessment.RelationshipNetwork.Edges
	require.Len(t, edges, 1)
	require.Equal(t, "john smith", edges[0].Target)
}

func TestAggregate_RelationshipNetworkResolvesKnownTarget(t *testing.T) {
	s := newTestStore(t)
	ingestDocument(t, s, "C3", "org.txt", "Jane Doe reports to John Smith.", schema.DocumentAnalysis{
		Summary: "org chart reference",
		Entities: []schema.DocumentEntity{
			{Name: "Jane Doe", Type: schema.EntityPerson, Confidence: 0.9, Context: "employee",
				Relationship: schema.Some("reports to John Smith")},
			{Name: "John Smith", Type: schema.EntityPerson, Confidence: 0.9, Context: "manager"},
		},
		DocumentType:      schema.DocTypeLetter,
		Sentiment:         schema.SentimentNeutral,
		LegalSignificance: schema.SignificanceLow,
		ConfidenceOverall: 0.9,
	})

	d := baseDeps(t, s)
	summary, err := Aggregate(context.Background(), d, "C3", "generic", schema.CorrelationAnalysis{CaseID: "C3"})
	require.NoError(t, err)
	require.NotNil(t, summary.OverallAssessment.RelationshipNetwork)
	edges := summary.OverallAssessment.RelationshipNetwork.Edges
	require.Len(t, edges, 1)
	require.Equal(t, "jane doe", edges[0].Source)
	require.Equal(t, "john smith", edges[0].Target)
}
