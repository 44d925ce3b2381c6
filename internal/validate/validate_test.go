package validate

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/evidence-toolkit/evitool/internal/schema"
	"github.com/evidence-toolkit/evitool/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(t.TempDir())
	require.NoError(t, err)
	return s
}

func ingestDocument(t *testing.T, s *store.Store, caseID, filename, text string) schema.SHA256Hex {
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
		DocumentAnalysis: &schema.DocumentAnalysis{
			Summary:            "memo",
			DocumentType:       schema.DocTypeLetter,
			Sentiment:          schema.SentimentNeutral,
			LegalSignificance:  schema.SignificanceLow,
			ConfidenceOverall:  0.9123,
		},
	}
	require.NoError(t, s.SaveAnalysis(res.SHA256, ua, "tester"))
	return res.SHA256
}

func defaultThresholds() Thresholds {
	return Thresholds{GapThresholdHours: 168, GapHighHours: 720, GapMediumHours: 336}
}

func TestValidateCase_ContentAddressingAndSchemaClosurePass(t *testing.T) {
	s := newTestStore(t)
	ingestDocument(t, s, "C1", "a.txt", "A meeting with HR on 15 March 2024 was cancelled.")

	c := NewChecker(s, defaultThresholds())
	rpt, err := c.ValidateCase(context.Background(), "C1", nil, nil)
	require.NoError(t, err)
	require.True(t, rpt.AllPassed(), "%+v", rpt.Results)
}

func TestCheckCorrelationMinimum_RejectsSingleOccurrence(t *testing.T) {
	c := NewChecker(nil, defaultThresholds())
	rpt := &Report{}
	c.checkCorrelationMinimum(rpt, &schema.CorrelationAnalysis{
		CorrelatedEntities: []schema.CorrelatedEntity{
			{EntityName: "Jane Doe", OccurrenceCount: 1, EvidenceOccurrences: []schema.EvidenceOccurrence{{}}},
		},
	})
	require.False(t, rpt.AllPassed())
}

func TestCheckGapThresholds_FlagsWrongSignificanceLabel(t *testing.T) {
	c := NewChecker(nil, defaultThresholds())
	rpt := &Report{}
	start := time.Now().UTC()
	c.checkGapThresholds(rpt, []schema.TimelineGap{
		{GapStart: start, GapEnd: start.Add(800 * time.Hour), DurationHours: 800, Significance: schema.SignificanceMedium},
	})
	require.False(t, rpt.AllPassed())
}

func TestCheckGapThresholds_AcceptsCorrectHighSignificance(t *testing.T) {
	c := NewChecker(nil, defaultThresholds())
	rpt := &Report{}
	start := time.Now().UTC()
	c.checkGapThresholds(rpt, []schema.TimelineGap{
		{GapStart: start, GapEnd: start.Add(800 * time.Hour), DurationHours: 800, Significance: schema.SignificanceHigh},
	})
	require.True(t, rpt.AllPassed())
}

func TestCheckFloatPrecisionOf_FlagsUnroundedFloat(t *testing.T) {
	c := NewChecker(nil, defaultThresholds())
	rpt := &Report{}
	c.checkFloatPrecisionOf(rpt, "test", &schema.EvidenceOccurrence{Confidence: 0.123456})
	require.False(t, rpt.AllPassed())
}

func TestCheckFloatPrecisionOf_AcceptsRoundedFloat(t *testing.T) {
	c := NewChecker(nil, defaultThresholds())
	rpt := &Report{}
	c.checkFloatPrecisionOf(rpt, "test", &schema.EvidenceOccurrence{Confidence: 0.1235})
	require.True(t, rpt.AllPassed())
}

func TestCheckTimelineMonotonicity_RejectsOutOfOrderEvents(t *testing.T) {
	c := NewChecker(nil, defaultThresholds())
	rpt := &Report{}
	now := time.Now().UTC()
	c.checkTimelineMonotonicity(rpt, []schema.TimelineEvent{
		{Timestamp: now.Add(time.Hour)},
		{Timestamp: now},
	})
	require.False(t, rpt.AllPassed())
}
