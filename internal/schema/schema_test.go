package schema

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleUnifiedAnalysis() UnifiedAnalysis {
	hash := SHA256Hex("a1b2c3d4e5f60718293a4b5c6d7e8f9021436587a9bcdef0123456789abcdef0")
	return UnifiedAnalysis{
		SchemaVersion:     SchemaVersion,
		EvidenceType:      EvidenceDocument,
		AnalysisTimestamp: time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC),
		Metadata: FileMetadata{
			Filename:     "memo.txt",
			FileSize:     128,
			MimeType:     "text/plain",
			CreatedTime:  time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC),
			ModifiedTime: time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC),
			Extension:    ".txt",
			SHA256:       hash,
		},
		CaseIDs: []string{"C1"},
		DocumentAnalysis: &DocumentAnalysis{
			Summary: "A meeting with HR was cancelled.",
			Entities: []DocumentEntity{
				{
					Name:            "15 March 2024",
					Type:            EntityDate,
					Confidence:      0.92,
					Context:         "meeting date",
					AssociatedEvent: Some("HR meeting cancelled"),
				},
			},
			DocumentType:      DocTypeLetter,
			Sentiment:         SentimentNeutral,
			LegalSignificance: SignificanceLow,
			RiskFlags:         []DocumentRiskFlag{},
			ConfidenceOverall: 0.9,
			TotalWordCount:    9,
			UniqueWordCount:   9,
		},
		ChainOfCustody: []ChainOfCustodyEvent{
			{Timestamp: time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC), EventType: CustodyIngest, Actor: "system", Description: "ingested"},
		},
	}
}

func TestUnifiedAnalysis_ValidateSuccess(t *testing.T) {
	ua := sampleUnifiedAnalysis()
	require.NoError(t, ua.Validate())
}

func TestUnifiedAnalysis_RequiresExactlyOneAnalysisBlock(t *testing.T) {
	ua := sampleUnifiedAnalysis()
	ua.ImageAnalysis = &ImageAnalysisStructured{
		PotentialEvidenceValue: EvidenceValueLow,
		ConfidenceOverall:      0.5,
	}
	err := ua.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SchemaValidationError")
}

func TestUnifiedAnalysis_RejectsBadHash(t *testing.T) {
	ua := sampleUnifiedAnalysis()
	ua.Metadata.SHA256 = "not-a-hash"
	require.Error(t, ua.Validate())
}

func TestUnifiedAnalysis_RejectsEmptyCaseIDs(t *testing.T) {
	ua := sampleUnifiedAnalysis()
	ua.CaseIDs = nil
	require.Error(t, ua.Validate())
}

func TestUnifiedAnalysis_RoundTrip(t *testing.T) {
	ua := sampleUnifiedAnalysis()
	data, err := json.Marshal(ua)
	require.NoError(t, err)

	var out UnifiedAnalysis
	require.NoError(t, json.Unmarshal(data, &out))

	assert.Equal(t, ua.EvidenceType, out.EvidenceType)
	assert.Equal(t, ua.Metadata.SHA256, out.Metadata.SHA256)
	assert.True(t, ua.AnalysisTimestamp.Equal(out.AnalysisTimestamp))
	require.NotNil(t, out.DocumentAnalysis)
	assert.Equal(t, ua.DocumentAnalysis.Summary, out.DocumentAnalysis.Summary)
	require.Len(t, out.DocumentAnalysis.Entities, 1)
	assert.True(t, out.DocumentAnalysis.Entities[0].AssociatedEvent.Present)
	assert.Equal(t, "HR meeting cancelled", out.DocumentAnalysis.Entities[0].AssociatedEvent.String())
}

func TestAbsent_NullWhenNotPresent(t *testing.T) {
	e := DocumentEntity{Name: "x", Type: EntityPerson, Confidence: 0.5, Context: "c"}
	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"associated_event":null`)
	assert.False(t, e.AssociatedEvent.Present)
}

func TestCorrelatedEntity_OccurrenceCountMismatch(t *testing.T) {
	c := CorrelatedEntity{
		EntityName:      "Sarah Johnson",
		EntityType:      EntityPerson,
		OccurrenceCount: 3,
		EvidenceOccurrences: []EvidenceOccurrence{
			{EvidenceSHA256: "a1b2c3d4e5f60718293a4b5c6d7e8f9021436587a9bcdef0123456789abcdef", Confidence: 0.9},
			{EvidenceSHA256: "b1b2c3d4e5f60718293a4b5c6d7e8f9021436587a9bcdef0123456789abcdef", Confidence: 0.8},
		},
	}
	require.Error(t, c.Validate())
}

func TestCorrelatedEntity_MinimumOccurrence(t *testing.T) {
	c := CorrelatedEntity{
		EntityName:      "Solo",
		EntityType:      EntityPerson,
		OccurrenceCount: 1,
		EvidenceOccurrences: []EvidenceOccurrence{
			{EvidenceSHA256: "a1b2c3d4e5f60718293a4b5c6d7e8f9021436587a9bcdef0123456789abcdef", Confidence: 0.9},
		},
	}
	require.Error(t, c.Validate())
}

func TestCorrelationAnalysis_TimelineMustBeMonotonic(t *testing.T) {
	hash := SHA256Hex("a1b2c3d4e5f60718293a4b5c6d7e8f9021436587a9bcdef0123456789abcdef0")
	ca := CorrelationAnalysis{
		CaseID: "C1",
		TimelineEvents: []TimelineEvent{
			{Timestamp: time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), EvidenceSHA256: hash, EvidenceType: EvidenceDocument, EventType: EventFileCreated},
			{Timestamp: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), EvidenceSHA256: hash, EvidenceType: EvidenceDocument, EventType: EventFileCreated},
		},
	}
	require.Error(t, ca.Validate())
}

func TestRound4(t *testing.T) {
	assert.Equal(t, 0.1235, Round4(0.12346))
	assert.True(t, IsRound4(Round4(0.123456789)))
	assert.False(t, IsRound4(0.123456789))
}

func TestCaseTypeNormalize(t *testing.T) {
	assert.Equal(t, CaseWorkplace, CaseEmployment.Normalize())
	assert.Equal(t, CaseWorkplace, CaseWorkplace.Normalize())
	assert.Equal(t, CaseGeneric, CaseGeneric.Normalize())
}

func TestValidSHA256(t *testing.T) {
	assert.True(t, ValidSHA256("a1b2c3d4e5f60718293a4b5c6d7e8f9021436587a9bcdef0123456789abcdef0"))
	assert.False(t, ValidSHA256("too-short"))
	assert.False(t, ValidSHA256("A1B2C3D4E5F60718293A4B5C6D7E8F9021436587A9BCDEF0123456789ABCDEF0"))
}
