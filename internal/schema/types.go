package schema

import "time"

// SHA256Hex is a 64-character lowercase hex content hash.
type SHA256Hex string

// FileMetadata describes an ingested file. Immutable once written.
type FileMetadata struct {
	Filename     string    `json:"filename"`
	FileSize     int64     `json:"file_size"`
	MimeType     string    `json:"mime_type"`
	CreatedTime  time.Time `json:"created_time"`
	ModifiedTime time.Time `json:"modified_time"`
	Extension    string    `json:"extension"`
	SHA256       SHA256Hex `json:"sha256"`
}

// ChainOfCustodyEvent is one append-only audit entry for a piece of
// evidence.
type ChainOfCustodyEvent struct {
	Timestamp   time.Time              `json:"timestamp"`
	EventType   CustodyEventType       `json:"event_type"`
	Actor       string                 `json:"actor"`
	Description string                 `json:"description"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// DocumentEntity is one entity extracted from a document by the LLM.
type DocumentEntity struct {
	Name            string     `json:"name"`
	Type            EntityType `json:"type"`
	Confidence      float64    `json:"confidence"`
	Context         string     `json:"context"`
	Relationship    Absent     `json:"relationship"`
	QuotedText      Absent     `json:"quoted_text"`
	AssociatedEvent Absent     `json:"associated_event"`
}

// DocumentAnalysis is the structured result of analysing a text document.
type DocumentAnalysis struct {
	Summary            string             `json:"summary"`
	Entities           []DocumentEntity   `json:"entities"`
	DocumentType       DocumentType       `json:"document_type"`
	Sentiment          Sentiment          `json:"sentiment"`
	LegalSignificance  LegalSignificance  `json:"legal_significance"`
	RiskFlags          []DocumentRiskFlag `json:"risk_flags"`
	ConfidenceOverall  float64            `json:"confidence_overall"`

	// Derived properties, not used by correlation (spec §4.3).
	TotalWordCount  int      `json:"total_word_count"`
	UniqueWordCount int      `json:"unique_word_count"`
	TopWords        []string `json:"top_words,omitempty"`
}

// ImageAnalysisStructured is the structured result of analysing an image
// (or a rasterised PDF page, or the combination of several pages).
type ImageAnalysisStructured struct {
	SceneDescription       string          `json:"scene_description"`
	DetectedText           Absent          `json:"detected_text"`
	DetectedObjects        []string        `json:"detected_objects,omitempty"`
	PeoplePresent          bool            `json:"people_present"`
	TimestampsVisible      bool            `json:"timestamps_visible"`
	PotentialEvidenceValue EvidenceValue   `json:"potential_evidence_value"`
	AnalysisNotes          string          `json:"analysis_notes"`
	ConfidenceOverall      float64         `json:"confidence_overall"`
	RiskFlags              []ImageRiskFlag `json:"risk_flags"`
}

// EmailParticipant is one sender/recipient on an email thread.
type EmailParticipant struct {
	EmailAddress    string         `json:"email_address"`
	DisplayName     Absent         `json:"display_name"`
	Role            EmailRole      `json:"role"`
	AuthorityLevel  AuthorityLevel `json:"authority_level"`
	Confidence      float64        `json:"confidence"`
	MessageCount    int            `json:"message_count"`
	DeferenceScore  float64        `json:"deference_score"`
	DominantTopics  []string       `json:"dominant_topics,omitempty"`
}

// EscalationEvent marks a tonal or structural escalation within an email
// thread.
type EscalationEvent struct {
	EmailPosition  int            `json:"email_position"`
	EscalationType EscalationType `json:"escalation_type"`
	Confidence     float64        `json:"confidence"`
	Description    string         `json:"description"`
	Context        string         `json:"context"`
}

// EmailThreadAnalysis is the structured result of analysing an email
// thread.
type EmailThreadAnalysis struct {
	ThreadSummary          string               `json:"thread_summary"`
	Participants           []EmailParticipant   `json:"participants"`
	CommunicationPattern   CommunicationPattern `json:"communication_pattern"`
	// EmailCount is the number of messages in the parsed thread (set from
	// the .eml/.mbox parse, not inferred from SentimentProgression), the
	// reference length invariant 4 checks SentimentProgression against.
	EmailCount             int                  `json:"email_count"`
	SentimentProgression   []float64            `json:"sentiment_progression"`
	EscalationEvents       []EscalationEvent    `json:"escalation_events"`
	LegalSignificance      LegalSignificance    `json:"legal_significance"`
	RiskFlags              []DocumentRiskFlag   `json:"risk_flags"`
	TimelineReconstruction []string             `json:"timeline_reconstruction"`
	ConfidenceOverall      float64              `json:"confidence_overall"`
}

// UnifiedAnalysis is the per-evidence record persisted as
// derived/sha256=<hash>/analysis.v1.json. Exactly one of DocumentAnalysis,
// ImageAnalysis, or EmailAnalysis is populated, consistent with
// EvidenceType.
type UnifiedAnalysis struct {
	SchemaVersion     string                   `json:"schema_version"`
	EvidenceType      EvidenceType             `json:"evidence_type"`
	AnalysisTimestamp time.Time                `json:"analysis_timestamp"`
	Metadata          FileMetadata             `json:"metadata"`
	CaseIDs           []string                 `json:"case_ids"`
	DocumentAnalysis  *DocumentAnalysis        `json:"document_analysis,omitempty"`
	ImageAnalysis     *ImageAnalysisStructured `json:"image_analysis,omitempty"`
	EmailAnalysis     *EmailThreadAnalysis     `json:"email_analysis,omitempty"`
	ChainOfCustody    []ChainOfCustodyEvent    `json:"chain_of_custody"`
	EXIF              map[string]interface{}   `json:"exif,omitempty"`
	EmailHeaders      map[string]interface{}   `json:"email_headers,omitempty"`
	Labels            []string                 `json:"labels,omitempty"`
	Notes             Absent                   `json:"notes"`
}

// EvidenceOccurrence is one occurrence of a correlated entity within a
// single piece of evidence.
type EvidenceOccurrence struct {
	EvidenceSHA256 SHA256Hex `json:"evidence_sha256"`
	Context        string    `json:"context"`
	Confidence     float64   `json:"confidence"`
}

// CorrelatedEntity is an entity that appears in at least two distinct
// pieces of evidence within a case, after canonicalisation.
type CorrelatedEntity struct {
	EntityName         string               `json:"entity_name"`
	EntityType         EntityType           `json:"entity_type"`
	OccurrenceCount    int                  `json:"occurrence_count"`
	ConfidenceAverage  float64              `json:"confidence_average"`
	EvidenceOccurrences []EvidenceOccurrence `json:"evidence_occurrences"`
}

// TimelineEvent is one point on a case's reconstructed timeline.
type TimelineEvent struct {
	Timestamp         time.Time         `json:"timestamp"`
	EvidenceSHA256    SHA256Hex         `json:"evidence_sha256"`
	EvidenceType      EvidenceType      `json:"evidence_type"`
	EventType         TimelineEventType `json:"event_type"`
	Description       string            `json:"description"`
	Confidence        float64           `json:"confidence"`
	AIClassification  Absent            `json:"ai_classification"`
}

// TemporalSequence is a cluster of timeline events around a legally
// significant anchor.
type TemporalSequence struct {
	AnchorEvent       TimelineEvent     `json:"anchor_event"`
	Events            []TimelineEvent   `json:"events"`
	LegalSignificance LegalSignificance `json:"legal_significance"`
}

// TimelineGap is a reported silence between two bounding timeline events.
type TimelineGap struct {
	GapStart          time.Time         `json:"gap_start"`
	GapEnd            time.Time         `json:"gap_end"`
	DurationHours     float64           `json:"duration_hours"`
	Significance      LegalSignificance `json:"significance"`
	BeforeEventSummary string           `json:"before_event_summary"`
	AfterEventSummary  string           `json:"after_event_summary"`
}

// Contradiction is one detected conflict between two or more pieces of
// evidence.
type Contradiction struct {
	Description    string    `json:"description"`
	EvidenceSHA256s []SHA256Hex `json:"evidence_sha256s"`
	Severity       float64   `json:"severity"`
	Confidence     float64   `json:"confidence"`
}

// CorroborationLink is one detected mutual support between two or more
// pieces of evidence.
type CorroborationLink struct {
	Description    string      `json:"description"`
	EvidenceSHA256s []SHA256Hex `json:"evidence_sha256s"`
	Confidence     float64     `json:"confidence"`
}

// EvidenceGap is one detected absence of evidence that a reasonable case
// narrative would expect to exist.
type EvidenceGap struct {
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
}

// LegalPatternAnalysis is the envelope returned by the optional
// LLM-assisted legal-pattern detection step.
type LegalPatternAnalysis struct {
	Contradictions []Contradiction     `json:"contradictions"`
	Corroboration  []CorroborationLink `json:"corroboration"`
	EvidenceGaps   []EvidenceGap       `json:"evidence_gaps"`
	PatternSummary string              `json:"pattern_summary"`
	Confidence     float64             `json:"confidence"`
}

// CorrelationAnalysis is C4's output: the cross-evidence correlation
// result for one case.
type CorrelationAnalysis struct {
	SchemaVersion     string                 `json:"schema_version"`
	CaseID            string                 `json:"case_id"`
	EvidenceCount     int                    `json:"evidence_count"`
	CorrelatedEntities []CorrelatedEntity    `json:"correlated_entities"`
	TimelineEvents    []TimelineEvent        `json:"timeline_events"`
	TemporalSequences []TemporalSequence     `json:"temporal_sequences"`
	TimelineGaps      []TimelineGap          `json:"timeline_gaps"`
	LegalPatterns     *LegalPatternAnalysis  `json:"legal_patterns,omitempty"`
	AnalysisTimestamp time.Time              `json:"analysis_timestamp"`
	SkippedHashes     []SHA256Hex            `json:"skipped_hashes,omitempty"`
}

// EvidenceSummary is a lightweight per-item summary embedded in a
// CaseSummary's evidence list.
type EvidenceSummary struct {
	SHA256       SHA256Hex    `json:"sha256"`
	EvidenceType EvidenceType `json:"evidence_type"`
	Filename     string       `json:"filename"`
}

// QuotedStatement is one attributed quotation aggregated by C5.
type QuotedStatement struct {
	Speaker         string    `json:"speaker"`
	Text            string    `json:"text"`
	Sentiment       Sentiment `json:"sentiment"`
	RiskFlags       []DocumentRiskFlag `json:"risk_flags,omitempty"`
	SourceSHA256    SHA256Hex `json:"source_sha256"`
}

// SpeakerStatements groups all quoted statements by one canonical speaker.
type SpeakerStatements struct {
	Speaker          string            `json:"speaker"`
	Statements       []QuotedStatement `json:"statements"`
	DominantSentiment Sentiment        `json:"dominant_sentiment"`
}

// CommunicationPatterns is C5's aggregate view across all email threads.
type CommunicationPatterns struct {
	Distribution       map[CommunicationPattern]int `json:"distribution"`
	RiskLevel          LegalSignificance             `json:"risk_level"`
	EscalationDetected bool                          `json:"escalation_detected"`
}

// ParticipantPowerProfile is C5's per-participant power-dynamics rollup.
type ParticipantPowerProfile struct {
	EmailAddress          string   `json:"email_address"`
	MessageCount          int      `json:"message_count"`
	MeanDeferenceScore    float64  `json:"mean_deference_score"`
	DominantTopics        []string `json:"dominant_topics,omitempty"`
}

// PowerDynamics is C5's aggregate view of organisational power dynamics.
type PowerDynamics struct {
	Participants    []ParticipantPowerProfile `json:"participants"`
	TopParticipants []string                  `json:"top_participants"`
}

// ImageOCRAggregate is C5's aggregate view across all image analyses.
type ImageOCRAggregate struct {
	ImagesWithText       int                         `json:"images_with_text"`
	SamplesByEvidenceValue map[EvidenceValue][]string `json:"samples_by_evidence_value"`
	ImagesWithTimestamps int                         `json:"images_with_timestamps"`
	ImagesWithPeople     int                         `json:"images_with_people"`
}

// RelationshipEdge is one (source, target, relationship_type) triple in
// the relationship network.
type RelationshipEdge struct {
	Source           string `json:"source"`
	Target           string `json:"target"`
	RelationshipType string `json:"relationship_type"`
}

// RelationshipNetwork models the case's relationship graph as a flat node
// set plus an edge list (spec §9: never embed a node inside another node).
type RelationshipNetwork struct {
	Nodes      []string           `json:"nodes"`
	Edges      []RelationshipEdge `json:"edges"`
	KeyPlayers []string           `json:"key_players"`
}

// OverallAssessment is the closed record C5 produces in place of the
// source's free-form dictionary (spec §9's redesign note). Each field is
// optional and generators branch on its presence.
type OverallAssessment struct {
	QuotedStatements      []SpeakerStatements    `json:"quoted_statements,omitempty"`
	CommunicationPatterns *CommunicationPatterns `json:"communication_patterns,omitempty"`
	PowerDynamics         *PowerDynamics         `json:"power_dynamics,omitempty"`
	ImageOCR              *ImageOCRAggregate     `json:"image_ocr,omitempty"`
	SemanticTimelineEvents []TimelineEvent       `json:"semantic_timeline_events,omitempty"`
	RelationshipNetwork   *RelationshipNetwork   `json:"relationship_network,omitempty"`

	// Forensic-opinion fields (spec §4.6's forensic legal opinion
	// generator), populated by an optional LLM pass over the aggregates.
	ForensicSummary             Absent `json:"_forensic_summary"`
	ForensicLegalImplications   Absent `json:"_forensic_legal_implications"`
	ForensicRecommendedActions  Absent `json:"_forensic_recommended_actions"`
	ForensicRiskAssessment      Absent `json:"_forensic_risk_assessment"`

	// Financial-risk fields (spec §4.6's financial risk generator).
	TribunalProbability        Absent `json:"tribunal_probability"`
	FinancialExposureSummary   Absent `json:"financial_exposure_summary"`
	ClaimStrengthSummary       Absent `json:"claim_strength_summary"`
	SettlementRecommendation   Absent `json:"settlement_recommendation"`
}

// CaseSummary is C5's output: the full aggregated assessment of a case.
type CaseSummary struct {
	SchemaVersion       string               `json:"schema_version"`
	CaseID              string               `json:"case_id"`
	GenerationTimestamp time.Time            `json:"generation_timestamp"`
	EvidenceCount       int                  `json:"evidence_count"`
	EvidenceTypes       []EvidenceType       `json:"evidence_types"`
	Evidence            []EvidenceSummary    `json:"evidence"`
	Correlation         CorrelationAnalysis  `json:"correlation"`
	OverallAssessment   OverallAssessment    `json:"overall_assessment"`
	ExecutiveSummary    Absent               `json:"executive_summary"`
}

// EvidenceCore is the evidence-identity block of a forensic bundle
// (spec §6).
type EvidenceCore struct {
	EvidenceID string    `json:"evidence_id"`
	SHA256     SHA256Hex `json:"sha256"`
	MimeType   string    `json:"mime_type"`
	Bytes      int64     `json:"bytes"`
	IngestedAt time.Time `json:"ingested_at"`
	SourcePath string    `json:"source_path"`
}

// ModelInfo names the model that produced a DocumentAnalysisRecord.
type ModelInfo struct {
	Name     string `json:"name"`
	Revision string `json:"revision"`
}

// CallParameters records the LLM call parameters behind one analysis.
type CallParameters struct {
	Temperature   float64 `json:"temperature"`
	PromptHash    Absent  `json:"prompt_hash"`
	TokenUsageIn  *int    `json:"token_usage_in,omitempty"`
	TokenUsageOut *int    `json:"token_usage_out,omitempty"`
}

// DocumentAnalysisRecord is one entry in a forensic bundle's analyses list.
type DocumentAnalysisRecord struct {
	AnalysisID        string           `json:"analysis_id"`
	CreatedAt         time.Time        `json:"created_at"`
	Model             ModelInfo        `json:"model"`
	Parameters        CallParameters   `json:"parameters"`
	Outputs           DocumentAnalysis `json:"outputs"`
	ConfidenceOverall float64          `json:"confidence_overall"`
}

// EvidenceBundle is the derived forensic view written as
// evidence_bundle.v1.json (spec §6).
type EvidenceBundle struct {
	SchemaVersion  string                   `json:"schema_version"`
	CaseID         string                   `json:"case_id"`
	Evidence       EvidenceCore             `json:"evidence"`
	ChainOfCustody []ChainOfCustodyEvent    `json:"chain_of_custody"`
	Analyses       []DocumentAnalysisRecord `json:"analyses"`
}
