package schema

import (
	"fmt"
	"regexp"

	evierrors "github.com/evidence-toolkit/evitool/internal/errors"
)

var sha256Pattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// ValidSHA256 reports whether s is a 64-character lowercase hex string.
func ValidSHA256(s string) bool {
	return sha256Pattern.MatchString(s)
}

func fieldErr(path, format string, args ...interface{}) *evierrors.Error {
	msg := fmt.Sprintf(format, args...)
	return evierrors.SchemaValidationErrf("%s: %s", path, msg)
}

func inRange01(x float64) bool {
	return x >= 0 && x <= 1
}

// Validate checks FileMetadata's invariants (spec §3).
func (m FileMetadata) Validate() error {
	if m.Filename == "" {
		return fieldErr("file_metadata.filename", "must not be empty")
	}
	if m.FileSize < 0 {
		return fieldErr("file_metadata.file_size", "must be >= 0, got %d", m.FileSize)
	}
	if !ValidSHA256(string(m.SHA256)) {
		return fieldErr("file_metadata.sha256", "must be 64 lowercase hex characters, got %q", m.SHA256)
	}
	return nil
}

// Validate checks a ChainOfCustodyEvent's invariants.
func (e ChainOfCustodyEvent) Validate() error {
	if !e.EventType.Valid() {
		return fieldErr("chain_of_custody_event.event_type", "unknown value %q", e.EventType)
	}
	if e.Actor == "" {
		return fieldErr("chain_of_custody_event.actor", "must not be empty")
	}
	return nil
}

// Validate checks a DocumentEntity's invariants.
func (d DocumentEntity) Validate() error {
	if d.Name == "" {
		return fieldErr("document_entity.name", "must not be empty")
	}
	if !d.Type.Valid() {
		return fieldErr("document_entity.type", "unknown value %q", d.Type)
	}
	if !inRange01(d.Confidence) {
		return fieldErr("document_entity.confidence", "must be in [0,1], got %v", d.Confidence)
	}
	return nil
}

// Validate checks a DocumentAnalysis's invariants.
func (d DocumentAnalysis) Validate() error {
	for i, e := range d.Entities {
		if err := e.Validate(); err != nil {
			return fieldErr(fmt.Sprintf("document_analysis.entities[%d]", i), "%v", err)
		}
	}
	if !d.DocumentType.Valid() {
		return fieldErr("document_analysis.document_type", "unknown value %q", d.DocumentType)
	}
	if !d.Sentiment.Valid() {
		return fieldErr("document_analysis.sentiment", "unknown value %q", d.Sentiment)
	}
	if !d.LegalSignificance.Valid() {
		return fieldErr("document_analysis.legal_significance", "unknown value %q", d.LegalSignificance)
	}
	for i, f := range d.RiskFlags {
		if !f.Valid() {
			return fieldErr(fmt.Sprintf("document_analysis.risk_flags[%d]", i), "unknown value %q", f)
		}
	}
	if !inRange01(d.ConfidenceOverall) {
		return fieldErr("document_analysis.confidence_overall", "must be in [0,1], got %v", d.ConfidenceOverall)
	}
	return nil
}

// Validate checks an ImageAnalysisStructured's invariants.
func (im ImageAnalysisStructured) Validate() error {
	if !im.PotentialEvidenceValue.Valid() {
		return fieldErr("image_analysis.potential_evidence_value", "unknown value %q", im.PotentialEvidenceValue)
	}
	for i, f := range im.RiskFlags {
		if !f.Valid() {
			return fieldErr(fmt.Sprintf("image_analysis.risk_flags[%d]", i), "unknown value %q", f)
		}
	}
	if !inRange01(im.ConfidenceOverall) {
		return fieldErr("image_analysis.confidence_overall", "must be in [0,1], got %v", im.ConfidenceOverall)
	}
	return nil
}

// Validate checks an EmailParticipant's invariants.
func (p EmailParticipant) Validate() error {
	if p.EmailAddress == "" {
		return fieldErr("email_participant.email_address", "must not be empty")
	}
	if !p.Role.Valid() {
		return fieldErr("email_participant.role", "unknown value %q", p.Role)
	}
	if !p.AuthorityLevel.Valid() {
		return fieldErr("email_participant.authority_level", "unknown value %q", p.AuthorityLevel)
	}
	if p.MessageCount < 0 {
		return fieldErr("email_participant.message_count", "must be >= 0, got %d", p.MessageCount)
	}
	if !inRange01(p.DeferenceScore) {
		return fieldErr("email_participant.deference_score", "must be in [0,1], got %v", p.DeferenceScore)
	}
	return nil
}

// Validate checks an EscalationEvent's invariants.
func (e EscalationEvent) Validate() error {
	if e.EmailPosition < 0 {
		return fieldErr("escalation_event.email_position", "must be >= 0, got %d", e.EmailPosition)
	}
	if !e.EscalationType.Valid() {
		return fieldErr("escalation_event.escalation_type", "unknown value %q", e.EscalationType)
	}
	return nil
}

// Validate checks an EmailThreadAnalysis's invariants, including spec §3
// invariant 4 (sentiment_progression length matches the thread size).
func (a EmailThreadAnalysis) Validate() error {
	for i, p := range a.Participants {
		if err := p.Validate(); err != nil {
			return fieldErr(fmt.Sprintf("email_analysis.participants[%d]", i), "%v", err)
		}
	}
	if !a.CommunicationPattern.Valid() {
		return fieldErr("email_analysis.communication_pattern", "unknown value %q", a.CommunicationPattern)
	}
	if a.EmailCount <= 0 {
		return fieldErr("email_analysis.email_count", "must be positive, got %d", a.EmailCount)
	}
	if len(a.SentimentProgression) != a.EmailCount {
		// invariant 4: sentiment_progression tracks one value per email.
		return fieldErr("email_analysis.sentiment_progression",
			"length %d does not match email_count %d", len(a.SentimentProgression), a.EmailCount)
	}
	if len(a.TimelineReconstruction) > 0 && len(a.TimelineReconstruction) != a.EmailCount {
		return fieldErr("email_analysis.timeline_reconstruction",
			"length %d does not match email_count %d", len(a.TimelineReconstruction), a.EmailCount)
	}
	for i, ev := range a.EscalationEvents {
		if err := ev.Validate(); err != nil {
			return fieldErr(fmt.Sprintf("email_analysis.escalation_events[%d]", i), "%v", err)
		}
	}
	if !a.LegalSignificance.Valid() {
		return fieldErr("email_analysis.legal_significance", "unknown value %q", a.LegalSignificance)
	}
	for i, f := range a.RiskFlags {
		if !f.Valid() {
			return fieldErr(fmt.Sprintf("email_analysis.risk_flags[%d]", i), "unknown value %q", f)
		}
	}
	return nil
}

// Validate checks a UnifiedAnalysis's invariants, including spec §3
// invariant 5 (exactly one per-type analysis block populated, consistent
// with EvidenceType).
func (u UnifiedAnalysis) Validate() error {
	if !u.EvidenceType.Valid() {
		return fieldErr("unified_analysis.evidence_type", "unknown value %q", u.EvidenceType)
	}
	if err := u.Metadata.Validate(); err != nil {
		return err
	}
	if len(u.CaseIDs) == 0 {
		return fieldErr("unified_analysis.case_ids", "must be non-empty")
	}

	populated := 0
	if u.DocumentAnalysis != nil {
		populated++
		if err := u.DocumentAnalysis.Validate(); err != nil {
			return err
		}
	}
	if u.ImageAnalysis != nil {
		populated++
		if err := u.ImageAnalysis.Validate(); err != nil {
			return err
		}
	}
	if u.EmailAnalysis != nil {
		populated++
		if err := u.EmailAnalysis.Validate(); err != nil {
			return err
		}
	}
	if populated != 1 {
		return fieldErr("unified_analysis", "exactly one of document_analysis|image_analysis|email_analysis must be populated, found %d", populated)
	}

	switch u.EvidenceType {
	case EvidenceDocument, EvidencePDF:
		if u.DocumentAnalysis == nil && u.ImageAnalysis == nil {
			return fieldErr("unified_analysis", "evidence_type=%q requires document_analysis or image_analysis (scanned PDF fallback)", u.EvidenceType)
		}
	case EvidenceImage:
		if u.ImageAnalysis == nil {
			return fieldErr("unified_analysis", "evidence_type=image requires image_analysis")
		}
	case EvidenceEmail:
		if u.EmailAnalysis == nil {
			return fieldErr("unified_analysis", "evidence_type=email requires email_analysis")
		}
	}

	for i, ev := range u.ChainOfCustody {
		if err := ev.Validate(); err != nil {
			return fieldErr(fmt.Sprintf("unified_analysis.chain_of_custody[%d]", i), "%v", err)
		}
	}
	return nil
}

// Validate checks a CorrelatedEntity's invariants, including spec §3
// invariant 2 (occurrence_count == len(evidence_occurrences)) and §8's
// quantified invariant 3 (occurrence_count >= 2).
func (c CorrelatedEntity) Validate() error {
	if c.EntityName == "" {
		return fieldErr("correlated_entity.entity_name", "must not be empty")
	}
	if !c.EntityType.Valid() {
		return fieldErr("correlated_entity.entity_type", "unknown value %q", c.EntityType)
	}
	if c.OccurrenceCount < 2 {
		return fieldErr("correlated_entity.occurrence_count", "must be >= 2, got %d", c.OccurrenceCount)
	}
	if c.OccurrenceCount != len(c.EvidenceOccurrences) {
		return fieldErr("correlated_entity.occurrence_count", "must equal len(evidence_occurrences) (%d != %d)", c.OccurrenceCount, len(c.EvidenceOccurrences))
	}
	return nil
}

// Validate checks a TimelineEvent's invariants.
func (t TimelineEvent) Validate() error {
	if !ValidSHA256(string(t.EvidenceSHA256)) {
		return fieldErr("timeline_event.evidence_sha256", "must be 64 lowercase hex characters, got %q", t.EvidenceSHA256)
	}
	if !t.EvidenceType.Valid() {
		return fieldErr("timeline_event.evidence_type", "unknown value %q", t.EvidenceType)
	}
	if !t.EventType.Valid() {
		return fieldErr("timeline_event.event_type", "unknown value %q", t.EventType)
	}
	return nil
}

// Validate checks a CorrelationAnalysis's invariants, including spec §8's
// quantified invariant 4 (timeline monotonicity after sort).
func (c CorrelationAnalysis) Validate() error {
	if c.CaseID == "" {
		return fieldErr("correlation_analysis.case_id", "must not be empty")
	}
	for i, e := range c.CorrelatedEntities {
		if err := e.Validate(); err != nil {
			return fieldErr(fmt.Sprintf("correlation_analysis.correlated_entities[%d]", i), "%v", err)
		}
	}
	var prev *TimelineEvent
	for i, ev := range c.TimelineEvents {
		if err := ev.Validate(); err != nil {
			return fieldErr(fmt.Sprintf("correlation_analysis.timeline_events[%d]", i), "%v", err)
		}
		if prev != nil && ev.Timestamp.Before(prev.Timestamp) {
			return fieldErr("correlation_analysis.timeline_events", "not monotonically non-decreasing at index %d", i)
		}
		prev = &c.TimelineEvents[i]
	}
	return nil
}

// Validate checks a CaseSummary's invariants.
func (c CaseSummary) Validate() error {
	if c.CaseID == "" {
		return fieldErr("case_summary.case_id", "must not be empty")
	}
	if c.EvidenceCount != len(c.Evidence) {
		return fieldErr("case_summary.evidence_count", "must equal len(evidence) (%d != %d)", c.EvidenceCount, len(c.Evidence))
	}
	for i, t := range c.EvidenceTypes {
		if !t.Valid() {
			return fieldErr(fmt.Sprintf("case_summary.evidence_types[%d]", i), "unknown value %q", t)
		}
	}
	return c.Correlation.Validate()
}
