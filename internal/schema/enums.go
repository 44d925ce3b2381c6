package schema

// SchemaVersion is carried on every forensic bundle so that readers can
// detect incompatible future revisions of the on-disk format.
const SchemaVersion = "1.0.0"

// EvidenceType is the closed set of evidence kinds the store understands.
type EvidenceType string

const (
	EvidenceDocument EvidenceType = "document"
	EvidenceImage    EvidenceType = "image"
	EvidenceEmail    EvidenceType = "email"
	EvidencePDF      EvidenceType = "pdf"
	EvidenceAudio    EvidenceType = "audio"
	EvidenceVideo    EvidenceType = "video"
	EvidenceOther    EvidenceType = "other"
)

func (e EvidenceType) Valid() bool {
	switch e {
	case EvidenceDocument, EvidenceImage, EvidenceEmail, EvidencePDF, EvidenceAudio, EvidenceVideo, EvidenceOther:
		return true
	}
	return false
}

// CustodyEventType is the closed set of chain-of-custody event kinds.
type CustodyEventType string

const (
	CustodyIngest          CustodyEventType = "ingest"
	CustodyAnalyze         CustodyEventType = "analyze"
	CustodyExport          CustodyEventType = "export"
	CustodyCaseAssociation CustodyEventType = "case_association"
)

func (c CustodyEventType) Valid() bool {
	switch c {
	case CustodyIngest, CustodyAnalyze, CustodyExport, CustodyCaseAssociation:
		return true
	}
	return false
}

// EntityType is the closed set of document-entity kinds.
type EntityType string

const (
	EntityPerson       EntityType = "person"
	EntityOrganization EntityType = "organization"
	EntityDate         EntityType = "date"
	EntityLegalTerm    EntityType = "legal_term"
)

func (e EntityType) Valid() bool {
	switch e {
	case EntityPerson, EntityOrganization, EntityDate, EntityLegalTerm:
		return true
	}
	return false
}

// DocumentType is the closed set of document classifications.
type DocumentType string

const (
	DocTypeEmail   DocumentType = "email"
	DocTypeLetter  DocumentType = "letter"
	DocTypeContract DocumentType = "contract"
	DocTypeFiling  DocumentType = "filing"
	DocTypeUnknown DocumentType = "unknown"
)

func (d DocumentType) Valid() bool {
	switch d {
	case DocTypeEmail, DocTypeLetter, DocTypeContract, DocTypeFiling, DocTypeUnknown:
		return true
	}
	return false
}

// Sentiment is the closed set of document sentiment classifications.
type Sentiment string

const (
	SentimentHostile      Sentiment = "hostile"
	SentimentNeutral      Sentiment = "neutral"
	SentimentProfessional Sentiment = "professional"
)

func (s Sentiment) Valid() bool {
	switch s {
	case SentimentHostile, SentimentNeutral, SentimentProfessional:
		return true
	}
	return false
}

// LegalSignificance is the closed set of legal-significance ratings, shared
// by document analyses, temporal sequences, and timeline gaps.
type LegalSignificance string

const (
	SignificanceCritical LegalSignificance = "critical"
	SignificanceHigh     LegalSignificance = "high"
	SignificanceMedium   LegalSignificance = "medium"
	SignificanceLow      LegalSignificance = "low"
)

func (l LegalSignificance) Valid() bool {
	switch l {
	case SignificanceCritical, SignificanceHigh, SignificanceMedium, SignificanceLow:
		return true
	}
	return false
}

// DocumentRiskFlag is the closed set of document risk markers.
type DocumentRiskFlag string

const (
	RiskThreatening           DocumentRiskFlag = "threatening"
	RiskDeadline              DocumentRiskFlag = "deadline"
	RiskPII                   DocumentRiskFlag = "pii"
	RiskConfidential          DocumentRiskFlag = "confidential"
	RiskTimeSensitive         DocumentRiskFlag = "time_sensitive"
	RiskRetaliationIndicators DocumentRiskFlag = "retaliation_indicators"
	RiskHarassment            DocumentRiskFlag = "harassment"
	RiskDiscrimination        DocumentRiskFlag = "discrimination"
)

func (r DocumentRiskFlag) Valid() bool {
	switch r {
	case RiskThreatening, RiskDeadline, RiskPII, RiskConfidential, RiskTimeSensitive,
		RiskRetaliationIndicators, RiskHarassment, RiskDiscrimination:
		return true
	}
	return false
}

// EvidenceValue is the closed set of image evidentiary-value ratings.
type EvidenceValue string

const (
	EvidenceValueLow    EvidenceValue = "low"
	EvidenceValueMedium EvidenceValue = "medium"
	EvidenceValueHigh   EvidenceValue = "high"
)

func (e EvidenceValue) Valid() bool {
	switch e {
	case EvidenceValueLow, EvidenceValueMedium, EvidenceValueHigh:
		return true
	}
	return false
}

// ImageRiskFlag is the closed set of image risk markers.
type ImageRiskFlag string

const (
	ImageRiskLowQuality       ImageRiskFlag = "low_quality"
	ImageRiskTamperingSuspected ImageRiskFlag = "tampering_suspected"
	ImageRiskMetadataMissing  ImageRiskFlag = "metadata_missing"
	ImageRiskUnclearContent   ImageRiskFlag = "unclear_content"
)

func (i ImageRiskFlag) Valid() bool {
	switch i {
	case ImageRiskLowQuality, ImageRiskTamperingSuspected, ImageRiskMetadataMissing, ImageRiskUnclearContent:
		return true
	}
	return false
}

// EmailRole is the closed set of participant roles on an email.
type EmailRole string

const (
	RoleSender    EmailRole = "sender"
	RoleRecipient EmailRole = "recipient"
	RoleCC        EmailRole = "cc"
	RoleBCC       EmailRole = "bcc"
)

func (r EmailRole) Valid() bool {
	switch r {
	case RoleSender, RoleRecipient, RoleCC, RoleBCC:
		return true
	}
	return false
}

// AuthorityLevel is the closed set of organisational authority ratings.
type AuthorityLevel string

const (
	AuthorityExecutive AuthorityLevel = "executive"
	AuthorityManagement AuthorityLevel = "management"
	AuthorityEmployee  AuthorityLevel = "employee"
	AuthorityExternal  AuthorityLevel = "external"
)

func (a AuthorityLevel) Valid() bool {
	switch a {
	case AuthorityExecutive, AuthorityManagement, AuthorityEmployee, AuthorityExternal:
		return true
	}
	return false
}

// EscalationType is the closed set of escalation-event kinds.
type EscalationType string

const (
	EscalationToneChange         EscalationType = "tone_change"
	EscalationNewRecipient       EscalationType = "new_recipient"
	EscalationAuthorityEscalation EscalationType = "authority_escalation"
	EscalationThreat             EscalationType = "threat"
	EscalationDeadline           EscalationType = "deadline"
)

func (e EscalationType) Valid() bool {
	switch e {
	case EscalationToneChange, EscalationNewRecipient, EscalationAuthorityEscalation, EscalationThreat, EscalationDeadline:
		return true
	}
	return false
}

// CommunicationPattern is the closed set of email-thread tone ratings.
type CommunicationPattern string

const (
	CommProfessional CommunicationPattern = "professional"
	CommEscalating   CommunicationPattern = "escalating"
	CommHostile      CommunicationPattern = "hostile"
	CommRetaliatory  CommunicationPattern = "retaliatory"
)

func (c CommunicationPattern) Valid() bool {
	switch c {
	case CommProfessional, CommEscalating, CommHostile, CommRetaliatory:
		return true
	}
	return false
}

// TimelineEventType is the closed set of timeline-event sources.
type TimelineEventType string

const (
	EventFileCreated            TimelineEventType = "file_created"
	EventAnalysisPerformed      TimelineEventType = "analysis_performed"
	EventCommunication          TimelineEventType = "communication"
	EventPhotoTaken             TimelineEventType = "photo_taken"
	EventDocumentDateReference  TimelineEventType = "document_date_reference"
	EventSemanticEvent          TimelineEventType = "semantic_event"
)

func (t TimelineEventType) Valid() bool {
	switch t {
	case EventFileCreated, EventAnalysisPerformed, EventCommunication, EventPhotoTaken,
		EventDocumentDateReference, EventSemanticEvent:
		return true
	}
	return false
}

// CaseType is the closed set of case categories used to key prompt
// selection. "employment" is a synonym of "workplace" (spec §4.5, §9).
type CaseType string

const (
	CaseGeneric    CaseType = "generic"
	CaseWorkplace  CaseType = "workplace"
	CaseEmployment CaseType = "employment"
	CaseContract   CaseType = "contract"
)

func (c CaseType) Valid() bool {
	switch c {
	case CaseGeneric, CaseWorkplace, CaseEmployment, CaseContract:
		return true
	}
	return false
}

// Normalize collapses the employment/workplace synonym pair to a single
// canonical value, per spec §9's open-question resolution: they are
// treated identically everywhere prompts or reports branch on case type.
func (c CaseType) Normalize() CaseType {
	if c == CaseEmployment {
		return CaseWorkplace
	}
	return c
}

// LLMStatus is the closed set of structured-LLM response statuses (spec §6).
type LLMStatus string

const (
	LLMCompleted LLMStatus = "completed"
	LLMIncomplete LLMStatus = "incomplete"
	LLMRefused   LLMStatus = "refused"
)
