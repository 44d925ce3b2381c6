package correlate

import (
	"sort"
	"strings"
	"time"

	"github.com/evidence-toolkit/evitool/internal/schema"
)

// exifDateLayouts covers the string forms goexif's Tag.String() produces
// for an ASCII date tag: a Go-quoted literal, or the bare EXIF timestamp
// if the quoting was already stripped upstream.
var exifDateLayouts = []string{
	"2006:01:02 15:04:05",
}

// buildTimeline constructs one TimelineEvent per source named in spec
// §4.4 across every analysis in the case, then sorts them ascending by
// (timestamp, evidence_sha256, event_type).
func buildTimeline(analyses []*schema.UnifiedAnalysis) []schema.TimelineEvent {
	var events []schema.TimelineEvent

	for _, ua := range analyses {
		events = append(events, fileCreatedEvent(ua))
		events = append(events, analysisPerformedEvent(ua))

		if ua.EmailAnalysis != nil {
			if ev, ok := communicationEvent(ua); ok {
				events = append(events, ev)
			}
		}
		if ev, ok := photoTakenEvent(ua); ok {
			events = append(events, ev)
		}
		if ua.DocumentAnalysis != nil {
			events = append(events, documentDateReferenceEvents(ua)...)
		}
	}

	sort.Slice(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		if a.EvidenceSHA256 != b.EvidenceSHA256 {
			return a.EvidenceSHA256 < b.EvidenceSHA256
		}
		return a.EventType < b.EventType
	})
	return events
}

func fileCreatedEvent(ua *schema.UnifiedAnalysis) schema.TimelineEvent {
	return schema.TimelineEvent{
		Timestamp:      ua.Metadata.CreatedTime,
		EvidenceSHA256: ua.Metadata.SHA256,
		EvidenceType:   ua.EvidenceType,
		EventType:      schema.EventFileCreated,
		Description:    "evidence file created: " + ua.Metadata.Filename,
		Confidence:     1.0,
	}
}

func analysisPerformedEvent(ua *schema.UnifiedAnalysis) schema.TimelineEvent {
	return schema.TimelineEvent{
		Timestamp:      ua.AnalysisTimestamp,
		EvidenceSHA256: ua.Metadata.SHA256,
		EvidenceType:   ua.EvidenceType,
		EventType:      schema.EventAnalysisPerformed,
		Description:    "analysis completed",
		Confidence:     1.0,
	}
}

func communicationEvent(ua *schema.UnifiedAnalysis) (schema.TimelineEvent, bool) {
	raw, ok := ua.EmailHeaders["date"]
	if !ok {
		return schema.TimelineEvent{}, false
	}
	var ts time.Time
	switch v := raw.(type) {
	case time.Time:
		ts = v
	case string:
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return schema.TimelineEvent{}, false
		}
		ts = parsed
	default:
		return schema.TimelineEvent{}, false
	}
	return schema.TimelineEvent{
		Timestamp:      ts,
		EvidenceSHA256: ua.Metadata.SHA256,
		EvidenceType:   ua.EvidenceType,
		EventType:      schema.EventCommunication,
		Description:    ua.EmailAnalysis.ThreadSummary,
		Confidence:     1.0,
	}, true
}

func photoTakenEvent(ua *schema.UnifiedAnalysis) (schema.TimelineEvent, bool) {
	if ua.EXIF == nil {
		return schema.TimelineEvent{}, false
	}
	raw, ok := ua.EXIF["DateTimeOriginal"]
	if !ok {
		raw, ok = ua.EXIF["DateTime"]
		if !ok {
			return schema.TimelineEvent{}, false
		}
	}
	s, ok := raw.(string)
	if !ok {
		return schema.TimelineEvent{}, false
	}
	s = strings.Trim(s, `"`)

	var ts time.Time
	var err error
	for _, layout := range exifDateLayouts {
		ts, err = time.Parse(layout, s)
		if err == nil {
			break
		}
	}
	if err != nil {
		return schema.TimelineEvent{}, false
	}

	return schema.TimelineEvent{
		Timestamp:      ts,
		EvidenceSHA256: ua.Metadata.SHA256,
		EvidenceType:   ua.EvidenceType,
		EventType:      schema.EventPhotoTaken,
		Description:    "photo taken",
		Confidence:     0.9,
	}, true
}

// documentDateReferenceEvents emits one event per AI-extracted entity
// that carries an associated_event and whose name parses as a date,
// split into document_date_reference (entity.Type == date) and
// semantic_event (any other type). Entities whose name does not parse as
// a date produce no event, whatever their type.
func documentDateReferenceEvents(ua *schema.UnifiedAnalysis) []schema.TimelineEvent {
	var events []schema.TimelineEvent
	for _, e := range ua.DocumentAnalysis.Entities {
		if !e.AssociatedEvent.Present {
			continue
		}
		ts, ok := parseEntityDate(e)
		if !ok {
			continue
		}
		eventType := schema.EventSemanticEvent
		if e.Type == schema.EntityDate {
			eventType = schema.EventDocumentDateReference
		}
		events = append(events, schema.TimelineEvent{
			Timestamp:        ts,
			EvidenceSHA256:   ua.Metadata.SHA256,
			EvidenceType:     ua.EvidenceType,
			EventType:        eventType,
			Description:      e.AssociatedEvent.Value,
			Confidence:       e.Confidence,
			AIClassification: schema.Some(string(e.Type)),
		})
	}
	return events
}

// parseEntityDate tries the handful of date shapes an LLM is likely to
// have produced for a DocumentEntity of type "date": RFC3339, plain
// calendar date, a "Month D, YYYY" phrase used in formal
// correspondence, or a "DD Month YYYY" phrase. Entities that fail every layout are skipped from the
// timeline rather than erroring the whole correlation pass.
func parseEntityDate(e schema.DocumentEntity) (time.Time, bool) {
	candidates := []string{e.Name}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"January 2, 2006",
		"Jan 2, 2006",
		"02 January 2006",
	}
	for _, c := range candidates {
		for _, layout := range layouts {
			if ts, err := time.Parse(layout, c); err == nil {
				return ts, true
			}
		}
	}
	return time.Time{}, false
}
