package analyzer

// JSON-schema literals for the structured-output calls (spec §4.3). Each
// mirrors the corresponding schema.* struct field-for-field so the LLM's
// response unmarshals directly; Absent fields are schema'd as nullable
// strings since schema.Absent round-trips through null/string.

func documentAnalysisSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"summary": map[string]interface{}{"type": "string"},
			"entities": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"name":             map[string]interface{}{"type": "string"},
						"type":             map[string]interface{}{"type": "string", "enum": []string{"person", "organization", "date", "legal_term"}},
						"confidence":       map[string]interface{}{"type": "number"},
						"context":          map[string]interface{}{"type": "string"},
						"relationship":     map[string]interface{}{"type": []string{"string", "null"}},
						"quoted_text":      map[string]interface{}{"type": []string{"string", "null"}},
						"associated_event": map[string]interface{}{"type": []string{"string", "null"}},
					},
					"required": []string{"name", "type", "confidence", "context"},
				},
			},
			"document_type":      map[string]interface{}{"type": "string", "enum": []string{"email", "letter", "contract", "filing", "unknown"}},
			"sentiment":          map[string]interface{}{"type": "string", "enum": []string{"hostile", "neutral", "professional"}},
			"legal_significance": map[string]interface{}{"type": "string", "enum": []string{"critical", "high", "medium", "low"}},
			"risk_flags": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string", "enum": documentRiskFlagValues()},
			},
			"confidence_overall": map[string]interface{}{"type": "number"},
		},
		"required": []string{"summary", "entities", "document_type", "sentiment", "legal_significance", "risk_flags", "confidence_overall"},
	}
}

func imageAnalysisSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"scene_description":  map[string]interface{}{"type": "string"},
			"detected_text":      map[string]interface{}{"type": []string{"string", "null"}},
			"detected_objects":   map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
			"people_present":     map[string]interface{}{"type": "boolean"},
			"timestamps_visible": map[string]interface{}{"type": "boolean"},
			"potential_evidence_value": map[string]interface{}{
				"type": "string", "enum": []string{"low", "medium", "high"},
			},
			"analysis_notes":      map[string]interface{}{"type": "string"},
			"confidence_overall":  map[string]interface{}{"type": "number"},
			"risk_flags": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "string",
					"enum": []string{"low_quality", "tampering_suspected", "metadata_missing", "unclear_content"},
				},
			},
		},
		"required": []string{"scene_description", "people_present", "timestamps_visible", "potential_evidence_value", "analysis_notes", "confidence_overall", "risk_flags"},
	}
}

func emailThreadAnalysisSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"thread_summary": map[string]interface{}{"type": "string"},
			"participants": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"email_address":   map[string]interface{}{"type": "string"},
						"display_name":    map[string]interface{}{"type": []string{"string", "null"}},
						"role":            map[string]interface{}{"type": "string", "enum": []string{"sender", "recipient", "cc", "bcc"}},
						"authority_level": map[string]interface{}{"type": "string", "enum": []string{"executive", "management", "employee", "external"}},
						"confidence":      map[string]interface{}{"type": "number"},
						"message_count":   map[string]interface{}{"type": "integer"},
						"deference_score": map[string]interface{}{"type": "number"},
						"dominant_topics": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
					},
					"required": []string{"email_address", "role", "authority_level", "confidence", "message_count", "deference_score"},
				},
			},
			"communication_pattern": map[string]interface{}{"type": "string", "enum": []string{"professional", "escalating", "hostile", "retaliatory"}},
			"sentiment_progression": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "number"}},
			"escalation_events": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"email_position":  map[string]interface{}{"type": "integer"},
						"escalation_type": map[string]interface{}{"type": "string", "enum": []string{"tone_change", "new_recipient", "authority_escalation", "threat", "deadline"}},
						"confidence":      map[string]interface{}{"type": "number"},
						"description":     map[string]interface{}{"type": "string"},
						"context":         map[string]interface{}{"type": "string"},
					},
					"required": []string{"email_position", "escalation_type", "confidence", "description", "context"},
				},
			},
			"legal_significance": map[string]interface{}{"type": "string", "enum": []string{"critical", "high", "medium", "low"}},
			"risk_flags":         map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string", "enum": documentRiskFlagValues()}},
			"timeline_reconstruction": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
			"confidence_overall":      map[string]interface{}{"type": "number"},
		},
		"required": []string{"thread_summary", "participants", "communication_pattern", "sentiment_progression", "escalation_events", "legal_significance", "risk_flags", "timeline_reconstruction", "confidence_overall"},
	}
}

func documentRiskFlagValues() []string {
	return []string{
		"threatening", "deadline", "pii", "confidential",
		"time_sensitive", "retaliation_indicators", "harassment", "discrimination",
	}
}
