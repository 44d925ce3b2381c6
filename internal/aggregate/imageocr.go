package aggregate

import (
	"fmt"
	"sort"

	"github.com/evidence-toolkit/evitool/internal/schema"
)

// buildImageOCRAggregate counts images carrying visible text, grouped by
// evidentiary value, plus the count of images with visible timestamps
// and people (spec §4.5).
func buildImageOCRAggregate(analyses []*schema.UnifiedAnalysis) *schema.ImageOCRAggregate {
	agg := &schema.ImageOCRAggregate{
		SamplesByEvidenceValue: map[schema.EvidenceValue][]string{},
	}
	anyImage := false

	for _, ua := range analyses {
		if ua.ImageAnalysis == nil {
			continue
		}
		anyImage = true
		ia := ua.ImageAnalysis

		if ia.DetectedText.Present && ia.DetectedText.Value != "" {
			agg.ImagesWithText++
			sample := fmt.Sprintf("%s: %s", ua.Metadata.SHA256[:8], ia.SceneDescription)
			agg.SamplesByEvidenceValue[ia.PotentialEvidenceValue] = append(
				agg.SamplesByEvidenceValue[ia.PotentialEvidenceValue], sample)
		}
		if ia.TimestampsVisible {
			agg.ImagesWithTimestamps++
		}
		if ia.PeoplePresent {
			agg.ImagesWithPeople++
		}
	}
	if !anyImage {
		return nil
	}

	for value, samples := range agg.SamplesByEvidenceValue {
		sort.Strings(samples)
		agg.SamplesByEvidenceValue[value] = samples
	}
	return agg
}
