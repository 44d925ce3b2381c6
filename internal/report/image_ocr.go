package report

import (
	"fmt"
	"io"

	"github.com/evidence-toolkit/evitool/internal/schema"
)

type imageOCRGenerator struct{}

func (g *imageOCRGenerator) ReportFilename() string { return "image_ocr.md" }

func (g *imageOCRGenerator) HasData(summary *schema.CaseSummary) bool {
	ocr := summary.OverallAssessment.ImageOCR
	return ocr != nil && ocr.ImagesWithText > 0
}

func (g *imageOCRGenerator) Generate(summary *schema.CaseSummary, w io.Writer) error {
	ocr := summary.OverallAssessment.ImageOCR
	writeHeader(w, "Image OCR")

	fmt.Fprintf(w, "%d image(s) with visible text, %d with visible timestamps, %d with people.\n\n",
		ocr.ImagesWithText, ocr.ImagesWithTimestamps, ocr.ImagesWithPeople)

	for _, value := range sortedMapKeys(ocr.SamplesByEvidenceValue) {
		fmt.Fprintf(w, "## %s\n\n", value)
		bulletList(w, ocr.SamplesByEvidenceValue[value])
	}
	return nil
}
