package analyzer

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"sort"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	evierrors "github.com/evidence-toolkit/evitool/internal/errors"
	"github.com/evidence-toolkit/evitool/internal/llm"
	"github.com/evidence-toolkit/evitool/internal/prompts"
	"github.com/evidence-toolkit/evitool/internal/schema"
)

// analyzeImage runs the single-image pipeline: base64-encode (converting
// to PNG first if the source format isn't one a vision model accepts
// natively), then call the structured LLM.
func analyzeImage(ctx context.Context, d Deps, hash schema.SHA256Hex, path string, meta schema.FileMetadata, caseIDs []string, caseType string) (*schema.UnifiedAnalysis, error) {
	return analyzeImagePages(ctx, d, hash, []string{path}, meta, caseIDs, caseType, schema.EvidenceImage)
}

// analyzeImagePages runs the image pipeline over one or more page images
// (a single photo, or the rasterised/extracted pages of a scanned PDF),
// combining per-page results per spec §4.3's multi-page rule: detected
// text is concatenated with a "[Page N]" prefix, detected objects are
// deduplicated, and confidence is the minimum across pages.
func analyzeImagePages(ctx context.Context, d Deps, hash schema.SHA256Hex, pagePaths []string, meta schema.FileMetadata, caseIDs []string, caseType string, evidenceType schema.EvidenceType) (*schema.UnifiedAnalysis, error) {
	p, err := d.Prompts.Get(prompts.DomainImage, caseType)
	if err != nil {
		return nil, err
	}

	var combined schema.ImageAnalysisStructured
	combined.ConfidenceOverall = 1.0
	objectSeen := map[string]bool{}
	var detectedTextParts []string
	riskSeen := map[schema.ImageRiskFlag]bool{}

	for i, pagePath := range pagePaths {
		b64, mimeType, err := encodeImageForLLM(pagePath)
		if err != nil {
			return nil, err
		}

		data := map[string]interface{}{
			"CaseType":   caseType,
			"Filename":   meta.Filename,
			"Base64Data": b64,
			"MimeType":   mimeType,
		}
		if len(pagePaths) > 1 {
			data["PageNumber"] = i + 1
		}
		prompt, err := prompts.FullPrompt(p, data)
		if err != nil {
			return nil, err
		}

		res, err := d.LLM.Complete(ctx, llm.Request{
			Prompt:      prompt,
			SchemaName:  "image_analysis",
			Schema:      imageAnalysisSchema(),
			Temperature: 0,
		})
		if err != nil {
			return nil, err
		}

		var page schema.ImageAnalysisStructured
		if err := llm.ParseInto(res, &page); err != nil {
			return nil, err
		}

		if page.SceneDescription != "" {
			if combined.SceneDescription != "" {
				combined.SceneDescription += " "
			}
			combined.SceneDescription += page.SceneDescription
		}
		if page.DetectedText.Present && page.DetectedText.String() != "" {
			if len(pagePaths) > 1 {
				detectedTextParts = append(detectedTextParts, fmt.Sprintf("[Page %d] %s", i+1, page.DetectedText.String()))
			} else {
				detectedTextParts = append(detectedTextParts, page.DetectedText.String())
			}
		}
		for _, obj := range page.DetectedObjects {
			if !objectSeen[obj] {
				objectSeen[obj] = true
				combined.DetectedObjects = append(combined.DetectedObjects, obj)
			}
		}
		combined.PeoplePresent = combined.PeoplePresent || page.PeoplePresent
		combined.TimestampsVisible = combined.TimestampsVisible || page.TimestampsVisible
		if evidenceValueRank(page.PotentialEvidenceValue) > evidenceValueRank(combined.PotentialEvidenceValue) {
			combined.PotentialEvidenceValue = page.PotentialEvidenceValue
		}
		for _, f := range page.RiskFlags {
			if !riskSeen[f] {
				riskSeen[f] = true
				combined.RiskFlags = append(combined.RiskFlags, f)
			}
		}
		if page.ConfidenceOverall < combined.ConfidenceOverall {
			combined.ConfidenceOverall = page.ConfidenceOverall
		}
		if page.AnalysisNotes != "" {
			if combined.AnalysisNotes != "" {
				combined.AnalysisNotes += "; "
			}
			combined.AnalysisNotes += page.AnalysisNotes
		}
	}

	if len(detectedTextParts) > 0 {
		combined.DetectedText = schema.Some(strings.Join(detectedTextParts, "\n"))
	}
	combined.ConfidenceOverall = schema.Round4(combined.ConfidenceOverall)
	if combined.PotentialEvidenceValue == "" {
		combined.PotentialEvidenceValue = schema.EvidenceValueLow
	}
	sort.Strings(combined.DetectedObjects)

	ua := baseUnifiedAnalysis(hash, meta, evidenceType, caseIDs)
	ua.ImageAnalysis = &combined
	if exif, err := d.Store.ReadEXIF(hash); err == nil && exif != nil {
		ua.EXIF = exif
	}
	return &ua, nil
}

func evidenceValueRank(v schema.EvidenceValue) int {
	switch v {
	case schema.EvidenceValueHigh:
		return 3
	case schema.EvidenceValueMedium:
		return 2
	case schema.EvidenceValueLow:
		return 1
	default:
		return 0
	}
}

// nativeImageMIME is the set of formats sent to the LLM as-is; anything
// else is decoded and re-encoded as PNG first.
var nativeImageMIME = map[string]bool{
	"image/jpeg": true, "image/png": true, "image/gif": true,
}

// encodeImageForLLM returns the base64 payload and MIME type to embed in
// the image prompt, re-encoding TIFF/BMP/WebP sources to PNG via
// golang.org/x/image since vision models don't accept those natively.
func encodeImageForLLM(path string) (base64Data, mimeType string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", evierrors.IngestErr(err, "read image for analysis")
	}

	sniffed := sniffImageMIME(data)
	if nativeImageMIME[sniffed] {
		return base64.StdEncoding.EncodeToString(data), sniffed, nil
	}

	img, err := decodeNonNativeImage(data, sniffed)
	if err != nil {
		return "", "", evierrors.DependencyMissingErr("unsupported image format for analysis: " + err.Error())
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", "", evierrors.IngestErr(err, "re-encode image as png")
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), "image/png", nil
}

func sniffImageMIME(data []byte) string {
	switch {
	case len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}):
		return "image/png"
	case len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8:
		return "image/jpeg"
	case len(data) >= 6 && (bytes.Equal(data[:6], []byte("GIF87a")) || bytes.Equal(data[:6], []byte("GIF89a"))):
		return "image/gif"
	case len(data) >= 4 && (bytes.Equal(data[:4], []byte{'I', 'I', 0x2A, 0}) || bytes.Equal(data[:4], []byte{'M', 'M', 0, 0x2A})):
		return "image/tiff"
	case len(data) >= 2 && data[0] == 'B' && data[1] == 'M':
		return "image/bmp"
	case len(data) >= 12 && bytes.Equal(data[8:12], []byte("WEBP")):
		return "image/webp"
	default:
		return ""
	}
}

func decodeNonNativeImage(data []byte, mimeType string) (image.Image, error) {
	r := bytes.NewReader(data)
	switch mimeType {
	case "image/tiff":
		return tiff.Decode(r)
	case "image/bmp":
		return bmp.Decode(r)
	case "image/webp":
		return webp.Decode(r)
	default:
		img, _, err := image.Decode(r)
		return img, err
	}
}
