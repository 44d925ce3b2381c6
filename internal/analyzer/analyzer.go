// Package analyzer implements the per-type evidence analyzers (C3):
// document, image, and email. Each exposes Analyze(hash) → UnifiedAnalysis,
// reading the raw file via the store, calling the LLM for a structured
// result, validating it, and saving it back through the store.
package analyzer

import (
	"context"
	"strings"
	"time"

	evierrors "github.com/evidence-toolkit/evitool/internal/errors"
	"github.com/evidence-toolkit/evitool/internal/llm"
	"github.com/evidence-toolkit/evitool/internal/logging"
	"github.com/evidence-toolkit/evitool/internal/prompts"
	"github.com/evidence-toolkit/evitool/internal/schema"
	"github.com/evidence-toolkit/evitool/internal/store"
)

// Deps bundles the dependencies every analyzer needs; constructed once per
// CLI invocation and threaded through.
type Deps struct {
	Store   *store.Store
	LLM     *llm.Client
	Prompts *prompts.Registry
	Log     *logging.Logger
}

// imageExtensions classifies a file as an image by extension; content
// sniffing already happened at ingest time (FileMetadata.MimeType), but
// analyzers key off the extension for prompt/codepath selection since the
// store only records MIME type, not a parsed evidence type.
var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".bmp": true, ".tiff": true, ".tif": true, ".webp": true,
}

var emailExtensions = map[string]bool{
	".eml": true, ".msg": true, ".mbox": true,
}

// classify determines the evidence type from a file's extension and MIME
// type, following the store's metadata.json.
func classify(meta schema.FileMetadata) schema.EvidenceType {
	ext := strings.ToLower(meta.Extension)
	switch {
	case ext == ".pdf":
		return schema.EvidencePDF
	case imageExtensions[ext] || strings.HasPrefix(meta.MimeType, "image/"):
		return schema.EvidenceImage
	case emailExtensions[ext]:
		return schema.EvidenceEmail
	default:
		return schema.EvidenceDocument
	}
}

// Analyze dispatches hash to the appropriate per-type analyzer, based on
// the evidence's stored metadata, and persists the result via the store.
func Analyze(ctx context.Context, d Deps, hash schema.SHA256Hex, caseType, actor string) (*schema.UnifiedAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, evierrors.CancelRequestedErr()
	}

	path, err := d.Store.GetOriginalPath(hash)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, evierrors.StoreConsistencyErr("hash not ingested: " + string(hash))
	}

	meta, err := d.Store.ReadMetadata(hash)
	if err != nil {
		return nil, err
	}

	caseIDs, err := d.Store.CaseIDs(hash)
	if err != nil {
		return nil, err
	}

	evidenceType := classify(meta)

	var ua *schema.UnifiedAnalysis
	switch evidenceType {
	case schema.EvidencePDF:
		ua, err = analyzeDocumentOrScannedPDF(ctx, d, hash, path, meta, caseIDs, caseType)
	case schema.EvidenceImage:
		ua, err = analyzeImage(ctx, d, hash, path, meta, caseIDs, caseType)
	case schema.EvidenceEmail:
		ua, err = analyzeEmail(ctx, d, hash, path, meta, caseIDs, caseType)
	default:
		ua, err = analyzeDocument(ctx, d, hash, path, meta, caseIDs, caseType)
	}
	if err != nil {
		return nil, err
	}

	if err := d.Store.SaveAnalysis(hash, *ua, actor); err != nil {
		return nil, err
	}
	return ua, nil
}

func baseUnifiedAnalysis(hash schema.SHA256Hex, meta schema.FileMetadata, evidenceType schema.EvidenceType, caseIDs []string) schema.UnifiedAnalysis {
	return schema.UnifiedAnalysis{
		SchemaVersion:     schema.SchemaVersion,
		EvidenceType:      evidenceType,
		AnalysisTimestamp: time.Now().UTC(),
		Metadata:          meta,
		CaseIDs:           caseIDs,
	}
}
