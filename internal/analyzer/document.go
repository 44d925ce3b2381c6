package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	evierrors "github.com/evidence-toolkit/evitool/internal/errors"
	"github.com/evidence-toolkit/evitool/internal/llm"
	"github.com/evidence-toolkit/evitool/internal/prompts"
	"github.com/evidence-toolkit/evitool/internal/schema"
)

// tjLiteral matches the literal-string operand of a PDF content stream's
// Tj/TJ text-showing operators: "(some text) Tj" or the array form inside
// a TJ. It is a best-effort scrape, not a full PDF tokenizer — good
// enough to recover plain ASCII/Latin-1 body text from most documents.
var tjLiteral = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)\s*(?:Tj|TJ)?`)

// analyzeDocument runs the text-document pipeline: extract plain text,
// compute the word-frequency annex, and call the structured LLM.
func analyzeDocument(ctx context.Context, d Deps, hash schema.SHA256Hex, path string, meta schema.FileMetadata, caseIDs []string, caseType string) (*schema.UnifiedAnalysis, error) {
	text, err := extractPlainText(path)
	if err != nil {
		return nil, err
	}
	return runDocumentAnalysis(ctx, d, hash, meta, caseIDs, caseType, text)
}

// analyzeDocumentOrScannedPDF handles PDFs: extract embedded text via
// pdfcpu's content-stream scrape; if that yields nothing (a scanned PDF
// with no text layer), fall back to the image analyzer over each page's
// embedded scan image.
func analyzeDocumentOrScannedPDF(ctx context.Context, d Deps, hash schema.SHA256Hex, path string, meta schema.FileMetadata, caseIDs []string, caseType string) (*schema.UnifiedAnalysis, error) {
	text, err := extractPDFText(path)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) != "" {
		return runDocumentAnalysis(ctx, d, hash, meta, caseIDs, caseType, text)
	}

	d.Log.Info("pdf has no extractable text, falling back to scanned-page image analysis", "sha256", hash)
	return analyzeScannedPDF(ctx, d, hash, path, meta, caseIDs, caseType)
}

func runDocumentAnalysis(ctx context.Context, d Deps, hash schema.SHA256Hex, meta schema.FileMetadata, caseIDs []string, caseType, text string) (*schema.UnifiedAnalysis, error) {
	p, err := d.Prompts.Get(prompts.DomainDocument, caseType)
	if err != nil {
		return nil, err
	}
	prompt, err := prompts.FullPrompt(p, map[string]interface{}{
		"CaseType": caseType,
		"Filename": meta.Filename,
		"Text":     text,
	})
	if err != nil {
		return nil, err
	}

	res, err := d.LLM.Complete(ctx, llm.Request{
		Prompt:      prompt,
		SchemaName:  "document_analysis",
		Schema:      documentAnalysisSchema(),
		Temperature: 0,
	})
	if err != nil {
		return nil, err
	}

	var da schema.DocumentAnalysis
	if err := llm.ParseInto(res, &da); err != nil {
		return nil, err
	}
	da.TotalWordCount, da.UniqueWordCount, da.TopWords = wordFrequency(text)

	ua := baseUnifiedAnalysis(hash, meta, schema.EvidenceDocument, caseIDs)
	if meta.Extension == ".pdf" {
		ua.EvidenceType = schema.EvidencePDF
	}
	ua.DocumentAnalysis = &da
	return &ua, nil
}

// extractPlainText reads a non-PDF text file as-is; the document
// analyzer treats any non-PDF, non-image, non-email evidence as plain
// text (letters, memos, filings delivered as .txt/.docx-as-text/etc.).
func extractPlainText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", evierrors.IngestErr(err, "read document text")
	}
	return string(data), nil
}

// extractPDFText scrapes visible text out of a PDF's content streams via
// pdfcpu. Returns "" (not an error) when the PDF carries no text layer.
func extractPDFText(path string) (string, error) {
	tmpDir, err := os.MkdirTemp("", "evitool-pdf-content-*")
	if err != nil {
		return "", evierrors.IngestErr(err, "create temp dir for pdf extraction")
	}
	defer os.RemoveAll(tmpDir)

	if err := api.ExtractContentFile(path, tmpDir, nil, nil); err != nil {
		return "", evierrors.IngestErr(err, "extract pdf content streams")
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		return "", evierrors.IngestErr(err, "read pdf content extraction dir")
	}

	var sb strings.Builder
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(tmpDir, e.Name()))
		if err != nil {
			continue
		}
		for _, m := range tjLiteral.FindAllSubmatch(raw, -1) {
			sb.Write(unescapePDFLiteral(m[1]))
			sb.WriteByte(' ')
		}
	}
	return sb.String(), nil
}

func unescapePDFLiteral(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] == '\\' && i+1 < len(b) {
			i++
		}
		out = append(out, b[i])
	}
	return out
}

// analyzeScannedPDF extracts each page's embedded scan image via pdfcpu
// and runs the image analyzer over the set, combining the per-page
// results the same way a multi-page image submission would be combined.
func analyzeScannedPDF(ctx context.Context, d Deps, hash schema.SHA256Hex, path string, meta schema.FileMetadata, caseIDs []string, caseType string) (*schema.UnifiedAnalysis, error) {
	tmpDir, err := os.MkdirTemp("", "evitool-pdf-images-*")
	if err != nil {
		return nil, evierrors.IngestErr(err, "create temp dir for pdf image extraction")
	}
	defer os.RemoveAll(tmpDir)

	if err := api.ExtractImagesFile(path, tmpDir, nil, nil); err != nil {
		return nil, evierrors.DependencyMissingErr("pdf has no extractable text or embedded scan images: " + err.Error())
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		return nil, evierrors.IngestErr(err, "read pdf image extraction dir")
	}
	var pagePaths []string
	for _, e := range entries {
		if !e.IsDir() {
			pagePaths = append(pagePaths, filepath.Join(tmpDir, e.Name()))
		}
	}
	if len(pagePaths) == 0 {
		return nil, evierrors.DependencyMissingErr("pdf has no text layer and no embedded images to analyze")
	}

	return analyzeImagePages(ctx, d, hash, pagePaths, meta, caseIDs, caseType, schema.EvidencePDF)
}
