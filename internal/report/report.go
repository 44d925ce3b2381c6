// Package report implements the report generator framework (C6): a
// fixed set of generators that each read one slice of a CaseSummary and
// write one Markdown file, skipping quietly when their required data is
// absent and recording their own failures instead of aborting the rest.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/evidence-toolkit/evitool/internal/schema"
)

// Generator is the base contract every report generator implements.
type Generator interface {
	// ReportFilename is stable per generator.
	ReportFilename() string
	// HasData reports whether summary carries enough to produce
	// anything. false means the generator is skipped, not failed.
	HasData(summary *schema.CaseSummary) bool
	// Generate writes Markdown to w. It must not mutate summary.
	Generate(summary *schema.CaseSummary, w io.Writer) error
}

// LogStatus is the outcome recorded for one generator's run.
type LogStatus string

const (
	StatusWritten LogStatus = "written"
	StatusSkipped LogStatus = "skipped"
	StatusFailed  LogStatus = "failed"
)

// GenerationLogEntry records what happened when one generator ran.
type GenerationLogEntry struct {
	Generator string    `json:"generator"`
	Filename  string    `json:"filename"`
	Status    LogStatus `json:"status"`
	Error     string    `json:"error,omitempty"`
}

// Result is the outcome of a full GenerateReports run.
type Result struct {
	Paths []string             `json:"paths"`
	Log   []GenerationLogEntry `json:"generation_log"`
}

// generators lists the fixed set in the order spec §4.6 requires them
// to run: executive summary first, image OCR last.
func generators() []Generator {
	return []Generator{
		&executiveSummaryGenerator{},
		&forensicOpinionGenerator{},
		&financialRiskGenerator{},
		&legalPatternsGenerator{},
		&timelineGenerator{},
		&quotedStatementsGenerator{},
		&relationshipNetworkGenerator{},
		&powerDynamicsGenerator{},
		&imageOCRGenerator{},
	}
}

// GenerateReports runs every fixed generator against summary in order,
// writing each report's Markdown to outputDir. A generator that panics
// or returns an error is recorded as failed in the log and does not
// stop the remaining generators; no error escapes this function except
// for outputDir itself being unusable.
func GenerateReports(summary *schema.CaseSummary, outputDir string) (Result, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("report: cannot create output dir: %w", err)
	}

	var result Result
	for _, g := range generators() {
		entry := runGenerator(g, summary, outputDir)
		result.Log = append(result.Log, entry)
		if entry.Status == StatusWritten {
			result.Paths = append(result.Paths, filepath.Join(outputDir, entry.Filename))
		}
	}
	return result, nil
}

func runGenerator(g Generator, summary *schema.CaseSummary, outputDir string) (entry GenerationLogEntry) {
	name := fmt.Sprintf("%T", g)
	filename := g.ReportFilename()
	entry = GenerationLogEntry{Generator: name, Filename: filename}

	defer func() {
		if r := recover(); r != nil {
			entry.Status = StatusFailed
			entry.Error = fmt.Sprintf("panic: %v", r)
		}
	}()

	if !g.HasData(summary) {
		entry.Status = StatusSkipped
		return entry
	}

	path := filepath.Join(outputDir, filename)
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		entry.Status = StatusFailed
		entry.Error = err.Error()
		return entry
	}

	if err := g.Generate(summary, f); err != nil {
		f.Close()
		os.Remove(tmp)
		entry.Status = StatusFailed
		entry.Error = err.Error()
		return entry
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		entry.Status = StatusFailed
		entry.Error = err.Error()
		return entry
	}
	if err := os.Rename(tmp, path); err != nil {
		entry.Status = StatusFailed
		entry.Error = err.Error()
		return entry
	}

	entry.Status = StatusWritten
	return entry
}
