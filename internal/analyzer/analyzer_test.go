package analyzer

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evidence-toolkit/evitool/internal/llm"
	"github.com/evidence-toolkit/evitool/internal/logging"
	"github.com/evidence-toolkit/evitool/internal/prompts"
	"github.com/evidence-toolkit/evitool/internal/schema"
	"github.com/evidence-toolkit/evitool/internal/store"
)

// fakeBackend returns a canned JSON payload for every Complete call,
// regardless of request contents, so analyzer tests exercise the
// dispatch/persistence path without a live LLM.
type fakeBackend struct {
	payload []byte
}

func (f *fakeBackend) Complete(ctx context.Context, req llm.Request) (llm.Result, error) {
	return llm.Result{Status: schema.LLMCompleted, Raw: f.payload, Model: "fake-model"}, nil
}

func (f *fakeBackend) Provider() llm.Provider { return llm.ProviderOpenAIResponses }

func newTestDeps(t *testing.T, payload []byte) (Deps, *store.Store) {
	t.Helper()
	s, err := store.Open(t.TempDir())
	require.NoError(t, err)

	reg, err := prompts.Load("")
	require.NoError(t, err)

	return Deps{
		Store:   s,
		LLM:     llm.NewClientWithBackend(&fakeBackend{payload: payload}, 1),
		Prompts: reg,
		Log:     logging.With("test", "analyzer"),
	}, s
}

var documentPayload = []byte(`{
  "summary": "A meeting with HR was cancelled.",
  "entities": [
    {"name": "HR", "type": "organization", "confidence": 0.9, "context": "meeting organizer"}
  ],
  "document_type": "letter",
  "sentiment": "neutral",
  "legal_significance": "low",
  "risk_flags": [],
  "confidence_overall": 0.9
}`)

func TestAnalyze_Document_SingleFile(t *testing.T) {
	d, s := newTestDeps(t, documentPayload)

	srcPath := filepath.Join(t.TempDir(), "memo.txt")
	require.NoError(t, os.WriteFile(srcPath, []byte("A meeting with HR was scheduled for 15 March 2024."), 0o644))

	res, err := s.Ingest(context.Background(), srcPath, "C1", "tester")
	require.NoError(t, err)

	ua, err := Analyze(context.Background(), d, res.SHA256, "generic", "tester")
	require.NoError(t, err)
	require.NotNil(t, ua.DocumentAnalysis)
	require.Equal(t, schema.EvidenceDocument, ua.EvidenceType)
	require.Equal(t, []string{"C1"}, ua.CaseIDs)
	require.Greater(t, ua.DocumentAnalysis.TotalWordCount, 0)

	saved, err := s.GetAnalysis(res.SHA256)
	require.NoError(t, err)
	require.NotNil(t, saved)
	require.Equal(t, "letter", string(saved.DocumentAnalysis.DocumentType))

	var roundTrip schema.UnifiedAnalysis
	data, err := json.Marshal(saved)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &roundTrip))
	require.Equal(t, saved.DocumentAnalysis.Summary, roundTrip.DocumentAnalysis.Summary)
}

func TestAnalyze_UnknownHash(t *testing.T) {
	d, _ := newTestDeps(t, documentPayload)
	_, err := Analyze(context.Background(), d, schema.SHA256Hex("0000000000000000000000000000000000000000000000000000000000000000"[:64]), "generic", "tester")
	require.Error(t, err)
}

func TestAnalyzeEmail_MsgExtensionReportsDependencyMissing(t *testing.T) {
	d, s := newTestDeps(t, documentPayload)

	srcPath := filepath.Join(t.TempDir(), "thread.msg")
	require.NoError(t, os.WriteFile(srcPath, []byte("not a real outlook file"), 0o644))

	res, err := s.Ingest(context.Background(), srcPath, "C1", "tester")
	require.NoError(t, err)

	_, err = Analyze(context.Background(), d, res.SHA256, "generic", "tester")
	require.Error(t, err)
}
