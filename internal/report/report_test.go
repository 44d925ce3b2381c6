package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evidence-toolkit/evitool/internal/schema"
)

func TestGenerateReports_SkipsGeneratorsWithoutData(t *testing.T) {
	summary := &schema.CaseSummary{
		CaseID: "C1",
	}

	outDir := t.TempDir()
	result, err := GenerateReports(summary, outDir)
	require.NoError(t, err)
	require.Empty(t, result.Paths)
	require.Len(t, result.Log, len(generators()))
	for _, entry := range result.Log {
		require.Equal(t, StatusSkipped, entry.Status)
	}
}

func TestGenerateReports_WritesExecutiveSummaryWhenPresent(t *testing.T) {
	summary := &schema.CaseSummary{
		CaseID:           "C1",
		ExecutiveSummary: schema.Some("This case shows a clear pattern of retaliation."),
	}

	outDir := t.TempDir()
	result, err := GenerateReports(summary, outDir)
	require.NoError(t, err)
	require.Len(t, result.Paths, 1)

	path := filepath.Join(outDir, "executive_summary.md")
	require.Equal(t, result.Paths[0], path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(content), "retaliation")
	require.Contains(t, string(content), "# Executive Summary")
}

func TestGenerateReports_QuotedStatementsAndRelationshipNetwork(t *testing.T) {
	summary := &schema.CaseSummary{
		CaseID: "C2",
		OverallAssessment: schema.OverallAssessment{
			QuotedStatements: []schema.SpeakerStatements{{
				Speaker: "jane doe",
				Statements: []schema.QuotedStatement{{
					Speaker:      "jane doe",
					Text:         "I never received the email.",
					Sentiment:    schema.SentimentHostile,
					SourceSHA256: schema.SHA256Hex("abcdef0123456789"),
				}},
				DominantSentiment: schema.SentimentHostile,
			}},
			RelationshipNetwork: &schema.RelationshipNetwork{
				Nodes:      []string{"jane doe", "john smith"},
				KeyPlayers: []string{"jane doe"},
				Edges: []schema.RelationshipEdge{{
					Source: "jane doe", Target: "john smith", RelationshipType: "reports to",
				}},
			},
		},
	}

	outDir := t.TempDir()
	result, err := GenerateReports(summary, outDir)
	require.NoError(t, err)
	require.ElementsMatch(t, result.Paths, []string{
		filepath.Join(outDir, "quoted_statements.md"),
		filepath.Join(outDir, "relationship_network.md"),
	})

	quoted, err := os.ReadFile(filepath.Join(outDir, "quoted_statements.md"))
	require.NoError(t, err)
	require.Contains(t, string(quoted), "I never received the email.")
	require.Contains(t, string(quoted), "abcdef01")

	network, err := os.ReadFile(filepath.Join(outDir, "relationship_network.md"))
	require.NoError(t, err)
	require.Contains(t, string(network), "jane doe")
	require.Contains(t, string(network), "reports to")
}

func TestGenerateReports_SkippedGeneratorDoesNotStopOthers(t *testing.T) {
	// A power_dynamics section with zero participants is treated as
	// "no data" and skipped rather than failed; quoted statements with
	// real data should still be written alongside it in the same run.
	summary := &schema.CaseSummary{
		CaseID: "C3",
		OverallAssessment: schema.OverallAssessment{
			PowerDynamics: &schema.PowerDynamics{},
			QuotedStatements: []schema.SpeakerStatements{{
				Speaker:           "jane doe",
				Statements:        []schema.QuotedStatement{{Speaker: "jane doe", Text: "hello"}},
				DominantSentiment: schema.SentimentNeutral,
			}},
		},
	}

	outDir := t.TempDir()
	result, err := GenerateReports(summary, outDir)
	require.NoError(t, err)
	require.Len(t, result.Paths, 1)
	require.Equal(t, filepath.Join(outDir, "quoted_statements.md"), result.Paths[0])
}
