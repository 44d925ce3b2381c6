package resolution

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolve_NoCandidates(t *testing.T) {
	r := &Resolver{}
	result, err := r.Resolve(context.Background(), "reports to the manager", nil)
	require.NoError(t, err)
	require.Equal(t, "no_match", result.Method)
	require.Nil(t, result.Matched)
}

func TestResolve_UniqueCandidateIsAlwaysAccepted(t *testing.T) {
	r := &Resolver{}
	candidates := []Candidate{{Name: "John Smith"}}
	result, err := r.Resolve(context.Background(), "works for someone else entirely", candidates)
	require.NoError(t, err)
	require.Equal(t, "unique", result.Method)
	require.Equal(t, 1.0, result.Confidence)
	require.Equal(t, "John Smith", result.Matched.Name)
}

func TestResolve_HeuristicPicksBestWordOverlapWithoutLLM(t *testing.T) {
	r := &Resolver{}
	candidates := []Candidate{
		{Name: "John Smith"},
		{Name: "Jane Doe"},
	}
	result, err := r.Resolve(context.Background(), "reports to jane doe in HR", candidates)
	require.NoError(t, err)
	require.Equal(t, "heuristic", result.Method)
	require.Equal(t, "Jane Doe", result.Matched.Name)
}

func TestResolve_HeuristicNoMatchWhenNothingOverlaps(t *testing.T) {
	r := &Resolver{}
	candidates := []Candidate{
		{Name: "John Smith"},
		{Name: "Jane Doe"},
	}
	result, err := r.Resolve(context.Background(), "works at an unrelated vendor", candidates)
	require.NoError(t, err)
	require.Equal(t, "no_match", result.Method)
	require.Nil(t, result.Matched)
}
