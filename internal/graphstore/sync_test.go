package graphstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evidence-toolkit/evitool/internal/schema"
)

func TestSetClauseFromProps_BuildsParameterizedAssignments(t *testing.T) {
	clause := setClauseFromProps(map[string]any{"confidence": 0.9})
	require.Equal(t, "r.confidence = $confidence", clause)
}

func TestSetClauseFromProps_EmptyPropsFallsBackToUpdatedFlag(t *testing.T) {
	require.Equal(t, "r.updated = true", setClauseFromProps(nil))
}

func TestLinkAll_RejectsInvalidRelationshipLabel(t *testing.T) {
	c := &Client{}
	noop := func(schema.SHA256Hex) error { return nil }

	_, err := c.linkAll(context.Background(),
		[]schema.SHA256Hex{"aaa", "bbb"},
		"DROP DATABASE",
		map[string]any{"confidence": 0.5},
		noop)

	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid relationship label")
}

func TestLinkAll_RejectsInvalidPropertyKey(t *testing.T) {
	c := &Client{}
	noop := func(schema.SHA256Hex) error { return nil }

	_, err := c.linkAll(context.Background(),
		[]schema.SHA256Hex{"aaa", "bbb"},
		"CORROBORATES",
		map[string]any{"confidence; DROP": 0.5},
		noop)

	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid relationship property key")
}

func TestLinkAll_NoPairsForSingleHash(t *testing.T) {
	c := &Client{}
	calls := 0
	merge := func(schema.SHA256Hex) error { calls++; return nil }

	edges, err := c.linkAll(context.Background(),
		[]schema.SHA256Hex{"only-one"},
		"CORROBORATES",
		map[string]any{"confidence": 0.5},
		merge)

	require.NoError(t, err)
	require.Equal(t, 0, edges)
	require.Equal(t, 1, calls)
}

func TestValidIdentifier_RejectsWhitespaceAndPunctuation(t *testing.T) {
	for _, bad := range []string{"", "has space", "semi;colon", "1startswithdigit"} {
		require.False(t, validIdentifier.MatchString(bad), "expected %q to be rejected", bad)
	}
	for _, good := range []string{"CONTRADICTS", "confidence", "_private"} {
		require.True(t, validIdentifier.MatchString(good), "expected %q to be accepted", good)
	}
}
