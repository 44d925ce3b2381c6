package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmbeddedDefaults(t *testing.T) {
	r, err := Load("")
	require.NoError(t, err)

	p, err := r.Get(DomainDocument, "")
	require.NoError(t, err)
	assert.Contains(t, p.System, "forensic document analyst")
}

func TestGet_EmploymentFallsBackToWorkplace(t *testing.T) {
	r, err := Load("")
	require.NoError(t, err)

	workplace, err := r.Get(DomainExecutiveSummary, CaseWorkplace)
	require.NoError(t, err)

	employment, err := r.Get(DomainExecutiveSummary, CaseEmployment)
	require.NoError(t, err)

	assert.Equal(t, workplace, employment)
}

func TestGet_UnknownDomain(t *testing.T) {
	r, err := Load("")
	require.NoError(t, err)

	_, err = r.Get(Domain("nonexistent"), "generic")
	assert.Error(t, err)
}

func TestRender_SubstitutesTemplateFields(t *testing.T) {
	r, err := Load("")
	require.NoError(t, err)

	p, err := r.Get(DomainDocument, "")
	require.NoError(t, err)

	out, err := Render(p, map[string]interface{}{
		"CaseType": "workplace",
		"Filename": "memo.txt",
		"Text":     "A meeting with HR on 15 March 2024 was cancelled.",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "memo.txt")
	assert.Contains(t, out, "15 March 2024")
}
