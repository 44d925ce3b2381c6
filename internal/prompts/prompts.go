// Package prompts is the single configuration module analyzer prompts
// live in, keyed by domain (document/image/email/correlation/
// executive_summary) and, for the aggregator's executive summary, case
// type (generic/workplace/contract; employment is a synonym of
// workplace). Prompts are data, not code, so they can be tuned without a
// rebuild.
package prompts

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	evierrors "github.com/evidence-toolkit/evitool/internal/errors"
	"gopkg.in/yaml.v3"
)

// Domain identifies which analyzer or module a prompt belongs to.
type Domain string

const (
	DomainDocument          Domain = "document"
	DomainImage             Domain = "image"
	DomainEmail             Domain = "email"
	DomainCorrelation       Domain = "correlation"
	DomainExecutiveSummary  Domain = "executive_summary"
	DomainEntityResolution  Domain = "entity_resolution"
	DomainMentionResolution Domain = "mention_resolution"
)

// CaseType mirrors schema.CaseType without importing it, to keep this
// package free of a schema dependency; normalizeCaseType collapses
// "employment" to "workplace" the same way schema.CaseType.Normalize does.
const (
	CaseGeneric    = "generic"
	CaseWorkplace  = "workplace"
	CaseEmployment = "employment"
	CaseContract   = "contract"
)

// Prompt is one system+template pair.
type Prompt struct {
	System   string `yaml:"system"`
	Template string `yaml:"template"`
}

// document is keyed first by domain, then optionally by case type (only
// executive_summary varies by case type; other domains use "_" for every
// case type).
type document struct {
	Prompts map[string]map[string]Prompt `yaml:"prompts"`
}

//go:embed defaults.yaml
var defaultsYAML []byte

const anyCaseType = "_"

// Registry holds the loaded prompt set.
type Registry struct {
	prompts map[Domain]map[string]Prompt
}

// Load reads the embedded defaults, then overlays path's contents (if
// path is non-empty and exists) so operators can tune prompts without
// touching the binary.
func Load(path string) (*Registry, error) {
	r := &Registry{prompts: map[Domain]map[string]Prompt{}}
	if err := r.merge(defaultsYAML); err != nil {
		return nil, evierrors.Wrapf(err, evierrors.Internal, evierrors.SeverityFatal, "parse embedded prompt defaults")
	}

	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			if err := r.merge(data); err != nil {
				return nil, evierrors.Wrapf(err, evierrors.Internal, evierrors.SeverityFatal, "parse prompt override file %s", path)
			}
		}
	}
	return r, nil
}

func (r *Registry) merge(data []byte) error {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	for domain, byCaseType := range doc.Prompts {
		if r.prompts[Domain(domain)] == nil {
			r.prompts[Domain(domain)] = map[string]Prompt{}
		}
		for caseType, p := range byCaseType {
			r.prompts[Domain(domain)][caseType] = p
		}
	}
	return nil
}

func normalizeCaseType(caseType string) string {
	if caseType == CaseEmployment {
		return CaseWorkplace
	}
	if caseType == "" {
		return anyCaseType
	}
	return caseType
}

// Get returns the prompt for domain and caseType, falling back to
// anyCaseType ("_") when the domain has no case-type-specific variant.
func (r *Registry) Get(domain Domain, caseType string) (Prompt, error) {
	byCaseType, ok := r.prompts[domain]
	if !ok {
		return Prompt{}, evierrors.InternalErrf("no prompts configured for domain %q", domain)
	}
	normalized := normalizeCaseType(caseType)
	if p, ok := byCaseType[normalized]; ok {
		return p, nil
	}
	if p, ok := byCaseType[anyCaseType]; ok {
		return p, nil
	}
	return Prompt{}, evierrors.InternalErrf("no prompt for domain %q case type %q", domain, caseType)
}

// Render executes the prompt's template with data, returning the final
// user-message text to send to the LLM.
func Render(p Prompt, data map[string]interface{}) (string, error) {
	tmpl, err := template.New("prompt").Parse(p.Template)
	if err != nil {
		return "", evierrors.Wrapf(err, evierrors.Internal, evierrors.SeverityFatal, "parse prompt template")
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", evierrors.Wrapf(err, evierrors.Internal, evierrors.SeverityFatal, "execute prompt template")
	}
	return sb.String(), nil
}

// FullPrompt renders a prompt's template and prefixes its system message,
// for backends whose Complete signature takes a single combined prompt
// string (spec §4.3's single structured-output call).
func FullPrompt(p Prompt, data map[string]interface{}) (string, error) {
	body, err := Render(p, data)
	if err != nil {
		return "", err
	}
	if p.System == "" {
		return body, nil
	}
	return fmt.Sprintf("%s\n\n%s", p.System, body), nil
}
