package rules

import (
	"strings"
	"testing"

	"github.com/svt/orm/internal/diag"
	"github.com/svt/orm/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
schema_version: 1
rules:
  - description: "Redirect API begins with"
    domains: ["example.com", "www.example.com"]
    matches:
      all:
        - paths:
            begins_with: ["/api"]
            ignore_case: true
    actions:
      backend:
        name: api
        scheme: https
        origins: ["10.0.0.1"]
tests:
  - name: "hits api backend"
    request:
      url: "https://example.com/api/v1"
    expect:
      status: 200
`

func TestParseDocuments_LowersShorthand(t *testing.T) {
	report := &diag.Report{}
	docs := ParseDocuments(strings.NewReader(sampleYAML), "rules.yml", report)
	require.Empty(t, report.Diagnostics)
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.Equal(t, 1, doc.SchemaVersion)
	require.Len(t, doc.Tests, 1)
	assert.Equal(t, "hits api backend", doc.Tests[0].Name)

	require.Contains(t, doc.ByDomain, "example.com")
	require.Contains(t, doc.ByDomain, "www.example.com")
	rule := doc.ByDomain["example.com"][0]
	assert.Equal(t, KindOf(rule.Matches), model.KindCondition)
	assert.Equal(t, model.OpAll, rule.Matches.Op)
}

func KindOf(t *model.Tree) model.Kind { return t.Kind }

func TestParseDocuments_RejectsUnknownSchemaVersion(t *testing.T) {
	report := &diag.Report{}
	docs := ParseDocuments(strings.NewReader("schema_version: 2\nrules: []\n"), "bad.yml", report)
	assert.Empty(t, docs)
	require.NotEmpty(t, report.Diagnostics)
	assert.Equal(t, diag.KindInput, report.Diagnostics[0].Kind)
}

func TestLowerPaths_UnknownKeyFails(t *testing.T) {
	_, err := lowerClause(yamlClause{Paths: &yamlPaths{}})
	assert.Error(t, err)
}

func TestLowerQuery_MissingParameterFails(t *testing.T) {
	truth := true
	_, err := lowerQuery(yamlQuery{Exist: &truth})
	assert.Error(t, err)
}

func TestLowerRule_DomainDefaultFalseForbidden(t *testing.T) {
	f := false
	_, err := lowerRule(yamlRule{
		Description:   "bad default",
		Domains:       []string{"example.com"},
		Matches:       yamlMatches{All: []yamlClause{{Paths: &yamlPaths{Exact: []string{"/x"}}}}},
		DomainDefault: &f,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "domain_default: false is forbidden")
}
