package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDoc = `
schema_version: 1
rules:
  - description: "api backend"
    domains: ["example.com"]
    matches:
      all:
        - paths:
            begins_with: ["/api"]
    actions:
      backend:
        name: api
        scheme: https
        origins: ["example-origin.internal"]
`

const invalidDoc = `
schema_version: 1
rules:
  - description: "bad header name"
    domains: ["example.com"]
    matches:
      all:
        - paths:
            exact: ["/x"]
    actions:
      header_southbound:
        - op: set
          name: "bad header"
          value: "ok"
`

func TestValidator_AcceptsValidDocument(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	doc, err := DecodeYAMLToGeneric([]byte(validDoc))
	require.NoError(t, err)

	diags := v.Validate(doc, "rules.yml")
	assert.Empty(t, diags)
}

func TestValidator_ReportsFormatViolationViaCustomChecker(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	doc, err := DecodeYAMLToGeneric([]byte(invalidDoc))
	require.NoError(t, err)

	diags := v.Validate(doc, "rules.yml")
	assert.NotEmpty(t, diags)
}
