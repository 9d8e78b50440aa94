package globals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
nameservers:
  - host: 10.0.0.53
internal_networks:
  - 10.0.0.0/8
defaults:
  https_redirection: true
`

func TestParse_Valid(t *testing.T) {
	g, err := Parse([]byte(validYAML))
	require.NoError(t, err)
	assert.True(t, g.Defaults.HTTPSRedirection)
	require.Len(t, g.Nameservers, 1)
	assert.Equal(t, "10.0.0.53", g.Nameservers[0].Host)
}

func TestParse_RequiresAtLeastOneNameserver(t *testing.T) {
	_, err := Parse([]byte("nameservers: []\n"))
	assert.Error(t, err)
}

func TestParse_RejectsBadCIDR(t *testing.T) {
	_, err := Parse([]byte(`
nameservers:
  - host: 1.1.1.1
internal_networks:
  - not-a-cidr
`))
	assert.Error(t, err)
}
