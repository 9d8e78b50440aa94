package formats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPHeaderFieldName(t *testing.T) {
	assert.True(t, HTTPHeaderFieldName("X-ORM-ID"))
	assert.True(t, HTTPHeaderFieldName("Content-Type"))
	assert.False(t, HTTPHeaderFieldName(""))
	assert.False(t, HTTPHeaderFieldName("bad header"))
	assert.False(t, HTTPHeaderFieldName("bad:header"))
}

func TestHTTPHeaderFieldValue(t *testing.T) {
	assert.True(t, HTTPHeaderFieldValue(""))
	assert.True(t, HTTPHeaderFieldValue("text/html; charset=utf-8"))
	assert.True(t, HTTPHeaderFieldValue("a\tb"))
	assert.False(t, HTTPHeaderFieldValue("line\nbreak"))
	assert.False(t, HTTPHeaderFieldValue("null\x00byte"))
}

func TestURIPath_RoundTrip(t *testing.T) {
	assert.True(t, URIPath("api/v1/widgets"))
	assert.False(t, URIPath("api?injected=1"))
	assert.False(t, URIPath("api#frag"))
}

func TestURIQuery_RoundTrip(t *testing.T) {
	assert.True(t, URIQuery("a=1&b=2"))
	assert.False(t, URIQuery("a=1#frag"))
}

func TestNetwork(t *testing.T) {
	assert.True(t, Network("10.0.0.0/8"))
	assert.True(t, Network("192.168.1.1/32"))
	assert.False(t, Network("10.0.0.0/0"))
	assert.False(t, Network("10.0.0.0/33"))
	assert.False(t, Network("256.0.0.0/8"))
	assert.False(t, Network("10.0.0.0"))
	assert.False(t, Network("10.0.0.0/8/"))
}

func TestHostnameWithPort(t *testing.T) {
	assert.True(t, HostnameWithPort("example.com"))
	assert.True(t, HostnameWithPort("example.com:8080"))
	assert.False(t, HostnameWithPort("example.com:0"))
	assert.False(t, HostnameWithPort("example.com:70000"))
	assert.False(t, HostnameWithPort("-bad.com"))
}

func TestOrigin(t *testing.T) {
	o, ok := ParseOrigin("example.com")
	assert.True(t, ok)
	assert.Equal(t, "https", o.Scheme)
	assert.Equal(t, 443, o.Port)

	o, ok = ParseOrigin("http://example.com")
	assert.True(t, ok)
	assert.Equal(t, 80, o.Port)

	o, ok = ParseOrigin("http://example.com:8080")
	assert.True(t, ok)
	assert.Equal(t, 8080, o.Port)

	_, ok = ParseOrigin("ftp://example.com")
	assert.False(t, ok)
}

func TestUnixUserOrGroup(t *testing.T) {
	assert.True(t, UnixUserOrGroup("varnish"))
	assert.True(t, UnixUserOrGroup("_haproxy"))
	assert.True(t, UnixUserOrGroup("web01$"))
	assert.False(t, UnixUserOrGroup("Varnish"))
	assert.False(t, UnixUserOrGroup("1varnish"))
	assert.False(t, UnixUserOrGroup(""))
}

func TestORMRegex(t *testing.T) {
	assert.True(t, ORMRegex(`^/api/v[0-9]+/.*$`))
	assert.False(t, ORMRegex(`(unclosed`))
}

func TestORMRegsub(t *testing.T) {
	assert.True(t, ORMRegsub("replace with $1"))
	assert.False(t, ORMRegsub("null\x00byte"))
	assert.False(t, ORMRegsub("line\nbreak"))
}
