package formats

import (
	"fmt"
	"net/url"
)

// URI implements the uri format (spec.md §4.3): parses as an RFC 3986
// URI reference. net/url.Parse accepts both absolute and relative
// references, matching "URI reference" (as opposed to "URI", which
// would require an absolute form).
func URI(value string) bool {
	_, err := url.Parse(value)
	return err == nil
}

// URIPath implements the uri-path format (spec.md §4.3): value must
// interpolate into http://example.com/{x}?param=value#fragment such
// that all five URI components round-trip exactly. This catches path
// values that would, once substituted, smuggle a different scheme,
// host, query, or fragment into the reconstructed URL — e.g. a path
// containing an unescaped "#" or "?".
func URIPath(value string) bool {
	raw := fmt.Sprintf("http://example.com/%s?param=value#fragment", value)
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme == "http" &&
		u.Host == "example.com" &&
		u.Path == "/"+value &&
		u.RawQuery == "param=value" &&
		u.Fragment == "fragment"
}

// URIQuery implements the uri-query format (spec.md §4.3): the
// analogous round-trip check for the query component.
func URIQuery(value string) bool {
	raw := fmt.Sprintf("http://example.com/path?%s#fragment", value)
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme == "http" &&
		u.Host == "example.com" &&
		u.Path == "/path" &&
		u.RawQuery == value &&
		u.Fragment == "fragment"
}
