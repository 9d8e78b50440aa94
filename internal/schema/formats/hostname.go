package formats

import (
	"strconv"
	"strings"
)

// HostnameWithPort implements the hostname_with_port format (spec.md
// §4.3): an RFC 1123 hostname (<=255 chars) optionally followed by
// :port with port in [1,65535].
func HostnameWithPort(value string) bool {
	host, port, hasPort := cutLastColon(value)
	if hasPort {
		n, err := strconv.Atoi(port)
		if err != nil || n < 1 || n > 65535 {
			return false
		}
	}
	return isRFC1123Hostname(host)
}

// cutLastColon splits on the last colon, which is what lets IPv4-style
// host:port pairs work without mistaking an internal dot for a colon;
// it also means an (invalid) hostname containing a literal colon is
// rejected as a whole rather than mis-split, which is the conservative
// choice for a format checker.
func cutLastColon(s string) (host, port string, ok bool) {
	i := strings.LastIndexByte(s, ':')
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+1:], true
}

func isRFC1123Hostname(host string) bool {
	if host == "" || len(host) > 255 {
		return false
	}
	labels := strings.Split(host, ".")
	for _, label := range labels {
		if !isRFC1123Label(label) {
			return false
		}
	}
	return true
}

// isRFC1123Label checks one dot-separated hostname label: 1-63 chars,
// alphanumeric or hyphen, must not start or end with a hyphen.
func isRFC1123Label(label string) bool {
	if len(label) == 0 || len(label) > 63 {
		return false
	}
	for i := 0; i < len(label); i++ {
		c := label[i]
		alnum := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		if !alnum && c != '-' {
			return false
		}
	}
	return label[0] != '-' && label[len(label)-1] != '-'
}
