package formats

import "strings"

// Origin implements the origin format (spec.md §4.3): optional scheme
// in {http, https}, then hostname, optional :port; default scheme when
// absent is https; default port is 80/443 depending on scheme. The
// default-port/-scheme resolution itself only matters to callers that
// need the resolved origin (the LB-tier emitter); the format checker
// only needs to confirm the literal value parses, which ParseOrigin
// both validates and, for callers that want it, resolves.
type ResolvedOrigin struct {
	Scheme string
	Host   string
	Port   int
}

// Origin is the formats.Checker entry point.
func Origin(value string) bool {
	_, ok := ParseOrigin(value)
	return ok
}

// ParseOrigin parses and resolves an origin string, applying spec.md
// §4.3's default scheme/port rules.
func ParseOrigin(value string) (ResolvedOrigin, bool) {
	scheme := "https"
	rest := value

	if idx := strings.Index(value, "://"); idx >= 0 {
		scheme = value[:idx]
		rest = value[idx+3:]
		if scheme != "http" && scheme != "https" {
			return ResolvedOrigin{}, false
		}
	}

	if rest == "" {
		return ResolvedOrigin{}, false
	}

	host, portStr, hasPort := cutLastColon(rest)
	port := defaultPort(scheme)
	if hasPort {
		p, ok := parsePort(portStr)
		if !ok {
			return ResolvedOrigin{}, false
		}
		port = p
	}
	if !isRFC1123Hostname(host) {
		return ResolvedOrigin{}, false
	}

	return ResolvedOrigin{Scheme: scheme, Host: host, Port: port}, true
}

func defaultPort(scheme string) int {
	if scheme == "https" {
		return 443
	}
	return 80
}

func parsePort(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
		if n > 65535 {
			return 0, false
		}
	}
	if n < 1 {
		return 0, false
	}
	return n, true
}
