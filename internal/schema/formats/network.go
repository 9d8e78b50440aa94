package formats

import (
	"strconv"
	"strings"
)

// Network implements the network format (spec.md §4.3): a.b.c.d/n with
// each octet in [0,255] and n in [1,32]. Deliberately hand-rolled
// rather than net.ParseCIDR, which accepts host bits set in the
// address (e.g. 10.0.0.5/8) and masks them away silently — this format
// is stricter: every octet must already be a literal decimal number in
// range, and the value must look exactly like a IPv4 CIDR literal, not
// "parseable into one".
func Network(value string) bool {
	parts := strings.SplitN(value, "/", 2)
	if len(parts) != 2 {
		return false
	}
	if !isIPv4(parts[0]) {
		return false
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil || n < 1 || n > 32 {
		return false
	}
	return true
}

func isIPv4(s string) bool {
	octets := strings.Split(s, ".")
	if len(octets) != 4 {
		return false
	}
	for _, o := range octets {
		if o == "" || len(o) > 3 {
			return false
		}
		if len(o) > 1 && o[0] == '0' {
			return false // no leading zeros
		}
		for _, c := range o {
			if c < '0' || c > '9' {
				return false
			}
		}
		n, err := strconv.Atoi(o)
		if err != nil || n < 0 || n > 255 {
			return false
		}
	}
	return true
}
