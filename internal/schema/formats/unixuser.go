package formats

// UnixUserOrGroup implements the unix_user_or_group format (spec.md
// §4.3): the POSIX-portable user-name grammar Debian's useradd/adduser
// enforce — lowercase letter or underscore, then lowercase letters,
// digits, underscores, or hyphens, optionally ending in a dollar sign
// (the samba machine-account convention), length 1-32.
func UnixUserOrGroup(value string) bool {
	if len(value) == 0 || len(value) > 32 {
		return false
	}

	body := value
	if body[len(body)-1] == '$' {
		body = body[:len(body)-1]
		if body == "" {
			return false
		}
	}

	first := body[0]
	if !(first == '_' || (first >= 'a' && first <= 'z')) {
		return false
	}
	for i := 1; i < len(body); i++ {
		c := body[i]
		ok := c == '_' || c == '-' || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
		if !ok {
			return false
		}
	}
	return true
}
