// Package validate holds the pure input validators shared by the dashboard
// and provisioning paths. They do no I/O and never panic.
package validate

import "net/url"

const (
	UsernameMinLen = 3
	UsernameMaxLen = 30
)

// Username reports whether s is a well-formed public username: length in
// [3,30] and every character in [a-z0-9_-]. Case-sensitive: callers must
// lowercase before calling.
func Username(s string) bool {
	if len(s) < UsernameMinLen || len(s) > UsernameMaxLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !usernameChar(s[i]) {
			return false
		}
	}
	return true
}

// URL reports whether s parses as an absolute URL whose scheme is exactly
// http or https.
func URL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	if u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

func usernameChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '_' || c == '-':
		return true
	}
	return false
}
