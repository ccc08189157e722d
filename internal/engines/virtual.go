package engines

import "strings"

const (
	virtualOpen  = "[[["
	virtualClose = "]]]"
)

// FormatVirtualConfigPath encodes an engine hint and a config path into one
// string of the form "[[[name]]]path".
func FormatVirtualConfigPath(name, path string) string {
	return virtualOpen + strings.ToLower(name) + virtualClose + path
}

// ParseVirtualConfigPath splits a "[[[name]]]path" string. The name ends at
// the first "]]]" and may not contain brackets; everything after it is the
// path, verbatim.
func ParseVirtualConfigPath(s string) (name, path string, ok bool) {
	if !strings.HasPrefix(s, virtualOpen) {
		return "", "", false
	}
	rest := s[len(virtualOpen):]
	end := strings.Index(rest, virtualClose)
	if end <= 0 {
		return "", "", false
	}
	name = rest[:end]
	if strings.ContainsAny(name, "[]") {
		return "", "", false
	}
	return strings.ToLower(name), rest[end+len(virtualClose):], true
}
