package catalog

import "strings"

// ParseList decodes a bracketed list cell such as `['Books', "Music"]`.
// Text that is not bracketed yields an empty list rather than an error.
func ParseList(raw string) []string {
	s := strings.TrimSpace(raw)
	if len(s) < 2 || !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return []string{}
	}
	parts := strings.Split(s[1:len(s)-1], ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := trimQuotes(strings.TrimSpace(part))
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// trimQuotes removes at most one leading and one trailing quote character.
func trimQuotes(s string) string {
	if s != "" && (s[0] == '\'' || s[0] == '"') {
		s = s[1:]
	}
	if s != "" && (s[len(s)-1] == '\'' || s[len(s)-1] == '"') {
		s = s[:len(s)-1]
	}
	return s
}
