package util

import "strings"

// NormalizeText strips invalid UTF-8, NUL bytes and surrounding whitespace
// from a value read from the record store.
func NormalizeText(value string) string {
	if value == "" {
		return value
	}

	sanitized := strings.ToValidUTF8(value, "")
	sanitized = strings.ReplaceAll(sanitized, "\x00", "")
	return strings.TrimSpace(sanitized)
}

// NormalizeList applies NormalizeText to every item, dropping blanks and
// repeated values while keeping first-seen order. The result is never nil.
func NormalizeList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = NormalizeText(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
