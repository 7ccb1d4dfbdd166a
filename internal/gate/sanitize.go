package gate

import (
	"strings"
)

// fallbackNext is where a rejected ?next target lands after sign-in.
const fallbackNext = "/app"

const maxNextLen = 2048

// SanitizeNextPath accepts only same-site relative paths as post-login
// targets. Absolute URLs, protocol-relative URLs, traversal, backslashes,
// and control characters all collapse to the fallback.
func SanitizeNextPath(raw string) string {
	candidate := strings.TrimSpace(raw)
	if candidate == "" || len(candidate) > maxNextLen {
		return fallbackNext
	}
	if !strings.HasPrefix(candidate, "/") {
		return fallbackNext
	}
	if strings.HasPrefix(candidate, "//") {
		return fallbackNext
	}
	lower := strings.ToLower(candidate)
	if strings.Contains(lower, "http://") || strings.Contains(lower, "https://") {
		return fallbackNext
	}
	if strings.Contains(candidate, "..") || strings.Contains(candidate, "\\") {
		return fallbackNext
	}
	for _, r := range candidate {
		if r < 0x20 || r == 0x7f {
			return fallbackNext
		}
	}
	return candidate
}
