package validators

import "strings"

func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}

// SanitizeStringPtr trims through the pointer, mapping empty to nil.
func SanitizeStringPtr(input *string, maxLen int) *string {
	if input == nil {
		return nil
	}
	trimmed := SanitizeString(*input, maxLen)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
