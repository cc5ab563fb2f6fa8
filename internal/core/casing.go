package core

import (
	"strings"
	"unicode"
)

// KebabCase converts a camelCase prop name to its kebab-case attribute form.
// Acronym runs stay together: imageURL becomes image-url.
func KebabCase(name string) string {
	runes := []rune(name)
	var sb strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					sb.WriteByte('-')
				}
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// IsEventProp reports whether name follows the on<Event> handler convention.
func IsEventProp(name string) bool {
	if len(name) < 3 || !strings.HasPrefix(name, "on") {
		return false
	}
	return unicode.IsUpper(rune(name[2]))
}

// EventBinding maps on<Event> to <marker><event lowercased>.
func EventBinding(marker string, name string) string {
	return marker + strings.ToLower(strings.TrimPrefix(name, "on"))
}
