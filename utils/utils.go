// sbbs/utils/utils.go
package utils

import "strings"

// NormalizeSlug converts free text into a URL-safe board identifier:
// lowercase, characters in [a-z0-9-] pass through, each run of anything
// else collapses to a single '-', leading/trailing '-' trimmed. Literal
// dashes are kept as-is, so "a--b" stays "a--b". Returns "" when nothing
// usable remains. Idempotent: NormalizeSlug(NormalizeSlug(x)) ==
// NormalizeSlug(x).
func NormalizeSlug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	b.Grow(len(s))
	inRun := false
	for _, r := range s {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-':
			b.WriteRune(r)
			inRun = false
		default:
			if !inRun {
				b.WriteByte('-')
				inRun = true
			}
		}
	}

	return strings.Trim(b.String(), "-")
}
