// Package slug derives URL-safe identifiers from post titles.
package slug

import "strings"

// Make converts a title into its slug. The title is lowercased, words are
// joined by single hyphens and anything outside [a-z0-9] is stripped. The
// result carries no leading or trailing hyphen.
//
// The transform is deterministic, so two titles that normalize identically
// always collide; callers enforce uniqueness at the store.
//
//	Make("Hello World")      → "hello-world"
//	Make("  Go 1.25, now! ") → "go-125-now"
func Make(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	pendingHyphen := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			// separators become a single hyphen between words
			pendingHyphen = true
		default:
			// punctuation and other symbols are dropped entirely
		}
	}

	return b.String()
}
