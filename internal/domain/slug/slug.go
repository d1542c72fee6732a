// Package slug turns titles into URL path segments.
package slug

import (
	"strings"
	"unicode"
)

// Make lowercases s, keeps ASCII letters and digits, and collapses every other
// run of characters into a single hyphen. Leading and trailing hyphens are
// trimmed.
func Make(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	pendingHyphen := false
	for _, r := range strings.ToLower(s) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}
