package utils

import (
	"strings"
	"unicode"
)

// MaxIdentifierLength bounds sanitized identifiers; they end up in file
// names and object keys.
const MaxIdentifierLength = 200

// disallowedChars covers shell separators, redirection, globbing,
// substitution, quoting, path separators and yt-dlp template syntax.
const disallowedChars = ";&|<>`$(){}[]*?!~#%\\'\"/:"

// SanitizeIdentifier strips characters that are unsafe in a shell argument,
// a local file name or a storage key. Clean input is returned unchanged and
// SanitizeIdentifier(SanitizeIdentifier(s)) == SanitizeIdentifier(s).
func SanitizeIdentifier(raw string) string {
	cleaned := strings.Map(func(r rune) rune {
		if IsDisallowed(r) {
			return -1
		}
		return r
	}, raw)

	for strings.Contains(cleaned, "..") {
		cleaned = strings.ReplaceAll(cleaned, "..", "")
	}
	return cleaned
}

// IsDisallowed reports whether r is stripped by SanitizeIdentifier.
func IsDisallowed(r rune) bool {
	return strings.ContainsRune(disallowedChars, r) || unicode.IsSpace(r) || unicode.IsControl(r)
}
