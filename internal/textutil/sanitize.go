package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// maxFileNameBytes keeps generated names under common filesystem limits with
// room left for a collision suffix and extension.
const maxFileNameBytes = 200

// FallbackFileName is used when sanitizing leaves nothing behind.
const FallbackFileName = "untitled"

// SanitizeFileName removes characters that are invalid in filenames on common
// host filesystems. Reserved punctuation and control characters are dropped
// rather than replaced, the result is NFC-normalized, and leading or trailing
// dots and spaces are trimmed. An empty result becomes FallbackFileName.
func SanitizeFileName(name string) string {
	name = norm.NFC.String(name)
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if unicode.IsSpace(r) {
			b.WriteByte(' ')
			continue
		}
		if isInvalidFileNameRune(r) {
			continue
		}
		b.WriteRune(r)
	}
	out := strings.Trim(collapseSpaces(b.String()), " .")
	out = truncateUTF8(out, maxFileNameBytes)
	out = strings.TrimRight(out, " .")
	if out == "" {
		return FallbackFileName
	}
	return out
}

func isInvalidFileNameRune(r rune) bool {
	switch r {
	case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
		return true
	}
	return r == unicode.ReplacementChar || unicode.IsControl(r)
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateUTF8(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := 0
	for i := range s {
		if i > limit {
			break
		}
		cut = i
	}
	return s[:cut]
}

// SanitizeToken converts a string to a lowercase filesystem-safe token.
// Letters are lowercased, digits and hyphens/underscores are kept, everything
// else becomes an underscore. Returns "unknown" for empty input.
func SanitizeToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_-")
	if out == "" {
		return "unknown"
	}
	return out
}
