package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// CollapseWhitespace trims s and folds every run of whitespace into a single space.
func CollapseWhitespace(s string) string {
	return whitespaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")
}

// NormalizeLabel lowercases s and strips its diacritics, so that
// "Condición" and "CONDICION" normalize to the same string.
func NormalizeLabel(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return strings.ToLower(stripped)
}

// MatchLabel reports whether label contains want. The raw case-insensitive
// comparison is tried first and the diacritic-insensitive one second.
func MatchLabel(label, want string) bool {
	if strings.Contains(strings.ToLower(label), strings.ToLower(want)) {
		return true
	}
	return strings.Contains(NormalizeLabel(label), NormalizeLabel(want))
}

// Nullable returns nil for empty or whitespace-only strings and a pointer to
// the trimmed string otherwise.
func Nullable(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// DecodeLatin1 decodes an ISO-8859-1 body into a UTF-8 string.
func DecodeLatin1(body []byte) (string, error) {
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(body)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
