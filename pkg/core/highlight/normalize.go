// Package highlight locates extracted values and source passages inside the
// original PDF and writes a copy with visual marks for review. Matching is
// best-effort: an unmatched value is logged and skipped, never an error.
package highlight

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// uninformative holds scalar values too common to highlight; matching them
// would paint half the document.
var uninformative = map[string]bool{
	"no":  true,
	"yes": true,
	"n/a": true,
	"0":   true,
}

// IsUninformative reports whether a field value is on the stoplist.
func IsUninformative(v string) bool {
	return uninformative[strings.ToLower(strings.TrimSpace(v))]
}

var asciiFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldASCII strips diacritics and drops any remaining non-ASCII runes, so
// "Société Générale" matches the un-accented text most PDF extractors yield.
func FoldASCII(s string) string {
	folded, _, err := transform.String(asciiFolder, s)
	if err != nil {
		folded = s
	}
	var sb strings.Builder
	for _, r := range folded {
		if r < 128 {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// NormalizeValue prepares a field value for exact search: trim + ASCII fold.
func NormalizeValue(s string) string {
	return strings.TrimSpace(FoldASCII(s))
}

// NormalizeAggressive prepares passage text for fuzzy matching: collapse
// hyphenated line-wrap breaks, fold to ASCII, strip everything but letters,
// digits, basic punctuation and spaces, and collapse whitespace runs.
func NormalizeAggressive(s string) string {
	s = strings.ReplaceAll(s, "-\n", "")
	s = strings.ReplaceAll(s, "- \n", "")
	// Map exotic whitespace to plain spaces before ASCII folding drops it.
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, s)
	s = FoldASCII(s)

	var sb strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
		case strings.ContainsRune(".,;:%$()/&'-", r):
			sb.WriteRune(r)
		case unicode.IsSpace(r):
			sb.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// normToken reduces one word to its comparable token, or "" when nothing
// comparable remains. Empty tokens never match anything.
func normToken(s string) string {
	if toks := tokenize(s); len(toks) > 0 {
		return toks[0]
	}
	return ""
}

// tokenize splits normalized text into comparable lowercase word tokens.
func tokenize(s string) []string {
	fields := strings.Fields(s)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ToLower(strings.Trim(f, ".,;:()'\""))
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
