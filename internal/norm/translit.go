package norm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// multiRune maps characters whose closest ASCII form is not reachable by
// decomposition: ligatures, crossed letters and typographic punctuation.
var multiRune = map[rune]string{
	'ß': "ss", 'ẞ': "SS",
	'æ': "ae", 'Æ': "AE",
	'œ': "oe", 'Œ': "OE",
	'ø': "o", 'Ø': "O",
	'ð': "d", 'Ð': "D",
	'þ': "th", 'Þ': "Th",
	'đ': "d", 'Đ': "D",
	'ł': "l", 'Ł': "L",
	'ı': "i",
	'„': "\"", '“': "\"", '”': "\"", '«': "\"", '»': "\"",
	'‚': "'", '‘': "'", '’': "'", '‹': "'", '›': "'",
	'–': "-", '—': "-", '―': "-",
	'…': "...",
	'′': "'", '″': "\"",
	'×': "x",
	'\u00ad': "", // soft hyphen
	'\u00a0': " ",
}

// Transliterate maps text to its closest ASCII form, best-effort. Runes in
// the preserved set pass through untouched; everything else is folded via
// an explicit mapping or Unicode decomposition with combining marks
// stripped. Runes with no reasonable ASCII form are silently dropped;
// transliteration never fails.
func Transliterate(s string, preserved map[rune]bool) string {
	if isASCII(s) {
		return s
	}

	// Not safe to share across goroutines, so built per call.
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r < 0x80:
			b.WriteRune(r)
		case preserved[r]:
			b.WriteRune(r)
		default:
			if repl, ok := multiRune[r]; ok {
				b.WriteString(repl)
				continue
			}
			folded, _, err := transform.String(fold, string(r))
			if err == nil && isASCII(folded) {
				b.WriteString(folded)
			}
			// No ASCII form: drop the rune.
		}
	}
	return b.String()
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
