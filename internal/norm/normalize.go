package norm

import (
	"strings"
	"unicode"
)

// Config carries every knob the normalization pipeline needs. The core
// never consults the environment; the orchestration layer builds one of
// these and passes it down.
type Config struct {
	// Language is the Punkt model name, e.g. "german" or "english".
	Language string

	// Preserved characters are never transliterated: diacritical letters
	// that are phonemically distinct in the target language.
	Preserved map[rune]bool

	// NumberToken replaces tokens made up entirely of digits.
	NumberToken string

	// DigitRune replaces each digit inside a mixed letter/digit token.
	DigitRune rune

	// MinWords drops sentences with fewer tokens after normalization.
	// Zero keeps everything, including sentences that normalize to the
	// empty string.
	MinWords int
}

// langCodes maps the configuration surface's short codes to Punkt model
// names, mirroring the languages the corpus tooling is used for.
var langCodes = map[string]string{
	"de": "german",
	"en": "english",
}

// germanPreserved holds the umlauts: transliterating them would merge
// phonemically distinct word-forms (e.g. "schon"/"schön").
const germanPreserved = "äöüÄÖÜ"

// LanguageConfig returns the normalization config for a language code
// ("de", "en") or full Punkt model name.
func LanguageConfig(lang string) Config {
	name, ok := langCodes[strings.ToLower(lang)]
	if !ok {
		name = strings.ToLower(lang)
	}

	cfg := Config{
		Language:    name,
		Preserved:   map[rune]bool{},
		NumberToken: "<num>",
		DigitRune:   '#',
	}
	if name == "german" {
		for _, r := range germanPreserved {
			cfg.Preserved[r] = true
		}
	}
	return cfg
}

// NormalizeSentence runs a single segmented sentence through the character
// pipeline: transliteration, punctuation stripping, numeric elision,
// whitespace collapse and case folding. Returns the finished corpus line,
// which may be empty.
func (c Config) NormalizeSentence(sent string) string {
	s := Transliterate(sent, c.Preserved)
	s = stripPunct(s)

	fields := strings.Fields(s)
	for i, tok := range fields {
		fields[i] = c.elideNumeric(tok)
	}
	return strings.ToLower(strings.Join(fields, " "))
}

// elideNumeric applies the numeric-substitution rule to one token: an
// all-digit token becomes the number placeholder, otherwise each digit is
// replaced in place. Idempotent on already-elided tokens.
func (c Config) elideNumeric(tok string) string {
	hasDigit := false
	allDigits := true
	for _, r := range tok {
		if unicode.IsDigit(r) {
			hasDigit = true
		} else {
			allDigits = false
		}
	}
	if !hasDigit {
		return tok
	}
	if allDigits {
		return c.NumberToken
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return c.DigitRune
		}
		return r
	}, tok)
}

// stripPunct removes punctuation and symbol runes. Unicode's P* classes
// alone miss characters like '+' and '<' that the corpus must not carry,
// so S* is stripped as well.
func stripPunct(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return -1
		}
		return r
	}, s)
}
