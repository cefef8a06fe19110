package vocab

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// FilterConfig controls which word-forms are vocabulary candidates.
type FilterConfig struct {
	// DigitRune marks elided digits; any form still carrying it is
	// excluded (the form stays in the corpus, just not the vocabulary).
	DigitRune rune

	// NumberToken is the all-digit placeholder. It passes the length and
	// digit filters on its own; IncludeNumberToken decides whether it may
	// enter the vocabulary.
	NumberToken        string
	IncludeNumberToken bool
}

// Filter drops word-forms that cannot enter the vocabulary: forms of one
// rune or less, forms still containing the digit placeholder, and the
// number placeholder itself when excluded by policy.
func Filter(t *Table, cfg FilterConfig) *Table {
	kept := make([]Entry, 0, t.Len())
	for _, e := range t.Entries() {
		if utf8.RuneCountInString(e.Word) <= 1 {
			continue
		}
		if cfg.DigitRune != 0 && strings.ContainsRune(e.Word, cfg.DigitRune) {
			continue
		}
		if !cfg.IncludeNumberToken && e.Word == cfg.NumberToken {
			continue
		}
		kept = append(kept, e)
	}
	return NewTable(kept)
}

// Selection is the top-K vocabulary with its coverage of the filtered
// corpus.
type Selection struct {
	Words []string

	// Coverage is the percentage of filtered token occurrences the
	// selected words account for, rounded to two decimals. NaN when the
	// filtered corpus is empty.
	Coverage float64

	TopTotal      uint64
	FilteredTotal uint64
}

// Select takes the top k word-forms from an already-filtered table. The
// table's deterministic ordering (count descending, word ascending) fixes
// which forms survive a tie at the k-th position.
func Select(filtered *Table, k int) Selection {
	entries := filtered.Entries()
	if k < 0 {
		k = 0
	}
	if k > len(entries) {
		k = len(entries)
	}

	sel := Selection{
		Words:         make([]string, 0, k),
		FilteredTotal: filtered.Total(),
	}
	for _, e := range entries[:k] {
		sel.Words = append(sel.Words, e.Word)
		sel.TopTotal += e.Count
	}

	if sel.FilteredTotal == 0 {
		sel.Coverage = math.NaN()
		return sel
	}
	pct := 100 * float64(sel.TopTotal) / float64(sel.FilteredTotal)
	sel.Coverage = math.Round(pct*100) / 100
	return sel
}

// Line serializes the vocabulary in the estimator's format: a single
// space-joined, newline-free line.
func (s Selection) Line() string {
	return strings.Join(s.Words, " ")
}

// CoverageString formats the coverage percentage for reporting, or "n/a"
// when it is undefined.
func (s Selection) CoverageString() string {
	if math.IsNaN(s.Coverage) {
		return "n/a"
	}
	return strconv.FormatFloat(s.Coverage, 'f', 2, 64) + "%"
}
