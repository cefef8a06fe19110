package vocab

import (
	"math"
	"testing"
)

func testFilterConfig() FilterConfig {
	return FilterConfig{
		DigitRune:          '#',
		NumberToken:        "<num>",
		IncludeNumberToken: true,
	}
}

func TestFilter_DropsShortForms(t *testing.T) {
	table := NewTable([]Entry{
		{Word: "a", Count: 100},
		{Word: "I", Count: 80},
		{Word: "ab", Count: 10},
	})
	filtered := Filter(table, testFilterConfig())

	if filtered.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", filtered.Len())
	}
	if filtered.Entries()[0].Word != "ab" {
		t.Errorf("expected %q to survive, got %q", "ab", filtered.Entries()[0].Word)
	}
}

func TestFilter_ShortFormsByRuneNotByte(t *testing.T) {
	// A single multi-byte rune is still one rune.
	table := NewTable([]Entry{
		{Word: "ä", Count: 10},
		{Word: "äh", Count: 5},
	})
	filtered := Filter(table, testFilterConfig())
	if filtered.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", filtered.Len())
	}
	if filtered.Entries()[0].Word != "äh" {
		t.Errorf("expected %q to survive, got %q", "äh", filtered.Entries()[0].Word)
	}
}

func TestFilter_DropsDigitPlaceholderForms(t *testing.T) {
	table := NewTable([]Entry{
		{Word: "ww#", Count: 40},
		{Word: "b##s", Count: 10},
		{Word: "war", Count: 100},
	})
	filtered := Filter(table, testFilterConfig())
	if filtered.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", filtered.Len())
	}
	if filtered.Entries()[0].Word != "war" {
		t.Errorf("expected %q to survive, got %q", "war", filtered.Entries()[0].Word)
	}
}

func TestFilter_NumberTokenPolicy(t *testing.T) {
	table := NewTable([]Entry{
		{Word: "<num>", Count: 500},
		{Word: "year", Count: 100},
	})

	cfg := testFilterConfig()
	if got := Filter(table, cfg); got.Len() != 2 {
		t.Errorf("expected <num> included, got %d entries", got.Len())
	}

	cfg.IncludeNumberToken = false
	got := Filter(table, cfg)
	if got.Len() != 1 {
		t.Fatalf("expected <num> excluded, got %d entries", got.Len())
	}
	if got.Entries()[0].Word != "year" {
		t.Errorf("expected %q, got %q", "year", got.Entries()[0].Word)
	}
}

func TestSelect_TopKWithTieBreak(t *testing.T) {
	filtered := NewTable([]Entry{
		{Word: "the", Count: 100},
		{Word: "a", Count: 100},
		{Word: "dog", Count: 50},
	})

	// Filter would drop "a"; keep the raw table here to pin the tie-break.
	sel := Select(filtered, 2)
	if len(sel.Words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(sel.Words))
	}
	if sel.Words[0] != "a" || sel.Words[1] != "the" {
		t.Errorf("expected [a the], got %v", sel.Words)
	}
	if sel.Coverage != 80.00 {
		t.Errorf("expected coverage 80.00, got %v", sel.Coverage)
	}
	if sel.CoverageString() != "80.00%" {
		t.Errorf("expected %q, got %q", "80.00%", sel.CoverageString())
	}
}

func TestSelect_KLargerThanTable(t *testing.T) {
	filtered := NewTable([]Entry{
		{Word: "dog", Count: 3},
		{Word: "cat", Count: 2},
	})
	sel := Select(filtered, 10)
	if len(sel.Words) != 2 {
		t.Fatalf("expected all 2 words, got %d", len(sel.Words))
	}
	if sel.Coverage != 100.00 {
		t.Errorf("expected coverage 100.00, got %v", sel.Coverage)
	}
}

func TestSelect_CoverageMonotone(t *testing.T) {
	filtered := NewTable([]Entry{
		{Word: "aa", Count: 40},
		{Word: "bb", Count: 30},
		{Word: "cc", Count: 20},
		{Word: "dd", Count: 10},
	})

	prev := 0.0
	for k := 1; k <= 4; k++ {
		sel := Select(filtered, k)
		if sel.Coverage < prev {
			t.Errorf("coverage decreased at k=%d: %v < %v", k, sel.Coverage, prev)
		}
		prev = sel.Coverage
	}
	if prev != 100.00 {
		t.Errorf("expected full coverage at k=len, got %v", prev)
	}
}

func TestSelect_EmptyCorpus(t *testing.T) {
	sel := Select(NewTable(nil), 5)
	if len(sel.Words) != 0 {
		t.Errorf("expected no words, got %v", sel.Words)
	}
	if !math.IsNaN(sel.Coverage) {
		t.Errorf("expected NaN coverage, got %v", sel.Coverage)
	}
	if sel.CoverageString() != "n/a" {
		t.Errorf("expected %q, got %q", "n/a", sel.CoverageString())
	}
	if sel.Line() != "" {
		t.Errorf("expected empty line, got %q", sel.Line())
	}
}

func TestSelect_ZeroAndNegativeK(t *testing.T) {
	filtered := NewTable([]Entry{{Word: "dog", Count: 3}})
	if sel := Select(filtered, 0); len(sel.Words) != 0 || sel.Coverage != 0 {
		t.Errorf("expected empty selection with 0 coverage, got %v %v", sel.Words, sel.Coverage)
	}
	if sel := Select(filtered, -1); len(sel.Words) != 0 {
		t.Errorf("expected empty selection for negative k, got %v", sel.Words)
	}
}

func TestSelection_Line(t *testing.T) {
	sel := Selection{Words: []string{"the", "dog", "barks"}}
	if sel.Line() != "the dog barks" {
		t.Errorf("expected %q, got %q", "the dog barks", sel.Line())
	}
}
