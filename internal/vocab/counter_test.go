package vocab

import (
	"context"
	"strings"
	"testing"
)

func countAll(t *testing.T, c *Counter, input string) map[string]uint64 {
	t.Helper()
	table, err := c.Count(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := make(map[string]uint64, table.Len())
	for _, e := range table.Entries() {
		got[e.Word] = e.Count
	}
	return got
}

func TestCounter_Basic(t *testing.T) {
	c := NewCounter(2, 0, t.TempDir())
	got := countAll(t, c, "the dog barks\nthe cat sleeps\nthe dog runs\n")

	want := map[string]uint64{
		"the": 3, "dog": 2, "barks": 1, "cat": 1, "sleeps": 1, "runs": 1,
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d distinct words, got %d: %v", len(want), len(got), got)
	}
	for w, n := range want {
		if got[w] != n {
			t.Errorf("count[%q]: expected %d, got %d", w, n, got[w])
		}
	}
}

func TestCounter_Empty(t *testing.T) {
	c := NewCounter(2, 0, t.TempDir())
	table, err := c.Count(context.Background(), strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Len() != 0 {
		t.Errorf("expected empty table, got %d entries", table.Len())
	}
	if table.Total() != 0 {
		t.Errorf("expected total 0, got %d", table.Total())
	}
}

func TestCounter_SingleWorker(t *testing.T) {
	c := NewCounter(1, 0, t.TempDir())
	got := countAll(t, c, "a a a b\n")
	if got["a"] != 3 || got["b"] != 1 {
		t.Errorf("expected a=3 b=1, got %v", got)
	}
}

func TestCounter_WithSpills(t *testing.T) {
	// A tiny spill limit forces every worker to spill repeatedly, so the
	// result comes out of the k-way merge path.
	var input strings.Builder
	words := []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta", "eta", "theta"}
	for i := 0; i < 100; i++ {
		input.WriteString(strings.Join(words, " "))
		input.WriteString("\n")
	}

	spilled := NewCounter(3, 2, t.TempDir())
	inMemory := NewCounter(3, 0, t.TempDir())

	got := countAll(t, spilled, input.String())
	want := countAll(t, inMemory, input.String())

	if len(got) != len(want) {
		t.Fatalf("expected %d distinct words, got %d", len(want), len(got))
	}
	for w, n := range want {
		if got[w] != n {
			t.Errorf("count[%q]: expected %d, got %d", w, n, got[w])
		}
	}
	for _, w := range words {
		if got[w] != 100 {
			t.Errorf("count[%q]: expected 100, got %d", w, got[w])
		}
	}
}

func TestCounter_SpillsDeterministic(t *testing.T) {
	input := "b a c a b a\nc c b a\n"
	c := NewCounter(2, 1, t.TempDir())

	table, err := c.Count(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := table.Entries()
	want := []Entry{
		{Word: "a", Count: 4},
		{Word: "b", Count: 3},
		{Word: "c", Count: 3},
	}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d: %v", len(want), len(entries), entries)
	}
	for i, w := range want {
		if entries[i] != w {
			t.Errorf("entry[%d]: expected %+v, got %+v", i, w, entries[i])
		}
	}
}

func TestCounter_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewCounter(2, 0, t.TempDir())
	if _, err := c.Count(ctx, strings.NewReader("a b c\n")); err == nil {
		t.Error("expected error from cancelled context")
	}
}
