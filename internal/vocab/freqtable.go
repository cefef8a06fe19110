// Package vocab builds the frequency table and top-K vocabulary over a
// normalized corpus.
package vocab

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Entry is one word-form and its occurrence count.
type Entry struct {
	Word  string
	Count uint64
}

// Table is a frequency table ordered by count descending, with ties broken
// by word-form ascending so output is reproducible across runs.
type Table struct {
	entries []Entry
	total   uint64
}

// NewTable builds a sorted table from raw entries.
func NewTable(entries []Entry) *Table {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Count != sorted[j].Count {
			return sorted[i].Count > sorted[j].Count
		}
		return sorted[i].Word < sorted[j].Word
	})

	var total uint64
	for _, e := range sorted {
		total += e.Count
	}
	return &Table{entries: sorted, total: total}
}

// Entries returns the sorted entries. Callers must not mutate the slice.
func (t *Table) Entries() []Entry { return t.entries }

// Len returns the number of distinct word-forms.
func (t *Table) Len() int { return len(t.entries) }

// Total returns the sum of all counts.
func (t *Table) Total() uint64 { return t.total }

// WriteTo serializes the table as "<count> <word>" lines, most frequent
// first.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var written int64
	for _, e := range t.entries {
		n, err := fmt.Fprintf(bw, "%d %s\n", e.Count, e.Word)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, bw.Flush()
}

// ReadTable parses a "<count> <word>" serialization back into a table.
func ReadTable(r io.Reader) (*Table, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		countStr, word, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("malformed frequency line: %q", line)
		}
		count, err := strconv.ParseUint(countStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed count in %q: %w", line, err)
		}
		entries = append(entries, Entry{Word: word, Count: count})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return NewTable(entries), nil
}
