package vocab

import (
	"bufio"
	"container/heap"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Counter tallies word-form occurrences over a token stream. Counting is
// associative and commutative per word-form, so the input is sharded across
// workers whose partial counts merge by addition. Each worker spills its
// partial table to a sorted temp file when it grows past spillLimit,
// keeping memory bounded on corpora larger than RAM; the spills are
// k-way-merged at the end.
type Counter struct {
	workers    int
	spillLimit int
	tmpDir     string
}

// NewCounter configures a counter. spillLimit is the maximum number of
// distinct in-memory word-forms per worker before a spill; zero disables
// spilling. An empty tmpDir uses the system default.
func NewCounter(workers, spillLimit int, tmpDir string) *Counter {
	if workers <= 0 {
		workers = 1
	}
	return &Counter{workers: workers, spillLimit: spillLimit, tmpDir: tmpDir}
}

const batchLines = 256

// Count reads whitespace-delimited tokens from r and returns the full
// frequency table, sorted by count descending.
func (c *Counter) Count(ctx context.Context, r io.Reader) (*Table, error) {
	batches := make(chan []string, c.workers*2)
	parts := make([]*partial, c.workers)
	errCh := make(chan error, c.workers)

	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		parts[i] = newPartial(c.spillLimit, c.tmpDir)
		wg.Add(1)
		go func(p *partial) {
			defer wg.Done()
			for batch := range batches {
				for _, line := range batch {
					for _, tok := range strings.Fields(line) {
						if err := p.add(tok); err != nil {
							errCh <- err
							// Keep draining so the feeder never blocks.
							for range batches {
							}
							return
						}
					}
				}
			}
		}(parts[i])
	}

	feedErr := c.feed(ctx, r, batches)
	close(batches)
	wg.Wait()

	defer func() {
		for _, p := range parts {
			p.cleanup()
		}
	}()

	if feedErr != nil {
		return nil, feedErr
	}
	select {
	case err := <-errCh:
		return nil, err
	default:
	}

	return mergePartials(parts)
}

func (c *Counter) feed(ctx context.Context, r io.Reader, batches chan<- []string) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	batch := make([]string, 0, batchLines)
	flush := func() {
		if len(batch) > 0 {
			batches <- batch
			batch = make([]string, 0, batchLines)
		}
	}

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		batch = append(batch, scanner.Text())
		if len(batch) == batchLines {
			flush()
		}
	}
	flush()
	return scanner.Err()
}

// partial is one worker's share of the tally: an in-memory map plus the
// sorted spill files it has already flushed.
type partial struct {
	counts     map[string]uint64
	spillLimit int
	tmpDir     string
	spills     []string
}

func newPartial(spillLimit int, tmpDir string) *partial {
	return &partial{counts: make(map[string]uint64), spillLimit: spillLimit, tmpDir: tmpDir}
}

func (p *partial) add(tok string) error {
	p.counts[tok]++
	if p.spillLimit > 0 && len(p.counts) >= p.spillLimit {
		return p.spill()
	}
	return nil
}

// spill writes the in-memory counts to a temp file sorted by word and
// resets the map. Sorted spills make the final pass a streaming merge.
func (p *partial) spill() error {
	if len(p.counts) == 0 {
		return nil
	}
	words := make([]string, 0, len(p.counts))
	for w := range p.counts {
		words = append(words, w)
	}
	sort.Strings(words)

	f, err := os.CreateTemp(p.tmpDir, "wordcount-*.spill")
	if err != nil {
		return fmt.Errorf("create spill file: %w", err)
	}
	bw := bufio.NewWriter(f)
	for _, w := range words {
		if _, err := fmt.Fprintf(bw, "%s %d\n", w, p.counts[w]); err != nil {
			f.Close()
			os.Remove(f.Name())
			return fmt.Errorf("write spill file: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		os.Remove(f.Name())
		return fmt.Errorf("flush spill file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("close spill file: %w", err)
	}

	p.spills = append(p.spills, f.Name())
	p.counts = make(map[string]uint64)
	return nil
}

func (p *partial) cleanup() {
	for _, path := range p.spills {
		os.Remove(path)
	}
	p.spills = nil
}

// mergePartials combines worker partials into the final table. Without
// spills this is a plain map merge; with spills every remaining map is
// flushed and all spill files are k-way-merged by word.
func mergePartials(parts []*partial) (*Table, error) {
	spilled := false
	for _, p := range parts {
		if len(p.spills) > 0 {
			spilled = true
			break
		}
	}

	if !spilled {
		merged := make(map[string]uint64)
		for _, p := range parts {
			for w, n := range p.counts {
				merged[w] += n
			}
		}
		entries := make([]Entry, 0, len(merged))
		for w, n := range merged {
			entries = append(entries, Entry{Word: w, Count: n})
		}
		return NewTable(entries), nil
	}

	var files []string
	for _, p := range parts {
		if err := p.spill(); err != nil {
			return nil, err
		}
		files = append(files, p.spills...)
	}
	return mergeSpills(files)
}

// mergeSpills streams word-sorted spill files through a heap, summing
// counts for equal words.
func mergeSpills(files []string) (*Table, error) {
	h := make(spillHeap, 0, len(files))
	closeAll := func() {
		for _, s := range h {
			s.f.Close()
		}
	}

	for _, path := range files {
		s, err := openSpill(path)
		if err != nil {
			closeAll()
			return nil, err
		}
		if s != nil {
			h = append(h, s)
		}
	}
	heap.Init(&h)

	var entries []Entry
	for h.Len() > 0 {
		top := h[0]
		word, count := top.word, top.count

		advance := func(s *spillStream) error {
			ok, err := s.next()
			if err != nil {
				return err
			}
			if ok {
				heap.Fix(&h, 0)
			} else {
				s.f.Close()
				heap.Pop(&h)
			}
			return nil
		}

		if err := advance(top); err != nil {
			closeAll()
			return nil, err
		}
		// Fold in every other stream positioned at the same word.
		for h.Len() > 0 && h[0].word == word {
			count += h[0].count
			if err := advance(h[0]); err != nil {
				closeAll()
				return nil, err
			}
		}
		entries = append(entries, Entry{Word: word, Count: count})
	}

	return NewTable(entries), nil
}

type spillStream struct {
	f       *os.File
	scanner *bufio.Scanner
	word    string
	count   uint64
}

// openSpill returns nil for an empty spill file.
func openSpill(path string) (*spillStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open spill file: %w", err)
	}
	s := &spillStream{f: f, scanner: bufio.NewScanner(f)}
	ok, err := s.next()
	if err != nil {
		f.Close()
		return nil, err
	}
	if !ok {
		f.Close()
		return nil, nil
	}
	return s, nil
}

func (s *spillStream) next() (bool, error) {
	if !s.scanner.Scan() {
		return false, s.scanner.Err()
	}
	line := s.scanner.Text()
	word, countStr, ok := strings.Cut(line, " ")
	if !ok {
		return false, fmt.Errorf("malformed spill line: %q", line)
	}
	count, err := strconv.ParseUint(countStr, 10, 64)
	if err != nil {
		return false, fmt.Errorf("malformed spill count in %q: %w", line, err)
	}
	s.word = word
	s.count = count
	return true, nil
}

type spillHeap []*spillStream

func (h spillHeap) Len() int           { return len(h) }
func (h spillHeap) Less(i, j int) bool { return h[i].word < h[j].word }
func (h spillHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *spillHeap) Push(x any)        { *h = append(*h, x.(*spillStream)) }
func (h *spillHeap) Pop() any {
	old := *h
	n := len(old)
	s := old[n-1]
	*h = old[:n-1]
	return s
}
