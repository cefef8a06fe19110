// Package norm turns raw document text into the one-sentence-per-line
// corpus format the n-gram estimator consumes.
package norm

import (
	"bufio"
	"context"
	"io"
	"strings"
	"time"

	"github.com/tiefenauer/wiki-lm/internal/reader"
)

// Normalizer converts documents into normalized corpus lines.
type Normalizer struct {
	cfg Config
	seg *Segmenter
}

func New(cfg Config, seg *Segmenter) *Normalizer {
	return &Normalizer{cfg: cfg, seg: seg}
}

// Config returns the normalization config in effect.
func (n *Normalizer) Config() Config {
	return n.cfg
}

// Document normalizes one document's text into finished corpus lines, in
// input order. Empty documents yield no lines.
func (n *Normalizer) Document(text string) []string {
	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		for _, sent := range n.seg.Split(raw) {
			line := n.cfg.NormalizeSentence(sent)
			if n.cfg.MinWords > 0 && len(strings.Fields(line)) < n.cfg.MinWords {
				continue
			}
			lines = append(lines, line)
		}
	}
	return lines
}

// Stats summarizes one normalization run.
type Stats struct {
	Documents int64
	Sentences int64
	Tokens    int64
}

// ProgressFunc is invoked after each document with its sentence count and
// processing time.
type ProgressFunc func(doc *reader.Document, sentences int, elapsed time.Duration)

// Run streams every document from src through the pipeline and writes one
// normalized sentence per line to w. Documents are processed strictly in
// stream order, one at a time; nothing is buffered beyond the current
// document.
func (n *Normalizer) Run(ctx context.Context, src reader.Source, w io.Writer, onDoc ProgressFunc) (Stats, error) {
	var stats Stats
	bw := bufio.NewWriter(w)

	for {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		doc, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return stats, err
		}

		start := time.Now()
		lines := n.Document(doc.Text)
		for _, line := range lines {
			if _, err := bw.WriteString(line); err != nil {
				return stats, err
			}
			if err := bw.WriteByte('\n'); err != nil {
				return stats, err
			}
			stats.Sentences++
			stats.Tokens += int64(len(strings.Fields(line)))
		}
		stats.Documents++

		if onDoc != nil {
			onDoc(doc, len(lines), time.Since(start))
		}
	}

	return stats, bw.Flush()
}
