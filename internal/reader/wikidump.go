package reader

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// WikiParser handles the output of a wiki markup extractor: a stream of
// article units wrapped in <doc id=".." title=".."> ... </doc> markers.
// Parsing is tolerant: a missing end marker yields the best-effort span up
// to the next document or end of input.
type WikiParser struct{}

func (p *WikiParser) Parse(r io.Reader, filename string) (Source, error) {
	return &wikiSource{z: html.NewTokenizer(r)}, nil
}

// wikiSource streams one document at a time so that dump-sized inputs never
// require full buffering. The open document and its accumulated text carry
// over between Next calls.
type wikiSource struct {
	z    *html.Tokenizer
	open *Document
	text strings.Builder
	done bool
}

func (s *wikiSource) Next() (*Document, error) {
	if s.done {
		return nil, io.EOF
	}

	for {
		tt := s.z.Next()
		switch tt {
		case html.ErrorToken:
			err := s.z.Err()
			if err == io.EOF {
				s.done = true
				// Unterminated document: emit the span seen so far.
				if s.open != nil {
					return s.flush(), nil
				}
				return nil, io.EOF
			}
			return nil, err

		case html.StartTagToken:
			tok := s.z.Token()
			if tok.Data != "doc" {
				continue
			}
			next := &Document{}
			for _, a := range tok.Attr {
				switch a.Key {
				case "id":
					next.ID = a.Val
				case "title":
					next.Title = a.Val
				}
			}
			// A new start marker before the previous end marker closes the
			// open document best-effort.
			if s.open != nil {
				prev := s.flush()
				s.open = next
				return prev, nil
			}
			s.open = next

		case html.EndTagToken:
			tok := s.z.Token()
			if tok.Data != "doc" || s.open == nil {
				continue
			}
			return s.flush(), nil

		case html.TextToken:
			if s.open != nil {
				s.text.Write(s.z.Text())
			}
		}
	}
}

func (s *wikiSource) flush() *Document {
	doc := s.open
	doc.Text = strings.TrimSpace(s.text.String())
	s.open = nil
	s.text.Reset()
	return doc
}
