package reader

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// TextParser handles plain text files. Blank-line-separated paragraphs
// become individual documents so that large files stream through the
// normalizer in article-sized units.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (Source, error) {
	return &textSource{
		scanner: newLineScanner(r),
		name:    strings.TrimSuffix(filename, ".txt"),
	}, nil
}

type textSource struct {
	scanner *bufio.Scanner
	name    string
	count   int
	done    bool
}

func (s *textSource) Next() (*Document, error) {
	if s.done {
		return nil, io.EOF
	}

	var current strings.Builder
	for s.scanner.Scan() {
		line := s.scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				return s.emit(current.String()), nil
			}
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	if err := s.scanner.Err(); err != nil {
		return nil, err
	}

	s.done = true
	if current.Len() > 0 {
		return s.emit(current.String()), nil
	}
	return nil, io.EOF
}

func (s *textSource) emit(text string) *Document {
	s.count++
	return &Document{
		ID:    fmt.Sprintf("%s#%d", s.name, s.count),
		Title: s.name,
		Text:  text,
	}
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return scanner
}
