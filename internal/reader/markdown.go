package reader

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Markup structure is
// discarded; only the prose matters to the corpus.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (Source, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var body strings.Builder
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		// Headings are titles, not prose; skip them.
		if _, ok := n.(*ast.Heading); ok {
			continue
		}
		if t := extractText(n, src); t != "" {
			if body.Len() > 0 {
				body.WriteString("\n\n")
			}
			body.WriteString(t)
		}
	}

	title := strings.TrimSuffix(strings.TrimSuffix(filename, ".md"), ".markdown")
	flat := strings.TrimSpace(body.String())
	if flat == "" {
		return newSliceSource(nil), nil
	}
	return newSliceSource([]*Document{{Title: title, Text: flat}}), nil
}

// extractText gets the text content of a goldmark AST node.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	// Also handle inline children.
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			buf.WriteString(extractText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
