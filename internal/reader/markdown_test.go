package reader

import (
	"strings"
	"testing"
)

func TestMarkdownParser_FlattensProse(t *testing.T) {
	input := `# Title

Intro text.

## Section A

Section A content.
`
	p := &MarkdownParser{}
	src, err := p.Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	docs := drain(t, src)

	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if docs[0].Title != "doc" {
		t.Errorf("expected title %q, got %q", "doc", docs[0].Title)
	}
	if !strings.Contains(docs[0].Text, "Intro text.") {
		t.Errorf("expected prose in text, got %q", docs[0].Text)
	}
	if !strings.Contains(docs[0].Text, "Section A content.") {
		t.Errorf("expected section prose in text, got %q", docs[0].Text)
	}
	// Headings are structure, not prose.
	if strings.Contains(docs[0].Text, "Title") || strings.Contains(docs[0].Text, "Section A\n") {
		t.Errorf("expected headings skipped, got %q", docs[0].Text)
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	p := &MarkdownParser{}
	src, err := p.Parse(strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if docs := drain(t, src); len(docs) != 0 {
		t.Errorf("expected 0 documents for empty input, got %d", len(docs))
	}
}

func TestMarkdownParser_TitleStripping(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"readme.md", "readme"},
		{"notes.markdown", "notes"},
	}
	p := &MarkdownParser{}
	for _, tt := range tests {
		src, err := p.Parse(strings.NewReader("text"), tt.filename)
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", tt.filename, err)
		}
		docs := drain(t, src)
		if len(docs) != 1 {
			t.Fatalf("expected 1 document for %s, got %d", tt.filename, len(docs))
		}
		if docs[0].Title != tt.want {
			t.Errorf("filename=%q: expected title %q, got %q", tt.filename, tt.want, docs[0].Title)
		}
	}
}
