package norm

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// Segmenter splits document text into sentences using a Punkt model for the
// configured language. Punkt handles terminal punctuation and abbreviation
// heuristics (e.g. "z.B." in German does not end a sentence).
type Segmenter struct {
	tok *sentences.DefaultSentenceTokenizer
}

// NewSegmenter loads the Punkt training data for language (e.g. "german",
// "english") from modelDir. English falls back to the embedded model when
// no file is present; other languages require <modelDir>/<language>.json.
func NewSegmenter(language, modelDir string) (*Segmenter, error) {
	if modelDir != "" {
		path := filepath.Join(modelDir, language+".json")
		if data, err := os.ReadFile(path); err == nil {
			training, err := sentences.LoadTraining(data)
			if err != nil {
				return nil, fmt.Errorf("load punkt model %s: %w", path, err)
			}
			return &Segmenter{tok: sentences.NewSentenceTokenizer(training)}, nil
		}
	}

	if language == "english" {
		tok, err := english.NewSentenceTokenizer(nil)
		if err != nil {
			return nil, fmt.Errorf("load embedded english model: %w", err)
		}
		return &Segmenter{tok: tok}, nil
	}

	return nil, fmt.Errorf("no punkt model for language %q in %q", language, modelDir)
}

// Split returns the sentences of text in order. Whitespace-only segments
// are dropped; an empty input yields no sentences.
func (s *Segmenter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	raw := s.tok.Tokenize(text)
	out := make([]string, 0, len(raw))
	for _, sent := range raw {
		if t := strings.TrimSpace(sent.Text); t != "" {
			out = append(out, t)
		}
	}
	return out
}
