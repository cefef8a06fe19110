// Package artifact manages the corpus-preparation outputs on disk: the
// corpus, the frequency table and the vocabulary.
package artifact

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tiefenauer/wiki-lm/internal/vocab"
)

const (
	corpusFile     = "corpus.txt"
	wordCountFile  = "wordcount.txt"
	vocabularyFile = "vocabulary.txt"
)

// Store reads and writes pipeline artifacts under a single directory. All
// writes go through a temp file and rename, so a crashed run never leaves a
// truncated artifact behind.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create corpus dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string { return s.dir }

func (s *Store) CorpusPath() string { return filepath.Join(s.dir, corpusFile) }

func (s *Store) WordCountPath() string { return filepath.Join(s.dir, wordCountFile) }

func (s *Store) VocabularyPath() string { return filepath.Join(s.dir, vocabularyFile) }

// CorpusExists reports whether a corpus artifact is present. Staleness
// relative to the source dump is the caller's concern; no content hash is
// checked.
func (s *Store) CorpusExists() bool { return exists(s.CorpusPath()) }

// VocabularyExists reports whether a vocabulary artifact is present.
func (s *Store) VocabularyExists() bool { return exists(s.VocabularyPath()) }

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// CreateCorpus opens the corpus artifact for writing. The file becomes
// visible under its final name only when Close succeeds; call Abort to
// discard a failed run.
func (s *Store) CreateCorpus() (*PendingFile, error) {
	return newPendingFile(s.CorpusPath())
}

// OpenCorpus opens the corpus artifact for reading.
func (s *Store) OpenCorpus() (io.ReadCloser, error) {
	f, err := os.Open(s.CorpusPath())
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	return f, nil
}

// WriteFrequencyTable persists the "<count> <word>" table artifact.
func (s *Store) WriteFrequencyTable(t *vocab.Table) error {
	f, err := newPendingFile(s.WordCountPath())
	if err != nil {
		return err
	}
	if _, err := t.WriteTo(f); err != nil {
		f.Abort()
		return fmt.Errorf("write frequency table: %w", err)
	}
	return f.Close()
}

// WriteVocabulary persists the single-line vocabulary artifact.
func (s *Store) WriteVocabulary(line string) error {
	f, err := newPendingFile(s.VocabularyPath())
	if err != nil {
		return err
	}
	if _, err := io.WriteString(f, line+"\n"); err != nil {
		f.Abort()
		return fmt.Errorf("write vocabulary: %w", err)
	}
	return f.Close()
}

// ReadVocabulary returns the vocabulary word-forms from the artifact.
func (s *Store) ReadVocabulary() ([]string, error) {
	data, err := os.ReadFile(s.VocabularyPath())
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	return strings.Fields(string(data)), nil
}

// PendingFile writes to <path>.tmp and renames on Close.
type PendingFile struct {
	f    *os.File
	path string
}

func newPendingFile(path string) (*PendingFile, error) {
	f, err := os.OpenFile(path+".tmp", os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	return &PendingFile{f: f, path: path}, nil
}

func (a *PendingFile) Write(p []byte) (int, error) {
	return a.f.Write(p)
}

func (a *PendingFile) Close() error {
	if err := a.f.Close(); err != nil {
		os.Remove(a.f.Name())
		return err
	}
	if err := os.Rename(a.f.Name(), a.path); err != nil {
		os.Remove(a.f.Name())
		return fmt.Errorf("finalize %s: %w", filepath.Base(a.path), err)
	}
	return nil
}

// Abort discards the pending write.
func (a *PendingFile) Abort() {
	a.f.Close()
	os.Remove(a.f.Name())
}
