package pipeline

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/tiefenauer/wiki-lm/internal/artifact"
	"github.com/tiefenauer/wiki-lm/internal/config"
	"github.com/tiefenauer/wiki-lm/internal/norm"
)

func testWorker(t *testing.T) (*Worker, *artifact.Store) {
	t.Helper()

	seg, err := norm.NewSegmenter("english", "")
	if err != nil {
		t.Fatalf("unexpected error loading segmenter: %v", err)
	}
	normalizer := norm.New(norm.LanguageConfig("en"), seg)

	store, err := artifact.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}

	cfg := config.Config{
		VocabSize:       5,
		IncludeNumToken: true,
		CountWorkers:    2,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewWorker(normalizer, store, log, NewDocStats(time.Hour), cfg), store
}

func uploadJob(id string, data string) *Job {
	job := &Job{
		ID:        id,
		Status:    StatusQueued,
		Phase:     "queued",
		Filename:  "corpus.txt",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	job.SetFileData([]byte(data))
	return job
}

func TestWorker_ProcessFullBuild(t *testing.T) {
	w, store := testWorker(t)

	job := uploadJob("build-1", "The dog barks. The dog sleeps.\n\nThe cat barks.")
	w.Process(context.Background(), job)

	if job.Status != StatusCompleted {
		t.Fatalf("expected status %q, got %q (errors: %v)", StatusCompleted, job.Status, job.Snapshot().Progress.Errors)
	}
	if !store.CorpusExists() {
		t.Error("expected corpus artifact")
	}
	if !store.VocabularyExists() {
		t.Error("expected vocabulary artifact")
	}

	snap := job.Snapshot()
	if snap.Progress.Documents != 2 {
		t.Errorf("expected 2 documents, got %d", snap.Progress.Documents)
	}
	if snap.Progress.Sentences != 3 {
		t.Errorf("expected 3 sentences, got %d", snap.Progress.Sentences)
	}
	if snap.Progress.Tokens != 9 {
		t.Errorf("expected 9 tokens, got %d", snap.Progress.Tokens)
	}
	if snap.Progress.Coverage != "100.00%" {
		t.Errorf("expected coverage %q, got %q", "100.00%", snap.Progress.Coverage)
	}

	words, err := store.ReadVocabulary()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(words) != 5 {
		t.Fatalf("expected 5 vocabulary words, got %d: %v", len(words), words)
	}
	if words[0] != "the" {
		t.Errorf("expected most frequent word %q first, got %q", "the", words[0])
	}

	// Upload buffer is released after normalization.
	if job.FileData() != nil {
		t.Error("expected file data released after build")
	}
}

func TestWorker_VocabSizeOverride(t *testing.T) {
	w, store := testWorker(t)

	job := uploadJob("build-k", "The dog barks. The dog sleeps.\n\nThe cat barks.")
	job.VocabSize = 2
	w.Process(context.Background(), job)

	if job.Status != StatusCompleted {
		t.Fatalf("expected status %q, got %q", StatusCompleted, job.Status)
	}

	words, err := store.ReadVocabulary()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// the=3, then barks=2 beats dog=2 on the tie-break.
	if len(words) != 2 || words[0] != "the" || words[1] != "barks" {
		t.Errorf("expected [the barks], got %v", words)
	}

	// 5 of 9 filtered occurrences.
	if got := job.Snapshot().Progress.Coverage; got != "55.56%" {
		t.Errorf("expected coverage %q, got %q", "55.56%", got)
	}
}

func TestWorker_ReusesVocabulary(t *testing.T) {
	w, store := testWorker(t)

	first := uploadJob("build-first", "The dog barks.")
	w.Process(context.Background(), first)
	if first.Status != StatusCompleted {
		t.Fatalf("expected first build completed, got %q", first.Status)
	}

	vocabBefore, err := store.ReadVocabulary()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A sourceless job finds both artifacts in place and reuses them.
	second := &Job{ID: "refresh", Status: StatusQueued, UpdatedAt: time.Now()}
	w.Process(context.Background(), second)

	if second.Status != StatusReused {
		t.Fatalf("expected status %q, got %q", StatusReused, second.Status)
	}
	vocabAfter, err := store.ReadVocabulary()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(vocabAfter, " ") != strings.Join(vocabBefore, " ") {
		t.Errorf("expected vocabulary untouched, got %v then %v", vocabBefore, vocabAfter)
	}
}

func TestWorker_RebuildForcesSelection(t *testing.T) {
	w, _ := testWorker(t)

	first := uploadJob("build-first", "The dog barks.")
	w.Process(context.Background(), first)
	if first.Status != StatusCompleted {
		t.Fatalf("expected first build completed, got %q", first.Status)
	}

	second := &Job{ID: "rebuild", Status: StatusQueued, RebuildCorpus: true, UpdatedAt: time.Now()}
	w.Process(context.Background(), second)

	if second.Status != StatusCompleted {
		t.Fatalf("expected recount to complete, got %q", second.Status)
	}
}

func TestWorker_FailsWithoutCorpusOrSource(t *testing.T) {
	w, _ := testWorker(t)

	job := &Job{ID: "no-source", Status: StatusQueued, UpdatedAt: time.Now()}
	w.Process(context.Background(), job)

	if job.Status != StatusFailed {
		t.Fatalf("expected status %q, got %q", StatusFailed, job.Status)
	}
	snap := job.Snapshot()
	if len(snap.Progress.Errors) == 0 {
		t.Error("expected an error to be recorded")
	}
}

func TestWorker_FailsOnUnsupportedFile(t *testing.T) {
	w, _ := testWorker(t)

	job := uploadJob("bad-ext", "data")
	job.Filename = "archive.zip"
	w.Process(context.Background(), job)

	if job.Status != StatusFailed {
		t.Fatalf("expected status %q, got %q", StatusFailed, job.Status)
	}
}

func TestOrchestrator_SubmitQueueFull(t *testing.T) {
	seg, err := norm.NewSegmenter("english", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	store, err := artifact.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg := config.Config{MaxQueueSize: 1, JobTTL: time.Hour}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	o := NewOrchestrator(cfg, norm.New(norm.LanguageConfig("en"), seg), store, log)

	// Workers are not started, so the queue fills immediately.
	if err := o.Submit(&Job{ID: "first", UpdatedAt: time.Now()}); err != nil {
		t.Fatalf("unexpected error on first submit: %v", err)
	}
	overflow := &Job{ID: "second", UpdatedAt: time.Now()}
	if err := o.Submit(overflow); err == nil {
		t.Fatal("expected queue-full error")
	}
	if overflow.Status != StatusFailed {
		t.Errorf("expected overflow job failed, got %q", overflow.Status)
	}
	if o.GetJob("first") == nil {
		t.Error("expected queued job to be registered")
	}
	if o.QueueDepth() != 1 {
		t.Errorf("expected queue depth 1, got %d", o.QueueDepth())
	}
}
