package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/tiefenauer/wiki-lm/internal/artifact"
	"github.com/tiefenauer/wiki-lm/internal/config"
	"github.com/tiefenauer/wiki-lm/internal/norm"
	"github.com/tiefenauer/wiki-lm/internal/reader"
	"github.com/tiefenauer/wiki-lm/internal/vocab"
)

// Worker processes a single corpus build job: normalize the source into
// the corpus artifact, tally word-forms, select the vocabulary.
type Worker struct {
	normalizer *norm.Normalizer
	store      *artifact.Store
	log        *slog.Logger
	stats      *DocStats
	cfg        config.Config
}

func NewWorker(n *norm.Normalizer, store *artifact.Store, log *slog.Logger, stats *DocStats, cfg config.Config) *Worker {
	return &Worker{
		normalizer: n,
		store:      store,
		log:        log,
		stats:      stats,
		cfg:        cfg,
	}
}

// Process runs the full build pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	// Phase 1: Normalize (only when the job brings a source or forces it).
	corpusRebuilt := false
	hasSource := len(job.FileData()) > 0 || job.SourcePath != ""
	switch {
	case hasSource:
		job.SetStatus(StatusNormalizing, "normalizing")
		stats, err := w.buildCorpus(ctx, job)
		if err != nil {
			log.Error("normalization failed", "error", err)
			job.AddError(fmt.Sprintf("normalize: %s", err))
			job.SetStatus(StatusFailed, "normalizing")
			return
		}
		job.SetNormalized(stats.Documents, stats.Sentences, stats.Tokens)
		job.ReleaseFileData()
		corpusRebuilt = true
		log.Info("corpus written",
			"documents", stats.Documents,
			"sentences", stats.Sentences,
			"tokens", stats.Tokens,
		)

	case !w.store.CorpusExists():
		job.AddError("no corpus artifact and no source provided")
		job.SetStatus(StatusFailed, "normalizing")
		return
	}

	// The vocabulary is valid as long as it exists and the corpus was not
	// rebuilt in this run. Content staleness is the caller's concern.
	if !corpusRebuilt && !job.RebuildCorpus && w.store.VocabularyExists() {
		log.Info("vocabulary artifact exists, reusing")
		job.SetStatus(StatusReused, "done")
		return
	}

	// Phase 2: Count word-forms over the corpus.
	job.SetStatus(StatusCounting, "counting")
	table, err := w.countCorpus(ctx)
	if err != nil {
		log.Error("counting failed", "error", err)
		job.AddError(fmt.Sprintf("count: %s", err))
		job.SetStatus(StatusFailed, "counting")
		return
	}

	// Phase 3: Filter, persist the table, select top-K.
	job.SetStatus(StatusSelecting, "selecting")
	ncfg := w.normalizer.Config()
	filtered := vocab.Filter(table, vocab.FilterConfig{
		DigitRune:          ncfg.DigitRune,
		NumberToken:        ncfg.NumberToken,
		IncludeNumberToken: w.cfg.IncludeNumToken,
	})
	if err := w.store.WriteFrequencyTable(filtered); err != nil {
		log.Error("frequency table write failed", "error", err)
		job.AddError(fmt.Sprintf("frequency table: %s", err))
		job.SetStatus(StatusFailed, "selecting")
		return
	}

	k := w.cfg.VocabSize
	if job.VocabSize > 0 {
		k = job.VocabSize
	}
	sel := vocab.Select(filtered, k)
	if err := w.store.WriteVocabulary(sel.Line()); err != nil {
		log.Error("vocabulary write failed", "error", err)
		job.AddError(fmt.Sprintf("vocabulary: %s", err))
		job.SetStatus(StatusFailed, "selecting")
		return
	}

	job.SetSelection(filtered.Len(), len(sel.Words), sel.CoverageString())
	log.Info("vocabulary selected",
		"k", k,
		"vocab_words", len(sel.Words),
		"distinct_forms", filtered.Len(),
		"coverage", sel.CoverageString(),
	)
	job.SetStatus(StatusCompleted, "done")
}

// buildCorpus streams the job's source through the normalizer into the
// corpus artifact.
func (w *Worker) buildCorpus(ctx context.Context, job *Job) (norm.Stats, error) {
	name := job.Filename
	if name == "" {
		name = filepath.Base(job.SourcePath)
	}

	p, err := reader.ForFile(name)
	if err != nil {
		return norm.Stats{}, err
	}
	if pdf, ok := p.(*reader.PDFParser); ok {
		pdf.FallbackPdftotext = w.cfg.PDFFallbackPdftotext
	}

	var in io.Reader
	if data := job.FileData(); len(data) > 0 {
		in = bytes.NewReader(data)
	} else {
		f, err := os.Open(job.SourcePath)
		if err != nil {
			return norm.Stats{}, fmt.Errorf("open source: %w", err)
		}
		defer f.Close()
		in = f
	}

	src, err := p.Parse(in, name)
	if err != nil {
		return norm.Stats{}, fmt.Errorf("parse source: %w", err)
	}

	out, err := w.store.CreateCorpus()
	if err != nil {
		return norm.Stats{}, err
	}

	stats, err := w.normalizer.Run(ctx, src, out, func(doc *reader.Document, sentences int, elapsed time.Duration) {
		w.stats.Record(elapsed.Milliseconds())
		job.AddDocument(int64(sentences))
	})
	if err != nil {
		out.Abort()
		return norm.Stats{}, err
	}
	return stats, out.Close()
}

func (w *Worker) countCorpus(ctx context.Context) (*vocab.Table, error) {
	in, err := w.store.OpenCorpus()
	if err != nil {
		return nil, err
	}
	defer in.Close()

	counter := vocab.NewCounter(w.cfg.CountWorkers, w.cfg.SpillThreshold, "")
	return counter.Count(ctx, in)
}
