// Package pipeline runs corpus build jobs through normalization, counting
// and vocabulary selection.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tiefenauer/wiki-lm/internal/artifact"
	"github.com/tiefenauer/wiki-lm/internal/config"
	"github.com/tiefenauer/wiki-lm/internal/norm"
)

// Orchestrator manages the corpus build pipeline.
type Orchestrator struct {
	jobs       *JobStore
	queue      chan *Job
	normalizer *norm.Normalizer
	store      *artifact.Store
	stats      *DocStats
	log        *slog.Logger
	cfg        config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline.
func NewOrchestrator(cfg config.Config, n *norm.Normalizer, store *artifact.Store, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:       NewJobStore(cfg.JobTTL),
		queue:      make(chan *Job, cfg.MaxQueueSize),
		normalizer: n,
		store:      store,
		stats:      NewDocStats(time.Hour),
		log:        log,
		cfg:        cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for i := 0; i < o.cfg.WorkerCount; i++ {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.normalizer, o.store, o.log, o.stats, o.cfg)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Stats returns the rolling per-document latency tracker.
func (o *Orchestrator) Stats() *DocStats {
	return o.stats
}

// Store returns the artifact store for direct use by API handlers.
func (o *Orchestrator) Store() *artifact.Store {
	return o.store
}
