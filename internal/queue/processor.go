// Package queue hosts the sequential generation worker. One goroutine owns
// all queue state; HTTP handlers interact with it only through the control
// methods and the job store, preserving the single-writer invariant.
package queue

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"scenesmith/internal/domain"
	"scenesmith/internal/prompt"
	"scenesmith/internal/providers/image"
)

// ImageStore is the persistence collaborator for generated bytes.
type ImageStore interface {
	StoreImage(ctx context.Context, key string, data []byte) (StoredImage, error)
}

// StoredImage mirrors storage.StoredImage without importing the package, so
// tests can fake persistence without touching the filesystem.
type StoredImage struct {
	FilePath      string
	ThumbnailPath string
	Width         int
	Height        int
}

// Options wires the processor's collaborators.
type Options struct {
	Jobs      domain.JobRepository
	Sources   domain.PromptSourceRepository
	Images    domain.ImageRepository
	Settings  domain.SettingsProvider
	Generator image.Generator
	Store     ImageStore
	Logger    zerolog.Logger

	// PollInterval bounds how long a drained worker sleeps before re-checking
	// for pending jobs that arrived without a Kick.
	PollInterval time.Duration
}

// Processor runs the generation state machine: Idle, Processing, Paused,
// ErrorStopped. Jobs are drained strictly FIFO; within a job images are
// generated sequentially, and pause/cancel signals take effect only at the
// boundary between images, never mid-call.
type Processor struct {
	jobs      domain.JobRepository
	sources   domain.PromptSourceRepository
	images    domain.ImageRepository
	settings  domain.SettingsProvider
	generator image.Generator
	store     ImageStore
	logger    zerolog.Logger
	poll      time.Duration

	mu           sync.Mutex
	processing   bool
	stopped      domain.StopReason
	stopMessage  string
	currentJobID string
	timing       batchWindow

	wake chan struct{}
}

func NewProcessor(opts Options) *Processor {
	poll := opts.PollInterval
	if poll <= 0 {
		poll = 2 * time.Second
	}
	return &Processor{
		jobs:      opts.Jobs,
		sources:   opts.Sources,
		images:    opts.Images,
		settings:  opts.Settings,
		generator: opts.Generator,
		store:     opts.Store,
		logger:    opts.Logger,
		poll:      poll,
		wake:      make(chan struct{}, 1),
	}
}

// Run drives the worker until ctx is cancelled. Call it from exactly one
// goroutine.
func (p *Processor) Run(ctx context.Context) error {
	if requeued, err := p.jobs.RequeueRunning(ctx); err != nil {
		p.logger.Error().Err(err).Msg("queue: requeue stale running jobs failed")
	} else if requeued > 0 {
		p.logger.Info().Int("jobs", requeued).Msg("queue: requeued interrupted jobs")
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if p.halted() {
			if !p.await(ctx, 0) {
				return ctx.Err()
			}
			continue
		}

		job, err := p.jobs.NextPending(ctx)
		if err != nil {
			p.logger.Error().Err(err).Msg("queue: fetch next pending job failed")
			if !p.await(ctx, p.poll) {
				return ctx.Err()
			}
			continue
		}
		if job == nil {
			p.finishBatch()
			if !p.await(ctx, p.poll) {
				return ctx.Err()
			}
			continue
		}

		p.startJob(ctx, job)
		p.runJob(ctx, job)
	}
}

// Kick nudges an idle or freshly-resumed worker. Safe from any goroutine;
// never blocks.
func (p *Processor) Kick() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Pause halts the queue before the next image boundary. The in-flight
// generation call, if any, is not interrupted; the current job stays running
// with partial progress.
func (p *Processor) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped != "" {
		return
	}
	p.stopped = domain.StopPaused
	p.processing = false
}

// Resume clears a pause and lets the worker continue from the current job's
// persisted completed count.
func (p *Processor) Resume() {
	p.mu.Lock()
	if p.stopped != domain.StopPaused {
		p.mu.Unlock()
		return
	}
	p.stopped = ""
	p.mu.Unlock()
	p.Kick()
}

// DismissError clears an error stop. The failed job stays failed; pending
// jobs resume.
func (p *Processor) DismissError() {
	p.mu.Lock()
	if p.stopped != domain.StopError {
		p.mu.Unlock()
		return
	}
	p.stopped = ""
	p.stopMessage = ""
	p.mu.Unlock()
	p.Kick()
}

// Snapshot returns the queue state and the active batch timing, nil when no
// batch is running.
func (p *Processor) Snapshot() (domain.QueueStatus, *domain.BatchTiming) {
	p.mu.Lock()
	defer p.mu.Unlock()
	status := domain.QueueStatus{
		Processing:   p.processing,
		QueueStopped: p.stopped,
		CurrentJobID: p.currentJobID,
		StopMessage:  p.stopMessage,
	}
	return status, p.timing.snapshot()
}

func (p *Processor) halted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopped != ""
}

// await blocks until a kick, the poll timeout (when non-zero), or ctx
// cancellation. Returns false when ctx ended.
func (p *Processor) await(ctx context.Context, poll time.Duration) bool {
	if poll <= 0 {
		select {
		case <-ctx.Done():
			return false
		case <-p.wake:
			return true
		}
	}
	timer := time.NewTimer(poll)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-p.wake:
		return true
	case <-timer.C:
		return true
	}
}

func (p *Processor) startJob(ctx context.Context, job *domain.Job) {
	if err := p.jobs.MarkRunning(ctx, job.ID); err != nil {
		p.logger.Error().Err(err).Str("job_id", job.ID).Msg("queue: mark running failed")
	}
	job.Status = domain.JobStatusRunning

	p.mu.Lock()
	defer p.mu.Unlock()
	p.processing = true
	p.currentJobID = job.ID
	if !p.timing.active() {
		p.timing.begin(time.Now())
	}
	p.timing.addJob(job.TotalCount - job.CompletedCount)
	p.logger.Info().
		Str("job_id", job.ID).
		Str("project_id", job.ProjectID).
		Int("total", job.TotalCount).
		Int("completed", job.CompletedCount).
		Msg("queue: job started")
}

func (p *Processor) runJob(ctx context.Context, job *domain.Job) {
	gctx, err := p.sources.GenerationContext(ctx, job.ProjectID, job.ProjectSceneID)
	if err != nil {
		p.failJob(ctx, job.ID, fmt.Errorf("load prompt sources: %w", err))
		return
	}
	composed := prompt.Compose(gctx)

	for idx := job.CompletedCount; idx < job.TotalCount; idx++ {
		proceed, err := p.checkpoint(ctx, job.ID)
		if err != nil {
			p.failJob(ctx, job.ID, err)
			return
		}
		if !proceed {
			p.dropJob(job.TotalCount - idx)
			return
		}

		start := time.Now()
		asset, err := p.generator.Generate(ctx, image.Request{
			Composed:   composed,
			JobID:      job.ID,
			ImageIndex: idx,
			Seed:       rand.Int64(),
		})
		if err != nil {
			if ctx.Err() != nil {
				p.clearCurrent()
				return
			}
			p.failJob(ctx, job.ID, err)
			return
		}

		stored, err := p.store.StoreImage(ctx, imageKey(job.ID, idx, asset.MIME), asset.Data)
		if err != nil {
			p.failJob(ctx, job.ID, fmt.Errorf("persist image: %w", err))
			return
		}
		record := &domain.GeneratedImage{
			ID:            uuid.NewString(),
			JobID:         job.ID,
			FilePath:      stored.FilePath,
			ThumbnailPath: stored.ThumbnailPath,
			MIME:          asset.MIME,
			Width:         pickDimension(stored.Width, asset.Width),
			Height:        pickDimension(stored.Height, asset.Height),
			ImageIndex:    idx,
		}
		if err := p.images.Save(ctx, record); err != nil {
			p.failJob(ctx, job.ID, fmt.Errorf("record image: %w", err))
			return
		}
		if err := p.jobs.IncrementCompleted(ctx, job.ID); err != nil {
			// A cancel issued while the call was in flight flips the job out
			// of running, so the guarded increment touches no rows. That is a
			// cancellation, not a failure.
			if current, lookupErr := p.jobs.GetByID(ctx, job.ID); lookupErr == nil && current.Status == domain.JobStatusCancelled {
				p.logger.Info().Str("job_id", job.ID).Msg("queue: job cancelled, stopping")
				p.dropJob(job.TotalCount - idx)
				return
			}
			p.failJob(ctx, job.ID, fmt.Errorf("advance progress: %w", err))
			return
		}

		p.observe(time.Since(start))
		p.logger.Debug().
			Str("job_id", job.ID).
			Int("image_index", idx).
			Dur("took", time.Since(start)).
			Msg("queue: image completed")

		if !p.sleepBetween(ctx) {
			p.clearCurrent()
			return
		}
	}

	if err := p.jobs.MarkCompleted(ctx, job.ID); err != nil {
		p.logger.Error().Err(err).Str("job_id", job.ID).Msg("queue: mark completed failed")
	}
	p.logger.Info().Str("job_id", job.ID).Msg("queue: job completed")
	p.clearCurrent()
}

// checkpoint is the only place pause and cancellation take effect. It blocks
// while paused, then re-reads the job so a cancellation issued during the
// pause or the previous image call is honored before any new work starts.
func (p *Processor) checkpoint(ctx context.Context, jobID string) (bool, error) {
	for {
		if ctx.Err() != nil {
			return false, nil
		}

		p.mu.Lock()
		if p.stopped == domain.StopPaused {
			p.mu.Unlock()
			p.logger.Info().Str("job_id", jobID).Msg("queue: paused")
			if !p.await(ctx, 0) {
				return false, nil
			}
			continue
		}
		p.mu.Unlock()

		job, err := p.jobs.GetByID(ctx, jobID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return false, nil
			}
			return false, fmt.Errorf("reload job: %w", err)
		}
		if job.Status == domain.JobStatusCancelled {
			p.logger.Info().Str("job_id", jobID).Msg("queue: job cancelled, stopping")
			return false, nil
		}

		p.mu.Lock()
		p.processing = true
		p.mu.Unlock()
		return true, nil
	}
}

// sleepBetween applies the configured inter-request delay. Returns false when
// ctx ended during the sleep. Enqueue kicks must not shorten the delay; pause
// and cancellation are picked up at the next checkpoint.
func (p *Processor) sleepBetween(ctx context.Context) bool {
	delay, err := p.settings.RequestDelay(ctx)
	if err != nil {
		p.logger.Warn().Err(err).Msg("queue: read request delay failed, using none")
		return ctx.Err() == nil
	}
	if delay <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (p *Processor) failJob(ctx context.Context, jobID string, cause error) {
	message := cause.Error()
	if err := p.jobs.MarkFailed(ctx, jobID, message); err != nil {
		p.logger.Error().Err(err).Str("job_id", jobID).Msg("queue: mark failed failed")
	}
	p.mu.Lock()
	p.stopped = domain.StopError
	p.stopMessage = message
	p.processing = false
	p.currentJobID = ""
	p.timing.reset()
	p.mu.Unlock()
	p.logger.Error().Str("job_id", jobID).Str("reason", message).Msg("queue: stopped on error")
}

// dropJob clears the current-job state after a cancellation, narrowing the
// batch window by the images that will never run. Other jobs keep the batch
// alive.
func (p *Processor) dropJob(remaining int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.currentJobID = ""
	p.processing = false
	p.timing.removeJob(remaining)
}

func (p *Processor) clearCurrent() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.currentJobID = ""
	p.processing = false
}

func (p *Processor) finishBatch() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.timing.reset()
	p.currentJobID = ""
	p.processing = false
}

func (p *Processor) observe(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.timing.observe(d)
}

func pickDimension(stored, reported int) int {
	if stored > 0 {
		return stored
	}
	return reported
}

func imageKey(jobID string, idx int, mime string) string {
	ext := ".png"
	switch mime {
	case "image/jpeg", "image/jpg":
		ext = ".jpg"
	case "image/webp":
		ext = ".webp"
	}
	return fmt.Sprintf("generated/%s/image-%03d%s", jobID, idx+1, ext)
}
