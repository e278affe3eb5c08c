package domain

import (
	"context"
	"time"
)

// JobRepository defines persistence for generation jobs. All mutations are
// single atomic statements so concurrent readers never observe a job with
// completed_count > total_count or a skipped status transition.
type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, jobID string) (*Job, error)

	// NextPending returns the oldest pending job, or nil when the queue is
	// drained.
	NextPending(ctx context.Context) (*Job, error)

	MarkRunning(ctx context.Context, jobID string) error
	IncrementCompleted(ctx context.Context, jobID string) error
	MarkCompleted(ctx context.Context, jobID string) error
	MarkFailed(ctx context.Context, jobID string, message string) error

	// MarkCancelled cancels every listed job still in pending or running.
	// Jobs already terminal are left untouched; cancelling them again is a
	// no-op, not an error.
	MarkCancelled(ctx context.Context, jobIDs []string) error

	// RequeueRunning flips stale running jobs back to pending. Invoked once
	// at worker startup so a job interrupted by a process restart resumes
	// from its persisted completed_count.
	RequeueRunning(ctx context.Context) (int, error)

	ListActive(ctx context.Context, projectID string) ([]Job, error)
	ListByProject(ctx context.Context, projectID string) ([]Job, error)
	CountPending(ctx context.Context) (int, error)
}

// PromptSourceRepository loads the read-only composition inputs for a job.
type PromptSourceRepository interface {
	GenerationContext(ctx context.Context, projectID string, sceneID *string) (*GenerationContext, error)
	ListScenes(ctx context.Context, projectID string, sceneIDs []string) ([]Scene, error)
}

// ImageRepository persists generated image records.
type ImageRepository interface {
	Save(ctx context.Context, img *GeneratedImage) error
	ListByJob(ctx context.Context, jobID string) ([]GeneratedImage, error)
}

// SettingsProvider supplies the operator-configurable generation settings.
// RequestDelay is the inter-request pause between images; APIKey absence is a
// precondition failure surfaced before any job is created.
type SettingsProvider interface {
	APIKey(ctx context.Context) (string, error)
	RequestDelay(ctx context.Context) (time.Duration, error)
}
