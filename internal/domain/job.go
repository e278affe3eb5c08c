package domain

import "time"

// JobStatus enumerates the job lifecycle states.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

// Job is one unit of generation work: N images for a project, or for one
// specific scene of a project when ProjectSceneID is set.
type Job struct {
	ID             string    `json:"id"`
	ProjectID      string    `json:"project_id"`
	ProjectSceneID *string   `json:"project_scene_id"`
	Status         JobStatus `json:"status"`
	TotalCount     int       `json:"total_count"`
	CompletedCount int       `json:"completed_count"`
	ErrorMessage   *string   `json:"error_message"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// StopReason explains why the queue is halted.
type StopReason string

const (
	StopPaused StopReason = "paused"
	StopError  StopReason = "error"
)

// QueueStatus is a point-in-time snapshot of the worker state. Processing and
// QueueStopped are mutually exclusive: a halted worker is not processing.
type QueueStatus struct {
	Processing   bool       `json:"processing"`
	QueueStopped StopReason `json:"queue_stopped,omitempty"`
	CurrentJobID string     `json:"current_job_id,omitempty"`
	StopMessage  string     `json:"stop_message,omitempty"`
}

// BatchTiming tracks progress of the batch the worker is currently draining.
// AvgImageDurationMs stays nil until the first image of the batch finishes so
// callers can distinguish "no estimate yet" from a zero estimate.
type BatchTiming struct {
	StartedAt          time.Time `json:"started_at"`
	TotalImages        int       `json:"total_images"`
	CompletedImages    int       `json:"completed_images"`
	AvgImageDurationMs *int64    `json:"avg_image_duration_ms"`
	ETAMs              *int64    `json:"eta_ms"`
}

// GeneratedImage is a persisted generation result attributed to a job.
type GeneratedImage struct {
	ID            string    `json:"id"`
	JobID         string    `json:"job_id"`
	FilePath      string    `json:"file_path"`
	ThumbnailPath string    `json:"thumbnail_path"`
	MIME          string    `json:"mime"`
	Width         int       `json:"width"`
	Height        int       `json:"height"`
	ImageIndex    int       `json:"image_index"`
	CreatedAt     time.Time `json:"created_at"`
}
