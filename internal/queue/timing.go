package queue

import (
	"time"

	"scenesmith/internal/domain"
)

// ewmaAlpha weights the most recent image duration; high enough to follow
// provider slowdowns within a few images, low enough to damp one-off spikes.
const ewmaAlpha = 0.3

// batchWindow tracks the timing of the batch currently being drained. A batch
// opens when the worker leaves idle and closes when the queue drains, errors
// out, or the active work is cancelled. Guarded by the processor mutex.
type batchWindow struct {
	startedAt       time.Time
	totalImages     int
	completedImages int
	avgMs           float64
	hasSample       bool
}

func (w *batchWindow) active() bool {
	return !w.startedAt.IsZero()
}

func (w *batchWindow) begin(now time.Time) {
	*w = batchWindow{startedAt: now}
}

func (w *batchWindow) reset() {
	*w = batchWindow{}
}

// addJob widens the window by a job's remaining image count.
func (w *batchWindow) addJob(remaining int) {
	if remaining > 0 {
		w.totalImages += remaining
	}
}

// removeJob narrows the window when a job is cancelled mid-batch so the ETA
// does not count images that will never be generated.
func (w *batchWindow) removeJob(remaining int) {
	if remaining > 0 {
		w.totalImages -= remaining
		if w.totalImages < w.completedImages {
			w.totalImages = w.completedImages
		}
	}
}

func (w *batchWindow) observe(d time.Duration) {
	ms := float64(d) / float64(time.Millisecond)
	if ms < 0 {
		ms = 0
	}
	if !w.hasSample {
		w.avgMs = ms
		w.hasSample = true
	} else {
		w.avgMs = ewmaAlpha*ms + (1-ewmaAlpha)*w.avgMs
	}
	w.completedImages++
}

// snapshot returns nil when no batch is active. AvgImageDurationMs and ETAMs
// stay nil until the first image finishes so the UI shows no estimate instead
// of a misleading zero.
func (w *batchWindow) snapshot() *domain.BatchTiming {
	if !w.active() {
		return nil
	}
	timing := &domain.BatchTiming{
		StartedAt:       w.startedAt,
		TotalImages:     w.totalImages,
		CompletedImages: w.completedImages,
	}
	if w.hasSample {
		avg := int64(w.avgMs)
		timing.AvgImageDurationMs = &avg
		eta := avg * int64(w.totalImages-w.completedImages)
		if eta < 0 {
			eta = 0
		}
		timing.ETAMs = &eta
	}
	return timing
}
