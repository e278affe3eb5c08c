package queue

import (
	"testing"
	"time"
)

func TestBatchWindowNoEstimateBeforeFirstImage(t *testing.T) {
	var w batchWindow
	if w.snapshot() != nil {
		t.Fatalf("inactive window must snapshot nil")
	}

	w.begin(time.Now())
	w.addJob(10)
	timing := w.snapshot()
	if timing == nil {
		t.Fatalf("active window must snapshot non-nil")
	}
	if timing.AvgImageDurationMs != nil || timing.ETAMs != nil {
		t.Fatalf("avg/eta must stay nil before the first sample")
	}
	if timing.TotalImages != 10 || timing.CompletedImages != 0 {
		t.Fatalf("snapshot = %+v", timing)
	}
}

func TestBatchWindowEWMAAndETA(t *testing.T) {
	var w batchWindow
	w.begin(time.Now())
	w.addJob(4)

	w.observe(200 * time.Millisecond)
	timing := w.snapshot()
	if timing.AvgImageDurationMs == nil || *timing.AvgImageDurationMs != 200 {
		t.Fatalf("avg after first sample = %v, want 200", timing.AvgImageDurationMs)
	}
	if *timing.ETAMs != 600 {
		t.Fatalf("eta = %d, want 600", *timing.ETAMs)
	}

	w.observe(100 * time.Millisecond)
	timing = w.snapshot()
	// 0.3*100 + 0.7*200 = 170
	if *timing.AvgImageDurationMs != 170 {
		t.Fatalf("avg after second sample = %d, want 170", *timing.AvgImageDurationMs)
	}
	if timing.CompletedImages != 2 {
		t.Fatalf("completed = %d", timing.CompletedImages)
	}
}

func TestBatchWindowConvergesToSteadyRate(t *testing.T) {
	var w batchWindow
	w.begin(time.Now())
	w.addJob(20)
	for i := 0; i < 20; i++ {
		w.observe(200 * time.Millisecond)
	}
	timing := w.snapshot()
	if avg := *timing.AvgImageDurationMs; avg < 195 || avg > 205 {
		t.Fatalf("avg = %d, want ≈200", avg)
	}
	if *timing.ETAMs != 0 {
		t.Fatalf("eta = %d, want 0 when batch is done", *timing.ETAMs)
	}
}

func TestBatchWindowRemoveJobClamps(t *testing.T) {
	var w batchWindow
	w.begin(time.Now())
	w.addJob(5)
	w.observe(50 * time.Millisecond)
	w.observe(50 * time.Millisecond)

	w.removeJob(4)
	timing := w.snapshot()
	if timing.TotalImages != 2 {
		t.Fatalf("total = %d, want clamp at completed count", timing.TotalImages)
	}
	if *timing.ETAMs != 0 {
		t.Fatalf("eta = %d, want 0", *timing.ETAMs)
	}
}

func TestBatchWindowReset(t *testing.T) {
	var w batchWindow
	w.begin(time.Now())
	w.addJob(3)
	w.observe(10 * time.Millisecond)
	w.reset()
	if w.snapshot() != nil {
		t.Fatalf("reset window must snapshot nil")
	}
}
