package parallel

import (
	"context"
	"testing"
	"time"
)

func TestProgressTracker(t *testing.T) {
	var lastCompleted, lastTotal int64

	tracker := NewProgressTracker(100, func(completed, total int64) {
		lastCompleted = completed
		lastTotal = total
	}, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	tracker.Start(ctx)

	for i := 0; i < 50; i++ {
		tracker.Increment()
	}

	time.Sleep(20 * time.Millisecond)

	if lastCompleted != 50 {
		t.Errorf("Expected lastCompleted=50, got %d", lastCompleted)
	}
	if lastTotal != 100 {
		t.Errorf("Expected lastTotal=100, got %d", lastTotal)
	}

	tracker.Stop()
	cancel()
}

func TestProgressTrackerAddAndCompleted(t *testing.T) {
	tracker := NewProgressTracker(0, nil, time.Hour)
	tracker.Add(7)
	if tracker.Completed() != 7 {
		t.Fatalf("expected Completed()==7, got %d", tracker.Completed())
	}
}

func TestProgressTrackerStopIsIdempotent(t *testing.T) {
	tracker := NewProgressTracker(0, nil, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tracker.Start(ctx)
	tracker.Stop()
	tracker.Stop() // must not panic on double-close
}
