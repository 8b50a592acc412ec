package aggregator

import (
	"math"
	"sync"
	"testing"
)

func TestRecordAndMean(t *testing.T) {
	a := New(3)
	a.Record(0, 5, 10) // y=0.5
	a.Record(0, 5, 10) // y=0.5

	mean := a.Mean(0)
	if math.Abs(mean-0.5) > 1e-6 {
		t.Fatalf("expected mean=0.5, got %v", mean)
	}
	if a.Count(0) != 2 {
		t.Fatalf("expected count=2, got %d", a.Count(0))
	}
}

func TestMeanNaNWhenNoSamples(t *testing.T) {
	a := New(2)
	if !math.IsNaN(a.Mean(1)) {
		t.Fatalf("expected NaN for an untouched slot, got %v", a.Mean(1))
	}
}

func TestPadZerosFromAddsCountOnly(t *testing.T) {
	a := New(4)
	a.Record(0, 3, 10)
	a.PadZerosFrom(1)

	if a.Count(1) != 1 || a.Count(2) != 1 || a.Count(3) != 1 {
		t.Fatalf("expected pad_zeros_from to bump count at every slot >= kStart")
	}
	if mean := a.Mean(1); mean != 0 {
		t.Fatalf("expected mean=0 for a zero-padded slot, got %v", mean)
	}
}

func TestRoundTripFixedPoint(t *testing.T) {
	a := New(1)
	ys := []float64{0, 0.25, 0.5, 0.75, 1.0}
	for _, y := range ys {
		u := uint32(math.Round(y * 1000))
		a.Record(0, u, 1000)
		got := a.Mean(0)
		if math.Abs(got-y) > 1.0/Scale+1e-9 {
			t.Fatalf("fixed-point round trip for y=%v recovered %v", y, got)
		}
		*a = *New(1)
	}
}

func TestConcurrentRecordIsRaceFree(t *testing.T) {
	a := New(2)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.Record(0, 1, 2)
		}()
	}
	wg.Wait()
	if a.Count(0) != 100 {
		t.Fatalf("expected 100 concurrent contributions recorded, got %d", a.Count(0))
	}
}
