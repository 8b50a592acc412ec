package workerpool

import (
	"sync/atomic"
	"testing"

	"github.com/schelling-sim/cs-engine/internal/aggregator"
	"github.com/schelling-sim/cs-engine/internal/checkpoint"
	"github.com/schelling-sim/cs-engine/internal/geometry"
	"github.com/schelling-sim/cs-engine/internal/rundriver"
	"github.com/schelling-sim/cs-engine/internal/unhappy"
)

func TestDefaultThreadsFloorsAtOne(t *testing.T) {
	if DefaultThreads() < 1 {
		t.Fatalf("DefaultThreads must never return less than 1")
	}
}

func TestPoolRunStopsWhenStopperSatisfied(t *testing.T) {
	g := geometry.NewTorus(4, 4)
	cps := checkpoint.MakeCheckpointsLog(200, 10)
	agg := aggregator.New(len(cps))

	pool := New(Config{Threads: 4, BaseSeed: 42})
	params := Params{
		Geom:        g,
		Density:     0.5,
		NTypes:      2,
		MoveRule:    rundriver.MoveAny,
		Threshold:   unhappy.NewThreshold(0.5),
		KCandidates: 1,
		Checkpoints: cps,
		Alpha:       1e-4,
		Eps:         0.5, // loose tolerance so the pool converges quickly
		Range:       1.0,
	}

	pool.Run(params, agg, nil)

	if !pool.Stopped() {
		t.Fatalf("expected pool to have set the stop flag")
	}
	if agg.Count(0) == 0 {
		t.Fatalf("expected at least one run to have contributed a sample")
	}
}

func TestPoolRunObserverCalledPerRun(t *testing.T) {
	g := geometry.NewLollipop(4, 4)
	cps := checkpoint.MakeCheckpointsLog(50, 5)
	agg := aggregator.New(len(cps))

	pool := New(Config{Threads: 2, BaseSeed: 1})
	params := Params{
		Geom:        g,
		Density:     0.5,
		NTypes:      2,
		MoveRule:    rundriver.MoveAny,
		Threshold:   unhappy.NewThreshold(0.5),
		KCandidates: 1,
		Checkpoints: cps,
		Alpha:       1e-4,
		Eps:         0.9,
		Range:       1.0,
	}

	var calls atomic.Int64
	pool.Run(params, agg, func(runIndex uint64, result rundriver.Result) {
		calls.Add(1)
	})

	if calls.Load() == 0 {
		t.Fatalf("expected the observer to be called for at least one run")
	}
	if calls.Load() != int64(agg.Count(0)) {
		t.Fatalf("observer call count %d should equal contributed runs %d", calls.Load(), agg.Count(0))
	}
}

func TestAutoSeedProducesNonzeroValue(t *testing.T) {
	if AutoSeed() == 0 {
		t.Fatalf("AutoSeed should practically never return 0")
	}
}
