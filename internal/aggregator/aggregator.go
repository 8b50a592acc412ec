// Package aggregator implements the lock-free fixed-point accumulation of
// per-run unhappy-fraction samples at each checkpoint across worker
// threads (RUNS weighting mode only: each run contributes one sample per
// checkpoint; there is no AGENTS weighting mode).
package aggregator

import (
	"math"
	"sync/atomic"
)

// Scale is the fixed-point scale factor applied before rounding a [0,1]
// fraction to a u64.
const Scale = 1_000_000_000

// Aggregator holds three parallel arrays of atomic u64 counters, one slot
// per checkpoint. Writers use lock-free fetch-add; readers take per-slot
// snapshots. Relaxed ordering is sufficient: the Stopper tolerates
// transient cross-slot inconsistency.
type Aggregator struct {
	sumScaled   []atomic.Uint64
	sumSqScaled []atomic.Uint64
	count       []atomic.Uint64
}

// New allocates an Aggregator with one slot per checkpoint.
func New(numCheckpoints int) *Aggregator {
	return &Aggregator{
		sumScaled:   make([]atomic.Uint64, numCheckpoints),
		sumSqScaled: make([]atomic.Uint64, numCheckpoints),
		count:       make([]atomic.Uint64, numCheckpoints),
	}
}

// Len returns the number of checkpoint slots.
func (a *Aggregator) Len() int { return len(a.count) }

// Record contributes one run's sample (U unhappy agents out of n) at
// checkpoint k.
func (a *Aggregator) Record(k int, u, n uint32) {
	if k < 0 || k >= len(a.count) {
		return
	}
	var y float64
	if n != 0 {
		y = float64(u) / float64(n)
		if y < 0 {
			y = 0
		} else if y > 1 {
			y = 1
		}
	}
	val := uint64(math.Round(y * Scale))
	valSq := uint64(math.Round(y * y * Scale * Scale))
	a.sumScaled[k].Add(val)
	a.sumSqScaled[k].Add(valSq)
	a.count[k].Add(1)
}

// PadZerosFrom records a zero-valued contribution (count only, no sum
// change) at every checkpoint from kStart onward — used once a run has
// converged, so all remaining checkpoints are known to read U=0.
func (a *Aggregator) PadZerosFrom(kStart int) {
	if kStart < 0 {
		kStart = 0
	}
	for k := kStart; k < len(a.count); k++ {
		a.count[k].Add(1)
	}
}

// Mean returns sum_scaled[k] / count[k] / Scale, or NaN if no run has
// contributed to slot k yet.
func (a *Aggregator) Mean(k int) float64 {
	c := a.count[k].Load()
	if c == 0 {
		return math.NaN()
	}
	return float64(a.sumScaled[k].Load()) / float64(c) / Scale
}

// Count returns the number of runs that have contributed a sample at
// checkpoint k.
func (a *Aggregator) Count(k int) uint64 {
	return a.count[k].Load()
}

// Variance returns the sample variance of U/n at checkpoint k, derived
// from the scaled sum and sum-of-squares; NaN if count is zero.
func (a *Aggregator) Variance(k int) float64 {
	c := a.count[k].Load()
	if c == 0 {
		return math.NaN()
	}
	mean := float64(a.sumScaled[k].Load()) / float64(c) / Scale
	meanSq := float64(a.sumSqScaled[k].Load()) / float64(c) / (Scale * Scale)
	v := meanSq - mean*mean
	if v < 0 {
		v = 0
	}
	return v
}
