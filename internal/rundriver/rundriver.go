// Package rundriver drives a single segmented simulation run: it fills a
// world, binds an unhappy set, and advances the stepper between
// checkpoints, recording each checkpoint's sample into the shared
// Aggregator.
package rundriver

import (
	"math"

	"github.com/schelling-sim/cs-engine/internal/aggregator"
	"github.com/schelling-sim/cs-engine/internal/geometry"
	"github.com/schelling-sim/cs-engine/internal/rng"
	"github.com/schelling-sim/cs-engine/internal/stepper"
	"github.com/schelling-sim/cs-engine/internal/unhappy"
	"github.com/schelling-sim/cs-engine/internal/world"
)

// MoveRule selects which Stepper implementation a run uses.
type MoveRule int

const (
	// MoveAny is the core "Any" move rule: relocate unconditionally.
	MoveAny MoveRule = iota
	// MoveFirstAccepting is the supplemental move rule: sample k
	// candidates and move to the first that satisfies the threshold.
	MoveFirstAccepting
)

// Result summarizes one completed run, including the average
// same-type-fraction diagnostic (returned to the caller only; it is not
// fed into the Aggregator or Stopper, and the CLI does not print it).
type Result struct {
	Agents               uint32
	InitUnhappy          uint32
	FinalUnhappy         uint32
	Moves                uint64
	Converged            bool
	FinalAvgSameFraction float64
}

// RunOnceSegmented runs one simulation of geom from a fresh random fill
// through the given checkpoint schedule, recording a (U, n) sample into
// agg at every checkpoint index. Once the run converges (the unhappy set
// empties), all remaining checkpoints are recorded as zero via
// PadZerosFrom — a run's contribution is monotone-nondecreasing in index.
func RunOnceSegmented(
	geom geometry.Geometry,
	density float64,
	nTypes uint32,
	seed uint64,
	moveRule MoveRule,
	threshold unhappy.Threshold,
	kCandidates int,
	checkpoints []uint64,
	agg *aggregator.Aggregator,
) Result {
	n := geom.N()
	nAgents := uint32(math.Round(density * float64(n)))
	if nAgents > n {
		nAgents = n
	}

	w := world.NewBitWorld(n)
	r := rng.NewXoshiro256ss(seed)
	w.RandomFill(nAgents, nTypes, r)

	u := unhappy.New(geom, w, threshold)
	u.Bind()

	u0 := u.Count()
	result := Result{Agents: nAgents, InitUnhappy: u0}

	var st stepper.Stepper
	switch moveRule {
	case MoveFirstAccepting:
		st = stepper.NewFirstAcceptingStepper(geom, w, u, threshold, kCandidates)
	default:
		st = stepper.NewAnyStepper(geom, w, u)
	}

	if agg != nil {
		agg.Record(0, u0, nAgents)
	}

	totalMoves := uint64(0)
	lastU := u0
	converged := u0 == 0

	if converged && agg != nil {
		agg.PadZerosFrom(1)
	}

	for k := 1; k < len(checkpoints) && !converged; k++ {
		target := checkpoints[k]
		for totalMoves < target {
			if !st.Step(r) {
				// No move made (converged, no empties, or under
				// first-accepting no sampled candidate accepted): end
				// this segment early.
				break
			}
			totalMoves++
		}
		lastU = u.Count()
		if agg != nil {
			agg.Record(k, lastU, nAgents)
		}
		if lastU == 0 {
			converged = true
			if agg != nil {
				agg.PadZerosFrom(k + 1)
			}
			break
		}
	}

	result.Moves = totalMoves
	result.Converged = converged
	result.FinalUnhappy = lastU
	result.FinalAvgSameFraction = avgSameFraction(geom, w)
	return result
}

// avgSameFraction computes the diagnostic average same-type-neighbor
// fraction across all occupied vertices; it never participates in the
// Aggregator or Stopper.
func avgSameFraction(geom geometry.Geometry, w *world.BitWorld) float64 {
	var sum float64
	var count float64
	w.ForEachAgent(func(v uint32, t uint32) {
		var same, other uint32
		geom.ForEachNeighbor(v, func(u uint32) {
			if !w.IsOccupied(u) {
				return
			}
			if w.TypeOf(u) == t {
				same++
			} else {
				other++
			}
		})
		denom := same + other
		frac := 1.0
		if denom != 0 {
			frac = float64(same) / float64(denom)
		}
		sum += frac
		count++
	})
	if count == 0 {
		return 0
	}
	return sum / count
}
