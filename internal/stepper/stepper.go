// Package stepper implements the move rules that advance a single
// relocation event: "Any" (pick a random unhappy agent, move it to a
// random empty site unconditionally) and "FirstAccepting" (sample
// candidate empty sites until one satisfies the threshold).
package stepper

import (
	"github.com/schelling-sim/cs-engine/internal/geometry"
	"github.com/schelling-sim/cs-engine/internal/rng"
	"github.com/schelling-sim/cs-engine/internal/unhappy"
	"github.com/schelling-sim/cs-engine/internal/world"
	"github.com/schelling-sim/cs-engine/pkg/collections"
)

// Stepper advances one relocation event and reports whether a move
// actually happened.
type Stepper interface {
	Step(r *rng.Xoshiro256ss) bool
}

// AnyStepper implements the "Any" move rule: pick a random unhappy agent
// and relocate it to a uniformly random empty vertex, unconditionally.
type AnyStepper struct {
	geom geometry.Geometry
	w    *world.BitWorld
	u    *unhappy.Set
}

// NewAnyStepper builds an AnyStepper bound to geom/w/u by reference. The
// three must already be mutually consistent (w populated, u bound).
func NewAnyStepper(geom geometry.Geometry, w *world.BitWorld, u *unhappy.Set) *AnyStepper {
	return &AnyStepper{geom: geom, w: w, u: u}
}

// Step performs steps 1-9 of the "Any" move rule.
func (s *AnyStepper) Step(r *rng.Xoshiro256ss) bool {
	if !s.u.HasAny() {
		return false
	}
	if s.w.EmptyCount() == 0 {
		return false
	}

	from := s.u.RandomPick(r)
	if !s.w.IsOccupied(from) {
		return false
	}

	t := s.w.TypeOf(from)
	to := s.w.RandomEmpty(r)
	if to == from {
		return false
	}

	s.w.SetEmpty(from)
	s.w.SetOccupied(to, t)

	s.u.ReconcileNeighbors(from)
	s.u.SetUnhappy(from, false)

	s.u.ReconcileNeighbors(to)
	s.u.SetUnhappy(to, s.u.IsUnhappyFromScan(to))

	return true
}

// scratchPool is shared across FirstAcceptingStepper instances to avoid
// an allocation on every candidate scan.
var scratchPool = collections.NewSlicePool[uint32](16)

// FirstAcceptingStepper implements the supplemental "FirstAccepting" move
// rule: sample up to k candidate empty sites and move the picked unhappy
// agent to the first candidate whose post-move neighborhood satisfies the
// threshold; if none qualify, the agent stays put.
type FirstAcceptingStepper struct {
	geom geometry.Geometry
	w    *world.BitWorld
	u    *unhappy.Set
	th   unhappy.Threshold
	k    int
}

// NewFirstAcceptingStepper builds a FirstAcceptingStepper that samples up
// to k candidate empty sites per move.
func NewFirstAcceptingStepper(geom geometry.Geometry, w *world.BitWorld, u *unhappy.Set, th unhappy.Threshold, k int) *FirstAcceptingStepper {
	if k < 1 {
		k = 1
	}
	return &FirstAcceptingStepper{geom: geom, w: w, u: u, th: th, k: k}
}

// Step samples candidates and moves to the first accepting one, or leaves
// the agent in place if none accept within k tries.
func (s *FirstAcceptingStepper) Step(r *rng.Xoshiro256ss) bool {
	if !s.u.HasAny() {
		return false
	}
	if s.w.EmptyCount() == 0 {
		return false
	}

	from := s.u.RandomPick(r)
	if !s.w.IsOccupied(from) {
		return false
	}
	t := s.w.TypeOf(from)

	candidates := scratchPool.Get()
	defer scratchPool.Put(candidates)

	for i := 0; i < s.k; i++ {
		*candidates = append(*candidates, s.w.RandomEmpty(r))
	}

	target := world.None
	for _, to := range *candidates {
		if to == from {
			continue
		}
		if s.candidateAccepts(from, to, t) {
			target = to
			break
		}
	}
	if target == world.None {
		return false
	}

	s.w.SetEmpty(from)
	s.w.SetOccupied(target, t)

	s.u.ReconcileNeighbors(from)
	s.u.SetUnhappy(from, false)

	s.u.ReconcileNeighbors(target)
	s.u.SetUnhappy(target, s.u.IsUnhappyFromScan(target))

	return true
}

// candidateAccepts reports whether placing type t at vertex to would
// satisfy the threshold once the agent has left from, without mutating any
// state.
func (s *FirstAcceptingStepper) candidateAccepts(from, to uint32, t uint32) bool {
	var same, other uint32
	s.geom.ForEachNeighbor(to, func(u uint32) {
		if u == from || !s.w.IsOccupied(u) {
			return
		}
		if s.w.TypeOf(u) == t {
			same++
		} else {
			other++
		}
	})
	return s.th.Satisfied(same, other)
}
