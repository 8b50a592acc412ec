// Package unhappy tracks, incrementally, the set of occupied vertices that
// are "unhappy" under a rational same-type threshold, bound to a geometry
// and a world by reference.
package unhappy

import (
	"github.com/schelling-sim/cs-engine/internal/debugcheck"
	"github.com/schelling-sim/cs-engine/internal/geometry"
	"github.com/schelling-sim/cs-engine/internal/rng"
	"github.com/schelling-sim/cs-engine/internal/world"
	"github.com/schelling-sim/cs-engine/pkg/collections"
)

// None is the sentinel for "not present in list".
const None = ^uint32(0)

// Threshold is a rational p/q fraction in [0,1] compared via cross
// multiplication to avoid floating-point drift: a vertex with `same` same-
// type occupied neighbors out of `degOcc` occupied neighbors is happy iff
// same >= ceil(p/q * degOcc), i.e. iff same*q >= p*degOcc.
type Threshold struct {
	P, Q uint32
}

// NewThreshold builds a rational threshold from a float fraction in [0,1]
// by scaling to denominator 1000.
func NewThreshold(frac float64) Threshold {
	const q = 1000
	p := uint32(frac*q + 0.5)
	return Threshold{P: p, Q: q}
}

// Satisfied reports whether a vertex with same/other occupied-neighbor
// counts meets the threshold (i.e. is happy). By convention an isolated
// vertex (no occupied neighbors) is happy.
func (th Threshold) Satisfied(same, other uint32) bool {
	denom := same + other
	if denom == 0 {
		return true
	}
	return uint64(same)*uint64(th.Q) >= uint64(th.P)*uint64(denom)
}

// Set maintains the incremental unhappy-vertex membership for a geometry +
// world pair.
type Set struct {
	geom geometry.Geometry
	w    *world.BitWorld
	th   Threshold

	unhappy   *collections.Bitset
	list      []uint32
	posInList []uint32
}

// New binds a new UnhappySet to a geometry and world. Call Bind after
// populating the world to establish initial membership.
func New(geom geometry.Geometry, w *world.BitWorld, th Threshold) *Set {
	return &Set{geom: geom, w: w, th: th}
}

// Bind (re)computes the initial unhappy membership by scanning every
// occupied vertex.
func (s *Set) Bind() {
	n := s.geom.N()
	s.unhappy = collections.NewBitset(int(n))
	s.posInList = make([]uint32, n)
	for v := uint32(0); v < n; v++ {
		s.posInList[v] = None
	}
	s.list = s.list[:0]

	s.w.ForEachAgent(func(v uint32, t uint32) {
		if s.IsUnhappyFromScan(v) {
			s.SetUnhappy(v, true)
		}
	})
}

// neighborCounts scans v's neighbors and tallies occupied same-type vs.
// occupied other-type neighbors.
func (s *Set) neighborCounts(v uint32, myType uint32) (same, other uint32) {
	s.geom.ForEachNeighbor(v, func(u uint32) {
		if !s.w.IsOccupied(u) {
			return
		}
		if s.w.TypeOf(u) == myType {
			same++
		} else {
			other++
		}
	})
	return
}

// IsUnhappyFromScan recomputes, by a fresh neighbor scan, whether v (which
// must be occupied) is currently unhappy.
func (s *Set) IsUnhappyFromScan(v uint32) bool {
	t := s.w.TypeOf(v)
	same, other := s.neighborCounts(v, t)
	return !s.th.Satisfied(same, other)
}

// SetUnhappy idempotently sets v's unhappy flag, maintaining list/
// posInList via swap-remove.
func (s *Set) SetUnhappy(v uint32, flag bool) {
	wasUnhappy := s.unhappy.Test(int(v))
	if flag == wasUnhappy {
		return
	}
	if flag {
		s.unhappy.Set(int(v))
	} else {
		s.unhappy.Clear(int(v))
	}
	if flag {
		s.posInList[v] = uint32(len(s.list))
		s.list = append(s.list, v)
		return
	}
	pos := s.posInList[v]
	last := uint32(len(s.list) - 1)
	moved := s.list[last]
	s.list[pos] = moved
	s.posInList[moved] = pos
	s.list = s.list[:last]
	s.posInList[v] = None
}

// checkReconciled verifies that v's unhappy flag matches what a fresh
// neighbor scan would produce. Only called under the schelling_debug
// build tag, after ReconcileNeighbors settles v.
func (s *Set) checkReconciled(v uint32) {
	debugcheck.Assert(s.Contains(v) == s.IsUnhappyFromScan(v), "unhappy reconciliation violated at v=%d", v)
}

// HasAny reports whether any vertex is currently unhappy.
func (s *Set) HasAny() bool { return len(s.list) > 0 }

// Contains reports whether v is currently flagged unhappy.
func (s *Set) Contains(v uint32) bool { return s.unhappy.Test(int(v)) }

// Count returns the number of currently unhappy vertices.
func (s *Set) Count() uint32 { return uint32(len(s.list)) }

// RandomPick draws a uniformly random unhappy vertex. Undefined if the set
// is empty.
func (s *Set) RandomPick(r *rng.Xoshiro256ss) uint32 {
	i := r.UniformIndex(uint32(len(s.list)))
	return s.list[i]
}

// ReconcileNeighbors recomputes and updates the unhappy flag for every
// currently-occupied neighbor of v (used by the stepper around a vacated
// or newly-occupied site, per the "locally rescan neighbors" contract).
func (s *Set) ReconcileNeighbors(v uint32) {
	s.geom.ForEachNeighbor(v, func(u uint32) {
		if !s.w.IsOccupied(u) {
			return
		}
		s.SetUnhappy(u, s.IsUnhappyFromScan(u))
		if debugcheck.Enabled {
			s.checkReconciled(u)
		}
	})
}
