// Package world implements the bit-packed occupancy/type state of the
// Schelling simulation: BitWorld supports O(1) random selection of an
// empty site or an occupied site via swap-remove sequences with back
// indexes, backed by two bit sequences (occupancy, type).
package world

import (
	"github.com/schelling-sim/cs-engine/internal/debugcheck"
	"github.com/schelling-sim/cs-engine/internal/rng"
	"github.com/schelling-sim/cs-engine/pkg/collections"
)

// None is the sentinel stored in the back-index arrays for a vertex that
// is not present in the corresponding sequence.
const None = ^uint32(0)

// BitWorld holds the packed occupancy/type state for N vertices along with
// the empties/occupied sequences and back indexes needed for O(1) uniform
// random selection.
type BitWorld struct {
	n uint32

	occ *collections.Bitset // occ[v] = 1 iff v hosts an agent
	typ *collections.Bitset // typ[v] meaningful only if occ[v] = 1

	empties       []uint32
	occupied      []uint32
	posInEmpties  []uint32
	posInOccupied []uint32
}

// NewBitWorld allocates a BitWorld for n vertices, all initially empty.
func NewBitWorld(n uint32) *BitWorld {
	w := &BitWorld{n: n}
	w.Resize(n)
	return w
}

// Resize reallocates the world for n vertices and resets it to fully
// empty: every vertex starts in empties, in index order.
func (w *BitWorld) Resize(n uint32) {
	w.n = n
	w.occ = collections.NewBitset(int(n))
	w.typ = collections.NewBitset(int(n))

	w.empties = make([]uint32, n)
	w.occupied = make([]uint32, 0, n)
	w.posInEmpties = make([]uint32, n)
	w.posInOccupied = make([]uint32, n)

	for v := uint32(0); v < n; v++ {
		w.empties[v] = v
		w.posInEmpties[v] = v
		w.posInOccupied[v] = None
	}
}

// N returns the number of vertices.
func (w *BitWorld) N() uint32 { return w.n }

// IsOccupied reports whether v currently hosts an agent.
func (w *BitWorld) IsOccupied(v uint32) bool {
	return w.occ.Test(int(v))
}

// TypeOf returns the type of the agent at v. Only meaningful when v is
// occupied.
func (w *BitWorld) TypeOf(v uint32) uint32 {
	if w.typ.Test(int(v)) {
		return 1
	}
	return 0
}

// EmptyCount returns the number of empty vertices.
func (w *BitWorld) EmptyCount() int { return len(w.empties) }

// OccupiedCount returns the number of occupied vertices.
func (w *BitWorld) OccupiedCount() int { return len(w.occupied) }

// SetEmpty vacates v. Idempotent: calling it on an already-empty vertex is
// a no-op for list membership.
func (w *BitWorld) SetEmpty(v uint32) {
	if w.occ.Test(int(v)) {
		w.removeFromOccupied(v)
		w.occ.Clear(int(v))
	}
	if w.posInEmpties[v] == None {
		w.posInEmpties[v] = uint32(len(w.empties))
		w.empties = append(w.empties, v)
	}
	if debugcheck.Enabled {
		w.checkInvariants(v)
	}
}

// SetOccupied places an agent of type t at v. Idempotent: calling it on an
// already-occupied vertex just updates its type and list membership.
func (w *BitWorld) SetOccupied(v uint32, t uint32) {
	if w.posInEmpties[v] != None {
		w.removeFromEmpties(v)
	}
	w.occ.Set(int(v))
	if t != 0 {
		w.typ.Set(int(v))
	} else {
		w.typ.Clear(int(v))
	}
	if w.posInOccupied[v] == None {
		w.posInOccupied[v] = uint32(len(w.occupied))
		w.occupied = append(w.occupied, v)
	}
	if debugcheck.Enabled {
		w.checkInvariants(v)
	}
}

// checkInvariants verifies I-occ, I-emp, I-sz and I-consistency for v and
// for the global sizes. Only called under the schelling_debug build tag.
func (w *BitWorld) checkInvariants(v uint32) {
	occ := w.occ.Test(int(v))
	debugcheck.Assert(occ == (w.posInOccupied[v] != None), "I-occ violated at v=%d", v)
	debugcheck.Assert(!occ == (w.posInEmpties[v] != None), "I-emp violated at v=%d", v)
	debugcheck.Assert(uint32(len(w.occupied))+uint32(len(w.empties)) == w.n, "I-sz violated: |occupied|+|empties|=%d, want %d", len(w.occupied)+len(w.empties), w.n)
	if p := w.posInOccupied[v]; p != None {
		debugcheck.Assert(w.occupied[p] == v, "I-consistency violated: occupied[%d]=%d, want %d", p, w.occupied[p], v)
	}
	if p := w.posInEmpties[v]; p != None {
		debugcheck.Assert(w.empties[p] == v, "I-consistency violated: empties[%d]=%d, want %d", p, w.empties[p], v)
	}
}

func (w *BitWorld) removeFromEmpties(v uint32) {
	pos := w.posInEmpties[v]
	last := uint32(len(w.empties) - 1)
	moved := w.empties[last]
	w.empties[pos] = moved
	w.posInEmpties[moved] = pos
	w.empties = w.empties[:last]
	w.posInEmpties[v] = None
}

func (w *BitWorld) removeFromOccupied(v uint32) {
	pos := w.posInOccupied[v]
	last := uint32(len(w.occupied) - 1)
	moved := w.occupied[last]
	w.occupied[pos] = moved
	w.posInOccupied[moved] = pos
	w.occupied = w.occupied[:last]
	w.posInOccupied[v] = None
}

// RandomEmpty draws a uniformly random vertex from empties. Undefined if
// there are no empties.
func (w *BitWorld) RandomEmpty(r *rng.Xoshiro256ss) uint32 {
	i := r.UniformIndex(uint32(len(w.empties)))
	return w.empties[i]
}

// RandomOccupied draws a uniformly random vertex from occupied. Undefined
// if there are no occupied vertices.
func (w *BitWorld) RandomOccupied(r *rng.Xoshiro256ss) uint32 {
	i := r.UniformIndex(uint32(len(w.occupied)))
	return w.occupied[i]
}

// ForEachAgent visits every occupied vertex with its type.
func (w *BitWorld) ForEachAgent(visit func(v uint32, t uint32)) {
	for _, v := range w.occupied {
		visit(v, w.TypeOf(v))
	}
}

// RandomFill places nAgents agents among the N vertices using a partial
// Fisher-Yates shuffle over [0,N): at step i it draws j uniformly from
// [i,N), swaps the candidate pool, and occupies the selected vertex. Types
// alternate between the nTypes colors (nTypes is clamped to at least 1);
// the resulting type assignment is fully determined by the seed via r.
func (w *BitWorld) RandomFill(nAgents uint32, nTypes uint32, r *rng.Xoshiro256ss) {
	if nTypes < 1 {
		nTypes = 1
	}
	if nAgents > w.n {
		nAgents = w.n
	}

	pool := make([]uint32, w.n)
	for v := uint32(0); v < w.n; v++ {
		pool[v] = v
	}

	for i := uint32(0); i < nAgents; i++ {
		span := w.n - i
		j := i + r.UniformIndex(span)
		pool[i], pool[j] = pool[j], pool[i]
		t := i % nTypes
		w.SetOccupied(pool[i], t)
	}
}
