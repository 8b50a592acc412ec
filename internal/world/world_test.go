package world

import (
	"testing"

	"github.com/schelling-sim/cs-engine/internal/rng"
)

func TestNewBitWorldAllEmpty(t *testing.T) {
	w := NewBitWorld(10)
	if w.EmptyCount() != 10 || w.OccupiedCount() != 0 {
		t.Fatalf("expected all-empty world, got empty=%d occupied=%d", w.EmptyCount(), w.OccupiedCount())
	}
	for v := uint32(0); v < 10; v++ {
		if w.IsOccupied(v) {
			t.Fatalf("vertex %d should not be occupied", v)
		}
	}
}

func TestSetOccupiedThenEmpty(t *testing.T) {
	w := NewBitWorld(5)
	w.SetOccupied(2, 1)
	if !w.IsOccupied(2) {
		t.Fatalf("vertex 2 should be occupied")
	}
	if w.TypeOf(2) != 1 {
		t.Fatalf("expected type 1, got %d", w.TypeOf(2))
	}
	if w.EmptyCount() != 4 || w.OccupiedCount() != 1 {
		t.Fatalf("unexpected counts after occupy: empty=%d occupied=%d", w.EmptyCount(), w.OccupiedCount())
	}

	w.SetEmpty(2)
	if w.IsOccupied(2) {
		t.Fatalf("vertex 2 should be empty again")
	}
	if w.EmptyCount() != 5 || w.OccupiedCount() != 0 {
		t.Fatalf("unexpected counts after vacate: empty=%d occupied=%d", w.EmptyCount(), w.OccupiedCount())
	}
}

func TestIdempotentMutators(t *testing.T) {
	w := NewBitWorld(4)
	w.SetOccupied(0, 0)
	w.SetOccupied(0, 0) // idempotent
	if w.OccupiedCount() != 1 {
		t.Fatalf("double SetOccupied should not duplicate list membership, got count=%d", w.OccupiedCount())
	}
	w.SetEmpty(1)
	w.SetEmpty(1) // idempotent, vertex 1 never occupied
	if w.EmptyCount() != 3 {
		t.Fatalf("double SetEmpty should not duplicate list membership, got count=%d", w.EmptyCount())
	}
}

func TestInvariantsUnderRandomOps(t *testing.T) {
	const n = 50
	w := NewBitWorld(n)
	r := rng.NewXoshiro256ss(7)

	for step := 0; step < 2000; step++ {
		v := r.UniformIndex(n)
		if w.IsOccupied(v) {
			w.SetEmpty(v)
		} else {
			w.SetOccupied(v, r.UniformIndex(2))
		}
		checkInvariants(t, w)
	}
}

func checkInvariants(t *testing.T, w *BitWorld) {
	t.Helper()
	if uint32(len(w.occupied)+len(w.empties)) != w.n {
		t.Fatalf("I-sz violated: |occupied|+|empties| = %d, want %d", len(w.occupied)+len(w.empties), w.n)
	}
	for v := uint32(0); v < w.n; v++ {
		occ := w.IsOccupied(v)
		if occ != (w.posInOccupied[v] != None) {
			t.Fatalf("I-occ violated at %d", v)
		}
		if !occ != (w.posInEmpties[v] != None) {
			t.Fatalf("I-emp violated at %d", v)
		}
	}
	for v, pos := range w.posInOccupied {
		if pos != None && w.occupied[pos] != uint32(v) {
			t.Fatalf("I-consistency violated for occupied vertex %d at pos %d", v, pos)
		}
	}
	for v, pos := range w.posInEmpties {
		if pos != None && w.empties[pos] != uint32(v) {
			t.Fatalf("I-consistency violated for empty vertex %d at pos %d", v, pos)
		}
	}
}

func TestRandomFillDeterministic(t *testing.T) {
	n := uint32(30)
	w1 := NewBitWorld(n)
	w1.RandomFill(15, 2, rng.NewXoshiro256ss(99))

	w2 := NewBitWorld(n)
	w2.RandomFill(15, 2, rng.NewXoshiro256ss(99))

	if w1.OccupiedCount() != 15 || w2.OccupiedCount() != 15 {
		t.Fatalf("expected 15 agents placed, got %d and %d", w1.OccupiedCount(), w2.OccupiedCount())
	}
	for v := uint32(0); v < n; v++ {
		if w1.IsOccupied(v) != w2.IsOccupied(v) {
			t.Fatalf("same seed produced divergent occupancy at vertex %d", v)
		}
		if w1.IsOccupied(v) && w1.TypeOf(v) != w2.TypeOf(v) {
			t.Fatalf("same seed produced divergent type at vertex %d", v)
		}
	}
}

func TestRandomFillClampsToN(t *testing.T) {
	w := NewBitWorld(5)
	w.RandomFill(100, 2, rng.NewXoshiro256ss(1))
	if w.OccupiedCount() != 5 {
		t.Fatalf("expected fill to clamp at N=5, got %d", w.OccupiedCount())
	}
}
