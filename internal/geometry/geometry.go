// Package geometry defines the graph shapes the Monte-Carlo engine runs on:
// a 2D torus with Moore (8-neighbor) adjacency, and a lollipop graph (a
// clique bridged to a path).
package geometry

// Geometry is an immutable, read-only graph shared by every worker. Once
// constructed it never mutates; for_each_neighbor visits each neighbor of v
// exactly once, in unspecified order, without allocating.
type Geometry interface {
	// N returns the number of vertices.
	N() uint32

	// ForEachNeighbor calls visit once per neighbor of v. Order is
	// unspecified and must not be relied upon.
	ForEachNeighbor(v uint32, visit func(u uint32))

	// Degree returns the number of neighbors of v.
	Degree(v uint32) uint32

	// MaxDegree returns the largest degree over any vertex, used to size
	// stepper scratch buffers.
	MaxDegree() uint32
}

// Torus is a W×H grid with wraparound (toroidal) Moore neighborhoods: each
// vertex has exactly 8 neighbors (unless W or H is 1 or 2, in which case
// wraparound folds some neighbors onto each other and the visit count can
// be fewer than 8 distinct vertices — ForEachNeighbor still visits the
// geometric 8 directions, so a degenerately small torus may call visit with
// the same vertex more than once).
type Torus struct {
	W, H uint32
}

// NewTorus constructs a W×H toroidal grid.
func NewTorus(w, h uint32) *Torus {
	return &Torus{W: w, H: h}
}

// N returns W*H.
func (t *Torus) N() uint32 { return t.W * t.H }

func (t *Torus) idx(x, y uint32) uint32 { return y*t.W + x }

func (t *Torus) xy(v uint32) (x, y uint32) {
	return v % t.W, v / t.W
}

// ForEachNeighbor visits the 8 Moore neighbors of v, wrapping around both
// axes.
func (t *Torus) ForEachNeighbor(v uint32, visit func(u uint32)) {
	x, y := t.xy(v)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx := uint32((int64(x) + int64(dx) + int64(t.W)) % int64(t.W))
			ny := uint32((int64(y) + int64(dy) + int64(t.H)) % int64(t.H))
			visit(t.idx(nx, ny))
		}
	}
}

// Degree always returns 8 for a torus, regardless of W/H (the geometric
// neighborhood size; see the Torus doc comment for the degenerate-size
// caveat).
func (t *Torus) Degree(v uint32) uint32 { return 8 }

// MaxDegree returns 8.
func (t *Torus) MaxDegree() uint32 { return 8 }

// Lollipop is a clique K_m on vertices [0,m) bridged by a single edge
// (m-1, m) to a path P_n on vertices [m, m+n). Adjacency is precomputed
// once at construction as a CSR-like offsets/neighbors table.
type Lollipop struct {
	m, n      uint32
	offsets   []uint32 // len N+1
	neighbors []uint32 // len offsets[N]
}

// NewLollipop constructs a lollipop graph with a clique of size m and a
// path of length n, clamped to a minimum of 1 each.
func NewLollipop(m, n uint32) *Lollipop {
	if m < 1 {
		m = 1
	}
	if n < 1 {
		n = 1
	}
	l := &Lollipop{m: m, n: n}
	l.buildAdjacency()
	return l
}

func (l *Lollipop) buildAdjacency() {
	n := l.m + l.n
	adj := make([][]uint32, n)

	for i := uint32(0); i < l.m; i++ {
		for j := uint32(0); j < l.m; j++ {
			if i != j {
				adj[i] = append(adj[i], j)
			}
		}
	}

	for k := uint32(0); k < l.n; k++ {
		v := l.m + k
		if k > 0 {
			adj[v] = append(adj[v], v-1)
		}
		if k+1 < l.n {
			adj[v] = append(adj[v], v+1)
		}
	}

	adj[l.m-1] = append(adj[l.m-1], l.m)
	adj[l.m] = append(adj[l.m], l.m-1)

	offsets := make([]uint32, n+1)
	total := uint32(0)
	for v, nb := range adj {
		offsets[v] = total
		total += uint32(len(nb))
	}
	offsets[n] = total

	neighbors := make([]uint32, 0, total)
	for _, nb := range adj {
		neighbors = append(neighbors, nb...)
	}

	l.offsets = offsets
	l.neighbors = neighbors
}

// N returns m+n.
func (l *Lollipop) N() uint32 { return l.m + l.n }

// ForEachNeighbor visits each adjacent vertex of v exactly once.
func (l *Lollipop) ForEachNeighbor(v uint32, visit func(u uint32)) {
	for i := l.offsets[v]; i < l.offsets[v+1]; i++ {
		visit(l.neighbors[i])
	}
}

// Degree returns the number of neighbors of v.
func (l *Lollipop) Degree(v uint32) uint32 {
	return l.offsets[v+1] - l.offsets[v]
}

// MaxDegree returns the largest degree in the graph, found by scanning
// every vertex; for m>=3 it is m, the degree of clique vertex m-1 (its m-1
// clique neighbors plus the bridge).
func (l *Lollipop) MaxDegree() uint32 {
	var maxDeg uint32
	n := l.N()
	for v := uint32(0); v < n; v++ {
		if d := l.Degree(v); d > maxDeg {
			maxDeg = d
		}
	}
	return maxDeg
}
