// Package checkpoint builds the log-spaced schedule of move counts at
// which a run samples its current unhappy count.
package checkpoint

import "math"

// MakeCheckpointsLog produces a nondecreasing, deduplicated sequence of at
// most K move counts: cp[0]=0, cp[last]=horizon, with interior points
// log-spaced as cp[i] = max(1, floor(exp(i/(K-1) * ln(horizon)))). K is
// clamped to a minimum of 2.
func MakeCheckpointsLog(horizon uint64, k int) []uint64 {
	if k < 2 {
		k = 2
	}
	cp := make([]uint64, 0, k)
	cp = append(cp, 0)

	l := math.Log(float64(horizon))
	for i := 1; i < k-1; i++ {
		f := float64(i) / float64(k-1)
		t := uint64(math.Floor(math.Exp(f * l)))
		if t < 1 {
			t = 1
		}
		if t > cp[len(cp)-1] {
			cp = append(cp, t)
		}
	}

	if horizon > cp[len(cp)-1] {
		cp = append(cp, horizon)
	} else if cp[len(cp)-1] != horizon {
		// horizon is not strictly greater than the last interior point (can
		// happen for tiny horizons); clamp the final entry to horizon so the
		// schedule always ends exactly there.
		cp[len(cp)-1] = horizon
	}

	return cp
}
