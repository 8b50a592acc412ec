// Package stopper implements the anytime-valid Hoeffding stopping rule:
// a time-uniform half-width over K checkpoints with familywise error
// alpha, evaluated continuously to decide when to terminate the
// experiment.
package stopper

import "math"

const piSquared = math.Pi * math.Pi

// Halfwidth computes the anytime-valid Hoeffding half-width for a
// bounded-mean curve on K checkpoints, using n samples, familywise error
// alpha, and process range R (default 1 for a [0,1]-bounded process):
//
//	w_n = (R / sqrt(2n)) * sqrt(max(0, ln(pi^2*K*n^2 / (3*alpha))))
//
// At n=0 it returns +Inf (infinite uncertainty before any sample).
func Halfwidth(n, k uint64, alpha, r float64) float64 {
	if n == 0 {
		return math.Inf(1)
	}
	nn := float64(n)
	logTerm := math.Log(piSquared * float64(k) * nn * nn / (3.0 * alpha))
	if logTerm < 0 {
		logTerm = 0
	}
	return (r / math.Sqrt(2.0*nn)) * math.Sqrt(logTerm)
}

// ShouldStop reports whether the anytime-valid confidence sequence has
// shrunk enough to certify the curve's uncertainty is within eps: the stop
// condition is 2*halfwidth(n) <= eps. The factor of 2 accounts for
// two-sided coverage.
func ShouldStop(n, k uint64, alpha, eps, r float64) bool {
	if n == 0 {
		return false
	}
	return 2.0*Halfwidth(n, k, alpha, r) <= eps
}
