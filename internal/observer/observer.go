// Package observer implements the textual progress/plot surface consuming
// Aggregator snapshots: a start banner, periodic stderr progress lines,
// and the final stdout completion line. This is the thin external-
// collaborator layer outside the simulation core.
package observer

import (
	"fmt"

	"github.com/schelling-sim/cs-engine/internal/aggregator"
	"github.com/schelling-sim/cs-engine/internal/rundriver"
	"github.com/schelling-sim/cs-engine/internal/stopper"
	"github.com/schelling-sim/cs-engine/pkg/utils"
)

// StderrReporter prints the start banner and periodic progress lines to a
// Logger (stderr by default), reading Aggregator snapshots and the
// Stopper's half-width at every debugEvery-th completed run.
type StderrReporter struct {
	logger         utils.Logger
	agg            *aggregator.Aggregator
	k              uint64
	alpha          float64
	eps            float64
	rangeBound     float64
	debugEvery     int
	numCheckpoints int
	runsSeen       int
}

// NewStderrReporter builds a reporter bound to agg, reporting every
// debugEvery completed runs.
func NewStderrReporter(logger utils.Logger, agg *aggregator.Aggregator, numCheckpoints int, alpha, eps, rangeBound float64, debugEvery int) *StderrReporter {
	if debugEvery < 1 {
		debugEvery = 1
	}
	return &StderrReporter{
		logger:         logger,
		agg:            agg,
		k:              uint64(numCheckpoints),
		alpha:          alpha,
		eps:            eps,
		rangeBound:     rangeBound,
		debugEvery:     debugEvery,
		numCheckpoints: numCheckpoints,
	}
}

// Banner prints the start-of-run banner: effective configuration and seed.
func (r *StderrReporter) Banner(configSummary string, seed uint64) {
	r.logger.Info("schelling-sim starting: %s seed=%d", configSummary, seed)
}

// OnRunComplete implements workerpool.RunObserver: it counts completed
// runs and, every debugEvery runs, prints a progress line with run index,
// n, 2w, eps, alpha, and mean at checkpoints 0, ~K/4, K-1.
func (r *StderrReporter) OnRunComplete(runIndex uint64, _ rundriver.Result) {
	r.runsSeen++
	if r.runsSeen%r.debugEvery != 0 {
		return
	}
	r.printProgress(runIndex)
}

// Heartbeat prints the same progress line on a wall-clock cadence rather
// than a completed-run cadence; completed is the run count reported by
// the driving ticker (see pkg/parallel.ProgressTracker).
func (r *StderrReporter) Heartbeat(completed int64) {
	r.printProgress(uint64(completed))
}

func (r *StderrReporter) printProgress(runIndex uint64) {
	n := r.agg.Count(0)
	w := stopper.Halfwidth(n, r.k, r.alpha, r.rangeBound)

	quarter := r.numCheckpoints / 4
	last := r.numCheckpoints - 1

	r.logger.Info(
		"run=%d n=%d 2w=%s eps=%s alpha=%s mean[0]=%s mean[~K/4]=%s mean[K-1]=%s",
		runIndex, n,
		formatFloat(2*w), formatFloat(r.eps), formatFloat(r.alpha),
		formatFloat(r.agg.Mean(0)), formatFloat(r.agg.Mean(quarter)), formatFloat(r.agg.Mean(last)),
	)
}

// Completion prints the standard-output completion line: it must contain
// eps, alpha, and the phrase "stopped by anytime-CS rule".
func Completion(eps, alpha float64) string {
	return fmt.Sprintf("stopped by anytime-CS rule: eps=%s alpha=%s", formatFloat(eps), formatFloat(alpha))
}

// formatFloat renders a float, substituting "NaN" for count=0 diagnostic
// slots per the numerical-edge-handling contract.
func formatFloat(f float64) string {
	if f != f { // NaN
		return "NaN"
	}
	return fmt.Sprintf("%.6g", f)
}
