// Package workerpool implements the thread fan-out model that drives many
// concurrent simulation runs into a shared Aggregator until the Stopper
// certifies the curve's uncertainty is within tolerance.
package workerpool

import (
	"context"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/schelling-sim/cs-engine/internal/aggregator"
	"github.com/schelling-sim/cs-engine/internal/geometry"
	"github.com/schelling-sim/cs-engine/internal/rng"
	"github.com/schelling-sim/cs-engine/internal/rundriver"
	"github.com/schelling-sim/cs-engine/internal/stopper"
	"github.com/schelling-sim/cs-engine/internal/unhappy"
)

// tracer emits one "schelling.experiment" span per Run call and one
// "schelling.run" span per completed simulation; both are no-ops unless
// telemetry.Init has configured a real exporter (OTEL_ENABLED=true).
var tracer = otel.Tracer("schelling-sim/workerpool")

// Config configures the worker pool's thread count and seed derivation.
type Config struct {
	// Threads is the number of worker goroutines. 0 means auto: detect
	// via DefaultThreads().
	Threads int

	// BaseSeed seeds every run's per-run seed via Mix64(BaseSeed + r). 0
	// means auto: derive from the clock and process id.
	BaseSeed uint64
}

// DefaultThreads implements the auto-thread rule: hw_concurrency - reserve,
// where reserve is 2 if hw_concurrency >= 6, else 1, floored at 1.
func DefaultThreads() int {
	hw := runtime.NumCPU()
	reserve := 1
	if hw >= 6 {
		reserve = 2
	}
	threads := hw - reserve
	if threads < 1 {
		threads = 1
	}
	return threads
}

// DefaultConfig returns a Config with auto-detected thread count and a
// clock-derived base seed.
func DefaultConfig() Config {
	return Config{
		Threads:  DefaultThreads(),
		BaseSeed: AutoSeed(),
	}
}

// AutoSeed derives a base seed from the high-resolution clock mixed with
// the process id, finalized through the SplitMix64 mixer.
func AutoSeed() uint64 {
	clock := uint64(time.Now().UnixNano())
	salt := uint64(os.Getpid())
	return rng.Mix64(clock ^ (salt * 0x9E3779B97F4A7C15))
}

// Params fully describes the experiment every worker run executes.
type Params struct {
	Geom        geometry.Geometry
	Density     float64
	NTypes      uint32
	MoveRule    rundriver.MoveRule
	Threshold   unhappy.Threshold
	KCandidates int
	Checkpoints []uint64

	Alpha float64
	Eps   float64
	Range float64
}

// RunObserver receives a callback after every completed run, under the
// pool's shared mutex — the same critical section the Stopper evaluation
// runs in, so observers may safely read Aggregator state without racing
// concurrent Record calls from other still-running workers. It must not
// block for long: it runs on the hot path between runs.
type RunObserver func(runIndex uint64, result rundriver.Result)

// Pool fans work out across Config.Threads goroutines, each executing an
// unbounded loop of runs until the shared stop flag is set. The stop flag
// is set by whichever worker's Stopper evaluation first certifies the
// Aggregator has converged.
type Pool struct {
	cfg Config

	runCounter atomic.Uint64
	stopFlag   atomic.Bool
	mu         sync.Mutex
}

// New builds a Pool with the given configuration, filling in auto-detected
// defaults for zero fields.
func New(cfg Config) *Pool {
	if cfg.Threads <= 0 {
		cfg.Threads = DefaultThreads()
	}
	if cfg.BaseSeed == 0 {
		cfg.BaseSeed = AutoSeed()
	}
	return &Pool{cfg: cfg}
}

// Run launches Config.Threads worker goroutines, each looping: claim a run
// index, derive its seed, execute RunOnceSegmented into agg, then (under
// the pool's single mutex) evaluate the Stopper on count[0] and set the
// stop flag if satisfied. Cancellation only happens at run boundaries: a
// worker always finishes its current run before checking the stop flag.
// Run blocks until every worker has exited.
func (p *Pool) Run(params Params, agg *aggregator.Aggregator, observer RunObserver) {
	ctx, span := tracer.Start(context.Background(), "schelling.experiment",
		oteltrace.WithAttributes(
			attribute.Int("threads", p.cfg.Threads),
			attribute.Int64("checkpoints", int64(len(params.Checkpoints))),
		),
	)
	defer span.End()

	k := uint64(len(params.Checkpoints))

	var wg sync.WaitGroup
	wg.Add(p.cfg.Threads)
	for i := 0; i < p.cfg.Threads; i++ {
		go func() {
			defer wg.Done()
			p.workerLoop(ctx, params, agg, observer, k)
		}()
	}
	wg.Wait()

	span.SetAttributes(
		attribute.Int64("total_runs", int64(p.runCounter.Load())),
		attribute.Bool("stopped_by_stopper", p.stopFlag.Load()),
	)
}

func (p *Pool) workerLoop(ctx context.Context, params Params, agg *aggregator.Aggregator, observer RunObserver, k uint64) {
	for {
		r := p.runCounter.Add(1) - 1
		seed := rng.Mix64(p.cfg.BaseSeed + r)

		_, runSpan := tracer.Start(ctx, "schelling.run", oteltrace.WithAttributes(
			attribute.Int64("run_index", int64(r)),
			attribute.Int64("seed", int64(seed)),
		))

		result := rundriver.RunOnceSegmented(
			params.Geom, params.Density, params.NTypes, seed,
			params.MoveRule, params.Threshold, params.KCandidates,
			params.Checkpoints, agg,
		)

		p.mu.Lock()
		n := agg.Count(0)
		if observer != nil {
			observer(r, result)
		}
		if stopper.ShouldStop(n, k, params.Alpha, params.Eps, params.Range) {
			p.stopFlag.Store(true)
		}
		shouldExit := p.stopFlag.Load()
		p.mu.Unlock()

		runSpan.SetAttributes(
			attribute.Int64("moves", int64(result.Moves)),
			attribute.Bool("converged", result.Converged),
		)
		runSpan.End()

		if shouldExit {
			return
		}
	}
}

// Stopped reports whether the shared stop flag has been set.
func (p *Pool) Stopped() bool { return p.stopFlag.Load() }
