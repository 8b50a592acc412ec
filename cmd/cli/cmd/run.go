package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/schelling-sim/cs-engine/internal/aggregator"
	"github.com/schelling-sim/cs-engine/internal/checkpoint"
	engineconfig "github.com/schelling-sim/cs-engine/internal/config"
	"github.com/schelling-sim/cs-engine/internal/geometry"
	"github.com/schelling-sim/cs-engine/internal/observer"
	"github.com/schelling-sim/cs-engine/internal/rundriver"
	"github.com/schelling-sim/cs-engine/internal/unhappy"
	"github.com/schelling-sim/cs-engine/internal/workerpool"
	pkgconfig "github.com/schelling-sim/cs-engine/pkg/config"
	"github.com/schelling-sim/cs-engine/pkg/errors"
	"github.com/schelling-sim/cs-engine/pkg/parallel"
	"github.com/schelling-sim/cs-engine/pkg/telemetry"
	"github.com/schelling-sim/cs-engine/pkg/utils"
)

var (
	flagConfigPath string

	flagGraph       string
	flagSize        string
	flagMove        string
	flagDensity     float64
	flagThreshold   float64
	flagAlpha       float64
	flagEps         float64
	flagThreads     int
	flagSeed        uint64
	flagK           int
	flagPlot        bool
	flagDebug       bool
	flagDebugEvery  int
	flagHorizon     uint64
	flagCheckpoints int

	flagProgressInterval time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a parallel Schelling segregation experiment",
	Long: `run launches a worker pool of independent simulation runs over the
chosen graph geometry, recording the fraction of unhappy agents at a
log-spaced checkpoint schedule into a shared aggregator, and stops the
whole experiment once the anytime-valid confidence sequence over all
checkpoints is within the requested tolerance.`,
	RunE: runExperiment,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&flagConfigPath, "config", "", "Path to a YAML/JSON/TOML config file")

	runCmd.Flags().StringVar(&flagGraph, "graph", "", "Graph family: torus or lollipop")
	runCmd.Flags().StringVar(&flagSize, "size", "", "Graph size: WxH for torus, m:n for lollipop")
	runCmd.Flags().StringVar(&flagMove, "move", "", "Move rule: any or first")
	runCmd.Flags().Float64Var(&flagDensity, "density", 0, "Fraction of vertices occupied by agents")
	runCmd.Flags().Float64Var(&flagThreshold, "threshold", 0, "Happiness threshold in [0,1] (range-checked only when move=first)")
	runCmd.Flags().Float64Var(&flagAlpha, "alpha", 0, "Confidence sequence failure probability")
	runCmd.Flags().Float64Var(&flagEps, "eps", 0, "Target half-width tolerance for stopping")
	runCmd.Flags().IntVar(&flagThreads, "threads", 0, "Worker thread count (0 = auto)")
	runCmd.Flags().Uint64Var(&flagSeed, "seed", 0, "Base RNG seed (0 = derive from clock/pid)")
	runCmd.Flags().IntVar(&flagK, "k", 0, "Number of checkpoints")
	runCmd.Flags().BoolVar(&flagPlot, "plot", true, "Emit the final mean-vs-checkpoint series")
	runCmd.Flags().BoolVar(&flagDebug, "debug", false, "Enable verbose per-run progress reporting")
	runCmd.Flags().IntVar(&flagDebugEvery, "debug-every", 0, "Print a progress line every N completed runs")
	runCmd.Flags().Uint64Var(&flagHorizon, "horizon", 0, "Maximum moves per run before giving up on convergence")
	runCmd.Flags().IntVar(&flagCheckpoints, "checkpoints", 0, "Alias of --k")

	runCmd.Flags().DurationVar(&flagProgressInterval, "progress-interval", 2*time.Second, "Wall-clock interval between heartbeat progress lines (debug mode only)")
}

func runExperiment(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	file, err := pkgconfig.Load(flagConfigPath)
	if err != nil {
		return errors.Wrap(errors.CodeConfigError, "failed to load config file", err)
	}

	engineFlags := engineconfig.Flags{}
	if flags.Changed("graph") {
		engineFlags.Graph = &flagGraph
	}
	if flags.Changed("size") {
		engineFlags.Size = &flagSize
	}
	if flags.Changed("move") {
		engineFlags.Move = &flagMove
	}
	if flags.Changed("density") {
		engineFlags.Density = &flagDensity
	}
	if flags.Changed("threshold") {
		engineFlags.Threshold = &flagThreshold
	}
	if flags.Changed("alpha") {
		engineFlags.Alpha = &flagAlpha
	}
	if flags.Changed("eps") {
		engineFlags.Eps = &flagEps
	}
	if flags.Changed("threads") {
		engineFlags.Threads = &flagThreads
	}
	if flags.Changed("seed") {
		engineFlags.Seed = &flagSeed
	}
	if flags.Changed("k") {
		engineFlags.K = &flagK
	}
	if flags.Changed("checkpoints") {
		engineFlags.K = &flagCheckpoints
	}
	if flags.Changed("plot") {
		engineFlags.Plot = &flagPlot
	}
	if flags.Changed("debug") {
		engineFlags.Debug = &flagDebug
	}
	if flags.Changed("debug-every") {
		engineFlags.DebugEvery = &flagDebugEvery
	}
	if flags.Changed("horizon") {
		engineFlags.Horizon = &flagHorizon
	}

	opts, err := engineconfig.Merge(file, engineFlags)
	if err != nil {
		return err
	}

	if opts.Seed == 0 {
		opts.Seed = workerpool.AutoSeed()
	}

	timer := utils.NewTimer("experiment", utils.WithLogger(logger), utils.WithEnabled(opts.Debug))

	geomPhase := timer.Start("build-geometry")
	geom, err := buildGeometry(opts)
	geomPhase.Stop()
	if err != nil {
		return err
	}

	// telemetry.Init is a no-op unless OTEL_ENABLED=true, matching the
	// teacher's env-var-gated tracing contract.
	shutdownTelemetry, err := telemetry.Init(cmd.Context())
	if err != nil {
		return errors.Wrap(errors.CodeConfigError, "failed to initialize telemetry", err)
	}
	defer shutdownTelemetry(context.Background())

	cps := checkpoint.MakeCheckpointsLog(opts.Horizon, opts.K)
	agg := aggregator.New(len(cps))

	threshold := unhappy.NewThreshold(opts.Threshold)
	moveRule := rundriver.MoveAny
	if opts.Move == engineconfig.MoveFirst {
		moveRule = rundriver.MoveFirstAccepting
	}

	pool := workerpool.New(workerpool.Config{Threads: opts.Threads, BaseSeed: opts.Seed})

	debugEvery := opts.DebugEvery
	if !opts.Debug {
		debugEvery = 1 << 30 // effectively disabled: banner/completion still print
	}

	reporter := observer.NewStderrReporter(logger, agg, len(cps), opts.Alpha, opts.Eps, agentTypeRange, debugEvery)
	reporter.Banner(summarizeOptions(opts, geom), opts.Seed)

	params := workerpool.Params{
		Geom:        geom,
		Density:     opts.Density,
		NTypes:      2,
		MoveRule:    moveRule,
		Threshold:   threshold,
		KCandidates: firstAcceptingCandidates,
		Checkpoints: cps,
		Alpha:       opts.Alpha,
		Eps:         opts.Eps,
		Range:       agentTypeRange,
	}

	runObserver := reporter.OnRunComplete

	if opts.Debug {
		ticker := parallel.NewProgressTracker(0, func(completed, _ int64) {
			reporter.Heartbeat(completed)
		}, flagProgressInterval)
		ticker.Start(cmd.Context())
		defer ticker.Stop()

		runObserver = func(runIndex uint64, result rundriver.Result) {
			ticker.Increment()
			reporter.OnRunComplete(runIndex, result)
		}
	}

	runPhase := timer.Start("pool-run")
	pool.Run(params, agg, runObserver)
	runPhase.Stop()

	reportPhase := timer.Start("report")
	if opts.Plot {
		printSeries(agg, cps)
	}
	fmt.Println(observer.Completion(opts.Eps, opts.Alpha))
	reportPhase.Stop()

	timer.PrintSummary()
	return nil
}

const (
	// agentTypeRange is the Hoeffding range R for the per-checkpoint
	// fraction-unhappy statistic, which always lies in [0, 1].
	agentTypeRange = 1.0

	// firstAcceptingCandidates is the number of empty-vertex candidates
	// sampled per step under the first-accepting move rule.
	firstAcceptingCandidates = 8
)

func buildGeometry(opts engineconfig.Options) (geometry.Geometry, error) {
	switch opts.Graph {
	case engineconfig.GraphTorus:
		return geometry.NewTorus(opts.DimA, opts.DimB), nil
	case engineconfig.GraphLollipop:
		return geometry.NewLollipop(opts.DimA, opts.DimB), nil
	default:
		return nil, errors.New(errors.CodeInvalidInput, fmt.Sprintf("unknown graph family %q", opts.Graph))
	}
}

func summarizeOptions(opts engineconfig.Options, geom geometry.Geometry) string {
	return fmt.Sprintf(
		"graph=%s size=%dx%d move=%s density=%g threshold=%g alpha=%g eps=%g threads=%d k=%d n=%d",
		opts.Graph, opts.DimA, opts.DimB, opts.Move, opts.Density, opts.Threshold,
		opts.Alpha, opts.Eps, opts.Threads, opts.K, geom.N(),
	)
}

func printSeries(agg *aggregator.Aggregator, checkpoints []uint64) {
	fmt.Println("checkpoint,moves,count,mean,variance")
	for i, c := range checkpoints {
		fmt.Printf("%d,%d,%d,%g,%g\n", i, c, agg.Count(i), agg.Mean(i), agg.Variance(i))
	}
}

// ExitCodeOf maps an error returned from command execution to a process
// exit code: configuration and input validation failures exit 2, anything
// else exits 1.
func ExitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	switch errors.GetErrorCode(err) {
	case errors.CodeInvalidInput, errors.CodeConfigError:
		return 2
	default:
		return 1
	}
}
