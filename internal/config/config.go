// Package config builds and validates the engine's effective run options by
// merging a config file (pkg/config.File) under whatever CLI flags were
// explicitly set, producing *errors.AppError with CodeInvalidInput or
// CodeConfigError on any violation (exit code 2 at the CLI boundary).
package config

import (
	"fmt"
	"strconv"
	"strings"

	pkgconfig "github.com/schelling-sim/cs-engine/pkg/config"
	"github.com/schelling-sim/cs-engine/pkg/errors"
)

// Graph selects which Geometry family a run uses.
type Graph string

const (
	GraphTorus    Graph = "torus"
	GraphLollipop Graph = "lollipop"
)

// Move selects which Stepper a run uses.
type Move string

const (
	MoveAny   Move = "any"
	MoveFirst Move = "first"
)

// Options is the fully-validated, merged configuration for one experiment.
type Options struct {
	Graph       Graph
	DimA        uint32 // torus: W  | lollipop: clique size m
	DimB        uint32 // torus: H  | lollipop: path size n
	Move        Move
	Density     float64
	Threshold   float64
	Alpha       float64
	Eps         float64
	Threads     int
	Seed        uint64
	K           int
	Plot        bool
	Debug       bool
	DebugEvery  int
	Horizon     uint64
}

// Defaults mirrors the original CLI's built-in defaults.
func Defaults() Options {
	return Options{
		Graph:      GraphTorus,
		Move:       MoveAny,
		Density:    0.5,
		Threshold:  0.5,
		Alpha:      1e-4,
		Eps:        5e-4,
		Threads:    0,
		Seed:       0,
		K:          96,
		Plot:       true,
		Debug:      false,
		DebugEvery: 10,
		Horizon:    2_000_000,
	}
}

// Flags holds the CLI's explicitly-set flag values; a nil pointer field
// means "not set on the command line", so the merge falls back to the
// config file, then to Defaults().
type Flags struct {
	Graph       *string
	Size        *string
	Move        *string
	Density     *float64
	Threshold   *float64
	Alpha       *float64
	Eps         *float64
	Threads     *int
	Seed        *uint64
	K           *int
	Plot        *bool
	Debug       *bool
	DebugEvery  *int
	Horizon     *uint64
}

// Merge builds Options from Defaults, overlaid by file (if non-zero
// fields are present), overlaid by flags (CLI always wins), then
// validates the result.
func Merge(file *pkgconfig.File, flags Flags) (Options, error) {
	o := Defaults()

	if file != nil {
		applyFile(&o, file)
	}
	if err := applyFlags(&o, flags); err != nil {
		return Options{}, err
	}

	if err := Validate(&o); err != nil {
		return Options{}, err
	}
	return o, nil
}

func applyFile(o *Options, f *pkgconfig.File) {
	if f.Graph != "" {
		o.Graph = Graph(strings.ToLower(f.Graph))
	}
	if f.Size != "" {
		if a, b, ok := parseSize(f.Size, o.Graph == GraphTorus); ok {
			o.DimA, o.DimB = a, b
		}
	}
	if f.Move != "" {
		o.Move = Move(strings.ToLower(f.Move))
	}
	if f.Density != 0 {
		o.Density = f.Density
	}
	if f.Threshold != 0 {
		o.Threshold = f.Threshold
	}
	if f.Alpha != 0 {
		o.Alpha = f.Alpha
	}
	if f.Eps != 0 {
		o.Eps = f.Eps
	}
	if f.Threads != 0 {
		o.Threads = f.Threads
	}
	if f.Seed != 0 {
		o.Seed = f.Seed
	}
	if f.K != 0 {
		o.K = f.K
	}
	if f.Checkpoints != 0 {
		o.K = f.Checkpoints
	}
	if f.Plot {
		o.Plot = f.Plot
	}
	if f.Debug {
		o.Debug = f.Debug
	}
	if f.DebugEvery != 0 {
		o.DebugEvery = f.DebugEvery
	}
	if f.Horizon != 0 {
		o.Horizon = f.Horizon
	}
}

func applyFlags(o *Options, flags Flags) error {
	if flags.Graph != nil {
		g := Graph(strings.ToLower(*flags.Graph))
		if g != GraphTorus && g != GraphLollipop {
			return errors.New(errors.CodeInvalidInput, fmt.Sprintf("--graph must be 'torus' or 'lollipop', got %q", *flags.Graph))
		}
		o.Graph = g
	}
	if flags.Size != nil {
		a, b, ok := parseSize(*flags.Size, o.Graph == GraphTorus)
		if !ok {
			return errors.New(errors.CodeInvalidInput, fmt.Sprintf("--size format invalid for graph %q: %q", o.Graph, *flags.Size))
		}
		o.DimA, o.DimB = a, b
	}
	if flags.Move != nil {
		m := Move(strings.ToLower(*flags.Move))
		if m != MoveAny && m != MoveFirst {
			return errors.New(errors.CodeInvalidInput, fmt.Sprintf("--move must be 'any' or 'first', got %q", *flags.Move))
		}
		o.Move = m
	}
	if flags.Density != nil {
		o.Density = *flags.Density
	}
	if flags.Threshold != nil {
		o.Threshold = *flags.Threshold
	}
	if flags.Alpha != nil {
		o.Alpha = *flags.Alpha
	}
	if flags.Eps != nil {
		o.Eps = *flags.Eps
	}
	if flags.Threads != nil {
		o.Threads = *flags.Threads
	}
	if flags.Seed != nil {
		o.Seed = *flags.Seed
	}
	if flags.K != nil {
		o.K = *flags.K
	}
	if flags.Plot != nil {
		o.Plot = *flags.Plot
	}
	if flags.Debug != nil {
		o.Debug = *flags.Debug
	}
	if flags.DebugEvery != nil {
		o.DebugEvery = *flags.DebugEvery
	}
	if flags.Horizon != nil {
		o.Horizon = *flags.Horizon
	}
	return nil
}

// parseSize parses "WxH" (torus) or "m:n" (lollipop), accepting 'x', 'X',
// or '+' as an alternate torus separator.
func parseSize(s string, isTorus bool) (a, b uint32, ok bool) {
	sep := ":"
	if isTorus {
		sep = "x"
		s = strings.NewReplacer("X", "x", "+", "x").Replace(s)
	}
	parts := strings.SplitN(s, sep, 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	av, err1 := strconv.ParseUint(parts[0], 10, 32)
	bv, err2 := strconv.ParseUint(parts[1], 10, 32)
	if err1 != nil || err2 != nil || av == 0 || bv == 0 {
		return 0, 0, false
	}
	return uint32(av), uint32(bv), true
}

// Validate checks the validation table from the external-interfaces spec:
// size components >0, density>0, eps>0, alpha in (0,1), threshold in
// [0,1] when move=first.
func Validate(o *Options) error {
	if o.DimA == 0 || o.DimB == 0 {
		return errors.New(errors.CodeInvalidInput, "size components must be > 0")
	}
	if o.Density <= 0 {
		return errors.New(errors.CodeInvalidInput, "density must be > 0")
	}
	if o.Eps <= 0 {
		return errors.New(errors.CodeInvalidInput, "eps must be > 0")
	}
	if o.Alpha <= 0 || o.Alpha >= 1 {
		return errors.New(errors.CodeInvalidInput, "alpha must be in (0,1)")
	}
	if o.Move == MoveFirst && (o.Threshold < 0 || o.Threshold > 1) {
		return errors.New(errors.CodeInvalidInput, "threshold must be in [0,1] when move=first")
	}
	if o.Graph != GraphTorus && o.Graph != GraphLollipop {
		return errors.New(errors.CodeInvalidInput, "graph must be 'torus' or 'lollipop'")
	}
	if o.Move != MoveAny && o.Move != MoveFirst {
		return errors.New(errors.CodeInvalidInput, "move must be 'any' or 'first'")
	}
	if o.K < 1 {
		return errors.New(errors.CodeInvalidInput, "k must be >= 1")
	}
	return nil
}
