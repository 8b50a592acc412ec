//go:build !schelling_debug

package debugcheck

// Enabled reports whether invariant checks are compiled in.
const Enabled = false

// Assert is a no-op in release builds; the compiler elides the call
// entirely once args are proven side-effect free, but we don't rely on
// that — callers are expected to only pay the neighbor-scan cost of
// assembling msg/args under schelling_debug.
func Assert(cond bool, msg string, args ...any) {}
