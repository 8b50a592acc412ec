//go:build schelling_debug

// Package debugcheck gates invariant checks (I-occ, I-emp, I-sz,
// I-consistency and the UnhappySet reconciliation invariant) behind the
// schelling_debug build tag: this file compiles in when the tag is set,
// debugcheck_release.go compiles in otherwise.
package debugcheck

import "fmt"

// Enabled reports whether invariant checks are compiled in.
const Enabled = true

// Assert panics with msg if cond is false. No-op unless built with
// -tags schelling_debug.
func Assert(cond bool, msg string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("invariant violated: "+msg, args...))
	}
}
