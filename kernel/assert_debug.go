//go:build !release

package kernel

import "fmt"

// assertf is the debug-build half of spec §7's fatal/undefined-behavior
// split: destroying an object with active waiters, unlocking a normal
// mutex from a non-owner, freeing a foreign pointer, and similar invariant
// violations panic the Go process immediately here, instead of silently
// corrupting state the way a release build's no-op assertf would.
func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic("kernel assertion failed: " + fmt.Sprintf(format, args...))
	}
}
