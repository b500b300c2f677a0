package kernel

import (
	"testing"

	"rtoscore/port"
)

// newTestKernel builds a kernel over the host port with no automatic tick
// source; tests advance the clock explicitly via OnTick so scenarios stay
// deterministic instead of racing a real ticker.
func newTestKernel(t *testing.T) *Kernel {
	t.Helper()
	// A real kernel panic indicates a genuine invariant violation; let it
	// crash the test binary rather than swallow it via a t.Fatalf called
	// from a goroutine the testing package doesn't know about.
	p := port.NewHost(nil)
	k := NewKernel(p)
	k.Initialize()
	return k
}

// drain advances the sysclock by n ticks.
func drain(k *Kernel, n int) {
	for i := 0; i < n; i++ {
		k.OnTick()
	}
}
