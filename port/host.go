//go:build !tinygo

package port

import (
	"fmt"
	"sync/atomic"
)

// Host is the goroutine-backed port used on development machines and in
// tests: every kernel thread is a real goroutine, parked on its own channel
// between scheduling decisions, so the kernel's own ready-queue logic
// remains the sole authority on who runs next.
//
// IRQSave/IRQRestore track a plain nesting depth rather than taking a lock:
// by construction at most one logical thread is ever running kernel code at
// a time (ContextSwitch's Wake-then-Park handoff is the synchronization
// point, via the Go memory model's channel-operation guarantee), so there is
// never a second goroutine racing to observe or mutate the depth.
type Host struct {
	depth   uint32
	cycle   uint64
	panicFn func(code int, msg string)
}

// NewHost creates a host port. panicFn, if non-nil, overrides the default
// panic behaviour (which is to panic(2) the Go process).
func NewHost(panicFn func(code int, msg string)) *Host {
	return &Host{panicFn: panicFn}
}

func (h *Host) IRQSave() uint32 {
	prior := h.depth
	h.depth++
	return prior
}

func (h *Host) IRQRestore(prior uint32) {
	h.depth = prior
}

// InHandlerMode always reports false on the host port: nothing here ever
// executes in a real interrupt context. The kernel tracks its own simulated
// ISR bracket separately (see Kernel.InHandlerMode).
func (h *Host) InHandlerMode() bool { return false }

func (h *Host) Spawn(entry func()) { go entry() }

func (h *Host) ContextSwitch(from, to ThreadHandle) {
	to.Wake()
	from.Park()
}

func (h *Host) TickInit(frequencyHz int, onTick func()) (stop func()) {
	ticks, cancel := newTickSource(frequencyHz)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticks:
				onTick()
			case <-done:
				return
			}
		}
	}()
	return func() {
		close(done)
		cancel()
	}
}

func (h *Host) CycleCounter() uint64 {
	return atomic.AddUint64(&h.cycle, 1)
}

func (h *Host) Panic(code int, msg string) {
	if h.panicFn != nil {
		h.panicFn(code, msg)
		return
	}
	panic(fmt.Sprintf("kernel panic [%d]: %s", code, msg))
}
