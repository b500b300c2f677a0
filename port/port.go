// Package port implements the abstract port interface the kernel calls into
// for everything that is genuinely hardware- or host-specific: the
// execution vehicle for a thread, the tick source, and the panic sink.
//
// This module ships one implementation, the goroutine-backed Host port; its
// tick source is selected by build tags (tick_linux.go, tick_generic.go).
package port

// ThreadHandle is the minimal capability a thread must expose so a port can
// park and resume it. kernel.Thread implements this directly.
type ThreadHandle interface {
	// Park blocks the calling goroutine until Wake is called.
	Park()
	// Wake makes a pending Park call (or the next one) return.
	Wake()
}

// Interface is the port contract required by the kernel (spec §6): interrupt
// status save/restore, handler-mode detection, the execution vehicle for a
// new thread, the context-switch trigger, tick configuration, and the
// panic hook, plus a cycle counter. The kernel does not call CycleCounter;
// it keeps no per-thread cycle statistics.
type Interface interface {
	// IRQSave disables (masks) interrupts and returns the prior nesting
	// depth, for IRQRestore to hand back.
	IRQSave() uint32
	// IRQRestore restores the nesting depth returned by a matching IRQSave.
	IRQRestore(prior uint32)
	// InHandlerMode reports whether the port believes it is currently
	// executing in interrupt/handler context.
	InHandlerMode() bool
	// Spawn starts entry as the execution vehicle for a newly created
	// thread. entry must not return until the thread's own exit path runs.
	Spawn(entry func())
	// ContextSwitch hands control from the calling thread to next, blocking
	// the caller until it is itself switched back in.
	ContextSwitch(from, to ThreadHandle)
	// TickInit starts a periodic tick source at frequencyHz, invoking
	// onTick on (approximately) every period. The returned func stops it.
	TickInit(frequencyHz int, onTick func()) (stop func())
	// CycleCounter returns a monotonically increasing counter usable for
	// per-thread CPU-cycle accounting. Ports that don't support a real
	// cycle counter may return a coarser monotonic proxy.
	CycleCounter() uint64
	// Panic is the last-resort hook invoked on an unrecoverable kernel
	// invariant violation.
	Panic(code int, msg string)
}
