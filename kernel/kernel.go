package kernel

import "rtoscore/port"

// BootConfig gathers the one-shot, process-wide hooks a system installs
// before its first thread runs: the default memory resource, the
// diagnostic logger, and the tick source frequency. All three are optional;
// zero values fall back to the package defaults (NullResource, a no-op
// logger, no automatic tick source).
type BootConfig struct {
	DefaultResource MemoryResource
	Logger          Logger
	TickHz          int
}

// Boot wires the ambient, process-wide hooks per cfg and constructs a
// Kernel over p, but does not start it — call Initialize (to create the
// idle thread ahead of time) or Start (which does so implicitly) once
// application threads have been created.
//
// If cfg.TickHz is positive, Boot also starts the port's tick source
// wired to k.OnTick, and records the stop function so a caller can later
// shut it down via Kernel's TickStop.
func Boot(p port.Interface, cfg BootConfig) *Kernel {
	if cfg.DefaultResource != nil {
		SetDefaultResource(cfg.DefaultResource)
	}
	if cfg.Logger != nil {
		SetLogger(cfg.Logger)
	}

	k := NewKernel(p)
	if cfg.TickHz > 0 {
		k.tickStop = p.TickInit(cfg.TickHz, k.OnTick)
	}
	return k
}

// TickStop stops the tick source started by Boot, if any. Safe to call more
// than once or when no tick source was started.
func (k *Kernel) TickStop() {
	if k.tickStop != nil {
		k.tickStop()
		k.tickStop = nil
	}
}

// Shutdown stops the tick source and the timer-service goroutine. Intended
// for host harnesses and tests that want to release every goroutine the
// kernel started outside of Wait's thread tracking; a running embedded
// target would never call it.
func (k *Kernel) Shutdown() {
	k.TickStop()
	k.timerSvc.stop()
}
