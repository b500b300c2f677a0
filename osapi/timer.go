package osapi

import "rtoscore/kernel"

// TimerHandle is the facade's opaque timer handle.
type TimerHandle = *kernel.Timer

// TimerCreate constructs a timer bound to callback, initially disarmed.
func TimerCreate(callback func()) TimerHandle { return kern.NewTimer(callback) }

// TimerDestroy stops t. There is no separate control-block release: the
// handle becomes garbage once the caller drops its last reference.
func TimerDestroy(t TimerHandle) { t.Stop() }

// TimerStart arms t to first fire after delay ticks, then every period
// ticks if period is nonzero.
func TimerStart(t TimerHandle, delay, period Duration) Status { return t.Start(delay, period) }

// TimerStop disarms t. Idempotent: stopping an already-stopped timer
// returns ok (spec invariant 10).
func TimerStop(t TimerHandle) Status { return t.Stop() }

// TimerIsArmed reports whether t is currently scheduled to fire.
func TimerIsArmed(t TimerHandle) bool { return t.IsArmed() }
