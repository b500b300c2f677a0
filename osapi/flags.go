package osapi

import "rtoscore/kernel"

// EventFlagsHandle is the facade's opaque shared event-flags handle.
type EventFlagsHandle = *kernel.EventFlags

// FlagsMode selects ANY/ALL and optional CLEAR-on-wake behavior.
type FlagsMode = kernel.FlagsMode

const (
	FlagsAny   = kernel.FlagsAny
	FlagsAll   = kernel.FlagsAll
	FlagsClear = kernel.FlagsClear
)

// EventFlagsCreate constructs a shared event-flags object with an initially
// clear mask.
func EventFlagsCreate() EventFlagsHandle { return kern.NewEventFlags() }

// EventFlagsDestroy is a no-op placeholder; destroying an event-flags
// object with active waiters is undefined behavior per spec §7.
func EventFlagsDestroy(e EventFlagsHandle) {}

// EventFlagsRaise ORs mask into e's shared word, waking every waiter whose
// predicate now holds. Safe from ISR.
func EventFlagsRaise(e EventFlagsHandle, mask uint32) { e.Raise(mask) }

// EventFlagsWait blocks until e's shared mask satisfies (mask, mode).
func EventFlagsWait(e EventFlagsHandle, mask uint32, mode FlagsMode, timeout Duration) (uint32, Status) {
	return e.Wait(mask, mode, timeout)
}

// EventFlagsGetMask returns the currently raised bits.
func EventFlagsGetMask(e EventFlagsHandle) uint32 { return e.Mask() }

// EventFlagsClear removes mask's bits from e's shared word. Idempotent with
// no bits set (spec invariant 10).
func EventFlagsClear(e EventFlagsHandle, mask uint32) Status {
	e.Clear(mask)
	return OK
}
