package osapi

import "rtoscore/kernel"

// Duration is a tick count, as accepted by every timeout parameter in this
// package.
type Duration = kernel.Duration

// TimeoutNone requests an indefinite block.
const TimeoutNone = kernel.TimeoutNone

// ClockGetName always returns "sysclock", mirroring the named clock objects
// the original C facade exposes. The Clock* functions here take no clock
// handle: ClockNow, ClockSteadyNow and the offset calls act on the rtclock,
// the sleep calls on the sysclock.
func ClockGetName() string { return "sysclock" }

// ClockNow returns the rtclock's current time (steady ticks plus offset).
func ClockNow() int64 { return kern.RTClock().Now() }

// ClockSteadyNow returns raw, monotonic sysclock ticks.
func ClockSteadyNow() int64 { return kern.RTClock().SteadyNow() }

// ClockSleepFor blocks the calling thread for timeout ticks.
func ClockSleepFor(timeout Duration) Status { return kern.SleepFor(timeout) }

// ClockSleepUntil blocks the calling thread until the sysclock reaches
// timestamp.
func ClockSleepUntil(timestamp int64) Status { return kern.SleepUntil(timestamp) }

// ClockWaitFor is the primitive-facing equivalent of ClockSleepFor.
func ClockWaitFor(timeout Duration) Status { return kern.WaitFor(timeout) }

// ClockGetOffset returns the rtclock's current epoch offset, in ticks.
func ClockGetOffset() int64 { return kern.RTClock().GetOffset() }

// ClockSetOffset sets the rtclock's epoch offset, in ticks.
func ClockSetOffset(offset int64) { kern.RTClock().SetOffset(offset) }

// SysclockNow is the sysclock-specific shortcut for ClockSteadyNow.
func SysclockNow() int64 { return kern.SysClock().Ticks() }

// SysclockSleepFor is the sysclock-specific shortcut for ClockSleepFor.
func SysclockSleepFor(timeout Duration) Status { return kern.SleepFor(timeout) }
