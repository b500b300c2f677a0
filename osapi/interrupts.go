package osapi

// CriticalEnter masks interrupts at the port level and returns the prior
// nesting depth for CriticalExit.
func CriticalEnter() uint32 { return kern.CriticalEnter() }

// CriticalExit restores the interrupt mask depth captured by CriticalEnter.
func CriticalExit(prior uint32) { kern.CriticalExit(prior) }

// UncriticalEnter opens a simulated interrupt-handler bracket: scheduling
// decisions taken before the matching UncriticalExit are deferred.
func UncriticalEnter() { kern.EnterISR() }

// UncriticalExit closes a bracket opened by UncriticalEnter, taking any
// deferred reschedule on the outermost exit.
func UncriticalExit() { kern.ExitISR() }

// InHandlerMode reports whether the kernel believes it is presently
// executing inside a simulated interrupt-handler bracket.
func InHandlerMode() bool { return kern.InHandlerMode() }
