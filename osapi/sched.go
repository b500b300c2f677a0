package osapi

// SchedInitialize creates the idle thread if it does not already exist.
func SchedInitialize() { kern.Initialize() }

// SchedStart hands control to the highest-priority ready thread. Never
// returns.
func SchedStart() { kern.Start() }

// SchedIsStarted reports whether SchedStart has been called.
func SchedIsStarted() bool { return kern.IsStarted() }

// SchedLock defers context switches without disabling interrupts, returning
// a token SchedUnlock must be given back.
func SchedLock() uint32 { return kern.Lock() }

// SchedUnlock restores the lock depth captured by a matching SchedLock.
func SchedUnlock(prior uint32) { kern.Unlock(prior) }

// SchedIsLocked reports whether the scheduler is presently locked.
func SchedIsLocked() bool { return kern.IsLocked() }
