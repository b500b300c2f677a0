package osapi

import "rtoscore/kernel"

// CondHandle is the facade's opaque condition-variable handle.
type CondHandle = *kernel.Cond

// CondCreate constructs a condition variable.
func CondCreate() CondHandle { return kern.NewCond() }

// CondDestroy is a no-op placeholder; destroying a condvar with active
// waiters is undefined behavior per spec §7.
func CondDestroy(c CondHandle) {}

// CondWait atomically releases mtx and blocks on c, re-acquiring mtx before
// returning regardless of why it returned.
func CondWait(c CondHandle, mtx MutexHandle, timeout Duration) Status {
	return c.Wait(mtx, timeout)
}

// CondSignal wakes the single highest-priority-oldest waiter, if any.
func CondSignal(c CondHandle) { c.Signal() }

// CondBroadcast wakes every thread currently waiting.
func CondBroadcast(c CondHandle) { c.Broadcast() }
