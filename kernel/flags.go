package kernel

import "rtoscore/internal/dlist"

// EventFlags is the shared event-flags object from spec §4.6: unlike a
// thread's own flags (Kernel.FlagsRaise/FlagsWait in thread.go), any number
// of threads can wait on one, each with its own expected mask and mode.
// Waiters reuse the same per-thread bookkeeping fields the thread-intrinsic
// flags wait uses (flagsWaitMask/flagsWaitMode/flagsObserved) — safe
// because the single-list-residency invariant means a thread can never be
// waiting on both at once.
type EventFlags struct {
	k    *Kernel
	mask uint32

	waitingList dlist.List[*Thread]
}

// NewEventFlags constructs a shared event-flags object with an initially
// clear mask.
func (k *Kernel) NewEventFlags() *EventFlags {
	e := &EventFlags{k: k}
	e.waitingList.Init()
	return e
}

// Mask returns the currently raised bits.
func (e *EventFlags) Mask() uint32 {
	e.k.mu.Lock()
	defer e.k.mu.Unlock()
	return e.mask
}

// Raise ORs mask into the shared word, then scans the waiting list head to
// tail (priority-then-FIFO order): each waiter whose predicate now holds is
// removed and woken, and if its mode includes FlagsClear, its matched bits
// are cleared from the shared mask before the next waiter is evaluated.
// Safe from ISR.
func (e *EventFlags) Raise(mask uint32) {
	k := e.k
	fromISR := k.InHandlerMode()

	k.mu.Lock()
	e.mask |= mask
	var woke bool
	for n := e.waitingList.Front(); n != nil; {
		next := e.waitingList.Next(n)
		t := n.Value
		if flagsSatisfied(e.mask, t.flagsWaitMask, t.flagsWaitMode) {
			e.waitingList.Remove(n)
			t.waitList = nil
			t.flagsObserved = e.mask
			if t.flagsWaitMode.clear() {
				e.mask &^= t.flagsWaitMask
			}
			t.flagsWaiting = false
			k.wakeLocked(t, OK)
			woke = true
		}
		n = next
	}
	self := k.current
	k.mu.Unlock()

	if !woke {
		return
	}
	if fromISR {
		k.mu.Lock()
		k.pendingSwitch = true
		k.mu.Unlock()
		return
	}
	k.maybePreempt(self)
}

// Clear removes mask's bits from the shared word, without waking anyone
// (clearing can never satisfy a waiter's predicate). Idempotent: clearing
// bits that are not set is a no-op (spec invariant 10).
func (e *EventFlags) Clear(mask uint32) {
	e.k.mu.Lock()
	e.mask &^= mask
	e.k.mu.Unlock()
}

// Wait blocks the calling thread until the shared mask satisfies (mask,
// mode), a timeout elapses, or it is interrupted, returning the mask as
// observed at the moment the predicate was satisfied.
func (e *EventFlags) Wait(mask uint32, mode FlagsMode, timeout Duration) (uint32, Status) {
	k := e.k
	if k.InHandlerMode() {
		return 0, ErrPermission
	}
	self := k.current

	k.mu.Lock()
	if flagsSatisfied(e.mask, mask, mode) {
		observed := e.mask
		if mode.clear() {
			e.mask &^= mask
		}
		k.mu.Unlock()
		return observed, OK
	}
	self.flagsWaiting = true
	self.flagsWaitMask = mask
	self.flagsWaitMode = mode
	insertPriorityOrdered(&e.waitingList, self)

	var deadlineSet bool
	if timeout != TimeoutNone {
		k.sysclock.armClockNodeLocked(self, timeout)
		deadlineSet = true
	}
	k.parkSelfLocked(self, StateSuspended)
	if deadlineSet {
		k.sysclock.disarmClockNode(self)
	}

	result := self.waitResult
	observed := self.flagsObserved
	self.flagsWaiting = false
	if result != OK {
		return 0, result
	}
	return observed, OK
}
