package kernel

import "rtoscore/internal/dlist"

// Cond is a condition variable (spec §4.4): waiters atomically release
// their associated mutex and block, re-acquiring it before Wait returns
// regardless of why it returned.
type Cond struct {
	k           *Kernel
	waitingList dlist.List[*Thread]
}

// NewCond constructs a condition variable.
func (k *Kernel) NewCond() *Cond {
	c := &Cond{k: k}
	c.waitingList.Init()
	return c
}

// Wait atomically releases mtx (which the caller must already hold) and
// blocks on the condition variable, then re-acquires mtx before returning.
// Callers must loop on their own predicate: a wake here only means a
// signal, broadcast, timeout, or interruption occurred, not that the
// predicate holds.
func (c *Cond) Wait(mtx *Mutex, timeout Duration) Status {
	k := c.k
	if k.InHandlerMode() {
		return ErrPermission
	}
	self := k.current

	k.mu.Lock()
	if status := mtx.unlockLocked(self); status != OK {
		k.mu.Unlock()
		return status
	}
	insertPriorityOrdered(&c.waitingList, self)
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

	if lockErr := mtx.Lock(); lockErr != OK && result == OK {
		result = lockErr
	}
	return result
}

// Signal wakes the single highest-priority-oldest waiter, if any.
func (c *Cond) Signal() {
	k := c.k
	k.mu.Lock()
	self := k.current
	n := c.waitingList.PopFront()
	if n == nil {
		k.mu.Unlock()
		return
	}
	t := n.Value
	t.waitList = nil
	k.wakeLocked(t, OK)
	k.mu.Unlock()
	k.maybePreempt(self)
}

// Broadcast wakes every thread currently waiting (not future waiters).
func (c *Cond) Broadcast() {
	k := c.k
	k.mu.Lock()
	self := k.current
	var woke bool
	for n := c.waitingList.PopFront(); n != nil; n = c.waitingList.PopFront() {
		t := n.Value
		t.waitList = nil
		k.wakeLocked(t, OK)
		woke = true
	}
	k.mu.Unlock()
	if woke {
		k.maybePreempt(self)
	}
}
