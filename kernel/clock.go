package kernel

import (
	"rtoscore/internal/dlist"
)

// Duration is expressed in ticks, not wall-clock time: every timeout and
// sleep in this package is a tick count (spec's Tick glossary entry).
type Duration int64

// TimeoutNone means "block indefinitely" for the Duration-typed timeout
// parameters accepted by the blocking primitives.
const TimeoutNone Duration = -1

// SysClock is the monotonic tick clock: ticks advance only via OnTick, never
// from wall-clock time directly, which is what makes tick-exact tests (and
// scenarios S5/S6) deterministic. It owns the timestamp-ordered sleep list
// threaded waits are armed against.
type SysClock struct {
	k     *Kernel
	ticks int64

	sleepList dlist.List[*Thread]
}

func newSysClock(k *Kernel) *SysClock {
	c := &SysClock{k: k}
	c.sleepList.Init()
	return c
}

// Ticks returns the current tick count. Safe from any context.
func (c *SysClock) Ticks() int64 {
	c.k.mu.Lock()
	defer c.k.mu.Unlock()
	return c.ticks
}

// armClockNodeLocked links self into the sleep list at ticks+timeout,
// ascending-timestamp, FIFO within a tie. Callers must hold k.mu.
func (c *SysClock) armClockNodeLocked(self *Thread, timeout Duration) {
	self.deadline = c.ticks + int64(timeout)
	for n := c.sleepList.Front(); n != nil; n = c.sleepList.Next(n) {
		if n.Value.deadline > self.deadline {
			c.sleepList.InsertBefore(n, &self.clockNode)
			return
		}
	}
	c.sleepList.PushBack(&self.clockNode)
}

// disarmClockNode unlinks t from the sleep list if it is still there (a
// no-op if the tick handler already removed it on expiry).
func (c *SysClock) disarmClockNode(t *Thread) {
	c.k.mu.Lock()
	c.sleepList.Remove(&t.clockNode)
	c.k.mu.Unlock()
}

// OnTick advances the sysclock by one tick, wakes every sleeping or
// timed-waiting thread whose deadline has now passed (with ErrTimeout,
// through finishTimedWaitLocked, which also unlinks a timed waiter from its
// primitive's waiting list), and hands every timer now due to the timer
// service. It is invoked by a port tick source, which may be a different
// goroutine than any kernel thread.
func (k *Kernel) OnTick() {
	k.EnterISR()
	defer k.ExitISR()

	k.mu.Lock()
	k.sysclock.ticks++
	now := k.sysclock.ticks
	var woken []*Thread
	for {
		n := k.sysclock.sleepList.Front()
		if n == nil || n.Value.deadline > now {
			break
		}
		t := n.Value
		k.sysclock.sleepList.Remove(n)
		woken = append(woken, t)
	}
	for _, t := range woken {
		finishTimedWaitLocked(k, t, ErrTimeout)
	}
	k.mu.Unlock()

	if len(woken) > 0 {
		k.mu.Lock()
		k.pendingSwitch = true
		k.mu.Unlock()
	}

	k.timerTick(now)
}

// finishTimedWaitLocked handles a clock-node expiry for t, regardless of
// which primitive (if any) t is also parked on: if t is still linked into a
// priority-ordered waiting list, it is pulled out of that list too, so the
// timeout wins over the event. Callers must hold k.mu.
func finishTimedWaitLocked(k *Kernel, t *Thread, result Status) {
	if t.state != StateSuspended {
		return
	}
	if t.flagsWaiting {
		t.flagsWaiting = false
	}
	removeFromWaitList(t)
	k.wakeLocked(t, result)
}

// RTClock reports wall-clock time as the sysclock plus a settable offset
// (spec §4.10). It never owns its own tick source.
type RTClock struct {
	sys    *SysClock
	offset int64
}

func newRTClock(sys *SysClock) *RTClock { return &RTClock{sys: sys} }

// Now returns sysclock ticks plus the current offset.
func (c *RTClock) Now() int64 { return c.sys.Ticks() + c.offset }

// SteadyNow ignores the offset and returns raw sysclock ticks.
func (c *RTClock) SteadyNow() int64 { return c.sys.Ticks() }

// GetOffset returns the current epoch offset, in ticks.
func (c *RTClock) GetOffset() int64 { return c.offset }

// SetOffset sets the epoch offset, in ticks.
func (c *RTClock) SetOffset(offset int64) { c.offset = offset }

// SleepFor blocks the calling thread for timeout ticks. Per spec §4.10,
// ordinary expiry is reported as ErrTimeout, not OK — a sleep's normal
// completion *is* its clock node expiring; ErrInterrupted is reserved for
// being woken early by a reset/destroy on whatever it was also parked on. A
// non-positive timeout returns ErrTimeout immediately without yielding.
func (k *Kernel) SleepFor(timeout Duration) Status {
	if k.InHandlerMode() {
		return ErrPermission
	}
	if timeout <= 0 {
		return ErrTimeout
	}
	self := k.current
	k.mu.Lock()
	k.sysclock.armClockNodeLocked(self, timeout)
	k.parkSelfLocked(self, StateSuspended)
	return self.waitResult
}

// SleepUntil blocks the calling thread until the sysclock reaches
// timestamp, returning ErrTimeout on ordinary expiry. If timestamp is
// already in the past (spec scenario S5), it returns ErrTimeout
// immediately without yielding or counting a context switch.
func (k *Kernel) SleepUntil(timestamp int64) Status {
	if k.InHandlerMode() {
		return ErrPermission
	}
	self := k.current

	k.mu.Lock()
	now := k.sysclock.ticks
	if timestamp <= now {
		k.mu.Unlock()
		return ErrTimeout
	}
	self.deadline = timestamp
	inserted := false
	for n := k.sysclock.sleepList.Front(); n != nil; n = k.sysclock.sleepList.Next(n) {
		if n.Value.deadline > timestamp {
			k.sysclock.sleepList.InsertBefore(n, &self.clockNode)
			inserted = true
			break
		}
	}
	if !inserted {
		k.sysclock.sleepList.PushBack(&self.clockNode)
	}
	k.parkSelfLocked(self, StateSuspended)
	return self.waitResult
}

// WaitFor is the primitive-facing equivalent of SleepFor, used by blocking
// primitives that need a plain tick deadline without any other wait
// condition (e.g. a bare delay with no event to also watch for).
func (k *Kernel) WaitFor(timeout Duration) Status { return k.SleepFor(timeout) }
