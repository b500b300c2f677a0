package kernel

import "rtoscore/internal/dlist"

// Semaphore is a counting (or, when Max == 1, binary) semaphore (spec
// §4.5). Post is legal from ISR; the blocking Wait variants are not.
type Semaphore struct {
	k *Kernel

	count, initial, max int

	waitingList dlist.List[*Thread]
}

// SemaphoreAttr configures NewSemaphore.
type SemaphoreAttr struct {
	Initial int
	Max     int // 0 means unbounded-in-practice (int max); 1 makes it binary
}

// NewSemaphore constructs a semaphore initialized to attr.Initial.
func (k *Kernel) NewSemaphore(attr SemaphoreAttr) *Semaphore {
	max := attr.Max
	if max <= 0 {
		max = int(^uint(0) >> 1)
	}
	s := &Semaphore{k: k, count: attr.Initial, initial: attr.Initial, max: max}
	s.waitingList.Init()
	return s
}

// Post increments the count and wakes one waiter, or fails with ErrAgain if
// the semaphore is already at its maximum. Legal from ISR: scheduling
// decisions taken here are deferred to ISR exit, per spec §5.
func (s *Semaphore) Post() Status {
	k := s.k
	fromISR := k.InHandlerMode()

	k.mu.Lock()
	if s.count >= s.max {
		k.mu.Unlock()
		return ErrAgain
	}
	s.count++
	var woken *Thread
	if n := s.waitingList.PopFront(); n != nil {
		woken = n.Value
		woken.waitList = nil
		s.count--
		k.wakeLocked(woken, OK)
	}
	self := k.current
	k.mu.Unlock()

	if woken == nil {
		return OK
	}
	if fromISR {
		k.mu.Lock()
		k.pendingSwitch = true
		k.mu.Unlock()
		return OK
	}
	k.maybePreempt(self)
	return OK
}

func (k *Kernel) waitSemaphore(s *Semaphore, timeout Duration) Status {
	if k.InHandlerMode() {
		return ErrPermission
	}
	self := k.current

	k.mu.Lock()
	if s.count > 0 {
		s.count--
		k.mu.Unlock()
		return OK
	}
	insertPriorityOrdered(&s.waitingList, self)
	var deadlineSet bool
	if timeout != TimeoutNone {
		k.sysclock.armClockNodeLocked(self, timeout)
		deadlineSet = true
	}
	k.parkSelfLocked(self, StateSuspended)
	if deadlineSet {
		k.sysclock.disarmClockNode(self)
	}
	return self.waitResult
}

// Wait blocks until the semaphore can be decremented.
func (s *Semaphore) Wait() Status { return s.k.waitSemaphore(s, TimeoutNone) }

// TimedWait blocks until the semaphore can be decremented or timeout ticks
// elapse, returning ErrTimeout on expiry.
func (s *Semaphore) TimedWait(timeout Duration) Status { return s.k.waitSemaphore(s, timeout) }

// TryWait decrements the semaphore only if it is immediately available,
// returning ErrWouldBlock instead of blocking.
func (s *Semaphore) TryWait() Status {
	k := s.k
	k.mu.Lock()
	defer k.mu.Unlock()
	if s.count > 0 {
		s.count--
		return OK
	}
	return ErrWouldBlock
}

// Reset restores the semaphore to its initial count and wakes every waiter
// with ErrInterrupted.
func (s *Semaphore) Reset() {
	k := s.k
	k.mu.Lock()
	s.count = s.initial
	for n := s.waitingList.PopFront(); n != nil; n = s.waitingList.PopFront() {
		t := n.Value
		t.waitList = nil
		k.wakeLocked(t, ErrInterrupted)
	}
	self := k.current
	k.mu.Unlock()
	k.checkPendingSwitch(self)
}

// Count returns the current count.
func (s *Semaphore) Count() int {
	s.k.mu.Lock()
	defer s.k.mu.Unlock()
	return s.count
}
