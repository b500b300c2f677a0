package kernel

import "rtoscore/internal/dlist"

// MutexType selects re-lock-by-owner behavior (spec §4.3).
type MutexType uint8

const (
	MutexNormal MutexType = iota
	MutexRecursive
	MutexErrorCheck
)

// MutexProtocol selects the priority-boosting discipline applied to a
// mutex's owner while it is contended.
type MutexProtocol uint8

const (
	ProtocolNone MutexProtocol = iota
	ProtocolInherit
	ProtocolProtect
)

// MutexAttr configures NewMutex.
type MutexAttr struct {
	Type        MutexType
	Protocol    MutexProtocol
	CeilingPrio Priority // meaningful only for ProtocolProtect
	Robust      bool
}

// Mutex implements spec §4.3: normal/recursive/errorcheck ownership rules,
// none/inherit/protect priority-boosting protocols, and the robust/
// recoverable owner-death contract.
type Mutex struct {
	k *Kernel

	typ      MutexType
	protocol MutexProtocol
	ceiling  Priority
	robust   bool

	owner          *Thread
	recursionCount int

	inconsistent   bool
	consistent     bool
	notRecoverable bool

	waitingList dlist.List[*Thread]
}

// NewMutex constructs a mutex, initialized in place; there is no heap
// allocation beyond the returned struct itself.
func (k *Kernel) NewMutex(attr MutexAttr) *Mutex {
	m := &Mutex{k: k, typ: attr.Type, protocol: attr.Protocol, ceiling: attr.CeilingPrio, robust: attr.Robust}
	m.waitingList.Init()
	return m
}

// ceilingContributionLocked reports the priority boost this mutex
// presently contributes to its owner: the static ceiling for PROTECT, or
// the highest waiter's priority for INHERIT (PrioIdle, i.e. none, if
// uncontended). Callers must hold k.mu.
func (m *Mutex) ceilingContributionLocked() Priority {
	switch m.protocol {
	case ProtocolProtect:
		return m.ceiling
	case ProtocolInherit:
		if n := m.waitingList.Front(); n != nil {
			return n.Value.effectivePriority()
		}
		return PrioIdle
	default:
		return PrioIdle
	}
}

func removeHeldMutex(t *Thread, m *Mutex) {
	for i, h := range t.heldMutexes {
		if h == m {
			t.heldMutexes = append(t.heldMutexes[:i], t.heldMutexes[i+1:]...)
			return
		}
	}
}

// Lock acquires the mutex, blocking if it is already held. See spec §4.3
// for the full algorithm; notable return values beyond OK: ErrDeadlock
// (errorcheck, already owner), ErrInvalid (protect, caller exceeds
// ceiling), ErrOwnerDead (robust, prior owner terminated without
// unlocking — the caller now owns it and must call MarkConsistent),
// ErrNotRecoverable (robust, a previous owner-death was never recovered),
// ErrTimeout/ErrInterrupted from the blocking path.
func (k *Kernel) lockMutex(m *Mutex, timeout Duration) Status {
	if k.InHandlerMode() {
		return ErrPermission
	}
	self := k.current

	k.mu.Lock()
	if m.notRecoverable {
		k.mu.Unlock()
		return ErrNotRecoverable
	}
	if m.protocol == ProtocolProtect && self.effectivePriority() > m.ceiling {
		k.mu.Unlock()
		return ErrInvalid
	}

	if m.owner == nil {
		m.owner = self
		m.recursionCount = 1
		self.heldMutexes = append(self.heldMutexes, m)
		k.recomputeAndPropagateLocked(self)
		k.mu.Unlock()
		return OK
	}
	if m.owner == self {
		switch m.typ {
		case MutexRecursive:
			m.recursionCount++
			k.mu.Unlock()
			return OK
		case MutexErrorCheck:
			k.mu.Unlock()
			return ErrDeadlock
		default:
			k.mu.Unlock()
			assertf(false, "normal mutex %p re-locked by its own owner", m)
			return ErrDeadlock
		}
	}

	// Contended: block, priority-ordered, then let the waker decide our fate.
	self.blockedOnMutex = m
	insertPriorityOrdered(&m.waitingList, self)
	if m.protocol == ProtocolInherit {
		k.recomputeAndPropagateLocked(m.owner)
	}
	var deadlineSet bool
	if timeout != TimeoutNone {
		k.sysclock.armClockNodeLocked(self, timeout)
		deadlineSet = true
	}
	k.parkSelfLocked(self, StateSuspended)
	if deadlineSet {
		k.sysclock.disarmClockNode(self)
	}
	self.blockedOnMutex = nil

	result := self.waitResult
	if result == OK && self.ownerDeadPending {
		self.ownerDeadPending = false
		return ErrOwnerDead
	}
	self.ownerDeadPending = false
	return result
}

// Lock blocks indefinitely until the mutex is acquired.
func (m *Mutex) Lock() Status { return m.k.lockMutex(m, TimeoutNone) }

// TimedLock blocks until the mutex is acquired or timeout ticks elapse.
func (m *Mutex) TimedLock(timeout Duration) Status { return m.k.lockMutex(m, timeout) }

// TryLock acquires the mutex only if it is immediately available, never
// blocking; it returns ErrWouldBlock instead of parking.
func (m *Mutex) TryLock() Status {
	k := m.k
	if k.InHandlerMode() {
		return ErrPermission
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if m.notRecoverable {
		return ErrNotRecoverable
	}
	self := k.current
	if m.protocol == ProtocolProtect && self.effectivePriority() > m.ceiling {
		return ErrInvalid
	}
	if m.owner == nil {
		m.owner = self
		m.recursionCount = 1
		self.heldMutexes = append(self.heldMutexes, m)
		k.recomputeAndPropagateLocked(self)
		return OK
	}
	if m.owner == self {
		if m.typ == MutexRecursive {
			m.recursionCount++
			return OK
		}
		if m.typ == MutexErrorCheck {
			return ErrDeadlock
		}
	}
	return ErrWouldBlock
}

// Unlock releases the mutex. Non-owner release fails with ErrPermission
// for errorcheck/recursive/robust mutexes; for a plain normal mutex it is
// undefined behavior (an assertion failure in debug builds, per §7).
func (m *Mutex) Unlock() Status {
	k := m.k
	self := k.current

	k.mu.Lock()
	status := m.unlockLocked(self)
	k.mu.Unlock()

	if status == OK {
		k.maybePreempt(self)
	}
	return status
}

// unlockLocked performs the full release algorithm assuming k.mu is already
// held: ownership/recursion checks, priority-floor recomputation, and
// hand-off to the highest-priority waiter (or, once notRecoverable, waking
// every waiter with that status instead). It never itself decides whether
// to preempt — callers still holding k.mu should do that once they release
// it. Split out of Unlock so Cond.Wait can release the mutex and link onto
// its own waiting list within a single atomic critical section.
func (m *Mutex) unlockLocked(self *Thread) Status {
	k := m.k
	if m.owner != self {
		if m.typ == MutexNormal && !m.robust {
			assertf(false, "mutex %p unlocked by non-owner", m)
		}
		return ErrPermission
	}

	m.recursionCount--
	if m.recursionCount > 0 {
		return OK
	}

	if m.inconsistent && !m.consistent {
		m.notRecoverable = true
	}
	m.consistent = false
	removeHeldMutex(self, m)
	m.owner = nil
	k.recomputeAndPropagateLocked(self)

	if m.notRecoverable {
		// No further handoff: every future Lock sees ErrNotRecoverable.
		for n := m.waitingList.PopFront(); n != nil; n = m.waitingList.PopFront() {
			w := n.Value
			w.waitList = nil
			w.blockedOnMutex = nil
			k.wakeLocked(w, ErrNotRecoverable)
		}
	} else if n := m.waitingList.PopFront(); n != nil {
		woken := n.Value
		woken.waitList = nil
		woken.blockedOnMutex = nil
		m.owner = woken
		m.recursionCount = 1
		woken.heldMutexes = append(woken.heldMutexes, m)
		k.recomputeAndPropagateLocked(woken)
		k.wakeLocked(woken, OK)
	}
	return OK
}

// forceReleaseOnOwnerDeathLocked runs as part of a thread's Exit, for every
// mutex it still held. A non-robust mutex is left exactly as it was —
// permanently owned by a thread that no longer exists, which is undefined
// behavior by contract (spec §4.3 only specifies robust mutexes here). A
// robust mutex is marked inconsistent and its highest-priority waiter, if
// any, becomes the new owner and will see ErrOwnerDead from Lock. Callers
// must hold k.mu.
func (m *Mutex) forceReleaseOnOwnerDeathLocked(k *Kernel) {
	if !m.robust {
		return
	}
	m.inconsistent = true
	m.consistent = false
	m.owner = nil
	m.recursionCount = 0
	n := m.waitingList.PopFront()
	if n == nil {
		return
	}
	waiter := n.Value
	waiter.waitList = nil
	waiter.blockedOnMutex = nil
	waiter.ownerDeadPending = true
	m.owner = waiter
	m.recursionCount = 1
	waiter.heldMutexes = append(waiter.heldMutexes, m)
	k.recomputeAndPropagateLocked(waiter)
	k.wakeLocked(waiter, OK)
}

// Reset forcibly releases a held mutex and wakes every waiter with
// ErrInterrupted, discarding ownership and inconsistency state (the spec's
// own recommended behavior for the otherwise-unspecified reset-while-held
// case).
func (m *Mutex) Reset() {
	k := m.k
	k.mu.Lock()
	if owner := m.owner; owner != nil {
		removeHeldMutex(owner, m)
		k.recomputeAndPropagateLocked(owner)
	}
	m.owner = nil
	m.recursionCount = 0
	m.inconsistent = false
	m.consistent = false
	m.notRecoverable = false
	for n := m.waitingList.PopFront(); n != nil; n = m.waitingList.PopFront() {
		w := n.Value
		w.waitList = nil
		w.blockedOnMutex = nil
		k.wakeLocked(w, ErrInterrupted)
	}
	self := k.current
	k.mu.Unlock()
	k.checkPendingSwitch(self)
}

// MarkConsistent clears the inconsistent flag after an ErrOwnerDead
// acquisition. It must be called by the current owner before that owner's
// next Unlock, or the mutex becomes permanently ErrNotRecoverable.
func (m *Mutex) MarkConsistent() Status {
	k := m.k
	k.mu.Lock()
	defer k.mu.Unlock()
	if m.owner != k.current {
		return ErrPermission
	}
	if m.inconsistent {
		m.inconsistent = false
		m.consistent = true
	}
	return OK
}

// recomputeAndPropagateLocked recalculates t's effective priority from its
// base priority and any mutex-ceiling contributions it currently holds,
// repositions it in whatever list currently holds it, and cascades the
// same recalculation to whatever thread t itself is blocked on — this is
// how priority inheritance chains through nested mutex ownership. Callers
// must hold k.mu.
func (k *Kernel) recomputeAndPropagateLocked(t *Thread) {
	for t != nil {
		floor := t.basePrio
		for _, m := range t.heldMutexes {
			if c := m.ceilingContributionLocked(); c > floor {
				floor = c
			}
		}
		if floor == t.effPrio {
			return
		}
		// The ready queue is indexed by effPrio, so unlink under the old value.
		if t.state == StateReady {
			k.removeFromReady(t)
		}
		t.effPrio = floor
		switch {
		case t.state == StateReady:
			k.enqueueReady(t)
		case t.waitList != nil:
			t.waitList.Remove(&t.waitingNode)
			insertPriorityOrdered(t.waitList, t)
		}
		if t.blockedOnMutex == nil {
			return
		}
		t = t.blockedOnMutex.owner
	}
}
