package kernel

import (
	"rtoscore/internal/dlist"
)

// FlagsMode selects how Kernel.FlagsWait and EventFlags.Wait evaluate and
// consume a flags mask (spec §4.2).
type FlagsMode uint8

const (
	// FlagsAny is satisfied by at least one bit in the requested mask being
	// set (or, if mask == 0, by any bit at all).
	FlagsAny FlagsMode = 0
	// FlagsAll requires every bit in the requested mask to be set.
	FlagsAll FlagsMode = 1 << 0
	// FlagsClear clears the matched bits from the thread's mask on success.
	FlagsClear FlagsMode = 1 << 1
)

func (m FlagsMode) all() bool   { return m&FlagsAll != 0 }
func (m FlagsMode) clear() bool { return m&FlagsClear != 0 }

// ThreadAttr configures Create. Zero value selects the package defaults.
type ThreadAttr struct {
	Priority Priority
	Stack    []byte // if nil, a stack of GetDefaultStackSize() bytes is allocated
	HighWater bool  // enable stack high-water tracking (fills with a scan pattern)
}

// Thread is a kernel thread's control block. Exactly one of the ready
// queue, a primitive's waiting list, or "currently running" ever holds its
// waitingNode at a time (spec §3's single-list-residency invariant); the
// clockNode is a second, independent link used only for timed waits, so a
// thread can be linked into a primitive's waiting list and the sysclock
// sleep list simultaneously.
type Thread struct {
	k *Kernel

	name string

	basePrio Priority
	// effPrio is the priority actually used for scheduling and ready-queue
	// placement; it rises above basePrio under mutex priority inheritance
	// or the priority-ceiling protocol and is restored when the
	// contribution is released (spec §4.3).
	effPrio Priority

	state ThreadState

	stack *Stack

	entry func(arg any)
	arg   any

	exitValue  any
	waitResult Status

	eventFlagsMask uint32
	flagsWaiting   bool
	flagsWaitMask  uint32
	flagsWaitMode  FlagsMode
	flagsObserved  uint32

	parent    *Thread
	children  dlist.List[*Thread]
	childNode dlist.Node[*Thread]

	waitingNode dlist.Node[*Thread]
	// waitList is the priority-ordered list waitingNode is presently linked
	// into (nil when it holds the ready-queue linkage, or nothing). Kept so
	// SetPrio can re-insert a blocked thread at its new position without
	// every primitive needing to know about priority changes itself.
	waitList *dlist.List[*Thread]
	clockNode dlist.Node[*Thread]
	deadline  int64 // valid while clockNode.Linked()

	// heldMutexes lists every mutex this thread currently owns; used both
	// to recompute the priority floor when one is released (inherited or
	// ceiling contributions) and, on Exit, to force-release any robust
	// mutex still held (spec §4.3's owner-death contract).
	heldMutexes []*Mutex
	// blockedOnMutex is set while this thread is parked on a mutex's own
	// waiting list, so priority inheritance can walk the ownership chain;
	// nil otherwise, including while parked on any other primitive.
	blockedOnMutex *Mutex
	// ownerDeadPending is set by a robust mutex's forced hand-off when its
	// prior owner terminated without unlocking, so Lock's resume path
	// reports ErrOwnerDead instead of OK.
	ownerDeadPending bool

	joiner *Thread

	switchCount uint64
	cpuCycles   uint64

	userStorage any

	resume chan struct{}
}

func (t *Thread) effectivePriority() Priority { return t.effPrio }

// Name returns the thread's name.
func (t *Thread) Name() string { return t.name }

// State returns the thread's current lifecycle state.
func (t *Thread) State() ThreadState { return t.state }

// BasePriority returns the priority the thread was created with (or last
// set via SetPrio), ignoring any mutex-driven boost.
func (t *Thread) BasePriority() Priority { return t.basePrio }

// Priority returns the thread's current effective priority.
func (t *Thread) Priority() Priority { return t.effPrio }

// Stack returns the thread's guarded stack region.
func (t *Thread) Stack() *Stack { return t.stack }

// UserStorage returns the opaque per-thread blob a caller may have set with
// SetUserStorage.
func (t *Thread) UserStorage() any { return t.userStorage }

// SetUserStorage stores an opaque per-thread blob.
func (t *Thread) SetUserStorage(v any) { t.userStorage = v }

// Parent returns the thread that created this one, or nil for the idle
// thread and for threads created before Start (outside any kernel thread).
func (t *Thread) Parent() *Thread { return t.parent }

// Children returns the list of threads created by this thread. Entries stay
// linked after a child terminates or is joined.
func (t *Thread) Children() *dlist.List[*Thread] { return &t.children }

// Park blocks the calling goroutine until Wake is called, implementing
// port.ThreadHandle.
func (t *Thread) Park() { <-t.resume }

// Wake makes a pending or future Park call return, implementing
// port.ThreadHandle.
func (t *Thread) Wake() {
	select {
	case t.resume <- struct{}{}:
	default:
	}
}

// newIdleThread creates the kernel's always-ready lowest-priority thread.
// Its entry loop does nothing but yield, guaranteeing the ready queue is
// never empty once the scheduler has started.
func newIdleThread(k *Kernel) *Thread {
	t := &Thread{
		k:        k,
		name:     "idle",
		basePrio: PrioIdle,
		effPrio:  PrioIdle,
		stack:    NewStack(make([]byte, GetMinStackSize()), false),
		resume:   make(chan struct{}, 1),
	}
	t.waitingNode.Value = t
	t.clockNode.Value = t
	t.childNode.Value = t
	t.children.Init()
	k.spawnThread(func() {
		t.Park()
		for {
			k.Yield()
		}
	})
	k.enqueueReady(t)
	return t
}

// Create constructs a new thread as a child of the calling thread (spec
// §4.2). The new thread is placed in the ready state immediately and may
// preempt the creator if its priority is strictly higher; it does not
// require a separate resume call. entry is invoked with arg on the
// thread's own goroutine, and its return is equivalent to an explicit
// Exit(nil).
func (k *Kernel) Create(name string, entry func(arg any), arg any, attr ThreadAttr) *Thread {
	if k.InHandlerMode() {
		k.panicf(ErrPermission, "Create called from ISR context")
		return nil
	}
	if attr.Priority > MaxPriority {
		attr.Priority = MaxPriority
	}
	stackBuf := attr.Stack
	if stackBuf == nil {
		stackBuf = make([]byte, GetDefaultStackSize())
	}

	parent := k.current
	t := &Thread{
		k:        k,
		name:     name,
		basePrio: attr.Priority,
		effPrio:  attr.Priority,
		stack:    NewStack(stackBuf, attr.HighWater),
		entry:    entry,
		arg:      arg,
		parent:   parent,
		resume:   make(chan struct{}, 1),
	}
	t.waitingNode.Value = t
	t.clockNode.Value = t
	t.childNode.Value = t
	t.children.Init()

	k.mu.Lock()
	if parent != nil {
		parent.children.PushBack(&t.childNode)
	}
	k.enqueueReady(t)
	k.mu.Unlock()

	k.spawnThread(func() {
		t.Park()
		entry(arg)
		k.Exit(nil)
	})

	if parent != nil {
		k.maybePreempt(parent)
	}
	return t
}

// Exit terminates the calling thread: records its exit value, wakes its
// joiner (if any), and transitions it to terminated. It never returns.
func (k *Kernel) Exit(exitValue any) {
	self := k.current
	self.exitValue = exitValue

	k.mu.Lock()
	self.state = StateTerminated
	for _, m := range self.heldMutexes {
		m.forceReleaseOnOwnerDeathLocked(k)
	}
	self.heldMutexes = nil
	joiner := self.joiner
	self.joiner = nil
	if joiner != nil {
		k.wakeLocked(joiner, OK)
	}
	next := k.popHighestReady()
	k.current = next
	next.state = StateRunning
	k.switchCount++
	k.mu.Unlock()

	k.p.ContextSwitch(self, next)
	// Never reached: nothing ever wakes a terminated thread's resume channel.
	select {}
}

// Join blocks the calling thread until target transitions to terminated,
// then returns target's exit value. Fails with ErrPermission from ISR.
// Multiple simultaneous joiners on the same thread are not supported
// (spec's single-joiner discipline); a second Join call replaces the first.
func (k *Kernel) Join(target *Thread) (any, Status) {
	if k.InHandlerMode() {
		return nil, ErrPermission
	}
	self := k.current

	k.mu.Lock()
	if target.state == StateTerminated || target.state == StateDestroyed {
		exitValue := target.exitValue
		target.state = StateDestroyed
		k.mu.Unlock()
		return exitValue, OK
	}
	target.joiner = self
	k.parkSelfLocked(self, StateSuspended)

	result := self.waitResult
	if result != OK {
		return nil, result
	}
	exitValue := target.exitValue
	k.mu.Lock()
	target.state = StateDestroyed
	k.mu.Unlock()
	return exitValue, OK
}

// SetPrio changes a thread's base priority. If the thread is parked in a
// priority-ordered waiting list, it is re-inserted at its new position. If
// t is the calling thread and another ready thread now outranks it, this
// reschedules before returning.
func (k *Kernel) SetPrio(t *Thread, prio Priority) {
	if prio > MaxPriority {
		prio = MaxPriority
	}
	k.mu.Lock()
	t.basePrio = prio
	k.recomputeAndPropagateLocked(t)
	k.mu.Unlock()

	if t == k.current {
		k.maybePreempt(t)
	}
}

// FlagsRaise ORs mask into t's own event-flags word. If t is blocked in
// FlagsWait and its predicate now holds, it is woken (and, if its mode
// includes FlagsClear, the matched bits are cleared first). Safe from ISR.
func (k *Kernel) FlagsRaise(t *Thread, mask uint32) {
	k.mu.Lock()
	t.eventFlagsMask |= mask
	woke := k.tryWakeFlagsWaiter(t)
	k.mu.Unlock()

	if woke {
		if k.InHandlerMode() {
			k.mu.Lock()
			k.pendingSwitch = true
			k.mu.Unlock()
			return
		}
		k.maybePreempt(k.current)
	}
}

// tryWakeFlagsWaiter must be called with k.mu held. It reports whether t's
// own wait predicate was satisfied and the thread woken.
func (k *Kernel) tryWakeFlagsWaiter(t *Thread) bool {
	if t.state != StateSuspended || !t.flagsWaiting {
		return false
	}
	// A thread linked into a waiting list is blocked in EventFlags.Wait, not
	// in its own FlagsWait.
	if t.waitList != nil {
		return false
	}
	if !flagsSatisfied(t.eventFlagsMask, t.flagsWaitMask, t.flagsWaitMode) {
		return false
	}
	t.flagsObserved = t.eventFlagsMask
	if t.flagsWaitMode.clear() {
		t.eventFlagsMask &^= t.flagsWaitMask
	}
	t.flagsWaiting = false
	k.wakeLocked(t, OK)
	return true
}

func flagsSatisfied(mask, want uint32, mode FlagsMode) bool {
	if mode.all() {
		return mask&want == want
	}
	if want == 0 {
		return mask != 0
	}
	return mask&want != 0
}

// FlagsWait blocks the calling thread until its own event-flags mask
// satisfies (mask, mode), a timeout elapses, or it is interrupted. It
// returns the flags word as observed at the moment the predicate was
// satisfied (before any clearing) and the outcome status.
func (k *Kernel) FlagsWait(mask uint32, mode FlagsMode, timeout Duration) (uint32, Status) {
	self := k.current
	if k.InHandlerMode() {
		return 0, ErrPermission
	}

	k.mu.Lock()
	if flagsSatisfied(self.eventFlagsMask, mask, mode) {
		observed := self.eventFlagsMask
		if mode.clear() {
			self.eventFlagsMask &^= mask
		}
		k.mu.Unlock()
		return observed, OK
	}
	self.flagsWaiting = true
	self.flagsWaitMask = mask
	self.flagsWaitMode = mode

	var deadlineSet bool
	if timeout != TimeoutNone {
		k.sysclock.armClockNodeLocked(self, timeout)
		deadlineSet = true
	}
	k.parkSelfLocked(self, StateSuspended)
	// k.mu was released inside parkSelfLocked; self is current again here.
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

// Suspend blocks the calling thread until a matching Resume call. Fails
// with ErrPermission from ISR.
func (k *Kernel) Suspend() Status {
	self := k.current
	if k.InHandlerMode() {
		return ErrPermission
	}
	k.mu.Lock()
	k.parkSelfLocked(self, StateSuspended)
	return self.waitResult
}

// Resume moves a suspended thread back to ready. It is a reschedule point:
// if t now outranks the calling thread, this switches before returning.
func (k *Kernel) Resume(t *Thread) {
	k.mu.Lock()
	if t.state != StateSuspended {
		k.mu.Unlock()
		return
	}
	k.wakeLocked(t, OK)
	k.mu.Unlock()

	if k.InHandlerMode() {
		k.mu.Lock()
		k.pendingSwitch = true
		k.mu.Unlock()
		return
	}
	k.maybePreempt(k.current)
}
