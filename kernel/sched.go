package kernel

import (
	"math/bits"
	"sync"

	"golang.org/x/sync/errgroup"

	"rtoscore/internal/dlist"
	"rtoscore/port"
)

// Priority is a small bounded integer; higher numeric value means higher
// urgency (spec §3, §5).
type Priority int

// NumPriorityLevels bounds the priority range to [PrioIdle, NumPriorityLevels).
// A bitmap of this many bits drives O(1) highest-priority selection.
const NumPriorityLevels = 64

// PrioIdle is the lowest priority level, reserved for the kernel's own idle
// thread. User threads should use priorities above it.
const PrioIdle Priority = 0

// MaxPriority is the highest assignable thread priority.
const MaxPriority Priority = NumPriorityLevels - 1

// ThreadState is a node in the thread lifecycle state machine (spec §4.2).
type ThreadState int

const (
	StateUndefined ThreadState = iota
	StateReady
	StateRunning
	StateSuspended
	StateTerminated
	StateDestroyed
)

func (s ThreadState) String() string {
	switch s {
	case StateUndefined:
		return "undefined"
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateSuspended:
		return "suspended"
	case StateTerminated:
		return "terminated"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Kernel is the scheduler: a bitmap-indexed set of per-priority ready lists,
// the currently running thread, the scheduler-lock and simulated-ISR
// nesting counters, and the clocks. mu is the single coarse-grained lock
// that stands in for "interrupts disabled" across this implementation —
// every mutation of scheduler-owned state happens while holding it, and it
// is always released before a context switch actually parks a goroutine, so
// it can never be held across a blocking channel operation.
type Kernel struct {
	mu sync.Mutex

	p port.Interface

	readyBitmap uint64
	readyLists  [NumPriorityLevels]dlist.List[*Thread]

	current *Thread
	idle    *Thread

	started   bool
	lockDepth uint32

	isrDepth     uint32
	pendingSwitch bool

	switchCount uint64

	sysclock *SysClock
	rtclock  *RTClock

	timerList dlist.List[*Timer]
	timerSvc  *timerService

	threads  errgroup.Group
	tickStop func()

	boot bootHandle
}

// bootHandle is the synthetic ThreadHandle Start hands off from. Nothing
// ever wakes it again, so Start genuinely never returns, matching spec §4.1.
type bootHandle struct {
	resume chan struct{}
}

func (b *bootHandle) Park() { <-b.resume }
func (b *bootHandle) Wake() {
	select {
	case b.resume <- struct{}{}:
	default:
	}
}

// NewKernel wires a scheduler to the given port and its sysclock/rtclock.
func NewKernel(p port.Interface) *Kernel {
	k := &Kernel{p: p, boot: bootHandle{resume: make(chan struct{}, 1)}}
	for i := range k.readyLists {
		k.readyLists[i].Init()
	}
	k.sysclock = newSysClock(k)
	k.rtclock = newRTClock(k.sysclock)
	k.timerList.Init()
	k.timerSvc = newTimerService()
	go k.timerSvc.run()
	return k
}

// SysClock returns the kernel's monotonic tick clock.
func (k *Kernel) SysClock() *SysClock { return k.sysclock }

// RTClock returns the kernel's wall-clock-offset clock.
func (k *Kernel) RTClock() *RTClock { return k.rtclock }

// Initialize sets up internal structures. It is idempotent and must not be
// called from ISR context.
func (k *Kernel) Initialize() {
	if k.InHandlerMode() {
		k.panicf(ErrPermission, "Initialize called from ISR context")
		return
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.idle == nil {
		k.idle = newIdleThread(k)
	}
}

// Start selects the highest-priority ready thread (creating the idle thread
// first if Initialize has not already done so) and hands control to it. Like the
// spec's contract, it never returns: the synthetic boot handle it switches
// away from is never woken again.
func (k *Kernel) Start() {
	k.Initialize()

	k.mu.Lock()
	next := k.popHighestReady()
	k.current = next
	next.state = StateRunning
	k.started = true
	k.switchCount++
	k.mu.Unlock()

	k.p.ContextSwitch(&k.boot, next)
}

// Current returns the presently running thread.
func (k *Kernel) Current() *Thread {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.current
}

// IsStarted reports whether Start has been called.
func (k *Kernel) IsStarted() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.started
}

// IsLocked reports whether the scheduler is currently locked.
func (k *Kernel) IsLocked() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.lockDepth > 0
}

// Lock sets the scheduler-locked state (deferring context switches while
// leaving interrupts enabled) and returns the prior depth for Unlock.
// Locking from ISR is a no-op, but still reports the prior state.
func (k *Kernel) Lock() uint32 {
	k.mu.Lock()
	defer k.mu.Unlock()
	prior := k.lockDepth
	if k.isrDepth == 0 {
		k.lockDepth++
	}
	return prior
}

// Unlock restores the scheduler-lock depth saved by a matching Lock call. If
// this transitions locked→unlocked and a higher-priority thread became ready
// while locked, a reschedule happens before Unlock returns.
func (k *Kernel) Unlock(prior uint32) {
	k.mu.Lock()
	k.lockDepth = prior
	unlocking := prior == 0
	pending := k.pendingSwitch
	self := k.current
	if unlocking {
		k.pendingSwitch = false
	}
	k.mu.Unlock()

	if unlocking && pending {
		k.maybePreempt(self)
	}
}

// Yield switches away from the calling thread if it is no longer the
// highest-priority ready thread; otherwise it returns immediately. Unlike
// the passive preemption check other operations perform, Yield also steps
// aside for threads of *equal* priority, which is how FIFO rotation within a
// priority level happens.
func (k *Kernel) Yield() {
	self := k.current

	k.mu.Lock()
	next, ok := k.peekHighestReady()
	if !ok || next.effectivePriority() < self.effectivePriority() {
		k.mu.Unlock()
		return
	}
	next = k.popHighestReady()
	k.enqueueReady(self)
	k.current = next
	next.state = StateRunning
	k.switchCount++
	k.mu.Unlock()

	k.p.ContextSwitch(self, next)
}

// Wait blocks until every thread goroutine spawned through the kernel has
// returned. Intended for host harnesses and tests that want a clean
// shutdown point; a running embedded target would never call it.
func (k *Kernel) Wait() error { return k.threads.Wait() }

// CriticalEnter/CriticalExit expose the port's raw interrupt mask, for the
// facade's "interrupts" family (spec §6) — these never touch scheduler
// state, just the port.
func (k *Kernel) CriticalEnter() uint32    { return k.p.IRQSave() }
func (k *Kernel) CriticalExit(prior uint32) { k.p.IRQRestore(prior) }

// EnterISR marks the start of a simulated interrupt-handler bracket; pair
// with ExitISR. Scheduling decisions taken while inside the bracket are
// deferred until the outermost ExitISR, per spec §5's ISR discipline.
func (k *Kernel) EnterISR() {
	k.mu.Lock()
	k.isrDepth++
	k.mu.Unlock()
}

// ExitISR closes a simulated interrupt-handler bracket opened by EnterISR.
// On the outermost exit, if a wake occurred inside the bracket that could
// preempt the current thread, the reschedule happens now.
func (k *Kernel) ExitISR() {
	k.mu.Lock()
	k.isrDepth--
	exiting := k.isrDepth == 0
	pending := k.pendingSwitch
	self := k.current
	if exiting {
		k.pendingSwitch = false
	}
	k.mu.Unlock()

	if exiting && pending {
		k.maybePreempt(self)
	}
}

// InHandlerMode reports whether the kernel believes it is presently
// executing inside a simulated interrupt-handler bracket.
func (k *Kernel) InHandlerMode() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.isrDepth > 0
}

// spawnThread starts entry as a tracked goroutine, so Wait can observe when
// every thread the kernel ever created has finished.
func (k *Kernel) spawnThread(entry func()) {
	k.threads.Go(func() error {
		k.p.Spawn(entry)
		return nil
	})
}

// --- ready queue internals; callers must hold k.mu. ---

func (k *Kernel) highestReadyPrio() (Priority, bool) {
	if k.readyBitmap == 0 {
		return 0, false
	}
	return Priority(bits.Len64(k.readyBitmap) - 1), true
}

func (k *Kernel) peekHighestReady() (*Thread, bool) {
	p, ok := k.highestReadyPrio()
	if !ok {
		return nil, false
	}
	n := k.readyLists[p].Front()
	if n == nil {
		return nil, false
	}
	return n.Value, true
}

func (k *Kernel) popHighestReady() *Thread {
	p, ok := k.highestReadyPrio()
	if !ok {
		return nil
	}
	n := k.readyLists[p].PopFront()
	if k.readyLists[p].Empty() {
		k.readyBitmap &^= 1 << uint(p)
	}
	if n == nil {
		return nil
	}
	return n.Value
}

func (k *Kernel) enqueueReady(t *Thread) {
	t.state = StateReady
	k.readyLists[t.effectivePriority()].PushBack(&t.waitingNode)
	k.readyBitmap |= 1 << uint(t.effectivePriority())
}

func (k *Kernel) removeFromReady(t *Thread) {
	p := t.effectivePriority()
	k.readyLists[p].Remove(&t.waitingNode)
	if k.readyLists[p].Empty() {
		k.readyBitmap &^= 1 << uint(p)
	}
}

// insertPriorityOrdered links t into list ordered by descending effective
// priority, FIFO within a priority level (spec §3's "priority-ordered"
// waiting list flavour). Callers must hold k.mu.
func insertPriorityOrdered(list *dlist.List[*Thread], t *Thread) {
	t.waitList = list
	for n := list.Front(); n != nil; n = list.Next(n) {
		if n.Value.effectivePriority() < t.effectivePriority() {
			list.InsertBefore(n, &t.waitingNode)
			return
		}
	}
	list.PushBack(&t.waitingNode)
}

// removeFromWaitList unlinks t from whatever priority-ordered waiting list
// it is presently in, if any. Callers must hold k.mu.
func removeFromWaitList(t *Thread) {
	if t.waitList != nil {
		t.waitList.Remove(&t.waitingNode)
		t.waitList = nil
	}
}

// parkSelfLocked must be called with k.mu held, after self has already been
// linked into whatever waiting/clock list is appropriate (or deliberately
// left off every list, for a suspend). It picks the next thread to run,
// updates bookkeeping, releases k.mu, and performs the actual handoff. It
// returns once self has been woken back in and is current again; k.mu is
// not held on return.
func (k *Kernel) parkSelfLocked(self *Thread, state ThreadState) {
	self.state = state
	next := k.popHighestReady()
	if next == nil {
		// The idle thread guarantees this never happens once started; if it
		// does, there is nothing left to run.
		k.mu.Unlock()
		k.panicf(ErrNotRecoverable, "no ready thread to schedule")
		return
	}
	k.current = next
	next.state = StateRunning
	k.switchCount++
	k.mu.Unlock()

	k.p.ContextSwitch(self, next)
}

// wakeLocked moves t out of whatever wait state it was in (caller must have
// already unlinked it from any waiting/clock list) and back onto the ready
// queue, recording the reason it woke. Callers must hold k.mu; it does not
// itself decide whether to preempt — call maybePreempt afterwards, once
// k.mu is released.
func (k *Kernel) wakeLocked(t *Thread, result Status) {
	t.waitResult = result
	k.enqueueReady(t)
}

// maybePreempt re-evaluates the ready queue against self (normally the
// currently running thread) and switches away if a strictly higher-priority
// thread is now ready. If called while inside a simulated ISR bracket or
// while the scheduler is locked, the decision is deferred instead.
func (k *Kernel) maybePreempt(self *Thread) {
	k.mu.Lock()
	if k.isrDepth > 0 || k.lockDepth > 0 {
		k.pendingSwitch = true
		k.mu.Unlock()
		return
	}
	next, ok := k.peekHighestReady()
	if !ok || next.effectivePriority() <= self.effectivePriority() {
		k.mu.Unlock()
		return
	}
	next = k.popHighestReady()
	k.enqueueReady(self)
	k.current = next
	next.state = StateRunning
	k.switchCount++
	k.mu.Unlock()

	k.p.ContextSwitch(self, next)
}

// checkPendingSwitch lets a thread re-check, at a kernel entry point of its
// own choosing, whether a tick or timer wake that happened while it was
// running (and so could not be handed off to mid-instruction on the host
// port) should now take effect.
func (k *Kernel) checkPendingSwitch(self *Thread) {
	k.mu.Lock()
	pending := k.pendingSwitch
	k.pendingSwitch = false
	k.mu.Unlock()
	if pending {
		k.maybePreempt(self)
	}
}
