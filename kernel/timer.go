package kernel

import (
	"sync"

	"rtoscore/internal/dlist"
)

// Timer is a one-shot or periodic software timer (spec §4.9), armed against
// the sysclock's tick stream. Its callback never runs on the tick/ISR path:
// OnTick only decides which timers are due and hands them to a dedicated
// timer-service goroutine, so a slow or blocking callback cannot stall the
// scheduler or another ISR.
type Timer struct {
	k *Kernel

	node dlist.Node[*Timer]

	deadline int64
	period   int64 // 0 means one-shot
	armed    bool
	callback func()
}

// NewTimer constructs a timer bound to callback, initially disarmed.
func (k *Kernel) NewTimer(callback func()) *Timer {
	t := &Timer{k: k, callback: callback}
	t.node.Value = t
	return t
}

func insertTimerOrdered(list *dlist.List[*Timer], t *Timer) {
	for n := list.Front(); n != nil; n = list.Next(n) {
		if n.Value.deadline > t.deadline {
			list.InsertBefore(n, &t.node)
			return
		}
	}
	list.PushBack(&t.node)
}

// Start arms the timer to first fire after delay ticks, then, if period is
// nonzero, every period ticks thereafter at a fixed rate: each re-arm is
// computed from the previous deadline, not from when the callback actually
// ran, so callback latency never accumulates drift (spec scenario S6).
// Starting an already-armed timer re-arms it from now.
func (t *Timer) Start(delay, period Duration) Status {
	if delay <= 0 {
		return ErrInvalid
	}
	k := t.k
	k.mu.Lock()
	defer k.mu.Unlock()
	if t.armed {
		k.timerList.Remove(&t.node)
	}
	t.deadline = k.sysclock.ticks + int64(delay)
	t.period = int64(period)
	if t.period < 0 {
		t.period = 0
	}
	t.armed = true
	insertTimerOrdered(&k.timerList, t)
	return OK
}

// Stop disarms the timer; a callback already handed to the timer-service
// goroutine still runs to completion. Stopping an already-disarmed timer is
// a no-op that returns OK.
func (t *Timer) Stop() Status {
	k := t.k
	k.mu.Lock()
	defer k.mu.Unlock()
	if !t.armed {
		return OK
	}
	t.armed = false
	k.timerList.Remove(&t.node)
	return OK
}

// IsArmed reports whether the timer is currently scheduled to fire.
func (t *Timer) IsArmed() bool {
	k := t.k
	k.mu.Lock()
	defer k.mu.Unlock()
	return t.armed
}

// timerTick pulls every timer due at or before now off k.timerList,
// re-arms the periodic ones at a fixed rate, and queues each for the
// timer-service goroutine to run. Must not be called with k.mu held.
func (k *Kernel) timerTick(now int64) {
	k.mu.Lock()
	var due []*Timer
	for {
		n := k.timerList.Front()
		if n == nil || n.Value.deadline > now {
			break
		}
		t := n.Value
		k.timerList.Remove(n)
		if t.period > 0 {
			t.deadline += t.period
			// Missed one or more full periods (e.g. after a long stall): skip
			// them instead of firing a burst, staying on the fixed-rate grid.
			for t.deadline <= now {
				t.deadline += t.period
			}
			insertTimerOrdered(&k.timerList, t)
		} else {
			t.armed = false
		}
		due = append(due, t)
	}
	k.mu.Unlock()

	for _, t := range due {
		k.timerSvc.submit(t.callback)
	}
}

// timerService runs armed timers' callbacks on its own goroutine, decoupled
// from OnTick's caller so a callback can never block a tick source or an
// ISR.
type timerService struct {
	mu    sync.Mutex
	cond  *sync.Cond
	queue []func()
	done  bool
}

func newTimerService() *timerService {
	s := &timerService{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (s *timerService) submit(cb func()) {
	s.mu.Lock()
	s.queue = append(s.queue, cb)
	s.mu.Unlock()
	s.cond.Signal()
}

func (s *timerService) run() {
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.done {
			s.cond.Wait()
		}
		if s.done && len(s.queue) == 0 {
			s.mu.Unlock()
			return
		}
		cb := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()
		cb()
	}
}

func (s *timerService) stop() {
	s.mu.Lock()
	s.done = true
	s.mu.Unlock()
	s.cond.Broadcast()
}
