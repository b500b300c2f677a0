package kernel

import "rtoscore/internal/dlist"

// timeoutTry is a private sentinel distinct from TimeoutNone, used
// internally to ask the blocking helpers below for "never block" behavior
// without duplicating their retry loops in separate Try* functions.
const timeoutTry Duration = -2

// msgSlot is one fixed-size message buffer inside a MessageQueue's
// preallocated storage; it is threaded onto either the free list or the
// priority-ordered occupied list, never both.
type msgSlot struct {
	node     dlist.Node[*msgSlot]
	priority int
	len      int
	buf      []byte
}

// MessageQueue implements spec §4.7: fixed capacity and message size, set
// at construction; messages are stored in place by copy, ordered strictly
// by descending priority with FIFO within a priority level.
type MessageQueue struct {
	k        *Kernel
	capacity int
	msgSize  int

	slots []msgSlot
	free  dlist.List[*msgSlot]

	occupied dlist.List[*msgSlot]

	sendWaiters dlist.List[*Thread]
	recvWaiters dlist.List[*Thread]
}

// NewMessageQueue constructs a queue with capacity slots of msgSize bytes
// each, preallocated up front with ordinary Go allocation. Send copies into
// a preallocated slot; Receive returns a freshly allocated copy of the
// message.
func (k *Kernel) NewMessageQueue(capacity, msgSize int) *MessageQueue {
	q := &MessageQueue{k: k, capacity: capacity, msgSize: msgSize}
	q.slots = make([]msgSlot, capacity)
	q.free.Init()
	q.occupied.Init()
	q.sendWaiters.Init()
	q.recvWaiters.Init()
	for i := range q.slots {
		q.slots[i].buf = make([]byte, msgSize)
		q.slots[i].node.Value = &q.slots[i]
		q.free.PushBack(&q.slots[i].node)
	}
	return q
}

// insertMsgOrdered links s into list ordered by descending priority, FIFO
// within a tie (spec §4.7's insertion rule). Callers must hold k.mu.
func insertMsgOrdered(list *dlist.List[*msgSlot], s *msgSlot) {
	for n := list.Front(); n != nil; n = list.Next(n) {
		if n.Value.priority < s.priority {
			list.InsertBefore(n, &s.node)
			return
		}
	}
	list.PushBack(&s.node)
}

func (k *Kernel) sendToQueue(q *MessageQueue, priority int, data []byte, timeout Duration) Status {
	if len(data) > q.msgSize {
		return ErrMessageSize
	}
	self := k.current

	k.mu.Lock()
	for {
		if n := q.free.PopFront(); n != nil {
			slot := n.Value
			slot.priority = priority
			slot.len = copy(slot.buf, data)
			insertMsgOrdered(&q.occupied, slot)

			var woken *Thread
			if rn := q.recvWaiters.PopFront(); rn != nil {
				woken = rn.Value
				woken.waitList = nil
				k.wakeLocked(woken, OK)
			}
			fromISR := k.isrDepth > 0
			k.mu.Unlock()

			if woken != nil {
				if fromISR {
					k.mu.Lock()
					k.pendingSwitch = true
					k.mu.Unlock()
				} else {
					k.maybePreempt(self)
				}
			}
			return OK
		}

		if timeout == timeoutTry {
			k.mu.Unlock()
			return ErrWouldBlock
		}
		if k.isrDepth > 0 {
			k.mu.Unlock()
			return ErrPermission
		}

		insertPriorityOrdered(&q.sendWaiters, self)
		var deadlineSet bool
		if timeout != TimeoutNone {
			k.sysclock.armClockNodeLocked(self, timeout)
			deadlineSet = true
		}
		k.parkSelfLocked(self, StateSuspended)
		if deadlineSet {
			k.sysclock.disarmClockNode(self)
		}
		if self.waitResult != OK {
			return self.waitResult
		}
		k.mu.Lock()
	}
}

func (k *Kernel) receiveFromQueue(q *MessageQueue, timeout Duration) ([]byte, int, Status) {
	self := k.current

	k.mu.Lock()
	for {
		if n := q.occupied.PopFront(); n != nil {
			slot := n.Value
			out := make([]byte, slot.len)
			copy(out, slot.buf[:slot.len])
			priority := slot.priority
			q.free.PushBack(&slot.node)

			var woken *Thread
			if sn := q.sendWaiters.PopFront(); sn != nil {
				woken = sn.Value
				woken.waitList = nil
				k.wakeLocked(woken, OK)
			}
			fromISR := k.isrDepth > 0
			k.mu.Unlock()

			if woken != nil {
				if fromISR {
					k.mu.Lock()
					k.pendingSwitch = true
					k.mu.Unlock()
				} else {
					k.maybePreempt(self)
				}
			}
			return out, priority, OK
		}

		if timeout == timeoutTry {
			k.mu.Unlock()
			return nil, 0, ErrWouldBlock
		}
		if k.isrDepth > 0 {
			k.mu.Unlock()
			return nil, 0, ErrPermission
		}

		insertPriorityOrdered(&q.recvWaiters, self)
		var deadlineSet bool
		if timeout != TimeoutNone {
			k.sysclock.armClockNodeLocked(self, timeout)
			deadlineSet = true
		}
		k.parkSelfLocked(self, StateSuspended)
		if deadlineSet {
			k.sysclock.disarmClockNode(self)
		}
		if self.waitResult != OK {
			return nil, 0, self.waitResult
		}
		k.mu.Lock()
	}
}

// Send blocks until there is room, then enqueues data at the given
// priority. ErrMessageSize if len(data) exceeds the queue's msgSize.
func (q *MessageQueue) Send(priority int, data []byte) Status {
	return q.k.sendToQueue(q, priority, data, TimeoutNone)
}

// TimedSend is Send with a tick timeout, returning ErrTimeout on expiry.
func (q *MessageQueue) TimedSend(priority int, data []byte, timeout Duration) Status {
	return q.k.sendToQueue(q, priority, data, timeout)
}

// TrySend enqueues data only if a slot is immediately free, never
// blocking; returns ErrWouldBlock otherwise.
func (q *MessageQueue) TrySend(priority int, data []byte) Status {
	return q.k.sendToQueue(q, priority, data, timeoutTry)
}

// Receive blocks until a message is available, then returns the
// highest-priority, oldest-among-ties message.
func (q *MessageQueue) Receive() ([]byte, int, Status) {
	return q.k.receiveFromQueue(q, TimeoutNone)
}

// TimedReceive is Receive with a tick timeout, returning ErrTimeout on
// expiry.
func (q *MessageQueue) TimedReceive(timeout Duration) ([]byte, int, Status) {
	return q.k.receiveFromQueue(q, timeout)
}

// TryReceive returns the next message only if one is immediately
// available, never blocking; returns ErrWouldBlock otherwise.
func (q *MessageQueue) TryReceive() ([]byte, int, Status) {
	return q.k.receiveFromQueue(q, timeoutTry)
}
