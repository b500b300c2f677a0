package osapi

import "rtoscore/kernel"

// MessageQueueHandle is the facade's opaque message-queue handle.
type MessageQueueHandle = *kernel.MessageQueue

// MessageQueueCreate constructs a queue with capacity slots of msgSize
// bytes each.
func MessageQueueCreate(capacity, msgSize int) MessageQueueHandle {
	return kern.NewMessageQueue(capacity, msgSize)
}

// MessageQueueDestroy is a no-op placeholder; destroying a queue with
// active waiters is undefined behavior per spec §7.
func MessageQueueDestroy(q MessageQueueHandle) {}

// MessageQueueSend blocks until there is room, then enqueues data at
// priority.
func MessageQueueSend(q MessageQueueHandle, priority int, data []byte) Status {
	return q.Send(priority, data)
}

// MessageQueueTimedSend is MessageQueueSend with a tick timeout.
func MessageQueueTimedSend(q MessageQueueHandle, priority int, data []byte, timeout Duration) Status {
	return q.TimedSend(priority, data, timeout)
}

// MessageQueueTrySend enqueues data only if a slot is immediately free.
func MessageQueueTrySend(q MessageQueueHandle, priority int, data []byte) Status {
	return q.TrySend(priority, data)
}

// MessageQueueReceive blocks until a message is available.
func MessageQueueReceive(q MessageQueueHandle) ([]byte, int, Status) { return q.Receive() }

// MessageQueueTimedReceive is MessageQueueReceive with a tick timeout.
func MessageQueueTimedReceive(q MessageQueueHandle, timeout Duration) ([]byte, int, Status) {
	return q.TimedReceive(timeout)
}

// MessageQueueTryReceive returns the next message only if one is
// immediately available.
func MessageQueueTryReceive(q MessageQueueHandle) ([]byte, int, Status) { return q.TryReceive() }
