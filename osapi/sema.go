package osapi

import "rtoscore/kernel"

// SemaphoreHandle is the facade's opaque semaphore handle.
type SemaphoreHandle = *kernel.Semaphore

// SemaphoreAttr configures SemaphoreCreate.
type SemaphoreAttr = kernel.SemaphoreAttr

// SemaphoreCreate constructs a semaphore initialized to attr.Initial.
func SemaphoreCreate(attr SemaphoreAttr) SemaphoreHandle { return kern.NewSemaphore(attr) }

// SemaphoreDestroy is a no-op placeholder; destroying a semaphore with
// active waiters is undefined behavior per spec §7.
func SemaphoreDestroy(s SemaphoreHandle) {}

// SemaphorePost increments the count and wakes one waiter. Safe from ISR.
func SemaphorePost(s SemaphoreHandle) Status { return s.Post() }

// SemaphoreWait blocks until the semaphore can be decremented.
func SemaphoreWait(s SemaphoreHandle) Status { return s.Wait() }

// SemaphoreTimedWait blocks until decremented or timeout ticks elapse.
func SemaphoreTimedWait(s SemaphoreHandle, timeout Duration) Status { return s.TimedWait(timeout) }

// SemaphoreTryWait decrements only if immediately available.
func SemaphoreTryWait(s SemaphoreHandle) Status { return s.TryWait() }

// SemaphoreReset restores the semaphore to its initial count. Idempotent on
// an already-empty semaphore (spec invariant 10).
func SemaphoreReset(s SemaphoreHandle) Status {
	s.Reset()
	return OK
}

// SemaphoreGetCount returns the current count.
func SemaphoreGetCount(s SemaphoreHandle) int { return s.Count() }
