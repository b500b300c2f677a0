package osapi

import "rtoscore/kernel"

// MutexHandle is the facade's opaque mutex handle.
type MutexHandle = *kernel.Mutex

// MutexAttr configures MutexCreate.
type MutexAttr = kernel.MutexAttr

const (
	MutexNormal     = kernel.MutexNormal
	MutexRecursive  = kernel.MutexRecursive
	MutexErrorCheck = kernel.MutexErrorCheck

	ProtocolNone    = kernel.ProtocolNone
	ProtocolInherit = kernel.ProtocolInherit
	ProtocolProtect = kernel.ProtocolProtect
)

// MutexCreate constructs a mutex per attr.
func MutexCreate(attr MutexAttr) MutexHandle { return kern.NewMutex(attr) }

// MutexDestroy is a no-op placeholder mirroring the facade's family shape;
// destroying a mutex with active waiters is undefined behavior per spec §7
// and is not checked here.
func MutexDestroy(m MutexHandle) {}

// MutexLock blocks indefinitely until m is acquired.
func MutexLock(m MutexHandle) Status { return m.Lock() }

// MutexTimedLock blocks until m is acquired or timeout ticks elapse.
func MutexTimedLock(m MutexHandle, timeout Duration) Status { return m.TimedLock(timeout) }

// MutexTryLock acquires m only if immediately available.
func MutexTryLock(m MutexHandle) Status { return m.TryLock() }

// MutexUnlock releases m.
func MutexUnlock(m MutexHandle) Status { return m.Unlock() }

// MutexReset forcibly releases m and wakes every waiter interrupted.
func MutexReset(m MutexHandle) { m.Reset() }

// MutexMarkConsistent clears the inconsistent flag after an ErrOwnerDead
// acquisition.
func MutexMarkConsistent(m MutexHandle) Status { return m.MarkConsistent() }
