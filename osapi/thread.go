package osapi

import "rtoscore/kernel"

// ThreadHandle is the facade's opaque thread handle.
type ThreadHandle = *kernel.Thread

// ThreadAttr configures ThreadCreate.
type ThreadAttr = kernel.ThreadAttr

// ThreadCreate creates and readies a new thread running entry(arg) as a
// child of the calling thread.
func ThreadCreate(name string, entry func(arg any), arg any, attr ThreadAttr) ThreadHandle {
	return kern.Create(name, entry, arg, attr)
}

// ThreadDestroy does nothing: a thread's control block is reclaimed by the
// Go garbage collector once nothing refers to it, and Join already marks a
// joined thread destroyed. Destroying a thread with active waiters (a
// joiner still pending) is undefined behavior per spec §7 and is not
// checked here.
func ThreadDestroy(t ThreadHandle) {}

// ThreadGetName returns t's name.
func ThreadGetName(t ThreadHandle) string { return t.Name() }

// ThreadGet returns the calling thread's handle. Facades over a real OS
// typically retrieve this from thread-local storage; here it is simply the
// scheduler's current pointer.
func ThreadGet() ThreadHandle { return kern.Current() }

// ThreadSetPrio changes t's base priority.
func ThreadSetPrio(t ThreadHandle, prio kernel.Priority) { kern.SetPrio(t, prio) }

// ThreadJoin blocks until t terminates, returning its exit value.
func ThreadJoin(t ThreadHandle) (any, Status) { return kern.Join(t) }

// ThreadResume moves a suspended thread back to ready.
func ThreadResume(t ThreadHandle) { kern.Resume(t) }

// ThreadFlagsRaise ORs mask into t's own event-flags word.
func ThreadFlagsRaise(t ThreadHandle, mask uint32) { kern.FlagsRaise(t, mask) }

// ThreadGetSchedState returns t's lifecycle state.
func ThreadGetSchedState(t ThreadHandle) kernel.ThreadState { return t.State() }

// ThreadGetUserStorage returns the opaque per-thread blob set with
// ThreadSetUserStorage.
func ThreadGetUserStorage(t ThreadHandle) any { return t.UserStorage() }

// ThreadSetUserStorage stores an opaque per-thread blob.
func ThreadSetUserStorage(t ThreadHandle, v any) { t.SetUserStorage(v) }

// ThreadGetStack returns t's guarded stack region.
func ThreadGetStack(t ThreadHandle) *kernel.Stack { return t.Stack() }

// ThisThreadSuspend blocks the calling thread until a matching
// ThreadResume call.
func ThisThreadSuspend() Status { return kern.Suspend() }

// ThisThreadExit terminates the calling thread with exitValue. Never
// returns.
func ThisThreadExit(exitValue any) { kern.Exit(exitValue) }

// ThisThreadFlagsWait blocks until the calling thread's own event-flags
// mask satisfies (mask, mode).
func ThisThreadFlagsWait(mask uint32, mode kernel.FlagsMode, timeout kernel.Duration) (uint32, Status) {
	return kern.FlagsWait(mask, mode, timeout)
}

// ThreadIterBegin returns the first child in t's children list, or nil.
func ThreadIterBegin(t ThreadHandle) ThreadHandle {
	n := t.Children().Front()
	if n == nil {
		return nil
	}
	return n.Value
}

// ThreadIterNext returns the child following cur in its parent's children
// list, or nil at the end. parent must be cur's parent.
func ThreadIterNext(parent, cur ThreadHandle) ThreadHandle {
	n := parent.Children().Front()
	for n != nil && n.Value != cur {
		n = parent.Children().Next(n)
	}
	if n == nil {
		return nil
	}
	n = parent.Children().Next(n)
	if n == nil {
		return nil
	}
	return n.Value
}

// ThreadIterEnd reports whether cur denotes the end of a children iteration.
func ThreadIterEnd(cur ThreadHandle) bool { return cur == nil }
