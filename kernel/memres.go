package kernel

import "sync"

// MemoryResource is the allocator capability consumed by the kernel, per the
// memory_resource contract: a memory pool built with
// NewMemoryPoolFromResource asks one of these for its backing bytes instead
// of taking caller-provided storage.
//
// That constructor is the only place the kernel uses a resource. Message
// queues, default thread stacks and the kernel objects themselves are
// allocated with ordinary Go allocation, not through this interface.
type MemoryResource interface {
	Allocate(bytes, align int) ([]byte, bool)
	Deallocate(buf []byte, align int)
	IsEqual(other MemoryResource) bool
	MaxSize() int
	Reset()
	Coalesce() bool
}

// ArenaResource is a bump allocator over a caller-supplied backing array.
// Deallocate is a no-op until Reset reclaims the whole arena at once;
// Coalesce always reports false since the arena never merges freed spans.
type ArenaResource struct {
	mu     sync.Mutex
	buf    []byte
	offset int
}

// NewArenaResource wraps buf as a bump-allocation arena.
func NewArenaResource(buf []byte) *ArenaResource {
	return &ArenaResource{buf: buf}
}

func alignUp(n, align int) int {
	if align <= 1 {
		return n
	}
	return (n + align - 1) / align * align
}

// Allocate returns the next bytes-length slice aligned to align, or false if
// the arena is exhausted.
func (a *ArenaResource) Allocate(bytes, align int) ([]byte, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	start := alignUp(a.offset, align)
	end := start + bytes
	if end > len(a.buf) {
		return nil, false
	}
	a.offset = end
	return a.buf[start:end:end], true
}

// Deallocate is a no-op; the arena only reclaims space via Reset.
func (a *ArenaResource) Deallocate(buf []byte, align int) {}

// IsEqual reports whether other is the same arena instance.
func (a *ArenaResource) IsEqual(other MemoryResource) bool {
	o, ok := other.(*ArenaResource)
	return ok && o == a
}

// MaxSize returns the arena's total capacity.
func (a *ArenaResource) MaxSize() int { return len(a.buf) }

// Reset reclaims the whole arena, invalidating every prior allocation.
func (a *ArenaResource) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.offset = 0
}

// Coalesce always reports false: a bump arena has nothing to merge.
func (a *ArenaResource) Coalesce() bool { return false }

// NullResource always refuses to allocate. It is useful as a default
// resource in configurations that require all primitives to be constructed
// with caller-provided storage.
type NullResource struct{}

func (NullResource) Allocate(bytes, align int) ([]byte, bool) { return nil, false }
func (NullResource) Deallocate(buf []byte, align int)         {}
func (NullResource) IsEqual(other MemoryResource) bool {
	_, ok := other.(NullResource)
	return ok
}
func (NullResource) MaxSize() int   { return 0 }
func (NullResource) Reset()         {}
func (NullResource) Coalesce() bool { return false }

var defaultResource MemoryResource = NullResource{}

// SetDefaultResource installs the process-wide default memory resource.
//
// This is a one-shot startup hook, not thread-safe by contract: call it once
// from os_startup_initialize_* before any thread is created.
func SetDefaultResource(r MemoryResource) {
	if r == nil {
		r = NullResource{}
	}
	defaultResource = r
}

// DefaultResource returns the process-wide default memory resource.
func DefaultResource() MemoryResource { return defaultResource }
