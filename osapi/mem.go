package osapi

import "rtoscore/kernel"

// MemoryResource is the allocator capability interface (spec §6): a memory
// pool built via MemoryPoolCreateFromResource asks one of these for its
// backing bytes. Message queues have no resource-backed constructor.
type MemoryResource = kernel.MemoryResource

// ArenaResource is a bump allocator over caller-supplied backing storage.
type ArenaResource = kernel.ArenaResource

// NewArenaResource wraps buf as a bump-allocation arena.
func NewArenaResource(buf []byte) *ArenaResource { return kernel.NewArenaResource(buf) }

// NullResource always refuses to allocate.
type NullResource = kernel.NullResource

// SetDefaultResource installs the process-wide default memory resource.
// One-shot startup hook, not safe to call concurrently with kernel
// operation.
func SetDefaultResource(r MemoryResource) { kernel.SetDefaultResource(r) }

// DefaultResource returns the process-wide default memory resource.
func DefaultResource() MemoryResource { return kernel.DefaultResource() }
