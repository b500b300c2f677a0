package osapi

import "rtoscore/kernel"

// MemoryPoolHandle is the facade's opaque memory-pool handle.
type MemoryPoolHandle = *kernel.MemoryPool

// PoolBlockHandle is the facade's opaque allocated-block handle.
type PoolBlockHandle = *kernel.PoolBlock

// MemoryPoolCreate constructs a pool over caller-provided storage.
func MemoryPoolCreate(storage []byte, blockSize int) MemoryPoolHandle {
	return kern.NewMemoryPool(storage, blockSize)
}

// MemoryPoolCreateFromResource asks r for capacity*blockSize bytes and
// builds a pool over them.
func MemoryPoolCreateFromResource(r kernel.MemoryResource, blockSize, capacity int) MemoryPoolHandle {
	return kern.NewMemoryPoolFromResource(r, blockSize, capacity)
}

// MemoryPoolDestroy is a no-op placeholder; destroying a pool with
// outstanding blocks or active waiters is undefined behavior per spec §7.
func MemoryPoolDestroy(p MemoryPoolHandle) {}

// MemoryPoolAlloc blocks until a block is available.
func MemoryPoolAlloc(p MemoryPoolHandle) (PoolBlockHandle, Status) { return p.Alloc() }

// MemoryPoolTimedAlloc blocks until a block is available or timeout ticks
// elapse.
func MemoryPoolTimedAlloc(p MemoryPoolHandle, timeout Duration) (PoolBlockHandle, Status) {
	return p.TimedAlloc(timeout)
}

// MemoryPoolTryAlloc takes a block only if one is immediately free.
func MemoryPoolTryAlloc(p MemoryPoolHandle) (PoolBlockHandle, Status) { return p.TryAlloc() }

// MemoryPoolFree returns b to the pool it was allocated from.
func MemoryPoolFree(p MemoryPoolHandle, b PoolBlockHandle) Status { return p.Free(b) }

// MemoryPoolGetBlockSize returns the pool's fixed block size.
func MemoryPoolGetBlockSize(p MemoryPoolHandle) int { return p.BlockSize() }

// MemoryPoolGetCapacity returns the pool's total block count.
func MemoryPoolGetCapacity(p MemoryPoolHandle) int { return p.Capacity() }

// PoolBlockBytes returns b's storage, exactly the pool's block size.
func PoolBlockBytes(b PoolBlockHandle) []byte { return b.Bytes() }
