package kernel

import "rtoscore/internal/dlist"

// PoolBlock is one fixed-size block handed out by a MemoryPool. It carries
// enough identity to validate Free against the pool that issued it and to
// reject a double free, standing in for the pointer-range/alignment checks a
// raw-memory port would need.
type PoolBlock struct {
	node dlist.Node[*PoolBlock]
	pool *MemoryPool
	data []byte
	held bool
}

// Bytes returns the block's storage, exactly blockSize bytes.
func (b *PoolBlock) Bytes() []byte { return b.data }

// MemoryPool is a fixed-block allocator (spec §4.8): capacity blocks of
// blockSize bytes, preallocated once, handed out and returned via an
// intrusive free list with no further allocation after construction.
type MemoryPool struct {
	k *Kernel

	blockSize int
	capacity  int
	storage   []byte
	resource  MemoryResource

	blocks []PoolBlock
	free   dlist.List[*PoolBlock]

	waitingList dlist.List[*Thread]
}

func newMemoryPool(k *Kernel, storage []byte, blockSize int) *MemoryPool {
	capacity := len(storage) / blockSize
	p := &MemoryPool{k: k, blockSize: blockSize, capacity: capacity, storage: storage}
	p.free.Init()
	p.waitingList.Init()
	p.blocks = make([]PoolBlock, capacity)
	for i := range p.blocks {
		b := &p.blocks[i]
		b.pool = p
		b.data = storage[i*blockSize : (i+1)*blockSize : (i+1)*blockSize]
		b.node.Value = b
		p.free.PushBack(&b.node)
	}
	return p
}

// NewMemoryPool constructs a pool over caller-provided storage, sized to
// blockSize-byte blocks; any remainder shorter than one block is unused.
func (k *Kernel) NewMemoryPool(storage []byte, blockSize int) *MemoryPool {
	return newMemoryPool(k, storage, blockSize)
}

// NewMemoryPoolFromResource asks r for capacity*blockSize bytes and builds a
// pool over them. Returns nil if the resource cannot satisfy the request.
func (k *Kernel) NewMemoryPoolFromResource(r MemoryResource, blockSize, capacity int) *MemoryPool {
	buf, ok := r.Allocate(blockSize*capacity, blockSize)
	if !ok {
		return nil
	}
	p := newMemoryPool(k, buf, blockSize)
	p.resource = r
	return p
}

// BlockSize returns the fixed block size.
func (p *MemoryPool) BlockSize() int { return p.blockSize }

// Capacity returns the total number of blocks.
func (p *MemoryPool) Capacity() int { return p.capacity }

func (k *Kernel) allocFromPool(p *MemoryPool, timeout Duration) (*PoolBlock, Status) {
	self := k.current

	k.mu.Lock()
	for {
		if n := p.free.PopFront(); n != nil {
			b := n.Value
			b.held = true
			k.mu.Unlock()
			return b, OK
		}

		if timeout == timeoutTry {
			k.mu.Unlock()
			return nil, ErrWouldBlock
		}
		if k.isrDepth > 0 {
			k.mu.Unlock()
			return nil, ErrPermission
		}

		insertPriorityOrdered(&p.waitingList, self)
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
			return nil, self.waitResult
		}
		k.mu.Lock()
	}
}

// Alloc blocks until a block is available.
func (p *MemoryPool) Alloc() (*PoolBlock, Status) { return p.k.allocFromPool(p, TimeoutNone) }

// TimedAlloc blocks until a block is available or timeout ticks elapse,
// returning ErrTimeout on expiry.
func (p *MemoryPool) TimedAlloc(timeout Duration) (*PoolBlock, Status) {
	return p.k.allocFromPool(p, timeout)
}

// TryAlloc takes a block only if one is immediately free, returning
// ErrWouldBlock instead of blocking.
func (p *MemoryPool) TryAlloc() (*PoolBlock, Status) { return p.k.allocFromPool(p, timeoutTry) }

// Free returns b to the pool it was allocated from, waking the
// highest-priority waiting allocator (the oldest among equals) if any.
// ErrInvalid if b was not issued by this pool or has already been freed.
func (p *MemoryPool) Free(b *PoolBlock) Status {
	k := p.k
	if b == nil || b.pool != p {
		return ErrInvalid
	}
	fromISR := k.InHandlerMode()

	k.mu.Lock()
	if !b.held {
		k.mu.Unlock()
		return ErrInvalid
	}
	b.held = false
	p.free.PushBack(&b.node)

	var woken *Thread
	if n := p.waitingList.PopFront(); n != nil {
		woken = n.Value
		woken.waitList = nil
		k.wakeLocked(woken, OK)
	}
	self := k.current
	k.mu.Unlock()

	if woken == nil {
		return OK
	}
	if fromISR {
		k.mu.Lock()
		k.pendingSwitch = true
		k.mu.Unlock()
	} else {
		k.maybePreempt(self)
	}
	return OK
}
