package kernel

import (
	"testing"
	"time"
)

// TestMemoryPoolBlockingAllocWakesOnFree reproduces scenario S4: a pool of
// two blocks is fully allocated; a third, timed allocation blocks; freeing
// one of the first two before the timeout lets the third succeed and
// restores the pool to full capacity in use.
func TestMemoryPoolBlockingAllocWakesOnFree(t *testing.T) {
	// c outranks a/b's owning thread so it blocks first and deterministically
	// observes the pool exhausted before the free that unblocks it.
	k := newTestKernel(t)
	pool := k.NewMemoryPool(make([]byte, 2*16), 16)
	results := make(chan Status, 1)

	var blockA *PoolBlock

	k.Create("allocator", func(any) {
		var status Status
		blockA, status = pool.Alloc()
		if status != OK {
			t.Errorf("expected OK allocating block A, got %v", status)
		}
		blockB, status := pool.Alloc()
		if status != OK {
			t.Errorf("expected OK allocating block B, got %v", status)
		}
		_ = blockB

		// waiter outranks allocator, so creating it preempts immediately: it
		// runs straight into the exhausted pool and blocks there before
		// control returns here, guaranteeing the free below is what wakes it.
		k.Create("waiter", func(any) {
			_, status := pool.TimedAlloc(50)
			results <- status
			k.Exit(nil)
		}, nil, ThreadAttr{Priority: 3})

		if status := pool.Free(blockA); status != OK {
			t.Errorf("expected OK freeing block A, got %v", status)
		}
		k.Exit(nil)
	}, nil, ThreadAttr{Priority: 2})

	go k.Start()

	select {
	case status := <-results:
		if status != OK {
			t.Fatalf("expected the blocked alloc to succeed once a block was freed, got %v", status)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for blocked alloc")
	}
}

func TestMemoryPoolAllocReturnsAlignedInPoolStorage(t *testing.T) {
	k := newTestKernel(t)
	storage := make([]byte, 4*8)
	pool := k.NewMemoryPool(storage, 8)

	var blocks []*PoolBlock
	for i := 0; i < 4; i++ {
		b, status := pool.TryAlloc()
		if status != OK {
			t.Fatalf("expected OK allocating block %d, got %v", i, status)
		}
		blocks = append(blocks, b)
	}
	if _, status := pool.TryAlloc(); status != ErrWouldBlock {
		t.Fatalf("expected ErrWouldBlock once exhausted, got %v", status)
	}

	seen := make(map[int]bool)
	for _, b := range blocks {
		if len(b.Bytes()) != 8 {
			t.Fatalf("expected 8-byte block, got %d", len(b.Bytes()))
		}
		offset := -1
		for i := 0; i+8 <= len(storage); i += 8 {
			if &storage[i] == &b.Bytes()[0] {
				offset = i / 8
				break
			}
		}
		if offset < 0 {
			t.Fatalf("block storage does not lie on a block boundary within the pool")
		}
		if seen[offset] {
			t.Fatalf("two blocks map to the same storage slot %d", offset)
		}
		seen[offset] = true
	}

	for _, b := range blocks {
		if status := pool.Free(b); status != OK {
			t.Fatalf("expected OK freeing block, got %v", status)
		}
	}
	if got := pool.Capacity(); got != 4 {
		t.Fatalf("expected capacity 4, got %d", got)
	}
}

func TestMemoryPoolDoubleFreeRejected(t *testing.T) {
	k := newTestKernel(t)
	pool := k.NewMemoryPool(make([]byte, 16), 16)

	b, status := pool.TryAlloc()
	if status != OK {
		t.Fatalf("expected OK, got %v", status)
	}
	if status := pool.Free(b); status != OK {
		t.Fatalf("expected OK on first free, got %v", status)
	}
	if status := pool.Free(b); status != ErrInvalid {
		t.Fatalf("expected ErrInvalid on double free, got %v", status)
	}
}

func TestMemoryPoolForeignBlockRejected(t *testing.T) {
	k := newTestKernel(t)
	poolA := k.NewMemoryPool(make([]byte, 16), 16)
	poolB := k.NewMemoryPool(make([]byte, 16), 16)

	b, status := poolA.TryAlloc()
	if status != OK {
		t.Fatalf("expected OK, got %v", status)
	}
	if status := poolB.Free(b); status != ErrInvalid {
		t.Fatalf("expected ErrInvalid freeing a block into the wrong pool, got %v", status)
	}
}
