package kernel

import (
	"testing"
	"time"
)

func TestCondWaitAtomicallyReleasesAndReacquiresMutex(t *testing.T) {
	k := newTestKernel(t)
	mtx := k.NewMutex(MutexAttr{})
	cond := k.NewCond()
	ready := 0
	results := make(chan int, 1)

	k.Create("consumer", func(any) {
		mtx.Lock()
		for ready == 0 {
			cond.Wait(mtx, TimeoutNone)
		}
		results <- ready
		mtx.Unlock()
		k.Exit(nil)
	}, nil, ThreadAttr{Priority: 2})

	k.Create("producer", func(any) {
		mtx.Lock()
		ready = 1
		cond.Signal()
		mtx.Unlock()
		k.Exit(nil)
	}, nil, ThreadAttr{Priority: 1})

	go k.Start()

	select {
	case v := <-results:
		if v != 1 {
			t.Fatalf("expected consumer to observe ready=1, got %d", v)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for consumer")
	}
}

func TestCondSignalWakesOnlyOneWaiter(t *testing.T) {
	k := newTestKernel(t)
	mtx := k.NewMutex(MutexAttr{})
	cond := k.NewCond()
	woken := make(chan string, 2)

	makeWaiter := func(name string, prio Priority) {
		k.Create(name, func(any) {
			mtx.Lock()
			cond.Wait(mtx, TimeoutNone)
			woken <- name
			mtx.Unlock()
			k.Exit(nil)
		}, nil, ThreadAttr{Priority: prio})
	}
	makeWaiter("A", 3)
	makeWaiter("B", 2)

	k.Create("poster", func(any) {
		mtx.Lock()
		cond.Signal()
		mtx.Unlock()
		k.Exit(nil)
	}, nil, ThreadAttr{Priority: 1})

	go k.Start()

	select {
	case name := <-woken:
		if name != "A" {
			t.Fatalf("expected the highest-priority waiter woken first, got %q", name)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for first wake")
	}

	select {
	case name := <-woken:
		t.Fatalf("expected Signal to wake exactly one waiter, got a second wake from %q", name)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCondBroadcastWakesAllWaiters(t *testing.T) {
	k := newTestKernel(t)
	mtx := k.NewMutex(MutexAttr{})
	cond := k.NewCond()
	woken := make(chan string, 2)

	makeWaiter := func(name string, prio Priority) {
		k.Create(name, func(any) {
			mtx.Lock()
			cond.Wait(mtx, TimeoutNone)
			woken <- name
			mtx.Unlock()
			k.Exit(nil)
		}, nil, ThreadAttr{Priority: prio})
	}
	makeWaiter("A", 3)
	makeWaiter("B", 2)

	k.Create("poster", func(any) {
		mtx.Lock()
		cond.Broadcast()
		mtx.Unlock()
		k.Exit(nil)
	}, nil, ThreadAttr{Priority: 1})

	go k.Start()

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case name := <-woken:
			seen[name] = true
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for wake %d", i+1)
		}
	}
	if !seen["A"] || !seen["B"] {
		t.Fatalf("expected both waiters woken by Broadcast, got %v", seen)
	}
}
