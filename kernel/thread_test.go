package kernel

import (
	"testing"
	"time"
)

func TestJoinReturnsExitValue(t *testing.T) {
	k := newTestKernel(t)
	var child *Thread
	results := make(chan any, 1)

	k.Create("parent", func(any) {
		child = k.Create("child", func(any) {
			k.Exit(42)
		}, nil, ThreadAttr{Priority: 2})

		v, status := k.Join(child)
		if status != OK {
			t.Errorf("expected OK, got %v", status)
		}
		results <- v
		k.Exit(nil)
	}, nil, ThreadAttr{Priority: 3})

	go k.Start()

	select {
	case v := <-results:
		if v != 42 {
			t.Fatalf("expected exit value 42, got %v", v)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for join result")
	}
}

func TestSuspendResume(t *testing.T) {
	// target outranks controller, so it runs first, suspends, and only then
	// does controller get a turn to resume it — no real-time sleeps needed
	// to order the two goroutines.
	k := newTestKernel(t)
	order := make(chan string, 3)
	var target *Thread

	target = k.Create("target", func(any) {
		order <- "suspending"
		status := k.Suspend()
		if status != OK {
			t.Errorf("expected OK from Suspend, got %v", status)
		}
		order <- "resumed"
		k.Exit(nil)
	}, nil, ThreadAttr{Priority: 3})

	k.Create("controller", func(any) {
		order <- "resuming"
		k.Resume(target)
		k.Exit(nil)
	}, nil, ThreadAttr{Priority: 2})

	go k.Start()

	want := []string{"suspending", "resuming", "resumed"}
	for _, w := range want {
		select {
		case v := <-order:
			if v != w {
				t.Fatalf("expected %q next, got %q", w, v)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %q", w)
		}
	}
}

func TestSetPrioReordersReadyQueue(t *testing.T) {
	k := newTestKernel(t)
	order := make(chan string, 2)
	var low *Thread

	low = k.Create("low", func(any) {
		order <- "low"
		k.Exit(nil)
	}, nil, ThreadAttr{Priority: 1})
	k.Create("mid", func(any) {
		order <- "mid"
		k.Exit(nil)
	}, nil, ThreadAttr{Priority: 2})

	k.SetPrio(low, 5)

	go k.Start()

	want := []string{"low", "mid"}
	for _, w := range want {
		select {
		case v := <-order:
			if v != w {
				t.Fatalf("expected %q next, got %q", w, v)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %q", w)
		}
	}
}

func TestThisThreadFlagsWaitAll(t *testing.T) {
	// waiter outranks raiser, so it runs first, blocks in FlagsWait, and
	// only then does raiser get a turn to raise the bits one at a time.
	k := newTestKernel(t)
	results := make(chan uint32, 1)
	var waiter *Thread

	waiter = k.Create("waiter", func(any) {
		observed, status := k.FlagsWait(0b0110, FlagsAll, TimeoutNone)
		if status != OK {
			t.Errorf("expected OK, got %v", status)
		}
		results <- observed
		k.Exit(nil)
	}, nil, ThreadAttr{Priority: 3})

	k.Create("raiser", func(any) {
		k.FlagsRaise(waiter, 0b0010)
		k.FlagsRaise(waiter, 0b0100)
		k.Exit(nil)
	}, nil, ThreadAttr{Priority: 2})

	go k.Start()

	select {
	case observed := <-results:
		if observed&0b0110 != 0b0110 {
			t.Fatalf("expected both bits observed, got %b", observed)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for flags wait to resolve")
	}
}
