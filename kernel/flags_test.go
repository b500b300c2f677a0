package kernel

import (
	"testing"
	"time"
)

// TestEventFlagsAllModeWithClear reproduces scenario S3: a waiter blocks on
// a shared EventFlags with mask 0b1010 in ALL|CLEAR mode. A first raiser
// sets only 0b1000, which must not satisfy ALL; a second raiser then sets
// 0b0010, completing the mask, and the waiter must wake seeing 0b1010 with
// both bits cleared from the shared word afterward.
func TestEventFlagsAllModeWithClear(t *testing.T) {
	k := newTestKernel(t)
	flags := k.NewEventFlags()
	results := make(chan uint32, 1)

	k.Create("waiter", func(any) {
		observed, status := flags.Wait(0b1010, FlagsAll|FlagsClear, TimeoutNone)
		if status != OK {
			t.Errorf("expected OK, got %v", status)
		}
		results <- observed
		k.Exit(nil)
	}, nil, ThreadAttr{Priority: 3})

	k.Create("raiserA", func(any) {
		flags.Raise(0b1000)
		k.Exit(nil)
	}, nil, ThreadAttr{Priority: 2})

	k.Create("raiserB", func(any) {
		flags.Raise(0b0010)
		k.Exit(nil)
	}, nil, ThreadAttr{Priority: 1})

	go k.Start()

	select {
	case observed := <-results:
		if observed != 0b1010 {
			t.Fatalf("expected observed mask 0b1010, got %b", observed)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for waiter to wake")
	}
	if got := flags.Mask(); got != 0 {
		t.Fatalf("expected shared mask cleared to 0 after CLEAR wake, got %b", got)
	}
}

func TestEventFlagsAnyModeWakesOnFirstMatchingBit(t *testing.T) {
	k := newTestKernel(t)
	flags := k.NewEventFlags()
	results := make(chan uint32, 1)

	k.Create("waiter", func(any) {
		observed, status := flags.Wait(0b0110, FlagsAny, TimeoutNone)
		if status != OK {
			t.Errorf("expected OK, got %v", status)
		}
		results <- observed
		k.Exit(nil)
	}, nil, ThreadAttr{Priority: 2})

	k.Create("raiser", func(any) {
		flags.Raise(0b0100)
		k.Exit(nil)
	}, nil, ThreadAttr{Priority: 1})

	go k.Start()

	select {
	case observed := <-results:
		if observed&0b0100 == 0 {
			t.Fatalf("expected the raised bit present in observed mask, got %b", observed)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for waiter to wake")
	}
	// ANY mode without CLEAR leaves the shared mask untouched.
	if got := flags.Mask(); got != 0b0100 {
		t.Fatalf("expected shared mask to retain the raised bit, got %b", got)
	}
}

func TestEventFlagsClearIsIdempotent(t *testing.T) {
	k := newTestKernel(t)
	flags := k.NewEventFlags()

	flags.Clear(0b1111) // clearing unset bits is a no-op
	if got := flags.Mask(); got != 0 {
		t.Fatalf("expected mask to remain 0, got %b", got)
	}
	flags.Raise(0b0011)
	flags.Clear(0b0001)
	if got := flags.Mask(); got != 0b0010 {
		t.Fatalf("expected only the cleared bit removed, got %b", got)
	}
	flags.Clear(0b0001) // already clear: idempotent
	if got := flags.Mask(); got != 0b0010 {
		t.Fatalf("expected repeated clear to be a no-op, got %b", got)
	}
}
