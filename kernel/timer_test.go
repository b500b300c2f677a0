package kernel

import (
	"testing"
	"time"
)

// TestTimerPeriodicFixedRate reproduces scenario S6: a timer started at
// tick 5 with a 10-tick delay and 10-tick period must fire at exactly
// 15, 25, 35, 45, 55 — a fixed rate computed from each prior deadline, not
// from when the callback happened to run, so latency never accumulates.
func TestTimerPeriodicFixedRate(t *testing.T) {
	k := newTestKernel(t)
	drain(k, 5)

	fired := make(chan struct{}, 16)
	timer := k.NewTimer(func() { fired <- struct{}{} })
	if status := timer.Start(10, 10); status != OK {
		t.Fatalf("expected OK arming the timer, got %v", status)
	}

	wantFire := map[int]bool{15: true, 25: true, 35: true, 45: true, 55: true}
	gotFires := 0
	for tick := 6; tick <= 55; tick++ {
		k.OnTick()
		if wantFire[tick] {
			select {
			case <-fired:
				gotFires++
			case <-time.After(time.Second):
				t.Fatalf("timed out waiting for fire at tick %d", tick)
			}
			continue
		}
		select {
		case <-fired:
			t.Fatalf("unexpected fire at tick %d", tick)
		case <-time.After(5 * time.Millisecond):
		}
	}
	if gotFires != 5 {
		t.Fatalf("expected 5 fires, got %d", gotFires)
	}
	timer.Stop()
}

func TestTimerOneShotFiresOnceThenDisarms(t *testing.T) {
	k := newTestKernel(t)
	fired := make(chan struct{}, 4)
	timer := k.NewTimer(func() { fired <- struct{}{} })
	timer.Start(3, 0)

	drain(k, 3)
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for one-shot fire")
	}
	if timer.IsArmed() {
		t.Fatal("expected a one-shot timer to disarm itself after firing")
	}

	drain(k, 20)
	select {
	case <-fired:
		t.Fatal("expected no further fires from a one-shot timer")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestTimerStopIsIdempotent(t *testing.T) {
	// Stop on an already-disarmed timer is a no-op that returns OK, checked
	// here at the kernel layer (invariant 10).
	k := newTestKernel(t)
	timer := k.NewTimer(func() {})
	timer.Start(10, 0)

	if status := timer.Stop(); status != OK {
		t.Fatalf("expected OK on first stop, got %v", status)
	}
	if status := timer.Stop(); status != OK {
		t.Fatalf("expected OK stopping an already-disarmed timer, got %v", status)
	}
}

func TestTimerRestartWhileArmedRearmsFromNow(t *testing.T) {
	k := newTestKernel(t)
	fired := make(chan struct{}, 4)
	timer := k.NewTimer(func() { fired <- struct{}{} })

	timer.Start(100, 0) // far in the future
	timer.Start(3, 0)   // re-arm before it ever fires

	drain(k, 3)
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the re-armed timer to fire")
	}
}
