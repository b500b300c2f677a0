//go:build !tinygo

package port

import (
	"testing"
	"time"
)

type testHandle struct {
	resume chan struct{}
}

func newTestHandle() *testHandle { return &testHandle{resume: make(chan struct{}, 1)} }

func (h *testHandle) Park() { <-h.resume }
func (h *testHandle) Wake() {
	select {
	case h.resume <- struct{}{}:
	default:
	}
}

func TestHostContextSwitchHandsOffControl(t *testing.T) {
	h := NewHost(nil)
	a := newTestHandle()
	b := newTestHandle()

	order := make(chan string, 2)
	done := make(chan struct{})

	h.Spawn(func() {
		a.Park() // wait for first scheduling
		order <- "a"
		h.ContextSwitch(a, b)
		close(done)
	})

	// Kick off a, then wait for it to hand off to b.
	a.Wake()
	select {
	case v := <-order:
		if v != "a" {
			t.Fatalf("expected a to run first, got %s", v)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for thread a")
	}

	select {
	case <-b.resume:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for b to be woken")
	}

	// ContextSwitch blocks a until it is switched back in; play b handing
	// control back so a's call can return.
	a.Wake()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for context switch to complete")
	}
}

func TestHostIRQNesting(t *testing.T) {
	h := NewHost(nil)
	p1 := h.IRQSave()
	p2 := h.IRQSave()
	h.IRQRestore(p2)
	h.IRQRestore(p1)
	if h.depth != 0 {
		t.Fatalf("expected depth back to 0, got %d", h.depth)
	}
}

func TestHostTickInit(t *testing.T) {
	h := NewHost(nil)
	count := make(chan struct{}, 8)
	stop := h.TickInit(1000, func() {
		select {
		case count <- struct{}{}:
		default:
		}
	})
	defer stop()

	select {
	case <-count:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a tick")
	}
}

func TestHostPanicInvokesHook(t *testing.T) {
	var gotCode int
	var gotMsg string
	h := NewHost(func(code int, msg string) {
		gotCode = code
		gotMsg = msg
	})
	h.Panic(7, "boom")
	if gotCode != 7 || gotMsg != "boom" {
		t.Fatalf("unexpected panic hook args: %d %q", gotCode, gotMsg)
	}
}
