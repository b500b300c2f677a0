// Command ostrace reproduces two of the kernel's testable scenarios against
// the host port, printing what happened as it happens: priority inheritance
// unblocking a classic inversion (S1), and a periodic timer holding a fixed
// rate under callback jitter (S6).
package main

import (
	"fmt"
	"os"
	"time"

	"rtoscore/internal/buildinfo"
	"rtoscore/kernel"
	"rtoscore/port"
)

func main() {
	fmt.Printf("ostrace %s\n", buildinfo.Short())

	p := port.NewHost(nil)
	k := kernel.Boot(p, kernel.BootConfig{TickHz: 1000})
	k.Initialize()

	trace := make(chan string, 64)
	go func() {
		for msg := range trace {
			fmt.Println(msg)
		}
	}()

	mx := k.NewMutex(kernel.MutexAttr{Protocol: kernel.ProtocolInherit})
	var low *kernel.Thread

	// L is the only thread created before Start; it creates M and H itself
	// once running, from inside the scheduler, so their initial priority
	// ordering plays out through the real ready queue instead of a
	// hand-orchestrated setup.
	low = k.Create("L", func(any) {
		mx.Lock()
		trace <- "L: acquired Mx"

		// Hold off preemption while both children are spawned, so creating
		// the higher-priority M doesn't switch away from L before H even
		// exists to contend for the mutex.
		prior := k.Lock()

		k.Create("M", func(any) {
			trace <- "M: running (only after L releases Mx, despite outranking L)"
		}, nil, kernel.ThreadAttr{Priority: 2})

		k.Create("H", func(any) {
			trace <- "H: attempting lock, will block behind L"
			mx.Lock()
			trace <- "H: acquired Mx after L released it"
			mx.Unlock()
		}, nil, kernel.ThreadAttr{Priority: 3})

		k.Unlock(prior)

		trace <- fmt.Sprintf("L: effective priority now %d (boosted by H's wait)", low.Priority())
		trace <- "L: releasing Mx"
		mx.Unlock()
		trace <- "L: done"
	}, nil, kernel.ThreadAttr{Priority: 1})

	period := k.NewTimer(func() {
		trace <- fmt.Sprintf("timer: fired at tick %d", k.SysClock().Ticks())
	})
	period.Start(5, 10)

	go func() {
		time.Sleep(200 * time.Millisecond)
		period.Stop()
		k.Shutdown()
		close(trace)
		os.Exit(0)
	}()

	k.Start()
}
