//go:build linux && !tinygo

package port

import (
	"time"

	"golang.org/x/sys/unix"
)

// newTickSource drives the tick channel from a Linux timerfd, which is
// steadier under load than a bare time.Ticker goroutine. If the timerfd
// syscalls are unavailable for any reason, it falls back to time.Ticker so
// the host port still functions.
func newTickSource(frequencyHz int) (<-chan struct{}, func()) {
	if frequencyHz <= 0 {
		frequencyHz = 1
	}
	period := time.Second / time.Duration(frequencyHz)

	fd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, 0)
	if err != nil {
		return newTickerFallback(period)
	}
	spec := unix.ItimerSpec{
		Interval: unix.NsecToTimespec(period.Nanoseconds()),
		Value:    unix.NsecToTimespec(period.Nanoseconds()),
	}
	if err := unix.TimerfdSettime(fd, 0, &spec, nil); err != nil {
		unix.Close(fd)
		return newTickerFallback(period)
	}

	out := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		defer unix.Close(fd)
		buf := make([]byte, 8)
		for {
			select {
			case <-done:
				return
			default:
			}
			n, err := unix.Read(fd, buf)
			if err != nil || n != 8 {
				if err == unix.EINTR {
					continue
				}
				return
			}
			select {
			case out <- struct{}{}:
			case <-done:
				return
			}
		}
	}()
	return out, func() { close(done) }
}

func newTickerFallback(period time.Duration) (<-chan struct{}, func()) {
	t := time.NewTicker(period)
	out := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		defer t.Stop()
		for {
			select {
			case <-t.C:
				select {
				case out <- struct{}{}:
				case <-done:
					return
				}
			case <-done:
				return
			}
		}
	}()
	return out, func() { close(done) }
}
