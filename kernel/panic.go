package kernel

import "fmt"

// panicf logs the failure (if a logger is installed) and invokes the port's
// panic hook with the numeric code, per spec §7's "user-visible failure
// behavior". A port whose hook doesn't actually halt the process (such as a
// port.Host built with a panicFn that returns) gets this call return normally.
func (k *Kernel) panicf(code Status, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logError(msg, "code", int(code))
	k.p.Panic(int(code), msg)
}
