package kernel

import "github.com/rs/zerolog"

// ZerologAdapter satisfies Logger on top of a *zerolog.Logger. It is the
// only file in this package that imports zerolog; the rest of the kernel
// only ever sees the Logger interface.
type ZerologAdapter struct {
	Z *zerolog.Logger
}

// NewZerologAdapter wraps z as a kernel Logger.
func NewZerologAdapter(z *zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{Z: z}
}

func (a *ZerologAdapter) event(ev *zerolog.Event, msg string, kv []any) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, kv[i+1])
	}
	ev.Msg(msg)
}

func (a *ZerologAdapter) Debug(msg string, kv ...any) { a.event(a.Z.Debug(), msg, kv) }
func (a *ZerologAdapter) Warn(msg string, kv ...any)  { a.event(a.Z.Warn(), msg, kv) }
func (a *ZerologAdapter) Error(msg string, kv ...any) { a.event(a.Z.Error(), msg, kv) }
