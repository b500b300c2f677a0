package kernel

// Status is the kernel's numeric return-code taxonomy. Values are stable;
// the facade in package osapi maps them 1:1 onto its own wire constants.
type Status int

const (
	OK Status = iota
	ErrPermission
	ErrInvalid
	ErrTimeout
	ErrWouldBlock
	ErrInterrupted
	ErrNotRecoverable
	ErrAgain
	ErrDeadlock
	ErrOwnerDead
	ErrMessageSize
	ErrBadMessage
	ErrNoMemory
)

func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case ErrPermission:
		return "permission"
	case ErrInvalid:
		return "invalid"
	case ErrTimeout:
		return "timeout"
	case ErrWouldBlock:
		return "would_block"
	case ErrInterrupted:
		return "interrupted"
	case ErrNotRecoverable:
		return "not_recoverable"
	case ErrAgain:
		return "again"
	case ErrDeadlock:
		return "deadlock"
	case ErrOwnerDead:
		return "owner_dead"
	case ErrMessageSize:
		return "message_size"
	case ErrBadMessage:
		return "bad_message"
	case ErrNoMemory:
		return "no_memory"
	default:
		return "unknown"
	}
}

// Error implements the error interface so a Status can be returned directly
// where Go idiom expects an error, without losing the stable numeric code
// (callers that want the code back use errors.As or a direct type switch).
func (s Status) Error() string { return s.String() }

// Ok reports whether the status represents success.
func (s Status) Ok() bool { return s == OK }
