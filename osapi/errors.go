package osapi

import "rtoscore/kernel"

// Status is the facade's numeric return-code taxonomy (spec §6), identical
// in value to kernel.Status: the facade never introduces its own error
// space, only re-exports the core's.
type Status = kernel.Status

const (
	OK                = kernel.OK
	ErrPermission     = kernel.ErrPermission
	ErrInvalid        = kernel.ErrInvalid
	ErrTimeout        = kernel.ErrTimeout
	ErrWouldBlock     = kernel.ErrWouldBlock
	ErrInterrupted    = kernel.ErrInterrupted
	ErrNotRecoverable = kernel.ErrNotRecoverable
	ErrAgain          = kernel.ErrAgain
	ErrDeadlock       = kernel.ErrDeadlock
	ErrOwnerDead      = kernel.ErrOwnerDead
	ErrMessageSize    = kernel.ErrMessageSize
	ErrBadMessage     = kernel.ErrBadMessage
	ErrNoMemory       = kernel.ErrNoMemory
)
