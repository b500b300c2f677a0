// Package osapi is the facade named family (spec §6): one file per
// operation family, each function a mechanical 1:1 translation onto
// package kernel. No scheduling decision is ever made here — every
// decision lives in kernel.
package osapi

import (
	"rtoscore/kernel"
	"rtoscore/port"
)

var kern *kernel.Kernel

// StartupInitialize wires the process-wide singleton (spec §9's "global
// state ... initialized at startup via an os_startup_initialize_* hook").
// It must be called exactly once, before any other osapi function.
func StartupInitialize(p port.Interface, cfg kernel.BootConfig) {
	kern = kernel.Boot(p, cfg)
}

// Kernel returns the process-wide scheduler singleton installed by
// StartupInitialize, for callers that need direct access to package
// kernel's richer surface alongside the facade.
func Kernel() *kernel.Kernel { return kern }
