package osapi

import "rtoscore/kernel"

// StackGetDefaultSize returns the default stack size used by ThreadCreate
// when attr.Stack is nil.
func StackGetDefaultSize() int { return kernel.GetDefaultStackSize() }

// StackSetDefaultSize overrides the default stack size.
func StackSetDefaultSize(n int) { kernel.SetDefaultStackSize(n) }

// StackGetMinSize returns the minimum stack size, used for the idle
// thread's stack; ThreadCreate does not check caller stacks against it.
func StackGetMinSize() int { return kernel.GetMinStackSize() }

// StackSetMinSize overrides the minimum stack size.
func StackSetMinSize(n int) { kernel.SetMinStackSize(n) }

// StackGetBottom returns the lowest usable address's offset into s.
func StackGetBottom(s *kernel.Stack) int { return s.Bottom() }

// StackGetTop returns one past the highest usable address's offset into s.
func StackGetTop(s *kernel.Stack) int { return s.Top() }

// StackGetSize returns s's total size, including canaries.
func StackGetSize(s *kernel.Stack) int { return s.Size() }

// StackGetAvailable estimates unused stack bytes via high-water scanning,
// or -1 if s was not constructed with that tracking enabled.
func StackGetAvailable(s *kernel.Stack) int { return s.Available() }

// StackCheckBottomMagic reports whether s's bottom canary is intact.
func StackCheckBottomMagic(s *kernel.Stack) bool { return s.CheckBottomMagic() }

// StackCheckTopMagic reports whether s's top canary is intact.
func StackCheckTopMagic(s *kernel.Stack) bool { return s.CheckTopMagic() }
