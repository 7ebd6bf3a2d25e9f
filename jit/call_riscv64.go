package jit

// callNative transfers control to the native function at address fn,
// passing tape in RISC-V's first integer-argument register (a0),
// matching the calling convention the riscv64 Emitter assumes.
// Implemented in call_riscv64.s for the same reason as the amd64
// variant: the JITed code expects the C calling convention, not Go's.
func callNative(fn, tape uintptr)
