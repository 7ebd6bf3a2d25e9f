package jit

// callNative transfers control to the native function at address fn,
// passing tape in the System V AMD64 first integer-argument register
// (%rdi), matching the calling convention the amd64 Emitter assumes.
// Implemented in call_amd64.s since Go's own calling convention does not
// place arguments in %rdi and the JITed code expects the System V AMD64
// C calling convention instead.
func callNative(fn, tape uintptr)
