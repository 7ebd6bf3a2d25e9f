package jit

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/Urethramancer/bf/bf"
)

// Handle owns an executable memory region produced by Compile. Invoking
// Run calls the region as a native function of one pointer argument (the
// tape base address); Close releases the region back to the OS exactly
// once.
type Handle struct {
	mu   sync.Mutex
	mem  []byte
	done bool
}

// Run invokes the compiled native code, passing tape's base address as
// the function's sole argument, in the ISA's first integer-argument
// register (%rdi on x86-64, a0 on RISC-V). It blocks until the native
// code executes its trailing return instruction.
func (h *Handle) Run(tape []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.done {
		return fmt.Errorf("jit: run on released handle")
	}
	if len(h.mem) == 0 {
		return nil
	}
	fn := uintptr(unsafe.Pointer(&h.mem[0]))
	var tapeBase uintptr
	if len(tape) > 0 {
		tapeBase = uintptr(unsafe.Pointer(&tape[0]))
	}
	callNative(fn, tapeBase)
	return nil
}

// Close releases the handle's executable memory region. It is safe to
// call once; a second call returns bf.ErrAlreadyReleased instead of
// double-unmapping.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.done {
		return bf.ErrAlreadyReleased
	}
	h.done = true
	if len(h.mem) == 0 {
		return nil
	}
	if err := munmapExecutable(h.mem); err != nil {
		return fmt.Errorf("jit: %w: %v", bf.ErrExecReleaseFailed, err)
	}
	h.mem = nil
	return nil
}
