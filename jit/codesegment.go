// Package jit drives the ISA-independent half of the JIT backend: it
// streams resolved IR into a growable CodeSegment via an Emitter,
// installs the result into executable memory, and returns an owning
// Handle. The ISA-specific encoders live in the amd64 and riscv64
// subpackages.
package jit

import (
	"fmt"

	"github.com/Urethramancer/bf/bf"
)

// CodeSegment is a growable byte buffer that an Emitter writes machine
// code into. Before installation it is an ordinary heap slice; once
// emission is complete, Compile copies it into an anonymous RWX mapping
// sized to exactly the bytes written so far.
//
// Backed by append()'s standard doubling growth rather than a
// fixed-size buffer, since the amd64 and riscv64 encoders both append
// variable-length byte runs (syscall stubs, disp32 immediates) whose
// total length isn't known up front.
type CodeSegment struct {
	buf []byte
}

// NewCodeSegment returns an empty, heap-backed CodeSegment ready for
// Emitter.Emit calls.
func NewCodeSegment() *CodeSegment {
	return &CodeSegment{buf: make([]byte, 0, 256)}
}

// Len reports the number of bytes written so far.
func (c *CodeSegment) Len() int { return len(c.buf) }

// Bytes returns the bytes written so far. The returned slice aliases the
// segment's backing array and is invalidated by the next Write call.
func (c *CodeSegment) Bytes() []byte { return c.buf }

// WriteByte appends a single byte.
func (c *CodeSegment) WriteByte(b byte) {
	c.buf = append(c.buf, b)
}

// Write appends an arbitrary byte slice.
func (c *CodeSegment) Write(b []byte) {
	c.buf = append(c.buf, b...)
}

// WriteUint32LE appends a 32-bit value in little-endian order, the
// encoding both ISAs in scope use for their displacement/immediate
// fields.
func (c *CodeSegment) WriteUint32LE(v uint32) {
	c.buf = append(c.buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

// PatchUint32LE overwrites 4 bytes already written at offset, used by
// backends that patch a branch displacement discovered only after
// emitting the intervening instructions (kept for backends that choose
// to patch post-hoc; the amd64 and riscv64 encoders in this module
// instead rely on bf.Resolve having already computed Inst.Off before
// Emit is ever called, so this is exercised only by tests exploring that
// alternative strategy).
func (c *CodeSegment) PatchUint32LE(offset int, v uint32) {
	c.buf[offset] = byte(v)
	c.buf[offset+1] = byte(v >> 8)
	c.buf[offset+2] = byte(v >> 16)
	c.buf[offset+3] = byte(v >> 24)
}

// Emitter is the narrow, ISA-specific interface the Resolver (via
// bf.Sizer, which it embeds) and the JIT driver both depend on. amd64 and
// riscv64 provide the only two implementations in scope (design note
// "Cross-ISA abstraction").
type Emitter interface {
	bf.Sizer
	// Emit appends the machine code for instruction i to seg. i.Off is
	// already resolved for KJZ/KJNZ by the time Emit is called.
	Emit(seg *CodeSegment, i bf.Inst) error
	// EmitReturn appends the ISA's function-return instruction.
	EmitReturn(seg *CodeSegment)
}

// Compile lowers already-fused, already-resolved IR into native machine
// code using e, installs it into executable memory, and returns an owning
// Handle. Callers obtain resolved IR via bf.Lower followed by
// bf.Resolve(code, e).
func Compile(code []bf.Inst, e Emitter) (*Handle, error) {
	seg := NewCodeSegment()
	for idx, inst := range code {
		if err := e.Emit(seg, inst); err != nil {
			return nil, fmt.Errorf("jit: emit instruction %d: %w", idx, err)
		}
	}
	e.EmitReturn(seg)

	mem, err := mmapExecutable(seg.Bytes())
	if err != nil {
		return nil, fmt.Errorf("jit: %w: %v", bf.ErrExecAllocFailed, err)
	}

	return &Handle{mem: mem}, nil
}
