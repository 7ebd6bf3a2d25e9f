// Package amd64 implements the x86-64 Linux JIT backend: the
// machine-code size table the Resolver consults and the Emitter that
// streams the same byte sequences into a jit.CodeSegment.
//
// Calling convention: the emitted function takes the tape base pointer in
// %rdi (System V AMD64 ABI first integer argument) and keeps the current
// tape pointer in %rdi throughout.
package amd64

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Urethramancer/bf/bf"
	"github.com/Urethramancer/bf/jit"
)

// Emitter implements jit.Emitter for x86-64 Linux.
type Emitter struct{}

var _ jit.Emitter = Emitter{}

// MaxBranchOffset is the displacement field width of a 32-bit relative
// Jcc (rel32): plus or minus 2 GiB.
const MaxBranchOffset = int64(math.MaxInt32)

func (Emitter) MaxBranchOffset() int64 { return MaxBranchOffset }

// Size reports the number of bytes Emit will append for i. It must stay
// in lockstep with Emit's encoding for every case below.
func (Emitter) Size(i bf.Inst) (int, error) {
	switch i.Kind {
	case bf.KIncVal, bf.KDecVal:
		return 3, nil // 80 07/2F nn
	case bf.KIncPtr, bf.KDecPtr:
		return 7, nil // 48 81 C7/EF nn nn nn nn
	case bf.KJZ, bf.KJNZ:
		return 10, nil // 8A 07 84 C0 0F 84/85 oo oo oo oo
	case bf.KGetCh:
		return len(getcharStub), nil
	case bf.KPutCh:
		return len(putcharStub), nil
	default:
		return 0, fmt.Errorf("amd64: unknown IR kind %d", i.Kind)
	}
}

// Emit appends the machine code for i to seg.
func (e Emitter) Emit(seg *jit.CodeSegment, i bf.Inst) error {
	switch i.Kind {
	case bf.KIncVal:
		emitCellImm8(seg, 0x07, i.N) // addb $n, (%rdi)
	case bf.KDecVal:
		emitCellImm8(seg, 0x2F, i.N) // subb $n, (%rdi)
	case bf.KIncPtr:
		emitPtrImm32(seg, 0xC7, i.N) // addq $n, %rdi
	case bf.KDecPtr:
		emitPtrImm32(seg, 0xEF, i.N) // subq $n, %rdi
	case bf.KJZ:
		emitBranch(seg, 0x84, i.Off) // jz rel32
	case bf.KJNZ:
		emitBranch(seg, 0x85, i.Off) // jnz rel32
	case bf.KGetCh:
		seg.Write(getcharStub)
	case bf.KPutCh:
		seg.Write(putcharStub)
	default:
		return fmt.Errorf("amd64: unknown IR kind %d", i.Kind)
	}
	return nil
}

// EmitReturn appends a bare `ret` (0xC3), ending the JITed function.
func (Emitter) EmitReturn(seg *jit.CodeSegment) {
	seg.WriteByte(0xC3)
}

// emitCellImm8 writes `op /digit (%rdi), $n` style byte-opcode arithmetic
// against the cell %rdi points at: `80 07 nn` for add, `80 2F nn` for sub.
func emitCellImm8(seg *jit.CodeSegment, modrm byte, n uint32) {
	seg.WriteByte(0x80)
	seg.WriteByte(modrm)
	seg.WriteByte(byte(n))
}

// emitPtrImm32 writes `48 81 <modrm> nn nn nn nn` — a 64-bit REX.W
// add/sub-immediate against %rdi.
func emitPtrImm32(seg *jit.CodeSegment, modrm byte, n uint32) {
	seg.WriteByte(0x48)
	seg.WriteByte(0x81)
	seg.WriteByte(modrm)
	seg.WriteUint32LE(n)
}

// emitBranch writes the three-instruction test-and-branch sequence
// `mov (%rdi),%al; test %al,%al; jcc rel32`, where off is the already
// Resolve()-computed displacement relative to the instruction following
// the branch (standard x86-64 rel32 convention).
func emitBranch(seg *jit.CodeSegment, jccOp byte, off int32) {
	seg.WriteByte(0x8A)
	seg.WriteByte(0x07) // mov (%rdi), %al
	seg.WriteByte(0x84)
	seg.WriteByte(0xC0) // test %al, %al
	seg.WriteByte(0x0F)
	seg.WriteByte(jccOp)
	seg.WriteUint32LE(uint32(off))
}

// getcharStub and putcharStub are pre-assembled inlined read(2)/write(2)
// syscalls against fd 0/1, length 1, buffer = %rdi, preserving %rdi
// across the call. Precomputed as byte literals rather than built
// instruction-by-instruction because, unlike the fused arithmetic and
// branch forms, they carry no IR operand and so never vary between call
// sites.
var getcharStub = buildIOStub(0 /* sys_read */, 0 /* fd stdin */)
var putcharStub = buildIOStub(1 /* sys_write */, 1 /* fd stdout */)

// buildIOStub assembles:
//
//	push %rdi            ; 57
//	mov  %rdi, %rsi      ; 48 89 FE        buffer = tape ptr
//	mov  $1,   %rdx      ; BA 01 00 00 00  length = 1
//	mov  $fd,  %rdi      ; BF nn 00 00 00
//	mov  $sys, %rax      ; B8 nn 00 00 00
//	syscall              ; 0F 05
//	pop  %rdi            ; 5F
func buildIOStub(sysNo, fd uint32) []byte {
	b := make([]byte, 0, 28)
	b = append(b, 0x57)                   // push %rdi
	b = append(b, 0x48, 0x89, 0xFE)        // mov %rdi, %rsi
	b = append(b, 0xBA)                   // mov $1, %rdx
	b = appendU32(b, 1)
	b = append(b, 0xBF) // mov $fd, %rdi
	b = appendU32(b, fd)
	b = append(b, 0xB8) // mov $sysNo, %rax
	b = appendU32(b, sysNo)
	b = append(b, 0x0F, 0x05) // syscall
	b = append(b, 0x5F)       // pop %rdi
	return b
}

func appendU32(b []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(b, tmp[:]...)
}
