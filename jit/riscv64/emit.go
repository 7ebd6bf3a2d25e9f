// Package riscv64 implements the RISC-V 64 Linux JIT backend.
//
// Calling convention: the emitted function takes the tape base pointer in
// a0 (RISC-V's first integer argument register) and keeps the current
// tape pointer in a0 throughout. t0 is the scratch register used for
// cell loads/stores.
//
// The B-format branch encoding scatters its 13-bit signed displacement
// (bit 0 implicit zero) across four non-contiguous instruction-word
// fields; encodeBImm performs that bit-surgery, computing the fields
// programmatically from the signed offset rather than hand-encoding byte
// literals, so the displacement path is correct for every legal offset
// rather than just a zero displacement.
package riscv64

import (
	"fmt"

	"github.com/Urethramancer/bf/bf"
	"github.com/Urethramancer/bf/jit"
)

// RISC-V integer register numbers used by this backend.
const (
	regZero = 0
	regRA   = 1
	regSP   = 2
	regT0   = 5
	regA0   = 10
	regA1   = 11
	regA2   = 12
	regA7   = 17
)

// Linux riscv64 syscall numbers (the generic syscall ABI riscv64 shares
// with arm64 — distinct from the x86_64 numbers the amd64 backend uses).
const (
	sysRead  = 63
	sysWrite = 64
)

// Emitter implements jit.Emitter for RISC-V 64 Linux.
type Emitter struct{}

var _ jit.Emitter = Emitter{}

// MaxBranchOffset is the B-format displacement field's range: 13
// significant bits (bit 0 implicit zero), giving ±4 KiB.
const MaxBranchOffset = int64(4094)

func (Emitter) MaxBranchOffset() int64 { return MaxBranchOffset }

const (
	sizeRMW    = 12 // lb t0,(a0); addi t0,t0,n; sb t0,(a0)
	sizeShift  = 4  // addi a0,a0,n
	sizeBranch = 8  // lb t0,(a0); b{eq,ne}z t0,off
	sizeIO     = 28 // 7-instruction read/write syscall stub
	sizeRet    = 4  // jalr x0,0(ra)
)

// Size reports the number of bytes Emit will append for i.
func (Emitter) Size(i bf.Inst) (int, error) {
	switch i.Kind {
	case bf.KIncVal, bf.KDecVal:
		return sizeRMW, nil
	case bf.KIncPtr, bf.KDecPtr:
		if i.N > 2047 {
			return 0, bf.ErrPtrCountOverflow
		}
		return sizeShift, nil
	case bf.KJZ, bf.KJNZ:
		return sizeBranch, nil
	case bf.KGetCh, bf.KPutCh:
		return sizeIO, nil
	default:
		return 0, fmt.Errorf("riscv64: unknown IR kind %d", i.Kind)
	}
}

// Emit appends the machine code for i to seg.
func (e Emitter) Emit(seg *jit.CodeSegment, i bf.Inst) error {
	switch i.Kind {
	case bf.KIncVal:
		emitCellRMW(seg, int32(i.N))
	case bf.KDecVal:
		emitCellRMW(seg, -int32(i.N))
	case bf.KIncPtr:
		if i.N > 2047 {
			return bf.ErrPtrCountOverflow
		}
		emitWord(seg, iType(0x13, 0, regA0, regA0, int32(i.N))) // addi a0,a0,+n
	case bf.KDecPtr:
		if i.N > 2047 {
			return bf.ErrPtrCountOverflow
		}
		emitWord(seg, iType(0x13, 0, regA0, regA0, -int32(i.N))) // addi a0,a0,-n
	case bf.KJZ:
		return emitBranch(seg, 0 /* beq */, i.Off)
	case bf.KJNZ:
		return emitBranch(seg, 1 /* bne */, i.Off)
	case bf.KGetCh:
		emitIOStub(seg, regZero /* fd stdin */, sysRead)
	case bf.KPutCh:
		emitIOStub(seg, 1 /* fd stdout */, sysWrite)
	default:
		return fmt.Errorf("riscv64: unknown IR kind %d", i.Kind)
	}
	return nil
}

// EmitReturn appends `ret` (jalr x0, 0(ra)).
func (Emitter) EmitReturn(seg *jit.CodeSegment) {
	emitWord(seg, iType(0x67, 0, regZero, regRA, 0))
}

// emitCellRMW writes `lb t0,(a0); addi t0,t0,delta; sb t0,(a0)`.
func emitCellRMW(seg *jit.CodeSegment, delta int32) {
	emitWord(seg, iType(0x03, 0, regT0, regA0, 0))       // lb t0, 0(a0)
	emitWord(seg, iType(0x13, 0, regT0, regT0, delta))   // addi t0, t0, delta
	emitWord(seg, sType(0x23, 0, regA0, regT0, 0))       // sb t0, 0(a0)
}

// emitBranch writes `lb t0,(a0); b{eq,ne}z t0, off`, where off is the
// Resolve()-computed displacement relative to the branch instruction
// itself, per the RISC-V B-format convention.
func emitBranch(seg *jit.CodeSegment, funct3 uint32, off int32) error {
	emitWord(seg, iType(0x03, 0, regT0, regA0, 0)) // lb t0, 0(a0)
	word, err := bType(0x63, funct3, regT0, regZero, off)
	if err != nil {
		return err
	}
	emitWord(seg, word)
	return nil
}

// emitIOStub writes the 7-instruction inlined read(2)/write(2) sequence,
// spilling the tape pointer across the syscall via a doubleword stack
// slot at sp-8: an 8-byte pointer needs an 8-byte-aligned sd/ld pair,
// so this backend spills a full doubleword rather than a 4-byte word.
func emitIOStub(seg *jit.CodeSegment, fd, sysNo uint32) {
	emitWord(seg, sType(0x23, 3, regSP, regA0, -8))        // sd a0, -8(sp)
	emitWord(seg, iType(0x13, 0, regA1, regA0, 0))          // mv a1, a0        (buffer)
	emitWord(seg, iType(0x13, 0, regA0, regZero, int32(fd))) // li a0, fd       (fd)
	emitWord(seg, iType(0x13, 0, regA2, regZero, 1))        // li a2, 1         (length)
	emitWord(seg, iType(0x13, 0, regA7, regZero, int32(sysNo))) // li a7, sysNo
	emitWord(seg, iType(0x73, 0, regZero, regZero, 0))      // ecall
	emitWord(seg, iType(0x03, 3, regA0, regSP, -8))         // ld a0, -8(sp)
}

func emitWord(seg *jit.CodeSegment, w uint32) {
	seg.WriteUint32LE(w)
}

// iType encodes a standard RISC-V I-type instruction: imm[11:0] | rs1 |
// funct3 | rd | opcode.
func iType(opcode, funct3, rd, rs1 uint32, imm int32) uint32 {
	return (uint32(imm)&0xFFF)<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

// sType encodes a standard RISC-V S-type instruction (used by sb/sd):
// imm[11:5] | rs2 | rs1 | funct3 | imm[4:0] | opcode.
func sType(opcode, funct3, rs1, rs2 uint32, imm int32) uint32 {
	u := uint32(imm) & 0xFFF
	return (u>>5)<<25 | rs2<<20 | rs1<<15 | funct3<<12 | (u&0x1F)<<7 | opcode
}

// bType encodes a standard RISC-V B-type (conditional branch)
// instruction, scattering the 13-bit signed displacement (bit 0 implicit
// zero) across its four non-contiguous immediate fields.
func bType(opcode, funct3, rs1, rs2 uint32, off int32) (uint32, error) {
	immBits, err := encodeBImm(off)
	if err != nil {
		return 0, err
	}
	return immBits | rs2<<20 | rs1<<15 | funct3<<12 | opcode, nil
}

// encodeBImm packs a signed, 2-byte-aligned branch displacement into the
// B-format's scattered immediate field layout:
//
//	bit31      = imm[12]
//	bits30:25  = imm[10:5]
//	bits11:8   = imm[4:1]
//	bit7       = imm[11]
func encodeBImm(off int32) (uint32, error) {
	if off%2 != 0 {
		return 0, fmt.Errorf("riscv64: branch offset %d is not 2-byte aligned", off)
	}
	if off < -4096 || off > 4094 {
		return 0, fmt.Errorf("riscv64: %w: offset %d", bf.ErrBranchOutOfRange, off)
	}
	u := uint32(off)
	bit12 := (u >> 12) & 0x1
	bits10_5 := (u >> 5) & 0x3F
	bits4_1 := (u >> 1) & 0xF
	bit11 := (u >> 11) & 0x1
	return bit12<<31 | bits10_5<<25 | bits4_1<<8 | bit11<<7, nil
}
