package riscv64

import (
	"testing"

	"github.com/Urethramancer/bf/bf"
	"github.com/Urethramancer/bf/jit"
)

func TestSizeMatchesEmittedLength(t *testing.T) {
	cases := []bf.Inst{
		{Kind: bf.KIncVal, N: 3},
		{Kind: bf.KDecVal, N: 250},
		{Kind: bf.KIncPtr, N: 10},
		{Kind: bf.KDecPtr, N: 1},
		{Kind: bf.KJZ, Off: 128},
		{Kind: bf.KJNZ, Off: -64},
		{Kind: bf.KGetCh},
		{Kind: bf.KPutCh},
	}
	var e Emitter
	for _, c := range cases {
		want, err := e.Size(c)
		if err != nil {
			t.Fatalf("Size(%v): %v", c, err)
		}
		seg := jit.NewCodeSegment()
		if err := e.Emit(seg, c); err != nil {
			t.Fatalf("Emit(%v): %v", c, err)
		}
		if got := seg.Len(); got != want {
			t.Errorf("%v: Size=%d but Emit wrote %d bytes", c, want, got)
		}
	}
}

func TestPtrCountOverflow(t *testing.T) {
	var e Emitter
	big := bf.Inst{Kind: bf.KIncPtr, N: 2048}
	if _, err := e.Size(big); err != bf.ErrPtrCountOverflow {
		t.Errorf("Size(N=2048): got %v, want ErrPtrCountOverflow", err)
	}
	seg := jit.NewCodeSegment()
	if err := e.Emit(seg, big); err != bf.ErrPtrCountOverflow {
		t.Errorf("Emit(N=2048): got %v, want ErrPtrCountOverflow", err)
	}
}

func TestPtrCountWithinRange(t *testing.T) {
	var e Emitter
	ok := bf.Inst{Kind: bf.KDecPtr, N: 2047}
	if _, err := e.Size(ok); err != nil {
		t.Errorf("Size(N=2047): unexpected error %v", err)
	}
}

func TestEncodeBImmRoundTrips(t *testing.T) {
	// The scattered B-format fields must decode back to the original
	// displacement for every legal 2-byte-aligned offset in range.
	for off := int32(-4096); off <= 4094; off += 2 {
		bits, err := encodeBImm(off)
		if err != nil {
			t.Fatalf("encodeBImm(%d): %v", off, err)
		}
		bit12 := (bits >> 31) & 0x1
		bits10_5 := (bits >> 25) & 0x3F
		bits4_1 := (bits >> 8) & 0xF
		bit11 := (bits >> 7) & 0x1
		decoded := int32(bit12<<12 | bit11<<11 | bits10_5<<5 | bits4_1<<1)
		// Sign-extend from bit 12.
		if decoded&(1<<12) != 0 {
			decoded |= ^int32(0) << 13
		}
		if decoded != off {
			t.Errorf("encodeBImm(%d) round-tripped to %d", off, decoded)
		}
	}
}

func TestEncodeBImmRejectsOddOffset(t *testing.T) {
	if _, err := encodeBImm(3); err == nil {
		t.Error("encodeBImm(3): expected error for unaligned offset")
	}
}

func TestEncodeBImmRejectsOutOfRange(t *testing.T) {
	if _, err := encodeBImm(5000); err == nil {
		t.Error("encodeBImm(5000): expected ErrBranchOutOfRange")
	}
	if _, err := encodeBImm(-5000); err == nil {
		t.Error("encodeBImm(-5000): expected ErrBranchOutOfRange")
	}
}

func TestEmitReturnIsJalr(t *testing.T) {
	var e Emitter
	seg := jit.NewCodeSegment()
	e.EmitReturn(seg)
	want := []byte{0x67, 0x80, 0x00, 0x00} // jalr x0, 0(ra) little-endian
	got := seg.Bytes()
	if len(got) != 4 {
		t.Fatalf("EmitReturn wrote %d bytes, want 4", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("EmitReturn = % x, want % x", got, want)
			break
		}
	}
}

func TestMaxBranchOffsetIsFourKiB(t *testing.T) {
	var e Emitter
	if e.MaxBranchOffset() != 4094 {
		t.Errorf("MaxBranchOffset = %d, want 4094", e.MaxBranchOffset())
	}
}
