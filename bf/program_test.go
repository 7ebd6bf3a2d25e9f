package bf

import "testing"

func TestParseDropsNonOperatorBytes(t *testing.T) {
	p, err := Parse([]byte("+ this is a comment - []"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []Operator{IncVal, DecVal, JZ, JNZ}
	if len(p.Code) != len(want) {
		t.Fatalf("Code = %v, want %v", p.Code, want)
	}
	for i := range want {
		if p.Code[i] != want[i] {
			t.Errorf("Code[%d] = %v, want %v", i, p.Code[i], want[i])
		}
	}
}

func TestParseJumpTablesAreMutualInverses(t *testing.T) {
	// Fwd/Bwd round-trip for every bracket pair.
	p, err := Parse([]byte("[[-]+[,.]]"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	for open, close := range p.Fwd {
		if p.Code[open] != JZ {
			t.Errorf("Fwd key %d is not a JZ", open)
		}
		if p.Code[close] != JNZ {
			t.Errorf("Fwd value %d is not a JNZ", close)
		}
		if got := p.Bwd[close]; got != open {
			t.Errorf("Bwd[%d] = %d, want %d", close, got, open)
		}
	}
	if len(p.Fwd) != len(p.Bwd) {
		t.Errorf("Fwd has %d entries, Bwd has %d", len(p.Fwd), len(p.Bwd))
	}
}

func TestParseRejectsUnmatchedOpen(t *testing.T) {
	if _, err := Parse([]byte("[+")); err == nil {
		t.Error("expected error for unmatched '['")
	}
}

func TestParseRejectsUnmatchedClose(t *testing.T) {
	if _, err := Parse([]byte("+]")); err == nil {
		t.Error("expected error for unmatched ']'")
	}
}

func TestOperatorString(t *testing.T) {
	if IncPtr.String() != ">" {
		t.Errorf("IncPtr.String() = %q, want \">\"", IncPtr.String())
	}
}
