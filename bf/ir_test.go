package bf

import "testing"

func TestLowerFusesRuns(t *testing.T) {
	p, err := Parse([]byte("+++>>,."))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	code, err := Lower(p)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	want := []Inst{
		{Kind: KIncVal, N: 3},
		{Kind: KIncPtr, N: 2},
		{Kind: KGetCh},
		{Kind: KPutCh},
	}
	if len(code) != len(want) {
		t.Fatalf("Lower produced %d instructions, want %d: %+v", len(code), len(want), code)
	}
	for i := range want {
		if code[i].Kind != want[i].Kind || code[i].N != want[i].N {
			t.Errorf("code[%d] = %+v, want %+v", i, code[i], want[i])
		}
	}
}

func TestLowerIsMaximal(t *testing.T) {
	// A fused run never splits where an unfused run of the same kind
	// wouldn't.
	p, err := Parse([]byte("++++++"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	code, err := Lower(p)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if len(code) != 1 {
		t.Fatalf("Lower produced %d instructions for a single run, want 1: %+v", len(code), code)
	}
	if code[0].N != 6 {
		t.Errorf("fused count = %d, want 6", code[0].N)
	}
}

func TestLowerDoesNotFuseAcrossDifferentKinds(t *testing.T) {
	p, err := Parse([]byte("+-"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	code, err := Lower(p)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if len(code) != 2 {
		t.Fatalf("Lower produced %d instructions for '+-', want 2: %+v", len(code), code)
	}
}

func TestLowerValueCountWrapsModulo256(t *testing.T) {
	p := &Program{Code: make([]Operator, 257)}
	for i := range p.Code {
		p.Code[i] = IncVal
	}
	code, err := Lower(p)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if len(code) != 1 || code[0].N != 1 {
		t.Fatalf("257 '+'s fused to %+v, want N=1", code)
	}
}

func TestLowerPreservesBranches(t *testing.T) {
	p, err := Parse([]byte("[+]"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	code, err := Lower(p)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if len(code) != 3 || code[0].Kind != KJZ || code[2].Kind != KJNZ {
		t.Fatalf("Lower([+]) = %+v, want JZ, IncVal, JNZ", code)
	}
}
