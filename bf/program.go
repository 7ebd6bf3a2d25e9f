// Package bf implements the Brainfuck compilation and execution pipeline:
// parsing source into a Program, lowering to a fused intermediate
// representation, resolving branch targets, and running that IR either
// through the reference interpreter or (via the sibling jit package) a
// just-in-time compiled native routine.
package bf

import "fmt"

// Operator is one of the eight Brainfuck source characters.
type Operator byte

// The eight Brainfuck operators. The constant values are the ASCII bytes
// themselves so that Parse can do a direct byte-to-Operator cast with no
// lookup table.
const (
	IncPtr Operator = '>'
	DecPtr Operator = '<'
	IncVal Operator = '+'
	DecVal Operator = '-'
	JZ     Operator = '['
	JNZ    Operator = ']'
	GetCh  Operator = ','
	PutCh  Operator = '.'
)

// String implements fmt.Stringer for diagnostics.
func (o Operator) String() string {
	switch o {
	case IncPtr, DecPtr, IncVal, DecVal, JZ, JNZ, GetCh, PutCh:
		return string(rune(o))
	default:
		return fmt.Sprintf("Operator(%#02x)", byte(o))
	}
}

// isOperator reports whether b is one of the eight significant bytes.
func isOperator(b byte) bool {
	switch Operator(b) {
	case IncPtr, DecPtr, IncVal, DecVal, JZ, JNZ, GetCh, PutCh:
		return true
	default:
		return false
	}
}

// Program is an ordered sequence of Operators with resolved jump tables.
//
// Fwd[i] == j iff Code[i] is JZ and its matching JNZ is at index j. Bwd is
// the inverse mapping. The tables are mutual inverses and every JZ/JNZ has
// exactly one partner.
type Program struct {
	Code []Operator
	Fwd  map[int]int
	Bwd  map[int]int
}

// Parse scans src byte-by-byte, keeping only the eight significant
// characters (everything else is a Brainfuck comment), and builds the
// forward/backward jump tables with a single pass over a stack of open
// JZ positions.
func Parse(src []byte) (*Program, error) {
	code := make([]Operator, 0, len(src))
	for _, b := range src {
		if isOperator(b) {
			code = append(code, Operator(b))
		}
	}

	fwd := make(map[int]int)
	bwd := make(map[int]int)
	var stack []int
	for i, op := range code {
		switch op {
		case JZ:
			stack = append(stack, i)
		case JNZ:
			if len(stack) == 0 {
				return nil, fmt.Errorf("parse: %w at operator %d", ErrUnmatchedClose, i)
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			fwd[open] = i
			bwd[i] = open
		}
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("parse: %w at operator %d", ErrUnmatchedOpen, stack[len(stack)-1])
	}

	return &Program{Code: code, Fwd: fwd, Bwd: bwd}, nil
}
