package bf

import (
	"fmt"
	"io"
)

// TapeSize is the fixed Brainfuck tape length.
const TapeSize = 30000

// Interpret executes p directly over a freshly zeroed tape, reading ','
// from in and writing '.' to out. It is the reference semantics that the
// JIT backend must match exactly on well-formed, non-faulting programs.
//
// There is nothing to decode here (Program.Code already is the
// instruction stream), so fetch and dispatch collapse into a single
// switch per step.
func Interpret(p *Program, in io.Reader, out io.Writer) error {
	tape := make([]byte, TapeSize)
	memPtr := 0
	ip := 0

	var byteBuf [1]byte
	for ip < len(p.Code) {
		switch p.Code[ip] {
		case IncPtr:
			memPtr++
		case DecPtr:
			memPtr--
		case IncVal:
			if memPtr < 0 || memPtr >= TapeSize {
				return fmt.Errorf("interpret: %w at operator %d", ErrTapeOutOfBounds, ip)
			}
			tape[memPtr]++
		case DecVal:
			if memPtr < 0 || memPtr >= TapeSize {
				return fmt.Errorf("interpret: %w at operator %d", ErrTapeOutOfBounds, ip)
			}
			tape[memPtr]--
		case JZ:
			if memPtr < 0 || memPtr >= TapeSize {
				return fmt.Errorf("interpret: %w at operator %d", ErrTapeOutOfBounds, ip)
			}
			if tape[memPtr] == 0 {
				ip = p.Fwd[ip]
			}
		case JNZ:
			if memPtr < 0 || memPtr >= TapeSize {
				return fmt.Errorf("interpret: %w at operator %d", ErrTapeOutOfBounds, ip)
			}
			if tape[memPtr] != 0 {
				ip = p.Bwd[ip]
			}
		case GetCh:
			if memPtr < 0 || memPtr >= TapeSize {
				return fmt.Errorf("interpret: %w at operator %d", ErrTapeOutOfBounds, ip)
			}
			n, err := in.Read(byteBuf[:])
			if n == 0 || err == io.EOF {
				tape[memPtr] = 0
			} else if err != nil {
				return fmt.Errorf("interpret: %w: %v", ErrIO, err)
			} else {
				tape[memPtr] = byteBuf[0]
			}
		case PutCh:
			if memPtr < 0 || memPtr >= TapeSize {
				return fmt.Errorf("interpret: %w at operator %d", ErrTapeOutOfBounds, ip)
			}
			byteBuf[0] = tape[memPtr]
			if _, err := out.Write(byteBuf[:]); err != nil {
				return fmt.Errorf("interpret: %w: %v", ErrIO, err)
			}
		}
		ip++
	}

	return nil
}
