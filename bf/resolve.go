package bf

import (
	"fmt"
	"math"
)

// Sizer is the pure, ISA-specific "machine-code size table": given an IR
// instruction it reports how many bytes the corresponding Emitter will
// write for it. The Resolver is the only consumer that needs just this
// much of an ISA backend; the JIT driver needs the fuller Emitter
// interface (defined in the jit package) which embeds this one.
type Sizer interface {
	// Size returns the number of machine-code bytes instruction i will
	// occupy once emitted. It must agree exactly with what the
	// corresponding Emitter.Emit writes.
	Size(i Inst) (int, error)
	// MaxBranchOffset returns the largest absolute byte displacement the
	// target ISA's branch encoding can represent (±2 GiB rel32 on
	// x86-64, ±4 KiB on RISC-V's B-format).
	MaxBranchOffset() int64
}

// Resolve walks fused IR and rewrites every KJZ/KJNZ's Off from
// unresolved (0) to the signed relative byte offset the target ISA's
// branch encoding expects.
//
// Every non-branch IR instruction has a size fixed by its Kind alone, so
// there's no forward-reference size growth to chase: a single linear
// pass over the IR combined with a single pass over resolved pairs is
// sufficient. No fixed-point relaxation loop is needed. First pass
// matches JZ/JNZ by index via a stack, second pass sums Sizer.Size over
// the instructions from each JZ up to, but not including, its JNZ and
// assigns that sum as +offset to the JZ and -offset to the JNZ.
func Resolve(code []Inst, sizer Sizer) error {
	type pair struct{ open, close int }

	var stack []int
	var pairs []pair
	for i, inst := range code {
		switch inst.Kind {
		case KJZ:
			stack = append(stack, i)
		case KJNZ:
			if len(stack) == 0 {
				return fmt.Errorf("resolve: %w at IR index %d", ErrUnbalancedBranches, i)
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			pairs = append(pairs, pair{open: open, close: i})
		}
	}
	if len(stack) != 0 {
		return fmt.Errorf("resolve: %w: unclosed '[' at IR index %d", ErrUnbalancedBranches, stack[len(stack)-1])
	}

	for _, p := range pairs {
		var size int64
		for k := p.open; k < p.close; k++ {
			n, err := sizer.Size(code[k])
			if err != nil {
				return fmt.Errorf("resolve: %w", err)
			}
			size += int64(n)
		}
		if limit := sizer.MaxBranchOffset(); size > limit || size > int64(math.MaxInt32) {
			return fmt.Errorf("resolve: %w: branch spans %d bytes", ErrBranchOutOfRange, size)
		}
		code[p.open].Off = int32(size)
		code[p.close].Off = int32(-size)
	}

	return nil
}
