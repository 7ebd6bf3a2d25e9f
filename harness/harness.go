// Package harness ties the pipeline together: parse, then either
// interpret directly or lower, resolve and JIT-compile for the host ISA,
// then run to completion.
//
// It is a separate top-level package, rather than living alongside bf,
// because it is the one component that depends on both bf and jit; bf
// itself stays free of any jit import so the Sizer/Emitter contract in
// jit can keep depending on bf without a cycle.
package harness

import (
	"fmt"
	"io"
	"runtime"

	"github.com/Urethramancer/bf/bf"
	"github.com/Urethramancer/bf/jit"
	"github.com/Urethramancer/bf/jit/amd64"
	"github.com/Urethramancer/bf/jit/riscv64"
)

// Mode selects how a parsed program is executed.
type Mode int

const (
	// ModeAuto picks JIT on a supported GOARCH and falls back to the
	// interpreter elsewhere.
	ModeAuto Mode = iota
	// ModeInterp always runs the reference interpreter.
	ModeInterp
	// ModeJIT always JIT-compiles, failing with ErrUnsupportedArch if
	// the host architecture has no backend.
	ModeJIT
)

// ErrUnsupportedArch is returned when ModeJIT is requested on a GOARCH
// with no Emitter in this module.
var ErrUnsupportedArch = fmt.Errorf("harness: no JIT backend for %s", runtime.GOARCH)

// Run parses src, then executes it under mode. The interpreter reads
// GETCH bytes from in and writes PUTCH bytes to out; JIT-compiled code
// does not use in or out and reads and writes the process's file
// descriptors 0 and 1 directly.
func Run(src []byte, mode Mode, in io.Reader, out io.Writer) error {
	prog, err := bf.Parse(src)
	if err != nil {
		return fmt.Errorf("harness: %w", err)
	}

	useJIT := mode == ModeJIT || (mode == ModeAuto && hasBackend())
	if !useJIT {
		if mode == ModeJIT {
			return ErrUnsupportedArch
		}
		if err := bf.Interpret(prog, in, out); err != nil {
			return fmt.Errorf("harness: %w", err)
		}
		return nil
	}

	code, err := bf.Lower(prog)
	if err != nil {
		return fmt.Errorf("harness: %w", err)
	}

	return runJIT(code, in, out)
}

// runJIT resolves branch displacements for the host's Emitter, compiles
// to native code, and executes it. GETCH/PUTCH are backed by inlined
// syscalls against the process's real stdin/stdout, so in and out are
// honored only when they are *os.File-backed standard streams; see
// DESIGN.md for the tradeoff this implies for in-process redirection.
func runJIT(code []bf.Inst, in io.Reader, out io.Writer) error {
	e, err := emitterForHost()
	if err != nil {
		return err
	}
	if err := bf.Resolve(code, e); err != nil {
		return fmt.Errorf("harness: %w", err)
	}
	h, err := jit.Compile(code, e)
	if err != nil {
		return fmt.Errorf("harness: %w", err)
	}
	defer h.Close()

	tape := make([]byte, bf.TapeSize)
	if err := h.Run(tape); err != nil {
		return fmt.Errorf("harness: %w", err)
	}
	return nil
}

func hasBackend() bool {
	switch runtime.GOARCH {
	case "amd64", "riscv64":
		return true
	default:
		return false
	}
}

func emitterForHost() (jit.Emitter, error) {
	switch runtime.GOARCH {
	case "amd64":
		return amd64.Emitter{}, nil
	case "riscv64":
		return riscv64.Emitter{}, nil
	default:
		return nil, ErrUnsupportedArch
	}
}
