package bf

import "errors"

// Sentinel errors for the pipeline stages. Each stage wraps one of these
// with fmt.Errorf("...: %w", ...) so callers can errors.Is against the
// kind while still getting a located message.
var (
	// ErrUnmatchedOpen is returned by Parse when a JZ has no matching JNZ.
	ErrUnmatchedOpen = errors.New("unmatched '['")
	// ErrUnmatchedClose is returned by Parse when a JNZ has no matching JZ.
	ErrUnmatchedClose = errors.New("unmatched ']'")

	// ErrPtrCountOverflow is returned by the lowerer (or the RISC-V
	// emitter, which cannot represent large pointer shifts in a single
	// ADDI) when a fused pointer-shift run's count cannot be represented.
	ErrPtrCountOverflow = errors.New("pointer shift count overflow")

	// ErrUnbalancedBranches is returned by Resolve if the fused IR
	// contains a JNZ with no open JZ, or an open JZ at the end.
	ErrUnbalancedBranches = errors.New("unbalanced branches")
	// ErrBranchOutOfRange is returned by Resolve when the machine-code
	// distance between a JZ/JNZ pair exceeds the target ISA's
	// displacement field.
	ErrBranchOutOfRange = errors.New("branch target out of range")

	// ErrTapeOutOfBounds is returned by the interpreter (and would be a
	// silent memory fault in JITed code, which performs no bounds
	// checks — see design notes).
	ErrTapeOutOfBounds = errors.New("tape pointer out of bounds")
	// ErrIO wraps a failure reading from or writing to the configured
	// I/O streams.
	ErrIO = errors.New("i/o error")

	// ErrExecAllocFailed is returned when the OS refuses to hand back an
	// executable anonymous mapping.
	ErrExecAllocFailed = errors.New("failed to allocate executable memory")
	// ErrExecReleaseFailed is returned when releasing a JIT handle's
	// memory region fails.
	ErrExecReleaseFailed = errors.New("failed to release executable memory")
	// ErrAlreadyReleased guards against double-release of a JIT handle.
	ErrAlreadyReleased = errors.New("jit handle already released")
)
