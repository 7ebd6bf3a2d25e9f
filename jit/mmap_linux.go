package jit

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// mmapExecutable requests an anonymous private read+write+execute mapping
// of exactly len(code) bytes and copies code into it. golang.org/x/sys/unix
// gives a direct, portable wrapper over the raw mmap(2)/munmap(2) syscalls
// without going through cgo.
func mmapExecutable(code []byte) ([]byte, error) {
	if len(code) == 0 {
		return nil, fmt.Errorf("jit: BUG: mmapExecutable with zero length")
	}

	mem, err := unix.Mmap(-1, 0, len(code),
		unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC,
		unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("mmap: %w", err)
	}
	copy(mem, code)
	return mem, nil
}

// munmapExecutable returns a region obtained from mmapExecutable back to
// the OS.
func munmapExecutable(mem []byte) error {
	if len(mem) == 0 {
		return fmt.Errorf("jit: BUG: munmapExecutable with zero length")
	}
	return unix.Munmap(mem)
}
