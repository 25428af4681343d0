//go:build unix

package terminal

import (
	"fmt"
	"os"
	"syscall"
)

// Input reads from a duplicate of a terminal descriptor registered with the
// runtime poller, so Close wakes a goroutine blocked in Read. The original
// descriptor stays open.
type Input struct {
	f  *os.File
	fd int
}

// OpenInput prepares f for interruptible reads.
func OpenInput(f *os.File) (*Input, error) {
	fd, err := syscall.Dup(int(f.Fd()))
	if err != nil {
		return nil, fmt.Errorf("failed to duplicate input descriptor: %w", err)
	}
	if err := syscall.SetNonblock(fd, true); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("failed to set input non-blocking: %w", err)
	}
	return &Input{f: os.NewFile(uintptr(fd), f.Name()), fd: fd}, nil
}

func (in *Input) Read(p []byte) (int, error) {
	return in.f.Read(p)
}

// Close wakes a pending Read and returns the shared file description to
// blocking mode, as the parent shell expects.
func (in *Input) Close() error {
	_ = syscall.SetNonblock(in.fd, false)
	return in.f.Close()
}
