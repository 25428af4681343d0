//go:build !unix

package terminal

import "os"

// Input reads from f. Close does not interrupt a pending Read on this
// platform.
type Input struct {
	f *os.File
}

// OpenInput wraps f.
func OpenInput(f *os.File) (*Input, error) {
	return &Input{f: f}, nil
}

func (in *Input) Read(p []byte) (int, error) {
	return in.f.Read(p)
}

func (in *Input) Close() error {
	return nil
}
