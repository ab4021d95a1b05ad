//go:build !linux

package vinput

import "fmt"

// DefaultUinputPath is the kernel's uinput device file.
const DefaultUinputPath = "/dev/uinput"

// Uinput is only available on Linux.
type Uinput struct {
	Recorder
}

// OpenUinput always fails outside Linux.
func OpenUinput(path string, width, height int) (*Uinput, error) {
	return nil, fmt.Errorf("%w: uinput requires linux", ErrUnavailable)
}
