//go:build windows

package terminal

import (
	"fmt"

	"github.com/creack/pty"
)

type unsupportedSystem struct{}

// NewSystem returns the platform pty allocator. creack/pty has no ConPTY
// backend, so Create fails with ErrOpenFailed on Windows.
func NewSystem() System {
	return unsupportedSystem{}
}

func (unsupportedSystem) Open(Size) (PTY, error) {
	return nil, fmt.Errorf("windows: %w", pty.ErrUnsupported)
}
