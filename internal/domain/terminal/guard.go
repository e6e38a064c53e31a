package terminal

import (
	"fmt"
	"sync"
)

// guard is a mutex that remembers a panic inside its critical section.
// Once poisoned, every later call fails with ErrLockFailure instead of
// running against state that may be half-updated.
type guard struct {
	mu       sync.Mutex
	poisoned bool
}

func (g *guard) do(fn func() error) (err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.poisoned {
		return ErrLockFailure
	}

	defer func() {
		if r := recover(); r != nil {
			g.poisoned = true
			err = fmt.Errorf("%w: %v", ErrLockFailure, r)
		}
	}()

	return fn()
}
