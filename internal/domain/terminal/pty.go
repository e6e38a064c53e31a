package terminal

import "io"

// Size is a terminal viewport in character cells.
type Size struct {
	Rows uint16
	Cols uint16
}

// DefaultSize is the geometry a new pty starts with.
var DefaultSize = Size{Rows: 24, Cols: 80}

// Command describes the process started on the subordinate side of a pty.
type Command struct {
	Path string
	Args []string
	Dir  string
	Env  []string
}

// System allocates pseudo-terminals.
type System interface {
	Open(size Size) (PTY, error)
}

// PTY is one open pseudo-terminal pair. The subordinate side is consumed by
// Spawn; everything else operates on the controlling side.
type PTY interface {
	Spawn(cmd Command) (Child, error)
	// TakeWriter hands out the input side. It may be taken once.
	TakeWriter() (io.Writer, error)
	// CloneReader returns a reader of the child's output. Closing the PTY
	// makes a blocked read return.
	CloneReader() (io.Reader, error)
	Resize(size Size) error
	Close() error
}

// Child is a process started inside a PTY.
type Child interface {
	Pid() int
	// Hangup asks the child's process group to exit.
	Hangup() error
	Kill() error
	Wait() error
}
