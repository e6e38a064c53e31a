//go:build !windows

package terminal

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"
)

var errPTYClosed = errors.New("pty closed")

type creackSystem struct{}

// NewSystem returns the platform pty allocator.
func NewSystem() System {
	return creackSystem{}
}

func (creackSystem) Open(size Size) (PTY, error) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		return nil, err
	}
	if err := pty.Setsize(ptmx, winsize(size)); err != nil {
		_ = ptmx.Close()
		_ = tty.Close()
		return nil, err
	}
	master, err := pollable(ptmx)
	if err != nil {
		_ = tty.Close()
		return nil, err
	}
	return &creackPTY{ptmx: master, tty: tty}, nil
}

// pollable replaces f with a nonblocking close-on-exec duplicate owned by
// the runtime poller, then closes f. pty's ioctls go through Fd, which puts
// the file in blocking mode; a Read parked there is not woken by Close
// while a background job still holds the subordinate side open.
func pollable(f *os.File) (*os.File, error) {
	defer f.Close()

	fd, err := unix.FcntlInt(f.Fd(), unix.F_DUPFD_CLOEXEC, 0)
	if err != nil {
		return nil, err
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}
	return os.NewFile(uintptr(fd), f.Name()), nil
}

type creackPTY struct {
	mu          sync.Mutex
	ptmx        *os.File
	tty         *os.File
	closed      bool
	writerTaken bool
}

func (p *creackPTY) Spawn(c Command) (Child, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, errPTYClosed
	}
	if p.tty == nil {
		return nil, errors.New("pty already has a child")
	}

	cmd := exec.Command(c.Path, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = c.Env
	cmd.Stdin = p.tty
	cmd.Stdout = p.tty
	cmd.Stderr = p.tty
	// The child leads a new session with the pty as its controlling terminal
	// (fd 0 in the child), so closing the master hangs it up.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true, Setctty: true}

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	// Drop our copy of the subordinate side so the master sees EOF/EIO once
	// the child and its descendants are gone.
	_ = p.tty.Close()
	p.tty = nil

	return &execChild{cmd: cmd}, nil
}

func (p *creackPTY) TakeWriter() (io.Writer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, errPTYClosed
	}
	if p.writerTaken {
		return nil, errors.New("writer already taken")
	}
	p.writerTaken = true
	return p.ptmx, nil
}

func (p *creackPTY) CloneReader() (io.Reader, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, errPTYClosed
	}
	return p.ptmx, nil
}

func (p *creackPTY) Resize(size Size) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return errPTYClosed
	}
	// Never call Fd on the master; see pollable.
	conn, err := p.ptmx.SyscallConn()
	if err != nil {
		return err
	}
	var ioctlErr error
	if err := conn.Control(func(fd uintptr) {
		ioctlErr = unix.IoctlSetWinsize(int(fd), unix.TIOCSWINSZ, &unix.Winsize{Row: size.Rows, Col: size.Cols})
	}); err != nil {
		return err
	}
	if errors.Is(ioctlErr, unix.ENOTTY) || errors.Is(ioctlErr, unix.ENOSYS) {
		return nil
	}
	return ioctlErr
}

func (p *creackPTY) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	var errs []error
	if p.tty != nil {
		errs = append(errs, p.tty.Close())
		p.tty = nil
	}
	errs = append(errs, p.ptmx.Close())
	return errors.Join(errs...)
}

type execChild struct {
	cmd *exec.Cmd
}

func (c *execChild) Pid() int {
	return c.cmd.Process.Pid
}

// The child called setsid, so its pid is also its process group id.
func (c *execChild) Hangup() error {
	return signalGroup(c.cmd.Process, syscall.SIGHUP)
}

func (c *execChild) Kill() error {
	return signalGroup(c.cmd.Process, syscall.SIGKILL)
}

func (c *execChild) Wait() error {
	return c.cmd.Wait()
}

func signalGroup(p *os.Process, sig syscall.Signal) error {
	err := syscall.Kill(-p.Pid, sig)
	if errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return err
}

func winsize(size Size) *pty.Winsize {
	return &pty.Winsize{Rows: size.Rows, Cols: size.Cols}
}
