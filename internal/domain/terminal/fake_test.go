package terminal

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/stretchr/testify/mock"
)

// fakeSystem hands out in-memory ptys. Failure fields make the matching
// acquisition step fail on every pty it opens.
type fakeSystem struct {
	mu        sync.Mutex
	spawnErr  error
	writerErr error
	readerErr error
	ptys      []*fakePTY

	ignoreHangup bool
	blockWrites  bool
	panicWrites  bool
}

func (s *fakeSystem) Open(size Size) (PTY, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	outR, outW := io.Pipe()
	p := &fakePTY{
		sizes:     []Size{size},
		outR:      outR,
		outW:      outW,
		spawnErr:  s.spawnErr,
		writerErr: s.writerErr,
		readerErr: s.readerErr,
		unblock:   make(chan struct{}),
		block:     s.blockWrites,
		panics:    s.panicWrites,
	}
	p.child = &fakeChild{
		pty:          p,
		exited:       make(chan struct{}),
		ignoreHangup: s.ignoreHangup,
		pid:          1000 + len(s.ptys),
	}
	s.ptys = append(s.ptys, p)
	return p, nil
}

func (s *fakeSystem) pty(i int) *fakePTY {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ptys[i]
}

type fakePTY struct {
	mu     sync.Mutex
	sizes  []Size
	input  bytes.Buffer
	closed atomic.Bool

	outR *io.PipeReader
	outW *io.PipeWriter

	spawnErr  error
	writerErr error
	readerErr error

	child   *fakeChild
	spawned atomic.Bool

	block   bool
	panics  bool
	unblock chan struct{}
}

func (p *fakePTY) Spawn(Command) (Child, error) {
	if p.spawnErr != nil {
		return nil, p.spawnErr
	}
	p.spawned.Store(true)
	return p.child, nil
}

func (p *fakePTY) TakeWriter() (io.Writer, error) {
	if p.writerErr != nil {
		return nil, p.writerErr
	}
	return fakeInput{p}, nil
}

func (p *fakePTY) CloneReader() (io.Reader, error) {
	if p.readerErr != nil {
		return nil, p.readerErr
	}
	return p.outR, nil
}

func (p *fakePTY) Resize(size Size) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sizes = append(p.sizes, size)
	return nil
}

func (p *fakePTY) Close() error {
	p.closed.Store(true)
	return p.outW.CloseWithError(io.EOF)
}

// emit makes the child print s.
func (p *fakePTY) emit(s string) {
	_, _ = p.outW.Write([]byte(s))
}

func (p *fakePTY) lastSize() Size {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sizes[len(p.sizes)-1]
}

func (p *fakePTY) received() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.input.String()
}

type fakeInput struct{ p *fakePTY }

func (w fakeInput) Write(b []byte) (int, error) {
	if w.p.panics {
		panic("write exploded")
	}
	if w.p.block {
		<-w.p.unblock
	}
	w.p.mu.Lock()
	defer w.p.mu.Unlock()
	return w.p.input.Write(b)
}

type fakeChild struct {
	pty          *fakePTY
	pid          int
	ignoreHangup bool
	exited       chan struct{}
	once         sync.Once
	hangups      atomic.Int32
	kills        atomic.Int32
}

func (c *fakeChild) Pid() int { return c.pid }

func (c *fakeChild) Hangup() error {
	c.hangups.Add(1)
	if !c.ignoreHangup {
		c.exit()
	}
	return nil
}

func (c *fakeChild) Kill() error {
	c.kills.Add(1)
	c.exit()
	return nil
}

func (c *fakeChild) Wait() error {
	<-c.exited
	return nil
}

// exit simulates the shell terminating: its side of the pty goes away.
func (c *fakeChild) exit() {
	c.once.Do(func() {
		close(c.exited)
		_ = c.pty.outW.Close()
	})
}

// recordingSink collects events per tab.
type recordingSink struct {
	mu     sync.Mutex
	data   map[TabID]*strings.Builder
	chunks map[TabID][]string
	closed map[TabID]int
}

func newRecordingSink() *recordingSink {
	return &recordingSink{
		data:   make(map[TabID]*strings.Builder),
		chunks: make(map[TabID][]string),
		closed: make(map[TabID]int),
	}
}

func (s *recordingSink) TerminalData(ev TerminalData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.data[ev.TabID]
	if !ok {
		b = &strings.Builder{}
		s.data[ev.TabID] = b
	}
	b.WriteString(ev.Data)
	s.chunks[ev.TabID] = append(s.chunks[ev.TabID], ev.Data)
}

func (s *recordingSink) TabClosed(ev TabClosed) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed[ev.TabID]++
}

func (s *recordingSink) output(id TabID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.data[id]; ok {
		return b.String()
	}
	return ""
}

func (s *recordingSink) closedCount(id TabID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed[id]
}

// mockSystem is a testify mock of System for failure paths.
type mockSystem struct {
	mock.Mock
}

func (m *mockSystem) Open(size Size) (PTY, error) {
	args := m.Called(size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(PTY), args.Error(1)
}
