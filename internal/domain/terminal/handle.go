package terminal

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Handle owns the resources of one session: the pty, the child running in
// it, and the writer feeding the child's input. Only the Spawner builds
// handles, and whoever removes one from the Table releases it.
type Handle struct {
	id     TabID
	pty    PTY
	child  Child
	writer *Writer
	grace  time.Duration
	log    *zap.Logger

	// emitMu orders output delivery against release: the reader emits under
	// the read lock and release takes the write lock, so nothing is emitted
	// for a tab once its handle is released.
	emitMu   sync.RWMutex
	released bool

	releaseOnce sync.Once
	exited      chan struct{}
}

func newHandle(id TabID, p PTY, child Child, w *Writer, grace time.Duration, log *zap.Logger) *Handle {
	h := &Handle{
		id:     id,
		pty:    p,
		child:  child,
		writer: w,
		grace:  grace,
		log:    log,
		exited: make(chan struct{}),
	}
	go h.reap()
	return h
}

// ID returns the tab this handle belongs to.
func (h *Handle) ID() TabID { return h.id }

// Pid returns the child's process id.
func (h *Handle) Pid() int { return h.child.Pid() }

// Exited is closed once the child has been reaped.
func (h *Handle) Exited() <-chan struct{} { return h.exited }

func (h *Handle) reap() {
	err := h.child.Wait()
	close(h.exited)
	h.log.Debug("Shell exited", zap.String("tab_id", string(h.id)), zap.Error(err))
}

// emit runs fn unless the handle has been released.
func (h *Handle) emit(fn func()) bool {
	h.emitMu.RLock()
	defer h.emitMu.RUnlock()

	if h.released {
		return false
	}
	fn()
	return true
}

// release tears the session down exactly once: stop output delivery, refuse
// further writes, close the controlling side and hang up the child. A child
// that outlives the grace period is killed.
func (h *Handle) release() {
	h.releaseOnce.Do(func() {
		h.emitMu.Lock()
		h.released = true
		h.emitMu.Unlock()

		h.writer.close()

		if err := h.child.Hangup(); err != nil {
			h.log.Debug("Hangup failed", zap.String("tab_id", string(h.id)), zap.Error(err))
		}
		if err := h.pty.Close(); err != nil {
			h.log.Debug("Closing pty failed", zap.String("tab_id", string(h.id)), zap.Error(err))
		}

		go h.escalate()
	})
}

func (h *Handle) escalate() {
	timer := time.NewTimer(h.grace)
	defer timer.Stop()

	select {
	case <-h.exited:
	case <-timer.C:
		h.log.Warn("Shell ignored hangup, killing",
			zap.String("tab_id", string(h.id)),
			zap.Int("pid", h.child.Pid()),
		)
		if err := h.child.Kill(); err != nil {
			h.log.Warn("Kill failed", zap.String("tab_id", string(h.id)), zap.Error(err))
		}
	}
}

// Writer serializes input to one tab. It has its own lock so a slow write to
// one tab never holds up the table or another tab.
type Writer struct {
	tab    TabID
	g      guard
	w      io.Writer
	closed atomic.Bool
}

func newWriter(tab TabID, w io.Writer) *Writer {
	return &Writer{tab: tab, w: w}
}

type flusher interface {
	Flush() error
}

// Write sends all of p to the child and flushes before returning.
func (w *Writer) Write(p []byte) error {
	return w.g.do(func() error {
		if w.closed.Load() {
			return TabNotFound(w.tab)
		}
		if _, err := w.w.Write(p); err != nil {
			return &IOError{TabID: w.tab, Err: err}
		}
		if f, ok := w.w.(flusher); ok {
			if err := f.Flush(); err != nil {
				return &IOError{TabID: w.tab, Err: err}
			}
		}
		return nil
	})
}

// close marks the writer dead without waiting on an in-flight write.
func (w *Writer) close() {
	w.closed.Store(true)
}
