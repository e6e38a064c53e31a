package terminal

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultReadChunk = 8 * 1024
	defaultKillGrace = 2 * time.Second
)

// Spawner opens a pty, starts the shell in it, registers the handle and
// starts the session's reader.
type Spawner struct {
	table  *Table
	system System
	shell  ShellConfig
	size   Size
	chunk  int
	grace  time.Duration
	rec    Recorder
	log    *zap.Logger

	readers sync.WaitGroup
}

// SpawnerConfig holds the knobs of a Spawner. Zero values take defaults.
type SpawnerConfig struct {
	Shell     ShellConfig
	Size      Size
	ReadChunk int
	KillGrace time.Duration
}

// NewSpawner creates a spawner registering sessions in table.
func NewSpawner(table *Table, system System, cfg SpawnerConfig, rec Recorder, log *zap.Logger) *Spawner {
	if cfg.Size.Rows == 0 || cfg.Size.Cols == 0 {
		cfg.Size = DefaultSize
	}
	if cfg.ReadChunk <= 0 {
		cfg.ReadChunk = defaultReadChunk
	}
	if cfg.KillGrace <= 0 {
		cfg.KillGrace = defaultKillGrace
	}
	if rec == nil {
		rec = nopRecorder{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Spawner{
		table:  table,
		system: system,
		shell:  cfg.Shell,
		size:   cfg.Size,
		chunk:  cfg.ReadChunk,
		grace:  cfg.KillGrace,
		rec:    rec,
		log:    log,
	}
}

// Spawn starts a new session whose output goes to sink. On failure nothing
// opened along the way is left behind and the tab is never visible.
func (s *Spawner) Spawn(sink Sink) (TabID, error) {
	id, err := s.table.Allocate()
	if err != nil {
		return "", err
	}

	p, err := s.system.Open(s.size)
	if err != nil {
		return "", s.fail(id, ErrOpenFailed, err)
	}

	cmd := s.shell.command(s.log)
	child, err := p.Spawn(cmd)
	if err != nil {
		_ = p.Close()
		return "", s.fail(id, ErrSpawnFailed, err)
	}

	w, err := p.TakeWriter()
	if err != nil {
		s.abort(p, child)
		return "", s.fail(id, ErrWriterUnavailable, err)
	}

	r, err := p.CloneReader()
	if err != nil {
		s.abort(p, child)
		return "", s.fail(id, ErrReaderUnavailable, err)
	}

	h := newHandle(id, p, child, newWriter(id, w), s.grace, s.log)
	if err := s.table.Insert(id, h); err != nil {
		h.release()
		return "", err
	}
	s.rec.TabOpened()

	s.log.Info("Tab opened",
		zap.String("tab_id", string(id)),
		zap.String("shell", cmd.Path),
		zap.String("dir", cmd.Dir),
		zap.Int("pid", child.Pid()),
	)

	s.readers.Add(1)
	go s.read(h, r, sink)

	return id, nil
}

// Wait blocks until every reader started by this spawner has finished.
func (s *Spawner) Wait() {
	s.readers.Wait()
}

func (s *Spawner) fail(id TabID, kind, err error) error {
	s.rec.SpawnFailed(Kind(kind))
	s.log.Error("Failed to create tab",
		zap.String("tab_id", string(id)),
		zap.String("kind", Kind(kind)),
		zap.Error(err),
	)
	return &SpawnError{Kind: kind, TabID: id, Err: err}
}

// abort undoes a half-built session whose child is already running.
func (s *Spawner) abort(p PTY, child Child) {
	_ = child.Kill()
	_ = p.Close()
	go func() { _ = child.Wait() }()
}
