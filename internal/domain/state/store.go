package state

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/tabterm/internal/domain/buttons"
)

// Store persists State to one file. Reads are served from memory; every
// change is written through atomically.
type Store struct {
	path  string
	codec Codec
	log   *zap.Logger

	mu      sync.RWMutex
	current State
}

// Open loads the state at path. A missing file yields defaults and is
// created on the first save.
func Open(path string, log *zap.Logger) (*Store, error) {
	codec, err := CodecFor(path)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &Store{path: path, codec: codec, log: log}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Get returns the current state.
func (s *Store) Get() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.current)
}

// Update applies fn to a copy of the state, validates and saves it. If fn
// returns an error, validation fails or the write fails, nothing changes.
func (s *Store) Update(fn func(*State) error) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := clone(s.current)
	if err := fn(&next); err != nil {
		return clone(s.current), err
	}
	if err := next.Validate(); err != nil {
		return clone(s.current), err
	}
	if err := s.write(next); err != nil {
		return clone(s.current), err
	}

	s.current = next
	return clone(next), nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Info("No saved state, using defaults", zap.String("path", s.path))
		s.current = Default()
		return nil
	}
	if err != nil {
		return fmt.Errorf("read state: %w", err)
	}

	st := Default()
	if err := s.codec.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("decode state %s: %w", s.path, err)
	}
	if st.Buttons == nil {
		st.Buttons = Default().Buttons
	}
	if err := st.Validate(); err != nil {
		s.log.Warn("Saved settings invalid, resetting them to defaults",
			zap.String("path", s.path), zap.Error(err))
		def := Default()
		st.Terminal, st.Sidebar = def.Terminal, def.Sidebar
	}

	s.current = st
	s.log.Info("State loaded", zap.String("path", s.path), zap.Int("buttons", len(st.Buttons)))
	return nil
}

// write replaces the file via a temp file in the same directory and a
// rename, so readers never see a partial file.
func (s *Store) write(st State) error {
	data, err := s.codec.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if tmpName != "" {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp state: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}
	tmpName = ""

	s.log.Debug("State saved", zap.String("path", s.path))
	return nil
}

func clone(st State) State {
	out := st
	out.Buttons = make([]buttons.Button, len(st.Buttons))
	copy(out.Buttons, st.Buttons)
	return out
}
