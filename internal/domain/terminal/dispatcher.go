package terminal

import (
	"context"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/tabterm/internal/infrastructure/resilience"
)

// Dispatcher is the operation set the presentation layer calls. Every method
// is safe for concurrent use.
type Dispatcher struct {
	table   *Table
	spawner *Spawner
	sink    Sink
	breaker *resilience.Breaker
	rec     Recorder
	log     *zap.Logger
}

// Options configures a Dispatcher.
type Options struct {
	System   System
	Spawner  SpawnerConfig
	Recorder Recorder
	Logger   *zap.Logger
	// Breaker, if set, stops Create from hammering a pty layer or shell that
	// keeps failing.
	Breaker *resilience.Breaker
}

// NewDispatcher wires a table, spawner and sink together.
func NewDispatcher(sink Sink, opts Options) *Dispatcher {
	if opts.System == nil {
		opts.System = NewSystem()
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if sink == nil {
		sink = SinkFuncs{}
	}

	table := NewTable()
	return &Dispatcher{
		table:   table,
		spawner: NewSpawner(table, opts.System, opts.Spawner, opts.Recorder, opts.Logger),
		sink:    sink,
		breaker: opts.Breaker,
		rec:     opts.Recorder,
		log:     opts.Logger,
	}
}

// Create starts a shell in a new tab and returns its id.
func (d *Dispatcher) Create() (TabID, error) {
	if d.breaker == nil {
		return d.spawner.Spawn(d.sink)
	}

	var id TabID
	err := d.breaker.Do(func() error {
		var err error
		id, err = d.spawner.Spawn(d.sink)
		return err
	})
	return id, err
}

// Close ends a tab. Unknown and already-closed tabs succeed silently; the
// tab's reader emits TabClosed once the child is gone.
func (d *Dispatcher) Close(id TabID) error {
	h, err := d.table.Remove(id)
	if err != nil {
		return err
	}
	if h == nil {
		d.log.Debug("Close of unknown tab ignored", zap.String("tab_id", string(id)))
		return nil
	}
	h.release()
	d.log.Info("Tab close requested", zap.String("tab_id", string(id)))
	return nil
}

// Write sends data to a tab's shell and returns once it is flushed.
func (d *Dispatcher) Write(id TabID, data []byte) error {
	w, err := d.table.Writer(id)
	if err == nil {
		err = w.Write(data)
	}
	if err != nil {
		d.rec.WriteFailed(Kind(err))
		return err
	}
	d.rec.InputBytes(len(data))
	return nil
}

// Resize updates a tab's terminal size; the shell receives SIGWINCH.
func (d *Dispatcher) Resize(id TabID, rows, cols uint16) error {
	if rows == 0 || cols == 0 {
		return ErrInvalidSize
	}
	h, err := d.table.Get(id)
	if err != nil {
		return err
	}
	if err := h.pty.Resize(Size{Rows: rows, Cols: cols}); err != nil {
		// The handle may have been released between lookup and resize.
		if _, lookupErr := d.table.Get(id); lookupErr != nil {
			return lookupErr
		}
		return err
	}
	return nil
}

// List returns the live tabs in creation order.
func (d *Dispatcher) List() ([]TabID, error) {
	return d.table.IDs()
}

// Shutdown closes every tab and waits for their readers to finish or ctx to
// expire.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	hs, err := d.table.Drain()
	for _, h := range hs {
		h.release()
	}

	done := make(chan struct{})
	go func() {
		d.spawner.Wait()
		close(done)
	}()

	select {
	case <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
