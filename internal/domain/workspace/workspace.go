// Package workspace ties the terminal core to the user-facing pieces: the
// tab tracker, the command buttons and the persisted settings. Both the
// HTTP API and the stream call into a Workspace, so the rules live in one
// place (the last tab cannot be closed, buttons run in the focused tab,
// every button change is saved).
package workspace

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/tabterm/internal/domain/buttons"
	"github.com/GriffinCanCode/tabterm/internal/domain/state"
	"github.com/GriffinCanCode/tabterm/internal/domain/tabs"
	"github.com/GriffinCanCode/tabterm/internal/domain/terminal"
)

var (
	ErrNoActiveTab = errors.New("no active tab")
	ErrTabEnded    = errors.New("tab ended while opening")
	ErrPersist     = errors.New("failed to save state")
)

// Terminals is the slice of terminal.Dispatcher the workspace drives.
type Terminals interface {
	Create() (terminal.TabID, error)
	Close(id terminal.TabID) error
	Write(id terminal.TabID, data []byte) error
	Resize(id terminal.TabID, rows, cols uint16) error
	List() ([]terminal.TabID, error)
}

// Workspace is safe for concurrent use; each part guards its own state.
type Workspace struct {
	terms   Terminals
	tracker *tabs.Tracker
	buttons *buttons.Manager
	store   *state.Store
	log     *zap.Logger
}

// New builds a workspace. Buttons start from the store's saved list.
func New(terms Terminals, tracker *tabs.Tracker, store *state.Store, log *zap.Logger) *Workspace {
	if log == nil {
		log = zap.NewNop()
	}
	return &Workspace{
		terms:   terms,
		tracker: tracker,
		buttons: buttons.NewManager(store.Get().Buttons),
		store:   store,
		log:     log,
	}
}

// TrackerSink keeps tracker in step with sessions that end on their own.
// Put it ahead of any presentation sink so clients see a consistent list.
func TrackerSink(tracker *tabs.Tracker) terminal.Sink {
	return terminal.SinkFuncs{
		OnClosed: func(ev terminal.TabClosed) {
			tracker.Forget(ev.TabID)
		},
	}
}

// OpenTab starts a shell and focuses its tab.
func (w *Workspace) OpenTab() (tabs.Tab, error) {
	id, err := w.terms.Create()
	if err != nil {
		return tabs.Tab{}, err
	}
	tab := w.tracker.Track(id)

	// A shell that exits before Track has already been reported closed, and
	// that TabClosed found nothing to forget. The core drops a session from
	// its table before reporting it, so checking after Track covers every
	// interleaving.
	live, err := w.terms.List()
	if err != nil {
		w.log.Warn("Could not confirm new tab", zap.String("tab_id", string(id)), zap.Error(err))
		return tab, nil
	}
	if !slices.Contains(live, id) {
		w.tracker.Forget(id)
		return tabs.Tab{}, fmt.Errorf("%w: %s", ErrTabEnded, id)
	}
	return tab, nil
}

// CloseTab is a user-initiated close. It refuses to close the last tab.
// Ids the tracker never saw are passed to the core, which ignores unknown
// ones.
func (w *Workspace) CloseTab(id terminal.TabID) error {
	tab, tracked := w.tracker.Get(id)
	if err := w.tracker.Close(id); err != nil && !errors.Is(err, tabs.ErrTabNotFound) {
		return err
	}
	if err := w.terms.Close(id); err != nil {
		// The session is still live; keep it in the bar.
		if tracked {
			w.tracker.Restore(tab)
		}
		return err
	}
	return nil
}

// Tabs lists the open tabs.
func (w *Workspace) Tabs() []tabs.Tab {
	return w.tracker.List()
}

// Focus switches the active tab.
func (w *Workspace) Focus(id terminal.TabID) error {
	return w.tracker.Switch(id)
}

// Input forwards keystrokes to a tab.
func (w *Workspace) Input(id terminal.TabID, data []byte) error {
	return w.terms.Write(id, data)
}

// Resize changes a tab's terminal size.
func (w *Workspace) Resize(id terminal.TabID, rows, cols uint16) error {
	return w.terms.Resize(id, rows, cols)
}

// Buttons lists the saved buttons.
func (w *Workspace) Buttons() []buttons.Button {
	return w.buttons.List()
}

// AddButton creates and saves a button.
func (w *Workspace) AddButton(name, command string) (buttons.Button, error) {
	b, err := w.buttons.Add(name, command)
	if err != nil {
		return buttons.Button{}, err
	}
	return b, w.saveButtons()
}

// UpdateButton edits and saves a button.
func (w *Workspace) UpdateButton(id, name, command string) (buttons.Button, error) {
	b, err := w.buttons.Update(id, name, command)
	if err != nil {
		return buttons.Button{}, err
	}
	return b, w.saveButtons()
}

// DeleteButton removes and saves.
func (w *Workspace) DeleteButton(id string) error {
	if err := w.buttons.Delete(id); err != nil {
		return err
	}
	return w.saveButtons()
}

// ReplaceButtons is the bulk save from the sidebar.
func (w *Workspace) ReplaceButtons(list []buttons.Button) ([]buttons.Button, error) {
	if err := w.buttons.Replace(list); err != nil {
		return nil, err
	}
	return w.buttons.List(), w.saveButtons()
}

// RunButton expands a button's command with params and sends it, newline
// terminated, to tab (or the focused tab when tab is empty). It returns the
// tab and the line written.
func (w *Workspace) RunButton(buttonID string, tab terminal.TabID, params map[string]string) (terminal.TabID, string, error) {
	b, err := w.buttons.Get(buttonID)
	if err != nil {
		return "", "", err
	}

	if tab == "" {
		active, ok := w.tracker.Active()
		if !ok {
			return "", "", ErrNoActiveTab
		}
		tab = active.ID
	}

	line := buttons.Expand(b.Command, params) + "\n"
	if err := w.terms.Write(tab, []byte(line)); err != nil {
		return tab, "", err
	}

	w.log.Debug("Button run",
		zap.String("button_id", b.ID),
		zap.String("tab_id", string(tab)),
	)
	return tab, line, nil
}

// State returns the persisted settings and buttons.
func (w *Workspace) State() state.State {
	return w.store.Get()
}

// UpdateTerminalSettings saves new terminal display settings.
func (w *Workspace) UpdateTerminalSettings(ts state.TerminalSettings) (state.State, error) {
	return w.store.Update(func(s *state.State) error {
		s.Terminal = ts
		return nil
	})
}

// UpdateSidebarSettings saves new sidebar settings.
func (w *Workspace) UpdateSidebarSettings(ss state.SidebarSettings) (state.State, error) {
	return w.store.Update(func(s *state.State) error {
		s.Sidebar = ss
		return nil
	})
}

// saveButtons writes the manager's list through to the store. On failure
// the in-memory list stays ahead of the file until the next successful save.
func (w *Workspace) saveButtons() error {
	list := w.buttons.List()
	_, err := w.store.Update(func(s *state.State) error {
		s.Buttons = list
		return nil
	})
	if err != nil {
		w.log.Error("Failed to save buttons", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}
