// Package tabs keeps the user-facing view of open tabs: their labels, their
// order, and which one has focus. The terminal core knows nothing of this;
// it only issues ids and reports when a session ends.
package tabs

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/GriffinCanCode/tabterm/internal/domain/terminal"
)

var (
	ErrTabNotFound        = errors.New("tab not tracked")
	ErrCannotCloseLastTab = errors.New("cannot close the last tab")
)

// Tab is one entry of the tab bar.
type Tab struct {
	ID     terminal.TabID `json:"id"`
	Label  string         `json:"label"`
	Number int            `json:"number"`
	Active bool           `json:"active"`
}

// Tracker is safe for concurrent use.
type Tracker struct {
	mu     sync.RWMutex
	tabs   map[terminal.TabID]*Tab
	active terminal.TabID
	next   int
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		tabs: make(map[terminal.TabID]*Tab),
		next: 1,
	}
}

// Track registers a newly created tab, labels it and focuses it.
// Tracking an id twice returns the existing entry.
func (t *Tracker) Track(id terminal.TabID) Tab {
	t.mu.Lock()
	defer t.mu.Unlock()

	if tab, ok := t.tabs[id]; ok {
		return t.view(tab)
	}

	tab := &Tab{
		ID:     id,
		Number: t.next,
		Label:  fmt.Sprintf("Terminal %d", t.next),
	}
	t.next++
	t.tabs[id] = tab
	t.active = id

	return t.view(tab)
}

// Close is the user closing a tab. The last remaining tab cannot be
// closed this way. If the closed tab had focus, the most recently opened
// remaining tab gets it.
func (t *Tracker) Close(id terminal.TabID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.tabs[id]; !ok {
		return fmt.Errorf("%w: %s", ErrTabNotFound, id)
	}
	if len(t.tabs) <= 1 {
		return ErrCannotCloseLastTab
	}
	t.remove(id)
	return nil
}

// Forget drops a tab whose session ended on its own. It never refuses and
// reports whether the tab was tracked.
func (t *Tracker) Forget(id terminal.TabID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.tabs[id]; !ok {
		return false
	}
	t.remove(id)
	return true
}

// Switch focuses a tab.
func (t *Tracker) Switch(id terminal.TabID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.tabs[id]; !ok {
		return fmt.Errorf("%w: %s", ErrTabNotFound, id)
	}
	t.active = id
	return nil
}

// Active returns the focused tab, if any.
func (t *Tracker) Active() (Tab, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	tab, ok := t.tabs[t.active]
	if !ok {
		return Tab{}, false
	}
	return t.view(tab), true
}

// Get returns the tracked tab with id.
func (t *Tracker) Get(id terminal.TabID) (Tab, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	tab, ok := t.tabs[id]
	if !ok {
		return Tab{}, false
	}
	return t.view(tab), true
}

// Restore puts back a tab removed by Close, keeping its number and label.
// It refocuses the tab if it had focus.
func (t *Tracker) Restore(tab Tab) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.tabs[tab.ID]; ok {
		return
	}
	entry := tab
	entry.Active = false
	t.tabs[tab.ID] = &entry
	if tab.Active || t.active == "" {
		t.active = tab.ID
	}
}

// Has reports whether id is tracked.
func (t *Tracker) Has(id terminal.TabID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	_, ok := t.tabs[id]
	return ok
}

// Count returns the number of tracked tabs.
func (t *Tracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.tabs)
}

// List returns the tabs in the order they were opened.
func (t *Tracker) List() []Tab {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.ordered()
}

// remove must be called with mu held.
func (t *Tracker) remove(id terminal.TabID) {
	delete(t.tabs, id)
	if t.active != id {
		return
	}

	t.active = ""
	if rest := t.ordered(); len(rest) > 0 {
		t.active = rest[len(rest)-1].ID
	}
}

func (t *Tracker) ordered() []Tab {
	out := make([]Tab, 0, len(t.tabs))
	for _, tab := range t.tabs {
		out = append(out, t.view(tab))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

func (t *Tracker) view(tab *Tab) Tab {
	v := *tab
	v.Active = tab.ID == t.active
	return v
}
