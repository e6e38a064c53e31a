package buttons

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

var (
	ErrButtonNotFound = errors.New("button not found")
	ErrEmptyCommand   = errors.New("button command is empty")
)

// maxNameLen bounds a sanitized button label, in runes.
const maxNameLen = 64

// Button is a saved command the user can run in the active tab.
type Button struct {
	ID      string `json:"id" yaml:"id" toml:"id"`
	Name    string `json:"name" yaml:"name" toml:"name"`
	Command string `json:"command" yaml:"command" toml:"command"`
}

// Manager keeps the ordered button list. Safe for concurrent use.
type Manager struct {
	mu      sync.RWMutex
	buttons []Button
	policy  *bluemonday.Policy
}

// NewManager creates a manager holding initial, which is validated like
// Replace. Invalid entries are skipped.
func NewManager(initial []Button) *Manager {
	m := &Manager{policy: bluemonday.StrictPolicy()}
	for _, b := range initial {
		if nb, err := m.normalize(b); err == nil {
			m.buttons = append(m.buttons, nb)
		}
	}
	return m
}

// Add appends a button with a fresh id.
func (m *Manager) Add(name, command string) (Button, error) {
	b, err := m.normalize(Button{Name: name, Command: command})
	if err != nil {
		return Button{}, err
	}

	m.mu.Lock()
	m.buttons = append(m.buttons, b)
	m.mu.Unlock()

	return b, nil
}

// Update replaces the name and command of an existing button.
func (m *Manager) Update(id, name, command string) (Button, error) {
	b, err := m.normalize(Button{ID: id, Name: name, Command: command})
	if err != nil {
		return Button{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(id)
	if i < 0 {
		return Button{}, notFound(id)
	}
	m.buttons[i] = b
	return b, nil
}

// Delete removes a button.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(id)
	if i < 0 {
		return notFound(id)
	}
	m.buttons = append(m.buttons[:i], m.buttons[i+1:]...)
	return nil
}

// Get returns one button.
func (m *Manager) Get(id string) (Button, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.index(id)
	if i < 0 {
		return Button{}, notFound(id)
	}
	return m.buttons[i], nil
}

// List returns a copy of all buttons in display order.
func (m *Manager) List() []Button {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Button, len(m.buttons))
	copy(out, m.buttons)
	return out
}

// Count returns the number of buttons.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.buttons)
}

// Replace swaps in a whole new list. Either every button is valid and the
// list is replaced, or nothing changes.
func (m *Manager) Replace(list []Button) error {
	next := make([]Button, 0, len(list))
	seen := make(map[string]bool, len(list))
	for i, b := range list {
		nb, err := m.normalize(b)
		if err != nil {
			return fmt.Errorf("button %d: %w", i, err)
		}
		if seen[nb.ID] {
			nb.ID = uuid.NewString()
		}
		seen[nb.ID] = true
		next = append(next, nb)
	}

	m.mu.Lock()
	m.buttons = next
	m.mu.Unlock()
	return nil
}

// normalize validates b, assigns an id if missing and sanitizes the name.
func (m *Manager) normalize(b Button) (Button, error) {
	if strings.TrimSpace(b.Command) == "" {
		return Button{}, ErrEmptyCommand
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}

	b.Name = m.sanitize(b.Name)
	if b.Name == "" {
		b.Name = defaultName(b.Command)
	}
	return b, nil
}

func (m *Manager) sanitize(name string) string {
	clean := html.UnescapeString(m.policy.Sanitize(name))
	clean = strings.Join(strings.Fields(clean), " ")
	if r := []rune(clean); len(r) > maxNameLen {
		clean = string(r[:maxNameLen])
	}
	return clean
}

// index must be called with mu held.
func (m *Manager) index(id string) int {
	for i, b := range m.buttons {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// defaultName labels a nameless button by its program, e.g. "git" for
// "git status".
func defaultName(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return "command"
	}
	return fields[0]
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrButtonNotFound, id)
}
