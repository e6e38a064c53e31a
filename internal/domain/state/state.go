package state

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/GriffinCanCode/tabterm/internal/domain/buttons"
)

var ErrInvalidState = errors.New("invalid state")

const (
	DefaultBackground   = "#1e1e1e"
	DefaultForeground   = "#d4d4d4"
	DefaultSidebarWidth = 200

	MinSidebarWidth = 120
	MaxSidebarWidth = 800
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// State is everything the frontend persists between runs.
type State struct {
	Buttons  []buttons.Button `json:"buttons" yaml:"buttons" toml:"buttons"`
	Terminal TerminalSettings `json:"terminal" yaml:"terminal" toml:"terminal"`
	Sidebar  SidebarSettings  `json:"sidebar" yaml:"sidebar" toml:"sidebar"`
}

// TerminalSettings styles every terminal view.
type TerminalSettings struct {
	CursorBlink     bool   `json:"cursor_blink" yaml:"cursor_blink" toml:"cursor_blink"`
	BackgroundColor string `json:"background_color" yaml:"background_color" toml:"background_color"`
	ForegroundColor string `json:"foreground_color" yaml:"foreground_color" toml:"foreground_color"`
}

// SidebarSettings is the button sidebar layout.
type SidebarSettings struct {
	Width int `json:"width" yaml:"width" toml:"width"`
}

// Default returns the state of a first run.
func Default() State {
	return State{
		Buttons: []buttons.Button{},
		Terminal: TerminalSettings{
			CursorBlink:     true,
			BackgroundColor: DefaultBackground,
			ForegroundColor: DefaultForeground,
		},
		Sidebar: SidebarSettings{Width: DefaultSidebarWidth},
	}
}

// Validate checks the settings sections. Buttons are validated by the
// buttons manager.
func (s State) Validate() error {
	if err := s.Terminal.Validate(); err != nil {
		return err
	}
	return s.Sidebar.Validate()
}

func (t TerminalSettings) Validate() error {
	if !hexColor.MatchString(t.BackgroundColor) {
		return fmt.Errorf("%w: background_color %q is not a hex color", ErrInvalidState, t.BackgroundColor)
	}
	if !hexColor.MatchString(t.ForegroundColor) {
		return fmt.Errorf("%w: foreground_color %q is not a hex color", ErrInvalidState, t.ForegroundColor)
	}
	return nil
}

func (s SidebarSettings) Validate() error {
	if s.Width < MinSidebarWidth || s.Width > MaxSidebarWidth {
		return fmt.Errorf("%w: sidebar width %d outside [%d, %d]", ErrInvalidState, s.Width, MinSidebarWidth, MaxSidebarWidth)
	}
	return nil
}
