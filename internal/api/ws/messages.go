package ws

import "github.com/GriffinCanCode/tabterm/internal/domain/terminal"

const (
	TypeCreate = "create"
	TypeClose  = "close"
	TypeInput  = "input"
	TypeResize = "resize"
	TypeFocus  = "focus"
	TypePing   = "ping"

	TypeTerminalData = "terminal-data"
	TypeTabClosed    = "tab-closed"
	TypeCreated      = "created"
	TypePong         = "pong"
	TypeError        = "error"
)

// Inbound is a command from the client.
type Inbound struct {
	Type  string         `json:"type"`
	TabID terminal.TabID `json:"tab_id,omitempty"`
	Data  string         `json:"data,omitempty"`
	Rows  uint16         `json:"rows,omitempty"`
	Cols  uint16         `json:"cols,omitempty"`
}

// Outbound is an event or reply sent to the client.
type Outbound struct {
	Type    string         `json:"type"`
	TabID   terminal.TabID `json:"tab_id,omitempty"`
	Data    string         `json:"data,omitempty"`
	Message string         `json:"message,omitempty"`
}
