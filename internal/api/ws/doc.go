// Package ws streams terminal output to browser clients and accepts
// terminal commands over the same socket.
//
// A Hub implements terminal.Sink and fans every event out to all
// connected clients. Each client has a bounded send queue; a client whose
// queue is full is disconnected so that a slow browser never stalls a
// tab's reader.
//
// Message Types (Client → Server):
//   - create: Open a new tab
//   - close: Close a tab (tab_id)
//   - input: Write keystrokes (tab_id, data)
//   - resize: Resize a tab (tab_id, rows, cols)
//   - focus: Make a tab active (tab_id)
//   - ping: Keep-alive ping
//
// Message Types (Server → Client):
//   - terminal-data: Output from a tab
//   - tab-closed: A tab's session ended
//   - created: Reply to create
//   - pong: Reply to ping
//   - error: A command failed
//
// Example Usage:
//
//	hub := ws.NewHub(256, metrics, logger)
//	handler := ws.NewHandler(hub, workspace, logger)
//	router.GET("/stream", handler.HandleConnection)
package ws
