// Package terminal manages the pty sessions behind the tab bar.
//
// Each tab is a shell running on the subordinate side of its own
// pseudo-terminal. The package owns those OS resources and moves opaque bytes
// in both directions; rendering and escape sequences are the client's job.
//
// Components:
//   - Handle: the pty, child process and writer of one session
//   - Table: tab id -> Handle, plus the monotonic id counter
//   - Spawner: opens a pty, starts the shell, registers it, starts a reader
//   - reader: one goroutine per tab turning pty output into TerminalData
//   - Dispatcher: Create, Close, Write, Resize, List for callers
//
// Lifecycle:
//
//	Create -> Spawner -> Table.Insert -> reader goroutine
//	                                       |
//	            EOF / read error / Close --+--> Table.Remove -> release -> TabClosed
//
// A session ends either when its reader sees EOF or an error, or when Close
// removes it first. Whichever path removes the entry owns the release;
// the other finds nothing and moves on. TabClosed always comes from the
// reader, so it is emitted exactly once per tab.
//
// Locking:
//   - The table lock is never held during pty I/O.
//   - Each tab's writer has its own lock; writes to different tabs proceed
//     in parallel and a stuck child blocks only writes to its own tab.
//   - A panic inside a critical section poisons that lock; later calls on it
//     return ErrLockFailure.
//
// Example Usage:
//
//	d := terminal.NewDispatcher(sink, terminal.Options{Logger: log})
//	id, err := d.Create()
//	err = d.Write(id, []byte("ls -la\n"))
//	err = d.Resize(id, 40, 120)
//	err = d.Close(id)
package terminal
