// Package buttons manages the user's saved command buttons and the
// {{ placeholder }} templates inside their commands.
//
// Running a button expands its command with the values the user filled in
// and writes the result, newline-terminated, to a tab:
//
//	b, _ := mgr.Get(id)
//	line := buttons.Expand(b.Command, params) + "\n"
//	dispatcher.Write(tabID, []byte(line))
package buttons
