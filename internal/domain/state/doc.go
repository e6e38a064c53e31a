// Package state persists the frontend's saved command buttons and display
// settings to a single file.
//
// The format follows the file extension: .json (sonic), .yaml/.yml
// (goccy/go-yaml) or .toml (go-toml). Saves go through a temp file and a
// rename, so a crash mid-write leaves the previous file intact.
//
//	store, err := state.Open(cfg.Storage.Path(), log.Named("store"))
//	st, err := store.Update(func(s *state.State) error {
//		s.Sidebar.Width = 260
//		return nil
//	})
package state
