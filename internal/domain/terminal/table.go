package terminal

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// TabID identifies one live session. Ids come from Table.Allocate and are
// never reissued.
type TabID string

const tabPrefix = "tab-"

// Table maps live tab ids to their handles. It is the single source of truth
// for whether a tab exists; a handle is reachable here until its reader has
// finished or an explicit close removed it.
type Table struct {
	g       guard
	next    uint64
	handles map[TabID]*Handle
}

// NewTable creates an empty table whose first id is tab-1.
func NewTable() *Table {
	return &Table{
		next:    1,
		handles: make(map[TabID]*Handle),
	}
}

// Allocate returns a fresh id and advances the counter.
func (t *Table) Allocate() (TabID, error) {
	var id TabID
	err := t.g.do(func() error {
		id = TabID(tabPrefix + strconv.FormatUint(t.next, 10))
		t.next++
		return nil
	})
	return id, err
}

// Insert registers h under id. The id must come from Allocate on this table.
func (t *Table) Insert(id TabID, h *Handle) error {
	return t.g.do(func() error {
		if _, exists := t.handles[id]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateTab, id)
		}
		t.handles[id] = h
		return nil
	})
}

// Remove unregisters id and hands ownership of its handle to the caller.
// A missing id returns a nil handle and no error.
func (t *Table) Remove(id TabID) (*Handle, error) {
	var h *Handle
	err := t.g.do(func() error {
		h = t.handles[id]
		delete(t.handles, id)
		return nil
	})
	return h, err
}

// Get returns the handle for a live tab.
func (t *Table) Get(id TabID) (*Handle, error) {
	var h *Handle
	err := t.g.do(func() error {
		h = t.handles[id]
		if h == nil {
			return TabNotFound(id)
		}
		return nil
	})
	return h, err
}

// Writer returns the input side of a live tab. The table lock is released
// before the caller writes.
func (t *Table) Writer(id TabID) (*Writer, error) {
	h, err := t.Get(id)
	if err != nil {
		return nil, err
	}
	return h.writer, nil
}

// IDs returns the live tab ids in issuance order.
func (t *Table) IDs() ([]TabID, error) {
	var ids []TabID
	err := t.g.do(func() error {
		ids = make([]TabID, 0, len(t.handles))
		for id := range t.handles {
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(ids, func(i, j int) bool { return lessID(ids[i], ids[j]) })
	return ids, nil
}

// Len reports how many tabs are live.
func (t *Table) Len() (int, error) {
	var n int
	err := t.g.do(func() error {
		n = len(t.handles)
		return nil
	})
	return n, err
}

// Drain removes every handle and returns them for release.
func (t *Table) Drain() ([]*Handle, error) {
	var hs []*Handle
	err := t.g.do(func() error {
		hs = make([]*Handle, 0, len(t.handles))
		for id, h := range t.handles {
			hs = append(hs, h)
			delete(t.handles, id)
		}
		return nil
	})
	return hs, err
}

// lessID orders tab-2 before tab-10; ids without a numeric suffix sort after
// numbered ones, lexically.
func lessID(a, b TabID) bool {
	na, okA := idNumber(a)
	nb, okB := idNumber(b)
	switch {
	case okA && okB:
		return na < nb
	case okA != okB:
		return okA
	default:
		return a < b
	}
}

func idNumber(id TabID) (uint64, bool) {
	s, ok := strings.CutPrefix(string(id), tabPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseUint(s, 10, 64)
	return n, err == nil
}

// Number returns the counter value embedded in an id issued by Allocate.
func (id TabID) Number() (uint64, bool) {
	return idNumber(id)
}
