package table

import (
	"slices"
	"sync"
)

// SelectValue is the argument of a bulk toggle. Indeterminate leaves the
// selection as it is.
type SelectValue uint8

const (
	SelectFalse SelectValue = iota
	SelectTrue
	SelectIndeterminate
)

func (v SelectValue) String() string {
	switch v {
	case SelectTrue:
		return "true"
	case SelectIndeterminate:
		return "indeterminate"
	default:
		return "false"
	}
}

// ParseSelectValue accepts a bool or the string "true", "false" or
// "indeterminate".
func ParseSelectValue(v any) (SelectValue, error) {
	switch x := v.(type) {
	case bool:
		if x {
			return SelectTrue, nil
		}
		return SelectFalse, nil
	case string:
		switch x {
		case "true":
			return SelectTrue, nil
		case "false":
			return SelectFalse, nil
		case "indeterminate":
			return SelectIndeterminate, nil
		}
	}
	return SelectFalse, ErrRegistry.New(ErrInvalidSelectValue).WithDetail("value", v)
}

// Selection is the set of selected row ids. It is safe for concurrent use.
type Selection struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

// NewSelection returns a selection containing ids.
func NewSelection(ids ...string) *Selection {
	s := &Selection{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// Set selects or deselects id.
func (s *Selection) Set(id string, selected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ids == nil {
		s.ids = make(map[string]struct{})
	}
	if selected {
		s.ids[id] = struct{}{}
	} else {
		delete(s.ids, id)
	}
}

// IsSelected reports whether id is selected.
func (s *Selection) IsSelected(id string) bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

// IDs returns the selected ids in sorted order.
func (s *Selection) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Len returns the number of selected ids.
func (s *Selection) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

// PageState is the selection as seen from one page of rows. It backs the
// table argument handed to header renderers.
type PageState struct {
	rowIDs []string
	sel    *Selection
}

// NewPageState binds the ids of the rows on the current page to sel.
func NewPageState(rowIDs []string, sel *Selection) *PageState {
	if sel == nil {
		sel = NewSelection()
	}
	return &PageState{rowIDs: rowIDs, sel: sel}
}

func (p *PageState) countSelected() int {
	n := 0
	for _, id := range p.rowIDs {
		if p.sel.IsSelected(id) {
			n++
		}
	}
	return n
}

// IsAllPageRowsSelected reports whether the page has rows and every one
// of them is selected.
func (p *PageState) IsAllPageRowsSelected() bool {
	return len(p.rowIDs) > 0 && p.countSelected() == len(p.rowIDs)
}

// IsSomePageRowsSelected reports whether some, but not all, rows of the
// page are selected.
func (p *PageState) IsSomePageRowsSelected() bool {
	n := p.countSelected()
	return n > 0 && n < len(p.rowIDs)
}

// ToggleAllPageRowsSelected selects or clears every row of the page.
// SelectIndeterminate is a no-op.
func (p *PageState) ToggleAllPageRowsSelected(v SelectValue) {
	if v == SelectIndeterminate {
		return
	}
	for _, id := range p.rowIDs {
		p.sel.Set(id, v == SelectTrue)
	}
}

// HeaderState returns the value a select-all checkbox shows.
func (p *PageState) HeaderState() SelectValue {
	switch {
	case p.IsAllPageRowsSelected():
		return SelectTrue
	case p.IsSomePageRowsSelected():
		return SelectIndeterminate
	default:
		return SelectFalse
	}
}
