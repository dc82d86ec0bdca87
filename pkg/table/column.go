package table

import "slices"

// RenderType tells a client how to treat a cell's output.
type RenderType string

const (
	// RenderText cells are plain text and are exported.
	RenderText RenderType = ""
	// RenderNode cells are interactive widgets (checkboxes, buttons) and
	// are skipped by exports.
	RenderNode RenderType = "node"
)

// Row is one item of a rendered page.
type Row[T any] struct {
	ID   string
	Item T
	sel  *Selection
}

// IsSelected reports whether the row is selected.
func (r Row[T]) IsSelected() bool { return r.sel.IsSelected(r.ID) }

// ToggleSelection sets the row's selection state.
func (r Row[T]) ToggleSelection(selected bool) {
	if r.sel != nil {
		r.sel.Set(r.ID, selected)
	}
}

// HeaderParams is passed to HeaderFunc.
type HeaderParams struct {
	Table *PageState
}

// CellParams is passed to Cell.
type CellParams[T any] struct {
	Row Row[T]
}

// Column describes one column of a table of T.
type Column[T any] struct {
	ID string

	// Header is the static title. HeaderFunc, when set, wins.
	Header     string
	HeaderFunc func(HeaderParams) string

	// Cell renders the value of a row. A nil Cell renders "".
	Cell func(CellParams[T]) string

	RenderType RenderType

	// Compare orders two items by this column. Columns without it cannot
	// be sorted.
	Compare func(a, b T) int
}

// Title returns the header text for the page.
func (c Column[T]) Title(p HeaderParams) string {
	switch {
	case c.HeaderFunc != nil:
		return c.HeaderFunc(p)
	case c.Header != "":
		return c.Header
	default:
		return c.ID
	}
}

// Sortable reports whether the column has a comparator.
func (c Column[T]) Sortable() bool { return c.Compare != nil }

// Find returns the column with the given id.
func Find[T any](columns []Column[T], id string) (Column[T], bool) {
	i := slices.IndexFunc(columns, func(c Column[T]) bool { return c.ID == id })
	if i < 0 {
		return Column[T]{}, false
	}
	return columns[i], true
}

// TextColumns returns the columns whose cells are plain text.
func TextColumns[T any](columns []Column[T]) []Column[T] {
	return slices.DeleteFunc(slices.Clone(columns), func(c Column[T]) bool {
		return c.RenderType == RenderNode
	})
}

// SortableIDs lists the ids of sortable columns in declaration order.
func SortableIDs[T any](columns []Column[T]) []string {
	var ids []string
	for _, c := range columns {
		if c.Sortable() {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// Render produces a header row followed by one row of cells per item.
// rowID names each item for the selection.
func Render[T any](columns []Column[T], items []T, rowID func(T) string, sel *Selection) [][]string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = rowID(item)
	}
	hp := HeaderParams{Table: NewPageState(ids, sel)}
	sel = hp.Table.sel

	out := make([][]string, 0, len(items)+1)

	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = c.Title(hp)
	}
	out = append(out, header)

	for i, item := range items {
		row := Row[T]{ID: ids[i], Item: item, sel: sel}
		cells := make([]string, len(columns))
		for j, c := range columns {
			if c.Cell != nil {
				cells[j] = c.Cell(CellParams[T]{Row: row})
			}
		}
		out = append(out, cells)
	}
	return out
}

// SelectColumn is the conventional leading checkbox column. The header
// shows the page state and each cell the row state.
func SelectColumn[T any]() Column[T] {
	return Column[T]{
		ID: "select",
		HeaderFunc: func(p HeaderParams) string {
			return checkbox(p.Table.HeaderState())
		},
		Cell: func(p CellParams[T]) string {
			if p.Row.IsSelected() {
				return checkbox(SelectTrue)
			}
			return checkbox(SelectFalse)
		},
		RenderType: RenderNode,
	}
}

func checkbox(v SelectValue) string {
	switch v {
	case SelectTrue:
		return "[x]"
	case SelectIndeterminate:
		return "[-]"
	default:
		return "[ ]"
	}
}
