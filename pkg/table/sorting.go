package table

import (
	"slices"
	"strings"
)

// Direction is the sort order of a column.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
	None Direction = "none"
)

// Valid reports whether d is one of the known directions.
func (d Direction) Valid() bool {
	return d == Asc || d == Desc || d == None
}

// Next cycles none → asc → desc → none, the order a header click follows.
func (d Direction) Next() Direction {
	switch d {
	case Asc:
		return Desc
	case Desc:
		return None
	default:
		return Asc
	}
}

// Sorting describes how a table is ordered.
type Sorting struct {
	ID        string    `json:"id"`
	Direction Direction `json:"direction"`
}

// IsZero reports whether no ordering is requested.
func (s Sorting) IsZero() bool {
	return s.ID == "" || s.Direction == None || s.Direction == ""
}

func (s Sorting) String() string {
	if s.IsZero() {
		return ""
	}
	return s.ID + ":" + string(s.Direction)
}

// ParseSorting parses "column" or "column:direction". An empty string is
// the zero Sorting; a bare column sorts ascending.
func ParseSorting(raw string) (Sorting, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Sorting{}, nil
	}

	id, dir, found := strings.Cut(raw, ":")
	s := Sorting{ID: strings.TrimSpace(id), Direction: Asc}
	if found {
		s.Direction = Direction(strings.ToLower(strings.TrimSpace(dir)))
	}
	if s.ID == "" || !s.Direction.Valid() {
		return Sorting{}, ErrRegistry.New(ErrInvalidSorting).WithDetail("sort", raw)
	}
	return s, nil
}

// SortBy orders items in place by the column named in s. The sort is
// stable, so equal keys keep their previous relative order. A zero
// Sorting leaves items untouched.
func SortBy[T any](items []T, columns []Column[T], s Sorting) error {
	if s.IsZero() {
		return nil
	}

	col, ok := Find(columns, s.ID)
	if !ok {
		return ErrRegistry.New(ErrUnknownColumn).WithDetail("column", s.ID)
	}
	if col.Compare == nil {
		return ErrRegistry.New(ErrUnsortableColumn).WithDetail("column", s.ID)
	}

	cmp := col.Compare
	if s.Direction == Desc {
		cmp = func(a, b T) int { return col.Compare(b, a) }
	}
	slices.SortStableFunc(items, cmp)
	return nil
}
