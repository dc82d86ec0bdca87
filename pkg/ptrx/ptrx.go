// Package ptrx has small helpers for optional values held as pointers,
// such as optional JSON fields and query filters.
package ptrx

// Of returns a pointer to a copy of v.
func Of[T any](v T) *T {
	return &v
}

// Value returns the value p points to, or the zero value if p is nil.
func Value[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// ValueOr returns the value p points to, or fallback if p is nil.
func ValueOr[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}

// Bool returns a pointer value for the bool value passed in.
func Bool(v bool) *bool { return &v }

// Int64 returns a pointer value for the int64 value passed in.
func Int64(v int64) *int64 { return &v }
