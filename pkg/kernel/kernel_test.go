package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginationNormalize(t *testing.T) {
	assert.Equal(t, PaginationOptions{Page: 1, PageSize: 10}, PaginationOptions{}.Normalize())
	assert.Equal(t, PaginationOptions{Page: 3, PageSize: 100}, PaginationOptions{Page: 3, PageSize: 500}.Normalize())
}

func TestPaginationWindow(t *testing.T) {
	opts := PaginationOptions{Page: 3, PageSize: 10}
	assert.Equal(t, 20, opts.Offset())

	start, end := opts.Window(25)
	assert.Equal(t, 20, start)
	assert.Equal(t, 25, end)

	start, end = opts.Window(5)
	assert.Equal(t, 5, start)
	assert.Equal(t, 5, end)
}

func TestNewPaginated(t *testing.T) {
	p := NewPaginated([]int{1, 2}, 2, 2, 5)
	assert.Equal(t, 3, p.Page.Pages)
	assert.True(t, p.HasNext())
	assert.True(t, p.HasPrevious())
	assert.False(t, p.Empty)

	empty := NewPaginated[int](nil, 1, 10, 0)
	assert.True(t, empty.Empty)
	assert.NotNil(t, empty.Items)
	assert.False(t, empty.HasNext())

	doubled := MapPage(p, func(n int) int { return n * 2 })
	assert.Equal(t, []int{2, 4}, doubled.Items)
	assert.Equal(t, p.Page, doubled.Page)
}

func TestHasScope(t *testing.T) {
	ac := &AuthContext{UserID: "user-1", Scopes: []string{"users:*", "process:write"}}
	assert.True(t, ac.IsValid())
	assert.True(t, ac.HasScope("users:read"))
	assert.True(t, ac.HasScope("process:write"))
	assert.False(t, ac.HasScope("process:read"))
	assert.False(t, ac.IsAdmin())
	assert.True(t, ac.HasAnyScope("nope", "users:export"))

	admin := &AuthContext{UserID: "root", Scopes: []string{"*"}}
	assert.True(t, admin.IsAdmin())

	var missing *AuthContext
	assert.False(t, missing.IsValid())
}
