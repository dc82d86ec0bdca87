package users

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/Abraxas-365/userdesk/pkg/kernel"
	"github.com/Abraxas-365/userdesk/pkg/table"
)

// User is a directory entry as the desk shows it.
type User struct {
	ID         kernel.UserID `db:"id" json:"id"`
	Name       string        `db:"name" json:"name"`
	Balance    float64       `db:"balance" json:"balance"`
	Email      string        `db:"email" json:"email"`
	RegisterAt time.Time     `db:"register_at" json:"registerAt"`
	Active     bool          `db:"active" json:"active"`
}

// ServerUser is a user as the remote directory returns it.
type ServerUser struct {
	ID        int    `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	BirthDate string `json:"birthDate"`
	Age       int    `json:"age"`
}

// ToUser maps a remote record into a User. The remote directory has no
// balance or registration date, so those stay zero, and every remote
// user counts as active.
func (s ServerUser) ToUser() User {
	return User{
		ID:     kernel.UserID("srv-" + strconv.Itoa(s.ID)),
		Name:   strings.TrimSpace(s.FirstName + " " + s.LastName),
		Email:  s.Email,
		Active: true,
	}
}

// APIResponse is one page of the remote directory.
type APIResponse struct {
	Users []ServerUser `json:"users"`
	Total int          `json:"total"`
	Skip  int          `json:"skip"`
	Limit int          `json:"limit"`
}

// ListQuery selects a page of users.
type ListQuery struct {
	kernel.PaginationOptions
	Sorting table.Sorting
	// Search matches a case-insensitive substring of name or email.
	Search string
	// Active, when set, keeps only users with that state.
	Active *bool
}

// Normalize applies the pagination defaults and trims the search term.
func (q ListQuery) Normalize() ListQuery {
	q.PaginationOptions = q.PaginationOptions.Normalize()
	q.Search = strings.TrimSpace(q.Search)
	return q
}

// Validate checks that the sort column exists and can be sorted.
func (q ListQuery) Validate() error {
	if q.Sorting.IsZero() {
		return nil
	}
	col, ok := table.Find(Columns(), q.Sorting.ID)
	if !ok || !col.Sortable() {
		return ErrRegistry.New(ErrUnsortableColumn).
			WithDetail("column", q.Sorting.ID).
			WithDetail("sortable", table.SortableIDs(Columns()))
	}
	return nil
}

// Matches reports whether u passes the query's filters.
func (q ListQuery) Matches(u User) bool {
	if q.Active != nil && u.Active != *q.Active {
		return false
	}
	if q.Search == "" {
		return true
	}
	term := strings.ToLower(q.Search)
	return strings.Contains(strings.ToLower(u.Name), term) ||
		strings.Contains(strings.ToLower(u.Email), term)
}

// Repository stores users.
type Repository interface {
	List(ctx context.Context, q ListQuery) (kernel.Paginated[User], error)
	FindByID(ctx context.Context, id kernel.UserID) (*User, error)
	FindByIDs(ctx context.Context, ids []kernel.UserID) ([]User, error)
	Save(ctx context.Context, users ...User) error
}

// Directory reads users from an external user directory.
type Directory interface {
	FetchPage(ctx context.Context, skip, limit int) (*APIResponse, error)
	FetchAll(ctx context.Context) ([]ServerUser, error)
}
