package usersinfra

import (
	"context"
	"slices"
	"sync"

	"github.com/Abraxas-365/userdesk/pkg/kernel"
	"github.com/Abraxas-365/userdesk/pkg/table"
	"github.com/Abraxas-365/userdesk/pkg/users"
)

// MemoryRepository keeps users in process memory, in insertion order.
type MemoryRepository struct {
	mu    sync.RWMutex
	list  []users.User
	index map[kernel.UserID]int
}

var _ users.Repository = (*MemoryRepository)(nil)

// NewMemoryRepository returns a repository holding seed.
func NewMemoryRepository(seed ...users.User) *MemoryRepository {
	r := &MemoryRepository{index: make(map[kernel.UserID]int, len(seed))}
	r.put(seed)
	return r
}

func (r *MemoryRepository) put(list []users.User) {
	for _, u := range list {
		if i, ok := r.index[u.ID]; ok {
			r.list[i] = u
			continue
		}
		r.index[u.ID] = len(r.list)
		r.list = append(r.list, u)
	}
}

// List filters, sorts and pages the stored users.
func (r *MemoryRepository) List(_ context.Context, q users.ListQuery) (kernel.Paginated[users.User], error) {
	q = q.Normalize()
	if err := q.Validate(); err != nil {
		return kernel.Paginated[users.User]{}, err
	}

	r.mu.RLock()
	matched := make([]users.User, 0, len(r.list))
	for _, u := range r.list {
		if q.Matches(u) {
			matched = append(matched, u)
		}
	}
	r.mu.RUnlock()

	if err := table.SortBy(matched, users.Columns(), q.Sorting); err != nil {
		return kernel.Paginated[users.User]{}, err
	}

	start, end := q.Window(len(matched))
	page := slices.Clone(matched[start:end])
	return kernel.NewPaginated(page, q.Page, q.PageSize, len(matched)), nil
}

// FindByID returns the user with id.
func (r *MemoryRepository) FindByID(_ context.Context, id kernel.UserID) (*users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return nil, users.NewUserNotFound(id.String())
	}
	u := r.list[i]
	return &u, nil
}

// FindByIDs returns the users with the given ids in storage order.
// Unknown ids are skipped.
func (r *MemoryRepository) FindByIDs(_ context.Context, ids []kernel.UserID) ([]users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	positions := make([]int, 0, len(ids))
	for _, id := range ids {
		if i, ok := r.index[id]; ok {
			positions = append(positions, i)
		}
	}
	slices.Sort(positions)
	positions = slices.Compact(positions)

	out := make([]users.User, len(positions))
	for k, i := range positions {
		out[k] = r.list[i]
	}
	return out, nil
}

// Save inserts or replaces users by id.
func (r *MemoryRepository) Save(_ context.Context, list ...users.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.put(list)
	return nil
}

// Len returns the number of stored users.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.list)
}
