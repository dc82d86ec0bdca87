package usersinfra

import (
	"testing"

	"github.com/Abraxas-365/userdesk/pkg/errx"
	"github.com/Abraxas-365/userdesk/pkg/kernel"
	"github.com/Abraxas-365/userdesk/pkg/ptrx"
	"github.com/Abraxas-365/userdesk/pkg/table"
	"github.com/Abraxas-365/userdesk/pkg/users"
	"github.com/stretchr/testify/require"
)

func seed() []users.User {
	return []users.User{
		{ID: "user-1", Name: "Jane Smith", Email: "jane.smith1@gmail.com", Balance: 300, Active: true},
		{ID: "user-2", Name: "John Brown", Email: "john.brown2@yahoo.com", Balance: 100, Active: false},
		{ID: "user-3", Name: "Emma Davis", Email: "emma.davis3@outlook.com", Balance: 200, Active: true},
	}
}

func pageIDs(p kernel.Paginated[users.User]) []kernel.UserID {
	out := make([]kernel.UserID, len(p.Items))
	for i, u := range p.Items {
		out[i] = u.ID
	}
	return out
}

func TestMemoryList(t *testing.T) {
	r := require.New(t)
	ctx := t.Context()
	repo := NewMemoryRepository(seed()...)

	p, err := repo.List(ctx, users.ListQuery{})
	r.NoError(err)
	r.Equal([]kernel.UserID{"user-1", "user-2", "user-3"}, pageIDs(p))
	r.Equal(3, p.Page.Total)

	p, err = repo.List(ctx, users.ListQuery{Sorting: table.Sorting{ID: "balance", Direction: table.Desc}})
	r.NoError(err)
	r.Equal([]kernel.UserID{"user-1", "user-3", "user-2"}, pageIDs(p))

	p, err = repo.List(ctx, users.ListQuery{Active: ptrx.Bool(true), Search: "DAVIS"})
	r.NoError(err)
	r.Equal([]kernel.UserID{"user-3"}, pageIDs(p))

	p, err = repo.List(ctx, users.ListQuery{PaginationOptions: kernel.PaginationOptions{Page: 2, PageSize: 2}})
	r.NoError(err)
	r.Equal([]kernel.UserID{"user-3"}, pageIDs(p))
	r.Equal(2, p.Page.Pages)
	r.False(p.HasNext())

	p, err = repo.List(ctx, users.ListQuery{PaginationOptions: kernel.PaginationOptions{Page: 9, PageSize: 2}})
	r.NoError(err)
	r.True(p.Empty)

	_, err = repo.List(ctx, users.ListQuery{Sorting: table.Sorting{ID: "select", Direction: table.Asc}})
	r.True(errx.IsCode(err, users.ErrUnsortableColumn))
}

func TestMemoryFindAndSave(t *testing.T) {
	r := require.New(t)
	ctx := t.Context()
	repo := NewMemoryRepository(seed()...)

	u, err := repo.FindByID(ctx, "user-2")
	r.NoError(err)
	r.Equal("John Brown", u.Name)

	_, err = repo.FindByID(ctx, "user-9")
	r.True(errx.IsCode(err, users.ErrUserNotFound))

	list, err := repo.FindByIDs(ctx, []kernel.UserID{"user-3", "nope", "user-1", "user-3"})
	r.NoError(err)
	r.Len(list, 2)
	r.Equal(kernel.UserID("user-1"), list[0].ID)

	r.NoError(repo.Save(ctx, users.User{ID: "user-2", Name: "Johnny Brown"}, users.User{ID: "user-4", Name: "New"}))
	r.Equal(4, repo.Len())
	u, err = repo.FindByID(ctx, "user-2")
	r.NoError(err)
	r.Equal("Johnny Brown", u.Name)
}
