package usersinfra

import (
	"testing"
	"time"

	"github.com/Abraxas-365/userdesk/pkg/kernel"
	"github.com/Abraxas-365/userdesk/pkg/ptrx"
	"github.com/Abraxas-365/userdesk/pkg/table"
	"github.com/Abraxas-365/userdesk/pkg/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildListQueriesDefaults(t *testing.T) {
	r := require.New(t)

	pageSQL, countSQL, err := buildListQueries(users.ListQuery{}.Normalize())
	r.NoError(err)

	r.Contains(pageSQL, `SELECT "id", "name", "balance", "email", "register_at", "active" FROM "users"`)
	r.Contains(pageSQL, `ORDER BY "id" ASC`)
	r.Contains(pageSQL, `LIMIT 10`)
	r.NotContains(pageSQL, "WHERE")

	r.Equal(`SELECT COUNT(*) FROM "users"`, countSQL)
}

func TestBuildListQueriesFilters(t *testing.T) {
	r := require.New(t)

	q := users.ListQuery{
		PaginationOptions: kernel.PaginationOptions{Page: 3, PageSize: 20},
		Sorting:           table.Sorting{ID: "registerAt", Direction: table.Desc},
		Search:            "o'neil_",
		Active:            ptrx.Bool(true),
	}.Normalize()

	pageSQL, countSQL, err := buildListQueries(q)
	r.NoError(err)

	for _, fragment := range []string{
		`"name" ILIKE '%o''neil\_%'`,
		`"email" ILIKE '%o''neil\_%'`,
		`"active" IS TRUE`,
		`ORDER BY "register_at" DESC, "id" ASC`,
		`LIMIT 20`,
		`OFFSET 40`,
	} {
		assert.Contains(t, pageSQL, fragment)
	}

	r.Contains(countSQL, `SELECT COUNT(*) FROM "users" WHERE`)
	r.Contains(countSQL, `"active" IS TRUE`)
	r.NotContains(countSQL, "ORDER BY")
	r.NotContains(countSQL, "LIMIT")
}

func TestBuildListQueriesSortByID(t *testing.T) {
	pageSQL, _, err := buildListQueries(users.ListQuery{
		Sorting: table.Sorting{ID: "id", Direction: table.Desc},
	}.Normalize())
	require.NoError(t, err)
	assert.Contains(t, pageSQL, `ORDER BY "id" DESC LIMIT`)
}

func TestBuildUpsert(t *testing.T) {
	r := require.New(t)

	query, err := buildUpsert([]users.User{
		{ID: "user-1", Name: "Jane Smith", Email: "jane.smith1@gmail.com", Balance: 10, RegisterAt: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), Active: true},
		{ID: "user-2", Name: "John Doe", Email: "john.doe2@yahoo.com"},
	})
	r.NoError(err)

	r.Contains(query, `INSERT INTO "users"`)
	r.Contains(query, `'user-1'`)
	r.Contains(query, `'user-2'`)
	r.Contains(query, `ON CONFLICT (id) DO UPDATE SET`)
	r.Contains(query, `"name"=EXCLUDED.name`)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%\_a\\b`, escapeLike(`100%_a\b`))
}

func TestSortColumnsCoverTable(t *testing.T) {
	for _, id := range table.SortableIDs(users.Columns()) {
		_, ok := sortColumns[id]
		assert.True(t, ok, id)
	}
}
