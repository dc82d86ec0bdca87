package userssrv

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"testing"
	"time"

	"github.com/Abraxas-365/userdesk/pkg/errx"
	"github.com/Abraxas-365/userdesk/pkg/kernel"
	"github.com/Abraxas-365/userdesk/pkg/ptrx"
	"github.com/Abraxas-365/userdesk/pkg/table"
	"github.com/Abraxas-365/userdesk/pkg/users"
	"github.com/Abraxas-365/userdesk/pkg/users/usersinfra"
	"github.com/stretchr/testify/require"
)

func newService(n int) *Service {
	list := make([]users.User, n)
	for i := range list {
		list[i] = users.User{
			ID:         kernel.UserID(fmt.Sprintf("user-%d", i+1)),
			Name:       fmt.Sprintf("Name %03d", i+1),
			Email:      fmt.Sprintf("u%d@example.com", i+1),
			Balance:    float64(i) * 10.5,
			RegisterAt: time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC),
			Active:     i%2 == 0,
		}
	}
	return NewService(usersinfra.NewMemoryRepository(list...))
}

func TestListAndGet(t *testing.T) {
	r := require.New(t)
	svc := newService(3)

	page, err := svc.List(t.Context(), users.ListQuery{})
	r.NoError(err)
	r.Len(page.Items, 3)
	r.Equal("$21.00", page.Items[2].BalanceFormatted)
	r.Equal("2022-03-01T00:00:00Z", page.Items[0].RegisterAt)

	v, err := svc.Get(t.Context(), "user-2")
	r.NoError(err)
	r.Equal("$10.50", v.BalanceFormatted)

	_, err = svc.Get(t.Context(), "user-99")
	r.True(errx.IsCode(err, users.ErrUserNotFound))
}

func TestExportSelected(t *testing.T) {
	r := require.New(t)
	svc := newService(5)

	var buf bytes.Buffer
	n, err := svc.Export(t.Context(), ExportRequest{
		Query: users.ListQuery{Sorting: table.Sorting{ID: "balance", Direction: table.Desc}},
		IDs:   []string{"user-1", "user-4", "missing"},
	}, &buf)
	r.NoError(err)
	r.Equal(2, n)

	records, err := csv.NewReader(&buf).ReadAll()
	r.NoError(err)
	r.Equal([][]string{
		{"ID", "Name", "Email", "Balance", "Registered", "Status"},
		{"user-4", "Name 004", "u4@example.com", "$31.50", "2022-03-01", "Inactive"},
		{"user-1", "Name 001", "u1@example.com", "$0.00", "2022-03-01", "Active"},
	}, records)
}

func TestExportAllAcrossPages(t *testing.T) {
	r := require.New(t)
	svc := newService(250)

	var buf bytes.Buffer
	n, err := svc.Export(t.Context(), ExportRequest{All: true, Query: users.ListQuery{Active: ptrx.Bool(true)}}, &buf)
	r.NoError(err)
	r.Equal(125, n)

	records, err := csv.NewReader(&buf).ReadAll()
	r.NoError(err)
	r.Len(records, 126)
	r.Equal("ID", records[0][0])
	r.Equal("user-1", records[1][0])
	r.Equal("user-249", records[125][0])
}

func TestExportNothingSelected(t *testing.T) {
	_, err := newService(1).Export(t.Context(), ExportRequest{}, &bytes.Buffer{})
	require.True(t, errx.IsCode(err, users.ErrInvalidQuery))
}
