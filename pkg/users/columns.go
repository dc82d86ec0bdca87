package users

import (
	"cmp"
	"strconv"
	"strings"
	"time"

	"github.com/Abraxas-365/userdesk/pkg/moneyx"
	"github.com/Abraxas-365/userdesk/pkg/table"
)

// RowID names a user for table selection.
func RowID(u User) string { return u.ID.String() }

// DateLayout is how registration dates appear in tables and exports.
const DateLayout = "2006-01-02"

func text(fn func(User) string) func(table.CellParams[User]) string {
	return func(p table.CellParams[User]) string { return fn(p.Row.Item) }
}

// Columns returns the user table: a selection column followed by the
// data columns. Every data column is sortable.
func Columns() []table.Column[User] {
	return []table.Column[User]{
		table.SelectColumn[User](),
		{
			ID:      "id",
			Header:  "ID",
			Cell:    text(RowID),
			Compare: compareIDs,
		},
		{
			ID:      "name",
			Header:  "Name",
			Cell:    text(func(u User) string { return u.Name }),
			Compare: func(a, b User) int { return strings.Compare(a.Name, b.Name) },
		},
		{
			ID:      "email",
			Header:  "Email",
			Cell:    text(func(u User) string { return u.Email }),
			Compare: func(a, b User) int { return strings.Compare(a.Email, b.Email) },
		},
		{
			ID:      "balance",
			Header:  "Balance",
			Cell:    text(func(u User) string { return moneyx.FormatCurrency(u.Balance) }),
			Compare: func(a, b User) int { return cmp.Compare(a.Balance, b.Balance) },
		},
		{
			ID:      "registerAt",
			Header:  "Registered",
			Cell:    text(func(u User) string { return formatDate(u.RegisterAt) }),
			Compare: func(a, b User) int { return a.RegisterAt.Compare(b.RegisterAt) },
		},
		{
			ID:     "active",
			Header: "Status",
			Cell: text(func(u User) string {
				if u.Active {
					return "Active"
				}
				return "Inactive"
			}),
			Compare: func(a, b User) int { return cmp.Compare(boolInt(a.Active), boolInt(b.Active)) },
		},
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// compareIDs orders "user-2" before "user-10" by comparing the numeric
// suffix when both ids share a prefix.
func compareIDs(a, b User) int {
	pa, na, okA := splitID(a.ID.String())
	pb, nb, okB := splitID(b.ID.String())
	if okA && okB && pa == pb {
		return cmp.Compare(na, nb)
	}
	return strings.Compare(a.ID.String(), b.ID.String())
}

func splitID(id string) (string, int, bool) {
	i := strings.LastIndexByte(id, '-')
	if i < 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(id[i+1:])
	return id[:i], n, err == nil
}
