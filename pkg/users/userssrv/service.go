package userssrv

import (
	"context"
	"encoding/csv"
	"io"
	"time"

	"github.com/Abraxas-365/userdesk/pkg/errx"
	"github.com/Abraxas-365/userdesk/pkg/kernel"
	"github.com/Abraxas-365/userdesk/pkg/logx"
	"github.com/Abraxas-365/userdesk/pkg/moneyx"
	"github.com/Abraxas-365/userdesk/pkg/table"
	"github.com/Abraxas-365/userdesk/pkg/users"
)

// UserView is a user prepared for display.
type UserView struct {
	ID               kernel.UserID `json:"id"`
	Name             string        `json:"name"`
	Email            string        `json:"email"`
	Balance          float64       `json:"balance"`
	BalanceFormatted string        `json:"balanceFormatted"`
	RegisterAt       string        `json:"registerAt,omitempty"`
	Active           bool          `json:"active"`
}

// NewUserView formats u for display.
func NewUserView(u users.User) UserView {
	v := UserView{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		Balance:          u.Balance,
		BalanceFormatted: moneyx.FormatCurrency(u.Balance),
		Active:           u.Active,
	}
	if !u.RegisterAt.IsZero() {
		v.RegisterAt = u.RegisterAt.UTC().Format(time.RFC3339)
	}
	return v
}

// ExportRequest selects the rows of an export. With All set every user
// matching Query is exported; otherwise only those in IDs. Rows keep
// the order of Query.
type ExportRequest struct {
	Query users.ListQuery
	IDs   []string
	All   bool
}

// Service implements the user listing use cases.
type Service struct {
	repo users.Repository
}

// NewService creates the service.
func NewService(repo users.Repository) *Service {
	return &Service{repo: repo}
}

// List returns a page of users.
func (s *Service) List(ctx context.Context, q users.ListQuery) (kernel.Paginated[UserView], error) {
	page, err := s.repo.List(ctx, q)
	if err != nil {
		return kernel.Paginated[UserView]{}, err
	}
	return kernel.MapPage(page, NewUserView), nil
}

// Get returns one user.
func (s *Service) Get(ctx context.Context, id kernel.UserID) (*UserView, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v := NewUserView(*u)
	return &v, nil
}

// Export writes the selected users as CSV to w: a header row followed by
// one row per user, using the text columns of the user table. It
// returns the number of users written.
func (s *Service) Export(ctx context.Context, req ExportRequest, w io.Writer) (int, error) {
	sel := table.NewSelection(req.IDs...)
	if !req.All && sel.Len() == 0 {
		return 0, users.ErrRegistry.New(users.ErrInvalidQuery).
			WithDetail("reason", "nothing selected")
	}

	columns := table.TextColumns(users.Columns())
	cw := csv.NewWriter(w)

	q := req.Query
	q.Page = 1
	q.PageSize = kernel.MaxPageSize

	written := 0
	for {
		page, err := s.repo.List(ctx, q)
		if err != nil {
			return written, err
		}

		ids := make([]string, len(page.Items))
		for i, u := range page.Items {
			ids[i] = users.RowID(u)
		}
		if req.All {
			table.NewPageState(ids, sel).ToggleAllPageRowsSelected(table.SelectTrue)
		}

		rows := make([]users.User, 0, len(page.Items))
		for _, u := range page.Items {
			if sel.IsSelected(users.RowID(u)) {
				rows = append(rows, u)
			}
		}

		records := table.Render(columns, rows, users.RowID, sel)
		if q.Page > 1 {
			records = records[1:]
		}
		if err := cw.WriteAll(records); err != nil {
			return written, errx.Wrap(err, "failed to write export", errx.TypeInternal)
		}
		written += len(rows)

		if !page.HasNext() {
			break
		}
		q.Page++
	}

	logx.WithContext(ctx).WithFields(logx.Fields{
		"rows": written,
		"all":  req.All,
	}).Info("users exported")
	return written, nil
}
