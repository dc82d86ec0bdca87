package usersinfra

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Abraxas-365/userdesk/pkg/errx"
	"github.com/Abraxas-365/userdesk/pkg/kernel"
	"github.com/Abraxas-365/userdesk/pkg/table"
	"github.com/Abraxas-365/userdesk/pkg/users"
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const (
	dialectPostgres = "postgres"
	tableUsers      = "users"

	colID         = "id"
	colName       = "name"
	colBalance    = "balance"
	colEmail      = "email"
	colRegisterAt = "register_at"
	colActive     = "active"
)

var userColumns = []any{colID, colName, colBalance, colEmail, colRegisterAt, colActive}

// sortColumns maps table column ids to database columns.
var sortColumns = map[string]string{
	"id":         colID,
	"name":       colName,
	"email":      colEmail,
	"balance":    colBalance,
	"registerAt": colRegisterAt,
	"active":     colActive,
}

// Schema creates the users table.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	balance     DOUBLE PRECISION NOT NULL DEFAULT 0,
	email       TEXT NOT NULL,
	register_at TIMESTAMPTZ NOT NULL,
	active      BOOLEAN NOT NULL DEFAULT TRUE
);
CREATE INDEX IF NOT EXISTS users_email_idx ON users (lower(email));
`

// PostgresRepository stores users in PostgreSQL.
type PostgresRepository struct {
	db *sqlx.DB
}

var _ users.Repository = (*PostgresRepository)(nil)

// NewPostgresRepository creates the repository.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the table and indexes when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return users.ErrRegistry.NewWithCause(users.ErrStorage, err).WithDetail("op", "ensure_schema")
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func filters(q users.ListQuery) []exp.Expression {
	var where []exp.Expression
	if q.Search != "" {
		pattern := "%" + escapeLike(q.Search) + "%"
		where = append(where, goqu.Or(
			goqu.C(colName).ILike(pattern),
			goqu.C(colEmail).ILike(pattern),
		))
	}
	if q.Active != nil {
		where = append(where, goqu.C(colActive).Eq(*q.Active))
	}
	return where
}

// buildListQueries returns the page query and the matching count query.
func buildListQueries(q users.ListQuery) (string, string, error) {
	where := filters(q)
	builder := goqu.Dialect(dialectPostgres)

	order := []exp.OrderedExpression{}
	if !q.Sorting.IsZero() {
		col := goqu.I(sortColumns[q.Sorting.ID])
		if q.Sorting.Direction == table.Desc {
			order = append(order, col.Desc())
		} else {
			order = append(order, col.Asc())
		}
	}
	if q.Sorting.ID != "id" || q.Sorting.IsZero() {
		order = append(order, goqu.I(colID).Asc())
	}

	pageStmt := builder.From(tableUsers).
		Select(userColumns...).
		Where(where...).
		Order(order...).
		Limit(uint(q.PageSize)).
		Offset(uint(q.Offset()))

	countStmt := builder.From(tableUsers).
		Select(goqu.COUNT("*")).
		Where(where...)

	pageSQL, _, err := pageStmt.ToSQL()
	if err != nil {
		return "", "", err
	}
	countSQL, _, err := countStmt.ToSQL()
	if err != nil {
		return "", "", err
	}
	return pageSQL, countSQL, nil
}

// List runs the filtered, sorted page query and a count.
func (r *PostgresRepository) List(ctx context.Context, q users.ListQuery) (kernel.Paginated[users.User], error) {
	q = q.Normalize()
	if err := q.Validate(); err != nil {
		return kernel.Paginated[users.User]{}, err
	}

	pageSQL, countSQL, err := buildListQueries(q)
	if err != nil {
		return kernel.Paginated[users.User]{}, users.ErrRegistry.NewWithCause(users.ErrInvalidQuery, err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countSQL); err != nil {
		return kernel.Paginated[users.User]{}, storageErr(err, "count")
	}

	var list []users.User
	if err := r.db.SelectContext(ctx, &list, pageSQL); err != nil {
		return kernel.Paginated[users.User]{}, storageErr(err, "list")
	}

	return kernel.NewPaginated(list, q.Page, q.PageSize, total), nil
}

// FindByID returns the user with id.
func (r *PostgresRepository) FindByID(ctx context.Context, id kernel.UserID) (*users.User, error) {
	query, _, err := goqu.Dialect(dialectPostgres).
		From(tableUsers).
		Select(userColumns...).
		Where(goqu.C(colID).Eq(id.String())).
		ToSQL()
	if err != nil {
		return nil, storageErr(err, "find_by_id")
	}

	var u users.User
	if err := r.db.GetContext(ctx, &u, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, users.NewUserNotFound(id.String())
		}
		return nil, storageErr(err, "find_by_id")
	}
	return &u, nil
}

// FindByIDs returns the users with the given ids ordered by id.
func (r *PostgresRepository) FindByIDs(ctx context.Context, ids []kernel.UserID) ([]users.User, error) {
	if len(ids) == 0 {
		return []users.User{}, nil
	}

	raw := make([]any, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}
	query, _, err := goqu.Dialect(dialectPostgres).
		From(tableUsers).
		Select(userColumns...).
		Where(goqu.C(colID).In(raw...)).
		Order(goqu.I(colID).Asc()).
		ToSQL()
	if err != nil {
		return nil, storageErr(err, "find_by_ids")
	}

	var list []users.User
	if err := r.db.SelectContext(ctx, &list, query); err != nil {
		return nil, storageErr(err, "find_by_ids")
	}
	return list, nil
}

func buildUpsert(list []users.User) (string, error) {
	rows := make([]any, len(list))
	for i, u := range list {
		rows[i] = goqu.Record{
			colID:         u.ID.String(),
			colName:       u.Name,
			colBalance:    u.Balance,
			colEmail:      u.Email,
			colRegisterAt: u.RegisterAt,
			colActive:     u.Active,
		}
	}

	query, _, err := goqu.Dialect(dialectPostgres).
		Insert(tableUsers).
		Rows(rows...).
		OnConflict(goqu.DoUpdate(colID, goqu.Record{
			colName:       goqu.L("EXCLUDED." + colName),
			colBalance:    goqu.L("EXCLUDED." + colBalance),
			colEmail:      goqu.L("EXCLUDED." + colEmail),
			colRegisterAt: goqu.L("EXCLUDED." + colRegisterAt),
			colActive:     goqu.L("EXCLUDED." + colActive),
		})).
		ToSQL()
	return query, err
}

// Save upserts users by id in a single statement.
func (r *PostgresRepository) Save(ctx context.Context, list ...users.User) error {
	if len(list) == 0 {
		return nil
	}

	query, err := buildUpsert(list)
	if err != nil {
		return storageErr(err, "save")
	}
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return storageErr(err, "save")
	}
	return nil
}

func storageErr(err error, op string) *errx.Error {
	e := users.ErrRegistry.NewWithCause(users.ErrStorage, err).WithDetail("op", op)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		e.WithDetail("pg_code", string(pqErr.Code))
	}
	return e
}
