package usersapi

import (
	"bytes"
	"slices"
	"strconv"
	"strings"

	"github.com/Abraxas-365/userdesk/pkg/errx"
	"github.com/Abraxas-365/userdesk/pkg/kernel"
	"github.com/Abraxas-365/userdesk/pkg/ptrx"
	"github.com/Abraxas-365/userdesk/pkg/table"
	"github.com/Abraxas-365/userdesk/pkg/users"
	"github.com/Abraxas-365/userdesk/pkg/users/userssrv"
	"github.com/gofiber/fiber/v2"
)

// Handlers serves the user endpoints.
type Handlers struct {
	svc *userssrv.Service
}

func NewHandlers(svc *userssrv.Service) *Handlers {
	return &Handlers{svc: svc}
}

// RegisterRoutes mounts:
//
//	GET  /api/v1/users
//	GET  /api/v1/users/:id
//	POST /api/v1/users/export
//
// exportMW runs in front of the export route only.
func (h *Handlers) RegisterRoutes(router fiber.Router, mw []fiber.Handler, exportMW ...fiber.Handler) {
	grp := router.Group("/api/v1/users", mw...)
	grp.Get("/", h.List)
	grp.Post("/export", append(slices.Clone(exportMW), h.Export)...)
	grp.Get("/:id", h.Get)
}

// parseQuery reads page, page_size, sort, q and active.
func parseQuery(c *fiber.Ctx) (users.ListQuery, error) {
	invalid := func(field, value string) error {
		return users.ErrRegistry.New(users.ErrInvalidQuery).
			WithDetail("field", field).
			WithDetail("value", value)
	}

	var q users.ListQuery
	for field, dst := range map[string]*int{"page": &q.Page, "page_size": &q.PageSize} {
		if raw := c.Query(field); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				return q, invalid(field, raw)
			}
			*dst = n
		}
	}

	sorting, err := table.ParseSorting(c.Query("sort"))
	if err != nil {
		return q, invalid("sort", c.Query("sort"))
	}
	q.Sorting = sorting

	if raw := c.Query("active"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return q, invalid("active", raw)
		}
		q.Active = ptrx.Bool(b)
	}

	q.Search = strings.TrimSpace(c.Query("q"))
	return q.Normalize(), nil
}

// List returns a page of users.
func (h *Handlers) List(c *fiber.Ctx) error {
	q, err := parseQuery(c)
	if err != nil {
		return errx.Respond(c, err)
	}

	page, err := h.svc.List(c.UserContext(), q)
	if err != nil {
		return errx.Respond(c, err)
	}
	return c.JSON(page)
}

// Get returns one user.
func (h *Handlers) Get(c *fiber.Ctx) error {
	v, err := h.svc.Get(c.UserContext(), kernel.NewUserID(c.Params("id")))
	if err != nil {
		return errx.Respond(c, err)
	}
	return c.JSON(v)
}

// ExportBody is the JSON body of an export request.
type ExportBody struct {
	IDs    []string `json:"ids"`
	All    bool     `json:"all"`
	Sort   string   `json:"sort"`
	Search string   `json:"q"`
	Active *bool    `json:"active"`
}

// Export streams the selected users as CSV.
func (h *Handlers) Export(c *fiber.Ctx) error {
	var body ExportBody
	if err := c.BodyParser(&body); err != nil {
		return errx.Respond(c, users.ErrRegistry.NewWithCause(users.ErrInvalidQuery, err))
	}

	sorting, err := table.ParseSorting(body.Sort)
	if err != nil {
		return errx.Respond(c, err)
	}

	req := userssrv.ExportRequest{
		Query: users.ListQuery{Sorting: sorting, Search: body.Search, Active: body.Active},
		IDs:   body.IDs,
		All:   body.All,
	}

	var buf bytes.Buffer
	if _, err := h.svc.Export(c.UserContext(), req, &buf); err != nil {
		return errx.Respond(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="users.csv"`)
	return c.Send(buf.Bytes())
}
