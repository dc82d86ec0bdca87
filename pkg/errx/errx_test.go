package errx

import (
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCodes(t *testing.T) {
	r := require.New(t)

	reg := NewRegistry("TEST")
	code := reg.Register("BROKEN", TypeValidation, 0, "broken input")
	r.Equal("TEST_BROKEN", code.Code)
	r.Equal(400, code.HTTPStatus)

	got, ok := reg.Get("BROKEN")
	r.True(ok)
	r.Same(code, got)
	r.Len(reg.Codes(), 1)

	err := reg.New(code)
	r.Equal("[TEST_BROKEN] broken input", err.Error())
	r.Equal(TypeValidation, err.Type)
}

func TestIsCode(t *testing.T) {
	r := require.New(t)

	reg := NewRegistry("TEST")
	a := reg.Register("A", TypeNotFound, 0, "a")
	b := reg.Register("B", TypeConflict, 0, "b")

	err := fmt.Errorf("outer: %w", reg.NewWithCause(a, io.EOF))
	r.True(IsCode(err, a))
	r.False(IsCode(err, b))
	r.False(IsCode(nil, a))
	r.True(errors.Is(err, io.EOF))
	r.True(IsType(err, TypeNotFound))
}

func TestWrapPreservesCode(t *testing.T) {
	reg := NewRegistry("TEST")
	code := reg.Register("GONE", TypeNotFound, 0, "gone")

	wrapped := Wrap(reg.New(code), "lookup failed", TypeInternal)
	assert.Equal(t, "TEST_GONE", wrapped.Code)
	assert.Equal(t, 404, wrapped.HTTPStatus)
	assert.Nil(t, Wrap(nil, "nothing", TypeInternal))
}

func TestTypeHTTPStatus(t *testing.T) {
	cases := map[Type]int{
		TypeValidation:    400,
		TypeAuthorization: 401,
		TypeNotFound:      404,
		TypeConflict:      409,
		TypeBusiness:      422,
		TypeCancelled:     499,
		TypeExternal:      502,
		TypeInternal:      500,
	}
	for typ, status := range cases {
		assert.Equal(t, status, typ.HTTPStatus(), typ.String())
	}
}

func TestRespond(t *testing.T) {
	r := require.New(t)

	app := fiber.New()
	app.Get("/validation", func(c *fiber.Ctx) error {
		return Respond(c, Validation("bad").WithDetail("field", "numbers"))
	})
	app.Get("/plain", func(c *fiber.Ctx) error {
		return Respond(c, errors.New("boom"))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/validation", nil))
	r.NoError(err)
	r.Equal(400, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	r.Contains(string(body), `"code":"VALIDATION"`)
	r.Contains(string(body), `"field":"numbers"`)

	resp, err = app.Test(httptest.NewRequest("GET", "/plain", nil))
	r.NoError(err)
	r.Equal(500, resp.StatusCode)
}
