package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Abraxas-365/userdesk/pkg/errx"
	"github.com/Abraxas-365/userdesk/pkg/kernel"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	r := require.New(t)

	svc := NewJWTService("secret", time.Minute, "")
	token, err := svc.GenerateAccessToken("user-7", map[string]any{
		"email":  "ana.garcia7@gmail.com",
		"name":   "Ana García",
		"scopes": []string{"users:read"},
	})
	r.NoError(err)

	claims, err := svc.ValidateAccessToken(token)
	r.NoError(err)
	r.Equal(kernel.UserID("user-7"), claims.UserID)
	r.Equal("Ana García", claims.Name)
	r.Equal([]string{"users:read"}, claims.Scopes)
	r.WithinDuration(claims.IssuedAt.Add(time.Minute), claims.ExpiresAt, time.Second)
}

func TestJWTRejects(t *testing.T) {
	r := require.New(t)

	svc := NewJWTService("secret", time.Minute, "")
	token, err := svc.GenerateAccessToken("user-1", nil)
	r.NoError(err)

	_, err = NewJWTService("other", time.Minute, "").ValidateAccessToken(token)
	r.True(errx.IsCode(err, CodeTokenValidationFailed))

	_, err = NewJWTService("secret", time.Minute, "someone-else").ValidateAccessToken(token)
	r.True(errx.IsCode(err, CodeTokenValidationFailed))

	expired := NewJWTService("secret", time.Minute, "")
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, err := expired.GenerateAccessToken("user-1", nil)
	r.NoError(err)
	_, err = svc.ValidateAccessToken(old)
	r.True(errx.IsCode(err, CodeTokenValidationFailed))

	_, err = svc.ValidateAccessToken("garbage")
	r.Error(err)
}

type recordingAudit struct {
	authenticated []kernel.UserID
	rejected      []string
	denied        []string
}

func (a *recordingAudit) LogAuthenticated(_ context.Context, id kernel.UserID, _, _ string) {
	a.authenticated = append(a.authenticated, id)
}

func (a *recordingAudit) LogRejected(_ context.Context, reason, _, _ string) {
	a.rejected = append(a.rejected, reason)
}

func (a *recordingAudit) LogAccessDenied(_ context.Context, _ kernel.UserID, scope, _ string) {
	a.denied = append(a.denied, scope)
}

func TestMiddleware(t *testing.T) {
	r := require.New(t)

	svc := NewJWTService("secret", time.Minute, "")
	audit := &recordingAudit{}
	mw := NewAuthMiddleware(svc, audit)

	app := fiber.New()
	app.Get("/me", mw.Authenticate(), func(c *fiber.Ctx) error {
		ac, ok := FromCtx(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		return c.SendString(ac.UserID.String())
	})
	app.Get("/export", mw.Authenticate(), mw.RequireScope("users:export"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	token, err := svc.GenerateAccessToken("user-3", map[string]any{"scopes": []string{"users:read"}})
	r.NoError(err)

	call := func(path, header string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if header != "" {
			req.Header.Set(fiber.HeaderAuthorization, header)
		}
		resp, err := app.Test(req)
		r.NoError(err)
		resp.Body.Close()
		return resp.StatusCode
	}

	r.Equal(fiber.StatusOK, call("/me", "Bearer "+token))
	r.Equal(fiber.StatusUnauthorized, call("/me", ""))
	r.Equal(fiber.StatusUnauthorized, call("/me", "Bearer nope"))
	r.Equal(fiber.StatusUnauthorized, call("/me", "Basic abc"))
	r.Equal(fiber.StatusForbidden, call("/export", "Bearer "+token))

	r.Equal([]kernel.UserID{"user-3", "user-3"}, audit.authenticated)
	r.Equal([]string{"missing token", "invalid token", "missing token"}, audit.rejected)
	r.Equal([]string{"users:export"}, audit.denied)
}
