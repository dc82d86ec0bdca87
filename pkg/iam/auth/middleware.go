package auth

import (
	"strings"

	"github.com/Abraxas-365/userdesk/pkg/errx"
	"github.com/Abraxas-365/userdesk/pkg/iam"
	"github.com/Abraxas-365/userdesk/pkg/kernel"
	"github.com/gofiber/fiber/v2"
)

const localsKey = string(kernel.AuthContextKey)

// TokenMiddleware authenticates requests carrying a bearer JWT.
type TokenMiddleware struct {
	tokenService TokenService
	audit        AuditService
}

// NewAuthMiddleware creates the middleware. audit may be nil.
func NewAuthMiddleware(tokenService TokenService, audit AuditService) *TokenMiddleware {
	return &TokenMiddleware{
		tokenService: tokenService,
		audit:        audit,
	}
}

// Authenticate validates the token from the Authorization header (or the
// access_token cookie) and stores the *kernel.AuthContext in locals.
func (am *TokenMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			am.rejected(c, "missing token")
			return errx.Respond(c, iam.ErrUnauthorized())
		}

		claims, err := am.tokenService.ValidateAccessToken(token)
		if err != nil {
			am.rejected(c, "invalid token")
			return errx.Respond(c, err)
		}

		ac := claims.AuthContext()
		c.Locals(localsKey, ac)
		if am.audit != nil {
			am.audit.LogAuthenticated(c.UserContext(), ac.UserID, c.Path(), c.IP())
		}

		return c.Next()
	}
}

// RequireScope rejects callers lacking scope. It must run after
// Authenticate.
func (am *TokenMiddleware) RequireScope(scope string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ac, ok := FromCtx(c)
		if !ok {
			return errx.Respond(c, iam.ErrUnauthorized())
		}

		if !ac.HasScope(scope) {
			if am.audit != nil {
				am.audit.LogAccessDenied(c.UserContext(), ac.UserID, scope, c.Path())
			}
			return errx.Respond(c, iam.ErrAccessDenied().WithDetail("scope", scope))
		}

		return c.Next()
	}
}

// FromCtx returns the auth context stored by Authenticate.
func FromCtx(c *fiber.Ctx) (*kernel.AuthContext, bool) {
	ac, ok := c.Locals(localsKey).(*kernel.AuthContext)
	return ac, ok && ac.IsValid()
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	if h := c.Get(fiber.HeaderAuthorization); h != "" {
		scheme, token, found := strings.Cut(h, " ")
		if found && strings.EqualFold(scheme, "Bearer") && token != "" {
			return token, true
		}
	}
	token := c.Cookies("access_token")
	return token, token != ""
}

func (am *TokenMiddleware) rejected(c *fiber.Ctx, reason string) {
	if am.audit != nil {
		am.audit.LogRejected(c.UserContext(), reason, c.Path(), c.IP())
	}
}
