// Package iam holds the identity pieces of the service: the shared
// authorization errors, the scope catalogue (iam/scopes) and JWT bearer
// authentication (iam/auth).
//
// Tokens are minted with the `userdesk token` command or by
// [auth.JWTService.GenerateAccessToken] and checked by
// [auth.TokenMiddleware]:
//
//	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.Issuer)
//	mw := auth.NewAuthMiddleware(jwtSvc, authinfra.NewLogxAuditService())
//	usersHandlers.RegisterRoutes(app,
//		[]fiber.Handler{mw.Authenticate(), mw.RequireScope(scopes.UsersRead)},
//		mw.RequireScope(scopes.UsersExport),
//	)
package iam
