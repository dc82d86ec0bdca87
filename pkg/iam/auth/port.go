package auth

import (
	"context"

	"github.com/Abraxas-365/userdesk/pkg/kernel"
)

// TokenService defines the contract for JWT token management
type TokenService interface {
	GenerateAccessToken(userID kernel.UserID, claims map[string]any) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
}

// AuditService records authentication outcomes.
type AuditService interface {
	LogAuthenticated(ctx context.Context, userID kernel.UserID, path string, ip string)
	LogRejected(ctx context.Context, reason string, path string, ip string)
	LogAccessDenied(ctx context.Context, userID kernel.UserID, scope string, path string)
}
