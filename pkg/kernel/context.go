package kernel

import (
	"slices"
	"strings"
)

// AuthContext is the authenticated caller attached to each request.
type AuthContext struct {
	UserID UserID   `json:"user_id"`
	Email  string   `json:"email"`
	Name   string   `json:"name"`
	Scopes []string `json:"scopes"`
}

// IsValid reports whether the context identifies a caller.
func (ac *AuthContext) IsValid() bool {
	return ac != nil && !ac.UserID.IsEmpty()
}

// HasScope reports whether the caller holds scope. "*" grants every
// scope and "users:*" grants "users:read".
func (ac *AuthContext) HasScope(scope string) bool {
	for _, s := range ac.Scopes {
		if s == scope || s == "*" {
			return true
		}
		if prefix, ok := strings.CutSuffix(s, ":*"); ok && strings.HasPrefix(scope, prefix+":") {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the caller holds an administrative scope.
func (ac *AuthContext) IsAdmin() bool {
	return ac.HasScope("*") || ac.HasScope("admin:*")
}

// HasAnyScope reports whether the caller holds at least one of scopes.
func (ac *AuthContext) HasAnyScope(scopes ...string) bool {
	return slices.ContainsFunc(scopes, ac.HasScope)
}

type ContextKey string

const (
	// AuthContextKey stores the *AuthContext in fiber locals and contexts.
	AuthContextKey ContextKey = "auth"
)
