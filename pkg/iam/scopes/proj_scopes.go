package scopes

// ============================================================================
// DOMAIN-SPECIFIC SCOPES - user desk
// ============================================================================

const (
	UsersRead    = "users:read"
	UsersExport  = "users:export"
	ProcessWrite = "process:write"
	ProcessRead  = "process:read"
	Admin        = "admin:*"
)

// DomainScopeDescriptions provides descriptions for domain scopes
var DomainScopeDescriptions = map[string]string{
	UsersRead:    "List and view users",
	UsersExport:  "Export users as CSV",
	ProcessWrite: "Submit and cancel processing jobs",
	ProcessRead:  "View processing jobs",
	Admin:        "Full access",
}

// DomainScopeGroups defines domain-specific role groupings
var DomainScopeGroups = map[string][]string{
	"viewer":   {UsersRead, ProcessRead},
	"operator": {UsersRead, UsersExport, ProcessRead, ProcessWrite},
	"admin":    {"*"},
}

// ForGroup returns the scopes of a named group, or nil if it is unknown.
func ForGroup(name string) []string {
	return DomainScopeGroups[name]
}

// IsKnown reports whether scope is part of the catalogue.
func IsKnown(scope string) bool {
	if scope == "*" {
		return true
	}
	_, ok := DomainScopeDescriptions[scope]
	return ok
}
