package users

import (
	"net/http"

	"github.com/Abraxas-365/userdesk/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("USERS")

var (
	ErrUserNotFound      = ErrRegistry.Register("USER_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "User not found")
	ErrInvalidQuery      = ErrRegistry.Register("INVALID_QUERY", errx.TypeValidation, http.StatusBadRequest, "Invalid user query")
	ErrUnsortableColumn  = ErrRegistry.Register("UNSORTABLE_COLUMN", errx.TypeValidation, http.StatusBadRequest, "Users cannot be sorted by this column")
	ErrRemoteFetchFailed = ErrRegistry.Register("REMOTE_FETCH_FAILED", errx.TypeExternal, http.StatusBadGateway, "Failed to fetch users from the remote directory")
	ErrReadOnly          = ErrRegistry.Register("READ_ONLY", errx.TypeBusiness, 0, "User source is read-only")
	ErrStorage           = ErrRegistry.Register("STORAGE", errx.TypeInternal, 0, "User storage failure")
)

func NewUserNotFound(id string) *errx.Error {
	return ErrRegistry.New(ErrUserNotFound).WithDetail("user_id", id)
}
