package errx

import (
	"github.com/gofiber/fiber/v2"
)

// HTTPErrorResponse represents a standard HTTP error response
type HTTPErrorResponse struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Type       string         `json:"type"`
	Details    map[string]any `json:"details,omitempty"`
	StatusCode int            `json:"status_code"`
	RequestID  string         `json:"request_id,omitempty"`
}

// ToHTTPResponse converts an Error to an HTTPErrorResponse
func (e *Error) ToHTTPResponse() HTTPErrorResponse {
	resp := HTTPErrorResponse{
		Code:       e.Code,
		Message:    e.Message,
		Type:       string(e.Type),
		StatusCode: e.HTTPStatus,
	}
	if len(e.Details) > 0 {
		resp.Details = e.Details
	}
	return resp
}

// Respond writes err as a JSON response on the fiber context. Errors that
// are not *Error are reported as internal errors.
func Respond(c *fiber.Ctx, err error) error {
	var customErr *Error
	if !As(err, &customErr) {
		var fe *fiber.Error
		if As(err, &fe) {
			customErr = New(fe.Message, TypeInternal)
			customErr.HTTPStatus = fe.Code
		} else {
			customErr = Wrap(err, "An unexpected error occurred", TypeInternal)
		}
	}

	resp := customErr.ToHTTPResponse()
	resp.RequestID = c.GetRespHeader(fiber.HeaderXRequestID, c.Get(fiber.HeaderXRequestID))
	return c.Status(customErr.HTTPStatus).JSON(resp)
}
