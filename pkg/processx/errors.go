package processx

import "github.com/Abraxas-365/userdesk/pkg/errx"

// ErrRegistry holds the error codes raised by the processor.
var ErrRegistry = errx.NewRegistry("PROCESS")

var (
	ErrInvalidInputKind   = ErrRegistry.Register("INVALID_INPUT_KIND", errx.TypeValidation, 0, "numbers must be an array")
	ErrInvalidElementKind = ErrRegistry.Register("INVALID_ELEMENT_KIND", errx.TypeValidation, 0, "numbers must be an array of numbers")
	ErrCancelled          = ErrRegistry.Register("CANCELLED", errx.TypeCancelled, 0, "aborted")
)

// IsValidationError reports whether err is one of the input validation
// failures. Validation failures never succeed on retry.
func IsValidationError(err error) bool {
	return errx.IsCode(err, ErrInvalidInputKind) || errx.IsCode(err, ErrInvalidElementKind)
}

// IsCancelled reports whether err is a cancellation observed by the
// processor.
func IsCancelled(err error) bool {
	return errx.IsCode(err, ErrCancelled)
}
