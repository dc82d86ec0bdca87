package errx

// Validation creates a validation error outside any registry.
func Validation(message string) *Error {
	return New(message, TypeValidation)
}

// NotFound creates a not found error that belongs to no registry, such
// as an unknown route.
func NotFound(message string) *Error {
	return New(message, TypeNotFound)
}
