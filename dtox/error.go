package dtox

import (
	"net/http"

	"github.com/Conversia-AI/craftable-dto/errx"
)

// ErrorRegistry holds all error definitions for the dtox package
var ErrorRegistry = errx.NewRegistry("DTOX")

// Error codes definition
var (
	// Normalization errors
	ErrUnsupportedInput     = ErrorRegistry.Register("UNSUPPORTED_INPUT", errx.TypeInternal, http.StatusInternalServerError, "Item cannot be normalized to a mapping")
	ErrInvalidNormalization = ErrorRegistry.Register("INVALID_NORMALIZATION", errx.TypeInternal, http.StatusInternalServerError, "Normalization did not produce a mapping")
	ErrUnexpectedType       = ErrorRegistry.Register("UNEXPECTED_TYPE", errx.TypeInternal, http.StatusInternalServerError, "DTO has an unexpected type")

	// Construction errors
	ErrMissingField   = ErrorRegistry.Register("MISSING_FIELD", errx.TypeValidation, http.StatusBadRequest, "Required field is missing")
	ErrTypeConversion = ErrorRegistry.Register("TYPE_CONVERSION", errx.TypeBadRequest, http.StatusBadRequest, "Type conversion failed")
	ErrInvalidTarget  = ErrorRegistry.Register("INVALID_TARGET", errx.TypeInternal, http.StatusInternalServerError, "Target must be a non-nil pointer to a struct")
)

// IsUnsupportedInput reports whether err is an unsupported-input failure
func IsUnsupportedInput(err error) bool {
	return errx.IsCode(err, ErrUnsupportedInput)
}

// IsInvalidNormalization reports whether a normalization step returned a non-mapping
func IsInvalidNormalization(err error) bool {
	return errx.IsCode(err, ErrInvalidNormalization)
}

// IsConstructionError reports whether err was raised while hydrating a DTO
func IsConstructionError(err error) bool {
	return errx.IsCode(err, ErrMissingField) || errx.IsCode(err, ErrTypeConversion)
}
