package bindx

import (
	"net/http"

	"github.com/Conversia-AI/craftable-dto/errx"
)

var (
	ErrorRegistry = errx.NewRegistry("BINDX")

	ErrParseError      = ErrorRegistry.Register("PARSE_ERROR", errx.TypeBadRequest, http.StatusBadRequest, "Malformed request body")
	ErrReadFailed      = ErrorRegistry.Register("READ_FAILED", errx.TypeBadRequest, http.StatusBadRequest, "Failed to read request body")
	ErrBodyTooLarge    = ErrorRegistry.Register("BODY_TOO_LARGE", errx.TypeBadRequest, http.StatusRequestEntityTooLarge, "Request body too large")
	ErrUnknownSource   = ErrorRegistry.Register("UNKNOWN_SOURCE", errx.TypeInternal, http.StatusInternalServerError, "Unknown request data source")
	ErrInvalidArgument = ErrorRegistry.Register("INVALID_ARGUMENT", errx.TypeInternal, http.StatusInternalServerError, "Invalid binding declaration")
	ErrInvalidOption   = ErrorRegistry.Register("INVALID_OPTION", errx.TypeInternal, http.StatusInternalServerError, "Invalid binding option")
	ErrEncodeFailed    = ErrorRegistry.Register("ENCODE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to encode response")
)

// IsParseError reports whether err is a malformed body failure
func IsParseError(err error) bool {
	return errx.IsCode(err, ErrParseError)
}
