package validatex

import (
	"errors"
	"net/http"

	"github.com/Conversia-AI/craftable-dto/dtox"
	"github.com/Conversia-AI/craftable-dto/errx"
)

// ValidationErrorsToHTTP writes err as an errx JSON response
func ValidationErrorsToHTTP(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		verrs.ToErrx().ToHTTP(w)
		return
	}

	var xerr *errx.Error
	if errors.As(err, &xerr) {
		xerr.ToHTTP(w)
		return
	}

	ErrorRegistry.NewWithMessage(ErrValidationFailed, err.Error()).ToHTTP(w)
}

// ValidateRequest validates dto and writes the failure response when invalid.
// It reports whether dto passed.
func ValidateRequest(w http.ResponseWriter, dto dtox.DTO) bool {
	if err := ValidateDTO(dto); err != nil {
		ValidationErrorsToHTTP(w, err)
		return false
	}
	return true
}
