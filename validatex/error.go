package validatex

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/Conversia-AI/craftable-dto/errx"
)

var (
	ErrorRegistry = errx.NewRegistry("VALIDATEX")

	ErrValidationFailed  = ErrorRegistry.Register("VALIDATION_FAILED", errx.TypeValidation, http.StatusBadRequest, "Validation failed")
	ErrRequiredField     = ErrorRegistry.Register("REQUIRED_FIELD", errx.TypeValidation, http.StatusBadRequest, "Field is required")
	ErrTooShort          = ErrorRegistry.Register("TOO_SHORT", errx.TypeValidation, http.StatusBadRequest, "Value is too short")
	ErrTooLong           = ErrorRegistry.Register("TOO_LONG", errx.TypeValidation, http.StatusBadRequest, "Value is too long")
	ErrBelowMin          = ErrorRegistry.Register("BELOW_MIN", errx.TypeValidation, http.StatusBadRequest, "Value below minimum")
	ErrAboveMax          = ErrorRegistry.Register("ABOVE_MAX", errx.TypeValidation, http.StatusBadRequest, "Value above maximum")
	ErrPatternMismatch   = ErrorRegistry.Register("PATTERN_MISMATCH", errx.TypeValidation, http.StatusBadRequest, "Value doesn't match pattern")
	ErrInvalidNumeric    = ErrorRegistry.Register("INVALID_NUMERIC", errx.TypeValidation, http.StatusBadRequest, "Value is not numeric")
	ErrInvalidEmail      = ErrorRegistry.Register("INVALID_EMAIL", errx.TypeValidation, http.StatusBadRequest, "Invalid email format")
	ErrInvalidURL        = ErrorRegistry.Register("INVALID_URL", errx.TypeValidation, http.StatusBadRequest, "Invalid URL format")
	ErrInvalidOption     = ErrorRegistry.Register("INVALID_OPTION", errx.TypeValidation, http.StatusBadRequest, "Invalid option")
	ErrInvalidUUID       = ErrorRegistry.Register("INVALID_UUID", errx.TypeValidation, http.StatusBadRequest, "Invalid UUID format")
	ErrInvalidStruct     = ErrorRegistry.Register("INVALID_STRUCT", errx.TypeBadRequest, http.StatusBadRequest, "Value is not a struct")
	ErrInvalidValidation = ErrorRegistry.Register("INVALID_VALIDATION", errx.TypeInternal, http.StatusInternalServerError, "Invalid validation rule")
)

// ValidationError describes one failed rule on one field
type ValidationError struct {
	Field   string
	Rule    string
	Param   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed on field '%s': %s", e.Field, e.Message)
}

// ValidationErrors collects every failure of one validation run
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	switch len(e) {
	case 0:
		return "no validation errors"
	case 1:
		return e[0].Error()
	}

	lines := make([]string, len(e))
	for i, ve := range e {
		lines[i] = "  - " + ve.Error()
	}
	return fmt.Sprintf("%d validation errors:\n%s", len(e), strings.Join(lines, "\n"))
}

// Has reports whether field failed any rule
func (e ValidationErrors) Has(field string) bool {
	for _, ve := range e {
		if ve.Field == field {
			return true
		}
	}
	return false
}

// Get returns the failures of field
func (e ValidationErrors) Get(field string) []ValidationError {
	var out []ValidationError
	for _, ve := range e {
		if ve.Field == field {
			out = append(out, ve)
		}
	}
	return out
}

// ByRule returns the failures of rule across all fields
func (e ValidationErrors) ByRule(rule string) []ValidationError {
	var out []ValidationError
	for _, ve := range e {
		if ve.Rule == rule {
			out = append(out, ve)
		}
	}
	return out
}

// ToErrx converts the failures into a single VALIDATEX_VALIDATION_FAILED error.
// A single failure keeps the rule's own code.
func (e ValidationErrors) ToErrx() *errx.Error {
	if len(e) == 0 {
		return nil
	}

	code := ErrValidationFailed
	if len(e) == 1 {
		code = codeForRule(e[0].Rule)
	}

	fields := make(map[string][]map[string]any)
	for _, ve := range e {
		info := map[string]any{
			"rule":    ve.Rule,
			"message": ve.Message,
			// stringified so arbitrary values stay serializable
			"value": fmt.Sprintf("%v", ve.Value),
		}
		if ve.Param != "" {
			info["param"] = ve.Param
		}
		fields[ve.Field] = append(fields[ve.Field], info)
	}

	return ErrorRegistry.New(code).WithDetails(map[string]any{
		"errors":      fields,
		"error_count": len(e),
		"field_count": len(fields),
	})
}

// NewValidationError builds a failure, using the rule's default message when message is empty
func NewValidationError(field, rule, param string, value any, message string) ValidationError {
	if message == "" {
		message = messageForRule(rule, param)
	}
	return ValidationError{
		Field:   field,
		Rule:    rule,
		Param:   param,
		Value:   value,
		Message: message,
	}
}

var (
	messagesMu     sync.RWMutex
	customMessages = map[string]string{}
)

// SetCustomErrorMessage overrides the default message of rule
func SetCustomErrorMessage(rule, message string) {
	messagesMu.Lock()
	defer messagesMu.Unlock()
	customMessages[rule] = message
}

func messageForRule(rule, param string) string {
	messagesMu.RLock()
	msg, ok := customMessages[rule]
	messagesMu.RUnlock()
	if ok {
		return msg
	}

	switch rule {
	case RuleRequired:
		return "is required"
	case RuleMinLength:
		return fmt.Sprintf("must be at least %s characters", param)
	case RuleMaxLength:
		return fmt.Sprintf("must be at most %s characters", param)
	case RuleMin:
		return fmt.Sprintf("must be greater than or equal to %s", param)
	case RuleMax:
		return fmt.Sprintf("must be less than or equal to %s", param)
	case RulePattern:
		return "must match the required pattern"
	case RuleNumeric:
		return "must be a number"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "uuid":
		return "must be a valid UUID"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", param)
	default:
		return fmt.Sprintf("failed validation: %s", rule)
	}
}

func codeForRule(rule string) errx.Code {
	switch rule {
	case RuleRequired:
		return ErrRequiredField
	case RuleMinLength:
		return ErrTooShort
	case RuleMaxLength:
		return ErrTooLong
	case RuleMin:
		return ErrBelowMin
	case RuleMax:
		return ErrAboveMax
	case RulePattern:
		return ErrPatternMismatch
	case RuleNumeric:
		return ErrInvalidNumeric
	case "email":
		return ErrInvalidEmail
	case "url":
		return ErrInvalidURL
	case "uuid":
		return ErrInvalidUUID
	case "oneof":
		return ErrInvalidOption
	default:
		return ErrValidationFailed
	}
}
