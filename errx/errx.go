package errx

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/goccy/go-json"
)

// Type classifies an error independently of its code
type Type string

const (
	TypeValidation    Type = "VALIDATION"
	TypeBadRequest    Type = "BAD_REQUEST"
	TypeNotFound      Type = "NOT_FOUND"
	TypeInternal      Type = "INTERNAL"
	TypeSystem        Type = "SYSTEM"
	TypeExternal      Type = "EXTERNAL"
	TypeAuthorization Type = "AUTHORIZATION"
	TypeUnavailable   Type = "UNAVAILABLE"
	TypeRateLimit     Type = "RATE_LIMIT"
	TypeTimeout       Type = "TIMEOUT"
	TypeConflict      Type = "CONFLICT"
)

// Code identifies a registered error, e.g. "DTOX_UNSUPPORTED_INPUT"
type Code string

// Error is the structured error carried across package boundaries
type Error struct {
	Code       Code           `json:"code"`
	Type       Type           `json:"type"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	HTTPStatus int            `json:"-"`
	Cause      error          `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap exposes the cause to errors.Is / errors.As
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error with the same code
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// WithDetail adds a single detail and returns the error for chaining
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithDetails merges details into the error
func (e *Error) WithDetails(details map[string]any) *Error {
	for k, v := range details {
		e.WithDetail(k, v)
	}
	return e
}

// Status returns the HTTP status, defaulting to 500
func (e *Error) Status() int {
	if e.HTTPStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.HTTPStatus
}

// ToHTTP writes the error as a JSON response
func (e *Error) ToHTTP(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status())
	_ = json.NewEncoder(w).Encode(map[string]any{"error": e})
}

type definition struct {
	typ     Type
	status  int
	message string
}

// Registry holds the error definitions of one package
type Registry struct {
	prefix string
	mu     sync.RWMutex
	defs   map[Code]definition
}

// NewRegistry creates a registry whose codes are prefixed with prefix
func NewRegistry(prefix string) *Registry {
	return &Registry{
		prefix: strings.ToUpper(prefix),
		defs:   make(map[Code]definition),
	}
}

// Register adds a definition and returns its fully qualified code
func (r *Registry) Register(code string, typ Type, status int, message string) Code {
	full := Code(code)
	if r.prefix != "" {
		full = Code(r.prefix + "_" + code)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[full]; exists {
		panic(fmt.Sprintf("errx: duplicate error code %s", full))
	}
	r.defs[full] = definition{typ: typ, status: status, message: message}
	return full
}

// New creates an error from a registered code
func (r *Registry) New(code Code) *Error {
	r.mu.RLock()
	def, ok := r.defs[code]
	r.mu.RUnlock()
	if !ok {
		return &Error{
			Code:       code,
			Type:       TypeInternal,
			Message:    "unregistered error code",
			HTTPStatus: http.StatusInternalServerError,
		}
	}
	return &Error{
		Code:       code,
		Type:       def.typ,
		Message:    def.message,
		HTTPStatus: def.status,
	}
}

// NewWithCause creates an error from a registered code wrapping cause
func (r *Registry) NewWithCause(code Code, cause error) *Error {
	e := r.New(code)
	e.Cause = cause
	return e
}

// NewWithMessage creates an error from a registered code with a custom message
func (r *Registry) NewWithMessage(code Code, message string) *Error {
	e := r.New(code)
	e.Message = message
	return e
}

// New creates an unregistered error
func New(message string, typ Type) *Error {
	return &Error{
		Code:       Code(typ),
		Type:       typ,
		Message:    message,
		HTTPStatus: statusForType(typ),
	}
}

// Wrap wraps err into an *Error. An *Error is returned as is.
func Wrap(err error, message string, typ Type) *Error {
	if err == nil {
		return nil
	}
	var xerr *Error
	if errors.As(err, &xerr) {
		return xerr
	}
	e := New(message, typ)
	e.Cause = err
	return e
}

// IsCode reports whether any *Error in err's chain carries code
func IsCode(err error, code Code) bool {
	var xerr *Error
	for err != nil {
		if !errors.As(err, &xerr) {
			return false
		}
		if xerr.Code == code {
			return true
		}
		err = xerr.Cause
	}
	return false
}

// IsType reports whether err is an *Error of the given type
func IsType(err error, typ Type) bool {
	var xerr *Error
	return errors.As(err, &xerr) && xerr.Type == typ
}

func statusForType(typ Type) int {
	switch typ {
	case TypeValidation, TypeBadRequest:
		return http.StatusBadRequest
	case TypeNotFound:
		return http.StatusNotFound
	case TypeAuthorization:
		return http.StatusUnauthorized
	case TypeConflict:
		return http.StatusConflict
	case TypeRateLimit:
		return http.StatusTooManyRequests
	case TypeTimeout:
		return http.StatusGatewayTimeout
	case TypeUnavailable:
		return http.StatusServiceUnavailable
	case TypeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
