package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is the application error carried across the service boundary. The
// controllers translate it into a {success:false, message} response; callers
// branch on the sentinel wrapped inside, never on exception type.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error.
func New(code int, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Catalog error taxonomy.
var (
	// ErrValidation covers schema/shape violations; the message is surfaced
	// verbatim to the admin UI.
	ErrValidation = errors.New("validation error")
	// ErrNotFound means a category/brand/product reference did not resolve.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateProduct is an import-time identity collision on slug, SKU,
	// model number or name+brand.
	ErrDuplicateProduct = errors.New("duplicate product")
	// ErrMissingIdentifier means an import row lacks any usable key.
	ErrMissingIdentifier = errors.New("missing identifier")
	// ErrParse covers CSV structural malformation.
	ErrParse = errors.New("parse error")
	// ErrCyclicHierarchy is returned when a category parent walk exceeds the
	// supported depth, which can only happen when parent links form a cycle.
	ErrCyclicHierarchy = errors.New("cyclic category hierarchy")
	// ErrNoResults tells listing callers to return an empty page instead of
	// failing; raised when a filter's category/brand reference does not exist.
	ErrNoResults = errors.New("no results")
)

// Validationf wraps ErrValidation with a field-level message.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrValidation}, args...)...)
}

// NotFoundf wraps ErrNotFound naming the reference that failed to resolve.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrNotFound}, args...)...)
}

// StatusCode maps a taxonomy error to the HTTP status the handlers use.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrParse),
		errors.Is(err, ErrMissingIdentifier):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateProduct):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
