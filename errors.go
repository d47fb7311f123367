package aior

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors for routing and registration.
var (
	ErrNotFound           = errors.New("route not found")
	ErrMethodNotAllowed   = errors.New("method not allowed")
	ErrDuplicateRoute     = errors.New("duplicate route")
	ErrInvalidTemplate    = errors.New("invalid path template")
	ErrInvalidRequestType = errors.New("invalid request type")
	ErrInvalidSchema      = errors.New("invalid schema type")
)

// Error kinds reported in FieldError.Type.
const (
	KindMissing    = "value_error.missing"
	KindJSONDecode = "value_error.jsondecode"
	KindDatetime   = "value_error.datetime"
	KindDuration   = "value_error.duration"
	KindBytes      = "value_error.bytes"
	KindNone       = "type_error.none.not_allowed"
	KindInteger    = "type_error.integer"
	KindFloat      = "type_error.float"
	KindBool       = "type_error.bool"
	KindString     = "type_error.str"
	KindList       = "type_error.list"
	KindDict       = "type_error.dict"
)

const (
	constraintKindPrefix = "value_error."
	rootLoc              = "__root__"
	bodyLoc              = "body"
)

// StatusCoder is implemented by errors or responses that carry an HTTP status code.
type StatusCoder interface {
	StatusCode() int
}

// FieldError describes a single field that failed to parse or validate.
// Loc holds field names (string) and list indexes (int) from the outermost
// value inward.
type FieldError struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// ValidationErrors is the ordered list of field failures for one request.
// It is written to the client as a 400 JSON array.
//
//nolint:errname // mirrors the wire format name
type ValidationErrors []FieldError

// Error joins every entry as "loc: msg".
func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, fe := range v {
		parts[i] = formatLoc(fe.Loc) + ": " + fe.Msg
	}
	return strings.Join(parts, "; ")
}

// StatusCode returns 400.
func (v ValidationErrors) StatusCode() int { return http.StatusBadRequest }

func formatLoc(loc []any) string {
	parts := make([]string, len(loc))
	for i, l := range loc {
		parts[i] = fmt.Sprint(l)
	}
	return strings.Join(parts, ".")
}

// prefixed returns a copy of errs with prefix prepended to every Loc.
func (v ValidationErrors) prefixed(prefix ...any) ValidationErrors {
	if len(prefix) == 0 {
		return v
	}
	out := make(ValidationErrors, len(v))
	for i, fe := range v {
		loc := make([]any, 0, len(prefix)+len(fe.Loc))
		loc = append(loc, prefix...)
		loc = append(loc, fe.Loc...)
		out[i] = FieldError{Loc: loc, Msg: fe.Msg, Type: fe.Type}
	}
	return out
}

// ProblemDetail is an RFC 9457 problem details response.
//
//nolint:errname // RFC 9457 standard name
type ProblemDetail struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title,omitempty"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// Error returns the detail message (or title if detail is empty).
func (p *ProblemDetail) Error() string {
	if p.Detail != "" {
		return p.Detail
	}
	return p.Title
}

// StatusCode returns the HTTP status code.
func (p *ProblemDetail) StatusCode() int { return p.Status }

// HTTPError is an error with an HTTP status code.
type HTTPError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Error returns the error message.
func (e *HTTPError) Error() string { return e.Message }

// StatusCode returns the HTTP status code.
func (e *HTTPError) StatusCode() int { return e.Status }

// Error returns an error with the given HTTP status code and message.
func Error(status int, message string) error {
	return &HTTPError{Status: status, Message: message}
}

// Errorf returns a formatted error with the given HTTP status code.
func Errorf(status int, format string, args ...any) error {
	return &HTTPError{Status: status, Message: fmt.Sprintf(format, args...)}
}

// ErrorStatus extracts the HTTP status code from an error. Routing sentinels
// map to 404 and 405; anything else that does not implement StatusCoder is a 500.
func ErrorStatus(err error) int {
	var sc StatusCoder
	switch {
	case errors.As(err, &sc):
		return sc.StatusCode()
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}
