package aior

import "net/http"

// RawRequest can be embedded in a request type to get access to the
// underlying *http.Request alongside the bound markers.
type RawRequest struct {
	Request *http.Request
}

// RawHandler is an escape hatch for endpoints that need the raw http
// primitives.
type RawHandler func(w http.ResponseWriter, r *http.Request)

// RawOperation wraps a plain http handler. Raw operations skip binding,
// validation and serialization, and are left out of the OpenAPI document.
func RawOperation(method string, h RawHandler) *Operation {
	return &Operation{method: method, raw: h}
}
