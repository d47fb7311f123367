package aior

import (
	"net/http"
	"reflect"
)

// Test-only exports for internal functions.
var (
	OperationID      = operationID
	OperationSummary = operationSummary
	SplitWords       = splitWords
	SnakeCase        = snakeCase
	FieldTitle       = fieldTitle
	LocFromNamespace = locFromNamespace
)

// WriteResponse serializes resp the way the router does.
func WriteResponse(w http.ResponseWriter, resp Response) error {
	return resp.write(w)
}

// Coerce converts raw to t with the binder's rules.
func Coerce(t reflect.Type, raw any) (any, ValidationErrors) {
	v, errs := coerce(t, raw)
	if len(errs) > 0 {
		return nil, errs
	}
	return v.Interface(), nil
}

// Allowed lists the methods served on path.
func (rt *RouteTable) Allowed(path string) []string {
	return rt.allowed(path)
}
