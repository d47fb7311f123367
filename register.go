package aior

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
)

// Operation is one verb of a resource: the typed handler plus the binding
// descriptor and documentation computed when it was built.
type Operation struct {
	method string

	summary     string
	desc        string
	tags        []string
	deprecated  bool
	operationID string
	bodyLimit   int64
	returns     *returnDoc

	req    *requestSpec
	invoke func(ctx context.Context, req reflect.Value) (Response, error)
	raw    RawHandler
}

// Method returns the HTTP method the operation serves.
func (op *Operation) Method() string { return op.method }

// Markers returns the return markers recorded by Returns or ReturnsNothing.
func (op *Operation) Markers() []ResponseMarker {
	if op.returns == nil {
		return nil
	}
	return op.returns.markers
}

// newOperation is the internal generic constructor. It panics if Req is not
// a valid request type, the same way http.ServeMux panics on bad patterns.
func newOperation[Req any](method string, h Handler[Req], opts ...RouteOption) *Operation {
	spec, err := newRequestSpec(reflect.TypeFor[Req]())
	if err != nil {
		panic(fmt.Sprintf("aior: %s operation: %v", method, err))
	}

	op := &Operation{
		method: method,
		req:    spec,
		invoke: func(ctx context.Context, req reflect.Value) (Response, error) {
			return h(ctx, req.Interface().(*Req))
		},
	}
	for _, opt := range opts {
		opt(op)
	}
	return op
}

// Get builds a GET operation.
func Get[Req any](h Handler[Req], opts ...RouteOption) *Operation {
	return newOperation(http.MethodGet, h, opts...)
}

// Post builds a POST operation.
func Post[Req any](h Handler[Req], opts ...RouteOption) *Operation {
	return newOperation(http.MethodPost, h, opts...)
}

// Put builds a PUT operation.
func Put[Req any](h Handler[Req], opts ...RouteOption) *Operation {
	return newOperation(http.MethodPut, h, opts...)
}

// Patch builds a PATCH operation.
func Patch[Req any](h Handler[Req], opts ...RouteOption) *Operation {
	return newOperation(http.MethodPatch, h, opts...)
}

// Delete builds a DELETE operation.
func Delete[Req any](h Handler[Req], opts ...RouteOption) *Operation {
	return newOperation(http.MethodDelete, h, opts...)
}
