package aior

import (
	"net/http"
	"slices"
)

// verbOrder is the order operations are listed and documented in.
var verbOrder = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

// Resource groups the operations served on one path template, the way a
// handler class groups its verb methods. A resource is either a set of
// HTTP operations or a WebSocket endpoint.
type Resource struct {
	name string
	ops  map[string]*Operation
	ws   WebSocketFactory
}

// NewResource creates a resource from operations built with Get, Post, Put,
// Patch, Delete or RawOperation. It panics if two operations share a method.
func NewResource(name string, ops ...*Operation) *Resource {
	res := &Resource{name: name, ops: make(map[string]*Operation, len(ops))}
	for _, op := range ops {
		if _, dup := res.ops[op.method]; dup {
			panic("aior: resource " + name + " declares " + op.method + " twice")
		}
		res.ops[op.method] = op
	}
	return res
}

// NewWebSocketResource creates a resource that upgrades GET requests to a
// WebSocket session. factory is called once per connection.
func NewWebSocketResource(name string, factory WebSocketFactory) *Resource {
	return &Resource{name: name, ws: factory}
}

// Name returns the resource name used for OpenAPI summaries.
func (res *Resource) Name() string { return res.name }

// IsWebSocket reports whether the resource is a WebSocket endpoint.
func (res *Resource) IsWebSocket() bool { return res.ws != nil }

// Operation returns the operation serving method.
func (res *Resource) Operation(method string) (*Operation, bool) {
	op, ok := res.ops[method]
	return op, ok
}

// Allows reports whether the resource serves method.
func (res *Resource) Allows(method string) bool {
	if res.ws != nil {
		return method == http.MethodGet
	}
	_, ok := res.ops[method]
	return ok
}

// Methods returns the served methods: the standard verbs first, in
// get/post/put/patch/delete order, then any others sorted.
func (res *Resource) Methods() []string {
	if res.ws != nil {
		return []string{http.MethodGet}
	}
	methods := make([]string, 0, len(res.ops))
	for _, m := range verbOrder {
		if _, ok := res.ops[m]; ok {
			methods = append(methods, m)
		}
	}
	var extra []string
	for m := range res.ops {
		if !slices.Contains(verbOrder, m) {
			extra = append(extra, m)
		}
	}
	slices.Sort(extra)
	return append(methods, extra...)
}
