package aior

import "reflect"

// Location is the request part a parameter is bound from.
type Location string

// Request parts.
const (
	InBody   Location = "body"
	InQuery  Location = "query"
	InHeader Location = "header"
	InPath   Location = "path"
)

// Body binds the JSON request body to T.
type Body[T any] struct{ Value T }

// Query binds the query string to T; T's field names are the accepted
// query parameter names.
type Query[T any] struct{ Value T }

// Header binds request headers to T. Header names are matched case-insensitively
// against T's wire names, so `json:"Content-Type"` aliases a header.
type Header[T any] struct{ Value T }

// Path binds the placeholders captured by the route template to T.
type Path[T any] struct{ Value T }

// marker is implemented by the four binding wrappers.
type marker interface {
	location() Location
	schemaType() reflect.Type
}

func (Body[T]) location() Location   { return InBody }
func (Query[T]) location() Location  { return InQuery }
func (Header[T]) location() Location { return InHeader }
func (Path[T]) location() Location   { return InPath }

func (Body[T]) schemaType() reflect.Type   { return reflect.TypeFor[T]() }
func (Query[T]) schemaType() reflect.Type  { return reflect.TypeFor[T]() }
func (Header[T]) schemaType() reflect.Type { return reflect.TypeFor[T]() }
func (Path[T]) schemaType() reflect.Type   { return reflect.TypeFor[T]() }

var markerType = reflect.TypeFor[marker]()
