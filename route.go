package aior

import (
	"reflect"
)

// ResponseMarker tags a documented return union. Markers are recorded on the
// operation but do not add response entries to the OpenAPI document.
type ResponseMarker string

// Recognized return markers.
const (
	BadRequest ResponseMarker = "bad_request"
	Created    ResponseMarker = "created"
)

// returnDoc is the documented return annotation of an operation.
type returnDoc struct {
	typ     reflect.Type // nil for ReturnsNothing
	markers []ResponseMarker
}

// RouteOption configures an operation at construction time.
type RouteOption func(*Operation)

// WithSummary overrides the derived OpenAPI summary.
func WithSummary(s string) RouteOption {
	return func(op *Operation) {
		op.summary = s
	}
}

// WithDescription sets the OpenAPI description.
func WithDescription(d string) RouteOption {
	return func(op *Operation) {
		op.desc = d
	}
}

// WithTags adds OpenAPI tags.
func WithTags(tags ...string) RouteOption {
	return func(op *Operation) {
		op.tags = append(op.tags, tags...)
	}
}

// WithDeprecated marks the operation as deprecated in the OpenAPI document.
func WithDeprecated() RouteOption {
	return func(op *Operation) {
		op.deprecated = true
	}
}

// WithOperationID overrides the derived operationId.
func WithOperationID(id string) RouteOption {
	return func(op *Operation) {
		op.operationID = id
	}
}

// WithBodyLimit caps the request body size in bytes; larger bodies get 413.
func WithBodyLimit(maxBytes int64) RouteOption {
	return func(op *Operation) {
		op.bodyLimit = maxBytes
	}
}

// Returns documents that the operation answers with a JSON-encoded T. It is
// used for OpenAPI generation only and never enforced. Markers such as
// Created or BadRequest may be listed to mirror a return union.
func Returns[T any](markers ...ResponseMarker) RouteOption {
	return func(op *Operation) {
		op.returns = &returnDoc{typ: reflect.TypeFor[T](), markers: markers}
	}
}

// ReturnsNothing documents a JSON response without a body schema.
func ReturnsNothing(markers ...ResponseMarker) RouteOption {
	return func(op *Operation) {
		op.returns = &returnDoc{markers: markers}
	}
}
