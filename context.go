package aior

import (
	"context"
	"net/http"
)

type contextKey[T any] struct{}

type pathParamsKey struct{}

type routeKey struct{}

type routeSlotKey struct{}

// routeSlot lets middleware running before route matching observe which
// route served the request.
type routeSlot struct {
	template string
}

func withRouteSlot(ctx context.Context) (context.Context, *routeSlot) {
	if slot, ok := ctx.Value(routeSlotKey{}).(*routeSlot); ok {
		return ctx, slot
	}
	slot := &routeSlot{}
	return context.WithValue(ctx, routeSlotKey{}, slot), slot
}

// WithPathParams returns a context carrying path parameters captured by a
// host router. Handlers obtained from Router.RouteHandler use them instead
// of matching the request path again.
func WithPathParams(ctx context.Context, params map[string]string) context.Context {
	return context.WithValue(ctx, pathParamsKey{}, params)
}

// PathParams returns the path parameters bound for the current request.
func PathParams(ctx context.Context) (map[string]string, bool) {
	p, ok := ctx.Value(pathParamsKey{}).(map[string]string)
	return p, ok
}

// RouteTemplate returns the template of the route serving the current request.
func RouteTemplate(ctx context.Context) string {
	if r, ok := ctx.Value(routeKey{}).(*Route); ok {
		return r.Template.String()
	}
	return ""
}

func withRoute(ctx context.Context, route *Route, params map[string]string) context.Context {
	if slot, ok := ctx.Value(routeSlotKey{}).(*routeSlot); ok {
		slot.template = route.Template.String()
	}
	ctx = context.WithValue(ctx, routeKey{}, route)
	return WithPathParams(ctx, params)
}

// SetValue stores a typed value in the request context. For use in middleware.
func SetValue[T any](r *http.Request, val T) *http.Request {
	ctx := context.WithValue(r.Context(), contextKey[T]{}, val)
	return r.WithContext(ctx)
}

// GetValue retrieves a typed value from the request context. For use in handlers.
func GetValue[T any](ctx context.Context) (T, bool) {
	val, ok := ctx.Value(contextKey[T]{}).(T)
	return val, ok
}
