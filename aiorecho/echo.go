// Package aiorecho mounts an aior route table on a labstack/echo server.
// Echo owns path matching; aior still binds, validates and serializes.
package aiorecho

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/labstack/echo/v4"

	"github.com/dephin/aior"
)

// Registrar is satisfied by *echo.Echo and *echo.Group.
type Registrar interface {
	Add(method, path string, handler echo.HandlerFunc, middleware ...echo.MiddlewareFunc) *echo.Route
}

var placeholder = regexp.MustCompile(`\{([^/{}]+)\}`)

// Path converts an aior template such as /users/{user_id} to the echo form
// /users/:user_id.
func Path(t aior.Template) string {
	return placeholder.ReplaceAllString(t.String(), ":$1")
}

// Mount registers every route of r on e, one echo route per served method.
// The router's middleware runs inside echo's.
func Mount(e Registrar, r *aior.Router, mw ...echo.MiddlewareFunc) []*echo.Route {
	var routes []*echo.Route
	for _, route := range r.Routes() {
		h := Handler(r, route)
		path := Path(route.Template)
		for _, method := range route.Resource.Methods() {
			routes = append(routes, e.Add(method, path, h, mw...))
		}
	}
	return routes
}

// Handler adapts one aior route to an echo handler. Echo's captured path
// parameters are passed on with aior.WithPathParams.
func Handler(r *aior.Router, route *aior.Route) echo.HandlerFunc {
	h := r.RouteHandler(route)
	names := route.Template.Params()
	return func(c echo.Context) error {
		params := make(map[string]string, len(names))
		for _, n := range names {
			params[n] = c.Param(n)
		}
		req := c.Request()
		h.ServeHTTP(c.Response(), req.WithContext(aior.WithPathParams(req.Context(), params)))
		return nil
	}
}

// ErrorHandler renders echo's own errors (unknown routes, wrong methods,
// middleware failures) in the same problem+json shape aior uses.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok && s != "" {
			msg = s
		}
		err = aior.Error(he.Code, msg)
	}
	aior.WriteError(c.Response(), err)
}
