package aior

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Router is the central type that holds the route table, middleware, and
// configuration. It implements http.Handler.
type Router struct {
	table      RouteTable
	middleware []Middleware

	title   string
	version string

	validator    Validator
	errorHandler ErrorHandler
	tracer       SpanStarter
	logger       *slog.Logger
	upgrader     *websocket.Upgrader
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithTitle sets the API title (used in the OpenAPI document).
func WithTitle(title string) RouterOption {
	return func(r *Router) {
		r.title = title
	}
}

// WithVersion sets the API version (used in the OpenAPI document).
func WithVersion(version string) RouterOption {
	return func(r *Router) {
		r.version = version
	}
}

// WithValidator sets a global request validator.
func WithValidator(v Validator) RouterOption {
	return func(r *Router) {
		r.validator = v
	}
}

// ErrorHandler is a custom error response writer. It receives errors
// returned by handlers and routing failures; validation errors are always
// written as a 400 JSON array before it is consulted.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// WithErrorHandler sets a custom error handler for the router.
func WithErrorHandler(h ErrorHandler) RouterOption {
	return func(r *Router) {
		r.errorHandler = h
	}
}

// SpanStarter is a tracing hook interface for creating spans per request.
// See package aiorotel for an OpenTelemetry implementation.
type SpanStarter interface {
	StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, func())
}

// WithTracer sets a tracing hook for the router.
func WithTracer(s SpanStarter) RouterOption {
	return func(r *Router) {
		r.tracer = s
	}
}

// WithLogger sets the logger used for failures that cannot be reported to
// the client, such as WebSocket upgrade errors. Defaults to slog.Default().
func WithLogger(l *slog.Logger) RouterOption {
	return func(r *Router) {
		r.logger = l
	}
}

// New creates a new Router with the given options.
func New(opts ...RouterOption) *Router {
	r := &Router{
		title:    "Aior API",
		version:  "0.1.0",
		logger:   slog.Default(),
		upgrader: defaultUpgrader(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Use adds middleware to the router. Middleware is applied in the order added.
func (r *Router) Use(mw ...Middleware) {
	r.middleware = append(r.middleware, mw...)
}

// Handle registers res at template. It panics if the template is invalid,
// conflicts with an existing route, or if a Path marker of one of the
// operations names a placeholder the template lacks.
func (r *Router) Handle(template string, res *Resource) *Route {
	return r.handle(template, res, nil, nil)
}

func (r *Router) handle(template string, res *Resource, tags []string, mw []Middleware) *Route {
	tmpl, err := ParseTemplate(template)
	if err != nil {
		panic("aior: " + err.Error())
	}
	if err := checkPathParams(tmpl, res); err != nil {
		panic("aior: " + err.Error())
	}
	route, err := r.table.Register(template, res)
	if err != nil {
		panic("aior: " + err.Error())
	}
	route.tags = tags
	route.middleware = mw
	return route
}

// Routes returns the registered routes in registration order.
func (r *Router) Routes() []*Route {
	return r.table.Routes()
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.wrap(http.HandlerFunc(r.dispatch)).ServeHTTP(w, req)
}

// RouteHandler returns the dispatcher for a single route, wrapped in the
// router's middleware. It lets another host router own path matching: path
// parameters are read from WithPathParams when present.
func (r *Router) RouteHandler(route *Route) http.Handler {
	return r.wrap(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		params, ok := PathParams(req.Context())
		if !ok {
			params, _ = route.Template.match(splitPath(req.URL.Path))
		}
		if !route.Resource.Allows(req.Method) {
			w.Header().Set("Allow", strings.Join(route.Resource.Methods(), ", "))
			r.writeErr(w, req, ErrMethodNotAllowed)
			return
		}
		r.serveRoute(w, req, route, params)
	}))
}

func (r *Router) wrap(h http.Handler) http.Handler {
	for i := len(r.middleware) - 1; i >= 0; i-- {
		h = r.middleware[i](h)
	}
	return h
}

// ListenAndServe starts an HTTP server on the given address.
// It blocks until the context is cancelled, then shuts down gracefully.
func (r *Router) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (r *Router) dispatch(w http.ResponseWriter, req *http.Request) {
	m, err := r.table.Match(req.Method, req.URL.Path)
	if err != nil {
		if errors.Is(err, ErrMethodNotAllowed) {
			w.Header().Set("Allow", strings.Join(r.table.allowed(req.URL.Path), ", "))
		}
		r.writeErr(w, req, err)
		return
	}
	r.serveRoute(w, req, m.Route, m.Params)
}

// serveRoute runs one matched request: binding, validation, the handler and
// response serialization. No handler code runs unless every parameter bound.
func (r *Router) serveRoute(w http.ResponseWriter, req *http.Request, route *Route, params map[string]string) {
	ctx := withRoute(req.Context(), route, params)
	if r.tracer != nil {
		var end func()
		ctx, end = r.tracer.StartSpan(ctx, req.Method+" "+route.Template.String(), map[string]string{
			"http.method":   req.Method,
			"http.route":    route.Template.String(),
			"aior.resource": route.Resource.Name(),
		})
		defer end()
	}

	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.invoke(w, req, route, params)
	})
	for i := len(route.middleware) - 1; i >= 0; i-- {
		h = route.middleware[i](h)
	}
	h.ServeHTTP(w, req.WithContext(ctx))
}

func (r *Router) invoke(w http.ResponseWriter, req *http.Request, route *Route, params map[string]string) {
	res := route.Resource
	if res.IsWebSocket() {
		r.serveWebSocket(w, req, res)
		return
	}

	op, ok := res.Operation(req.Method)
	if !ok {
		r.writeErr(w, req, ErrMethodNotAllowed)
		return
	}
	if op.raw != nil {
		op.raw(w, req)
		return
	}

	if op.bodyLimit > 0 && req.Body != nil {
		req.Body = http.MaxBytesReader(w, req.Body, op.bodyLimit)
	}

	bound, err := op.req.bind(req, params)
	if err != nil {
		r.writeErr(w, req, err)
		return
	}
	if err := runValidators(bound.Interface(), r.validator); err != nil {
		r.writeErr(w, req, err)
		return
	}

	resp, err := op.invoke(req.Context(), bound)
	if err != nil {
		r.writeErr(w, req, err)
		return
	}

	body, err := resp.Body()
	if err != nil {
		r.writeErr(w, req, Errorf(http.StatusInternalServerError, "encode response: %v", err))
		return
	}
	if err := resp.writeBody(w, body); err != nil {
		r.logger.LogAttrs(req.Context(), slog.LevelWarn, "response write failed",
			slog.String("route", route.Template.String()),
			slog.String("error", err.Error()),
		)
	}
}

func (r *Router) writeErr(w http.ResponseWriter, req *http.Request, err error) {
	var verrs ValidationErrors
	if errors.As(err, &verrs) || r.errorHandler == nil {
		WriteError(w, err)
		return
	}
	r.errorHandler(w, req, err)
}

// checkPathParams verifies that every field of every Path marker names a
// placeholder of the route template.
func checkPathParams(tmpl Template, res *Resource) error {
	names := tmpl.Params()
	for _, m := range res.Methods() {
		op, ok := res.Operation(m)
		if !ok || op.req == nil {
			continue
		}
		for _, p := range op.req.params {
			if p.in != InPath {
				continue
			}
			for _, f := range p.schema.fields {
				if !f.required() {
					continue
				}
				found := false
				for _, n := range names {
					if n == f.wireName {
						found = true
						break
					}
				}
				if !found {
					return errors.New(tmpl.String() + " has no {" + f.wireName + "} placeholder for " + m)
				}
			}
		}
	}
	return nil
}
