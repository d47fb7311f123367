package aior

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// segment is one '/'-separated piece of a path template.
type segment struct {
	literal string
	param   string // non-empty for {name} placeholders
}

// Template is a parsed path template such as "/items/{item_id}".
type Template struct {
	raw      string
	segments []segment
}

// ParseTemplate parses a path template. Placeholders must fill a whole
// segment and names must be unique.
func ParseTemplate(raw string) (Template, error) {
	if !strings.HasPrefix(raw, "/") {
		return Template{}, fmt.Errorf("%w: %q must start with /", ErrInvalidTemplate, raw)
	}
	t := Template{raw: raw}
	seen := make(map[string]bool)
	for _, part := range splitPath(raw) {
		if strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") {
			name := part[1 : len(part)-1]
			if name == "" || strings.ContainsAny(name, "{}/") {
				return Template{}, fmt.Errorf("%w: %q has a bad placeholder %q", ErrInvalidTemplate, raw, part)
			}
			if seen[name] {
				return Template{}, fmt.Errorf("%w: %q repeats placeholder %q", ErrInvalidTemplate, raw, name)
			}
			seen[name] = true
			t.segments = append(t.segments, segment{param: name})
			continue
		}
		if strings.ContainsAny(part, "{}") {
			return Template{}, fmt.Errorf("%w: %q has a bad segment %q", ErrInvalidTemplate, raw, part)
		}
		t.segments = append(t.segments, segment{literal: part})
	}
	return t, nil
}

// String returns the template as registered.
func (t Template) String() string { return t.raw }

// Params returns the placeholder names in order.
func (t Template) Params() []string {
	var names []string
	for _, s := range t.segments {
		if s.param != "" {
			names = append(names, s.param)
		}
	}
	return names
}

// match reports whether parts fits the template and returns the captured values.
func (t Template) match(parts []string) (map[string]string, bool) {
	if len(parts) != len(t.segments) {
		return nil, false
	}
	var params map[string]string
	for i, s := range t.segments {
		if s.param == "" {
			if s.literal != parts[i] {
				return nil, false
			}
			continue
		}
		if parts[i] == "" {
			return nil, false
		}
		if params == nil {
			params = make(map[string]string)
		}
		params[s.param] = parts[i]
	}
	return params, true
}

func (t Template) literals() int {
	n := 0
	for _, s := range t.segments {
		if s.param == "" {
			n++
		}
	}
	return n
}

// sameShape reports whether two templates match exactly the same paths.
func (t Template) sameShape(o Template) bool {
	if len(t.segments) != len(o.segments) {
		return false
	}
	for i := range t.segments {
		a, b := t.segments[i], o.segments[i]
		if (a.param == "") != (b.param == "") || a.literal != b.literal {
			return false
		}
	}
	return true
}

func splitPath(p string) []string {
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// Route is a registered (template, resource) pair.
type Route struct {
	Template Template
	Resource *Resource

	tags       []string
	middleware []Middleware
}

// Tags returns the OpenAPI tags inherited from the group the route was
// registered on.
func (r *Route) Tags() []string { return r.tags }

// Match is the result of a successful lookup.
type Match struct {
	Route  *Route
	Params map[string]string
}

// RouteTable maps path templates to resources. It is safe for concurrent
// lookups; registration is expected to finish before serving starts.
type RouteTable struct {
	mu     sync.RWMutex
	routes []*Route
}

// Register adds a route. It fails if the template is malformed or if a
// route with the same shape already serves one of the resource's methods.
func (rt *RouteTable) Register(template string, res *Resource) (*Route, error) {
	tmpl, err := ParseTemplate(template)
	if err != nil {
		return nil, err
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	for _, existing := range rt.routes {
		if !existing.Template.sameShape(tmpl) {
			continue
		}
		for _, m := range res.Methods() {
			if existing.Resource.Allows(m) {
				return nil, fmt.Errorf("%w: %s %s conflicts with %s", ErrDuplicateRoute, m, template, existing.Template)
			}
		}
	}

	route := &Route{Template: tmpl, Resource: res}
	rt.routes = append(rt.routes, route)
	return route, nil
}

// Routes returns the registered routes in registration order.
func (rt *RouteTable) Routes() []*Route {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return slices.Clone(rt.routes)
}

// Match finds the route serving method on path. Templates with more literal
// segments win; ties go to the earliest registration. If the path matches
// but no route allows method, ErrMethodNotAllowed is returned along with the
// first matching route so callers can report the allowed methods.
func (rt *RouteTable) Match(method, path string) (Match, error) {
	parts := splitPath(path)

	rt.mu.RLock()
	defer rt.mu.RUnlock()

	var (
		best      Match
		bestScore = -1
		pathHit   Match
	)
	for _, route := range rt.routes {
		params, ok := route.Template.match(parts)
		if !ok {
			continue
		}
		if pathHit.Route == nil {
			pathHit = Match{Route: route, Params: params}
		}
		if !route.Resource.Allows(method) {
			continue
		}
		if score := route.Template.literals(); score > bestScore {
			best = Match{Route: route, Params: params}
			bestScore = score
		}
	}

	switch {
	case best.Route != nil:
		return best, nil
	case pathHit.Route != nil:
		return pathHit, fmt.Errorf("%w: %s %s", ErrMethodNotAllowed, method, path)
	default:
		return Match{}, fmt.Errorf("%w: %s %s", ErrNotFound, method, path)
	}
}

// allowed lists every method served on path across all matching routes.
func (rt *RouteTable) allowed(path string) []string {
	parts := splitPath(path)

	rt.mu.RLock()
	defer rt.mu.RUnlock()

	var methods []string
	for _, route := range rt.routes {
		if _, ok := route.Template.match(parts); !ok {
			continue
		}
		for _, m := range route.Resource.Methods() {
			if !slices.Contains(methods, m) {
				methods = append(methods, m)
			}
		}
	}
	return methods
}
