package aior

import (
	"net/http"
	"net/http/pprof"
)

// ServeProfiles registers the runtime profiling endpoints under prefix
// (default /debug/pprof). They are raw operations, so they stay out of the
// OpenAPI document.
func (r *Router) ServeProfiles(prefix string) {
	if prefix == "" {
		prefix = "/debug/pprof"
	}

	r.Handle(prefix, NewResource("ProfileIndex", RawOperation(http.MethodGet,
		func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, prefix+"/heap?debug=1", http.StatusFound)
		})))

	r.Handle(prefix+"/{profile}", NewResource("Profile", RawOperation(http.MethodGet,
		func(w http.ResponseWriter, req *http.Request) {
			params, _ := PathParams(req.Context())
			switch name := params["profile"]; name {
			case "cmdline":
				pprof.Cmdline(w, req)
			case "profile":
				pprof.Profile(w, req)
			case "symbol":
				pprof.Symbol(w, req)
			case "trace":
				pprof.Trace(w, req)
			default:
				pprof.Handler(name).ServeHTTP(w, req)
			}
		})))
}
