package aior

import (
	"encoding/json"
	"io"
	"net/http"

	"gopkg.in/yaml.v3"
)

// ServeSpec registers a GET route at path that serves the OpenAPI document
// as JSON. The route itself is not part of the document.
func (r *Router) ServeSpec(path string) *Route {
	return r.Handle(path, NewResource("OpenAPISpec", RawOperation(http.MethodGet,
		func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", ContentTypeJSON)
			//nolint:errcheck,gosec // best-effort after WriteHeader
			json.NewEncoder(w).Encode(r.Spec())
		})))
}

// ServeSpecYAML registers a GET route at path that serves the OpenAPI
// document as YAML.
func (r *Router) ServeSpecYAML(path string) *Route {
	return r.Handle(path, NewResource("OpenAPISpecYAML", RawOperation(http.MethodGet,
		func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/yaml")
			//nolint:errcheck,gosec // best-effort after WriteHeader
			r.WriteSpecYAML(w)
		})))
}

// WriteSpec writes the OpenAPI document as indented JSON to w.
func (r *Router) WriteSpec(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r.Spec())
}

// WriteSpecYAML writes the OpenAPI document as YAML to w.
func (r *Router) WriteSpecYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r.Spec()); err != nil {
		return err
	}
	return enc.Close()
}
