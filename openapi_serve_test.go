package aior_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dephin/aior"
)

func TestServeSpec(t *testing.T) {
	t.Parallel()

	r := newUsersRouter()
	r.ServeSpec("/openapi.json")

	w := serve(r, http.MethodGet, "/openapi.json", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, aior.ContentTypeJSON, w.Header().Get("Content-Type"))
	assert.JSONEq(t, expectedUsersSpec, w.Body.String())
}

func TestServeSpecYAML(t *testing.T) {
	t.Parallel()

	r := newUsersRouter()
	r.ServeSpecYAML("/openapi.yaml")

	w := serve(r, http.MethodGet, "/openapi.yaml", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/yaml", w.Header().Get("Content-Type"))

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "3.0.2", doc["openapi"])
	assert.Contains(t, doc["paths"], "/users/{user_id}")
}

func TestWriteSpec(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, newUsersRouter().WriteSpec(&buf))

	assert.JSONEq(t, expectedUsersSpec, buf.String())
	assert.Contains(t, buf.String(), "\n  \"info\"", "indented")

	var spec aior.OpenAPISpec
	require.NoError(t, json.Unmarshal(buf.Bytes(), &spec))
	assert.Equal(t, "3.0.2", spec.OpenAPI)
}

func TestWriteSpecYAML_propertyOrder(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, newUsersRouter().WriteSpecYAML(&buf))

	out := buf.String()
	username := bytes.Index([]byte(out), []byte("username:"))
	password := bytes.Index([]byte(out), []byte("password:"))
	require.Positive(t, username)
	assert.Less(t, username, password, "properties keep declaration order")
}

func TestServeDocs(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		opts    []aior.DocsOption
		title   string
		specURL string
	}{
		"defaults": {title: "Aior API", specURL: "openapi.json"},
		"custom": {
			opts:    []aior.DocsOption{aior.WithDocsTitle("Shop"), aior.WithSpecURL("/spec/v1.json")},
			title:   "Shop",
			specURL: "v1.json",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r := aior.New()
			r.ServeDocs("/docs", tt.opts...)

			w := serve(r, http.MethodGet, "/docs", "")
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
			assert.Contains(t, w.Body.String(), "<title>"+tt.title+"</title>")
			assert.Contains(t, w.Body.String(), tt.specURL)
			assert.Contains(t, w.Body.String(), "SwaggerUIBundle")
			assert.Empty(t, r.Spec().Paths)
		})
	}
}
