package aior_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dephin/aior"
)

func newCORSRouter(cfg ...aior.CORSConfig) *aior.Router {
	r := aior.New()
	r.Use(r.CORS(cfg...))
	r.Handle("/items/{item_id}", aior.NewResource("ItemHandler",
		aior.Get(respond(aior.Empty())),
		aior.Delete(respond(aior.NoContent())),
	))
	return r
}

func TestCORS_defaults(t *testing.T) {
	t.Parallel()

	r := newCORSRouter()

	w := serve(r, http.MethodGet, "/items/1", "", "Origin", "http://a.example")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", w.Header().Get("Vary"))

	w = serve(r, http.MethodGet, "/items/1", "")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Vary"))
}

func TestCORS_preflight(t *testing.T) {
	t.Parallel()

	r := newCORSRouter(aior.CORSConfig{
		AllowOrigins: []string{"http://a.example"},
		AllowHeaders: []string{"Content-Type"},
		MaxAge:       600,
	})

	tests := map[string]struct {
		path    string
		origin  string
		status  int
		methods string
		allowed string
	}{
		"allowed origin":    {path: "/items/1", origin: "http://a.example", status: http.StatusNoContent, methods: "GET, DELETE", allowed: "http://a.example"},
		"unknown path":      {path: "/shops", origin: "http://a.example", status: http.StatusNotFound, allowed: "http://a.example"},
		"disallowed origin": {path: "/items/1", origin: "http://b.example", status: http.StatusMethodNotAllowed},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			w := serve(r, http.MethodOptions, tt.path, "",
				"Origin", tt.origin,
				"Access-Control-Request-Method", http.MethodDelete,
			)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.allowed, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.methods, w.Header().Get("Access-Control-Allow-Methods"))
			if tt.status == http.StatusNoContent {
				assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
				assert.Equal(t, "600", w.Header().Get("Access-Control-Max-Age"))
			}
		})
	}
}

func TestCORS_credentials(t *testing.T) {
	t.Parallel()

	r := newCORSRouter(aior.CORSConfig{
		AllowOrigins:     []string{"*"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
	})

	w := serve(r, http.MethodGet, "/items/1", "", "Origin", "http://a.example")
	assert.Equal(t, "http://a.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "X-Request-ID", w.Header().Get("Access-Control-Expose-Headers"))
}
