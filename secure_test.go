package aior_test

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dephin/aior"
)

func TestSecure(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		cfg     []aior.SecureConfig
		tls     bool
		headers map[string]string
	}{
		"defaults": {
			headers: map[string]string{
				"X-Content-Type-Options":    "nosniff",
				"X-Frame-Options":           "DENY",
				"Referrer-Policy":           "strict-origin-when-cross-origin",
				"Strict-Transport-Security": "",
			},
		},
		"hsts over tls": {
			cfg: []aior.SecureConfig{{HSTSMaxAge: 24 * time.Hour}},
			tls: true,
			headers: map[string]string{
				"Strict-Transport-Security": "max-age=86400",
				"X-Content-Type-Options":    "",
				"X-Frame-Options":           "",
			},
		},
		"hsts over plain http": {
			cfg: []aior.SecureConfig{{HSTSMaxAge: 24 * time.Hour, FrameOptions: "SAMEORIGIN"}},
			headers: map[string]string{
				"Strict-Transport-Security": "",
				"X-Frame-Options":           "SAMEORIGIN",
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r := aior.New()
			r.Use(aior.Secure(tt.cfg...))
			r.Handle("/", aior.NewResource("RootHandler", aior.Get(respond(aior.Empty()))))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.tls {
				req.TLS = &tls.ConnectionState{}
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			for k, v := range tt.headers {
				assert.Equal(t, v, w.Header().Get(k), k)
			}
		})
	}
}

func TestSecure_onErrors(t *testing.T) {
	t.Parallel()

	r := aior.New()
	r.Use(aior.Secure())

	w := serve(r, http.MethodGet, "/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}
