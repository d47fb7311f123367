package aior_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dephin/aior"
)

func newLimitedRouter(cfg aior.RateLimitConfig) *aior.Router {
	r := aior.New()
	r.Use(aior.RateLimit(cfg))
	r.Handle("/limited", aior.NewResource("LimitedHandler", aior.Get(respond(aior.Empty()))))
	return r
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	r := newLimitedRouter(aior.RateLimitConfig{Rate: 1, Burst: 2})

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/limited", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/limited", "").Code)

	w := serve(r, http.MethodGet, "/limited", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Equal(t, aior.ContentTypeError, w.Header().Get("Content-Type"))
}

func TestRateLimit_slowRate(t *testing.T) {
	t.Parallel()

	r := newLimitedRouter(aior.RateLimitConfig{Rate: 0.1, Burst: 1})

	serve(r, http.MethodGet, "/limited", "")
	w := serve(r, http.MethodGet, "/limited", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "10", w.Header().Get("Retry-After"))
}

func TestRateLimit_perKey(t *testing.T) {
	t.Parallel()

	r := newLimitedRouter(aior.RateLimitConfig{
		Rate:    1,
		Burst:   1,
		KeyFunc: func(req *http.Request) string { return req.Header.Get("X-API-Key") },
		OnLimit: func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		},
	})

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/limited", "", "X-API-Key", "a").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/limited", "", "X-API-Key", "b").Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(r, http.MethodGet, "/limited", "", "X-API-Key", "a").Code)
}
