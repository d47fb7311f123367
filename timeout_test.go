package aior_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dephin/aior"
)

func TestTimeout(t *testing.T) {
	t.Parallel()

	var (
		deadline time.Time
		ok       bool
	)
	r := aior.New()
	r.Use(aior.Timeout(time.Minute))
	r.Handle("/slow", aior.NewResource("SlowHandler", aior.Get(func(ctx context.Context, _ *aior.Void) (aior.Response, error) {
		deadline, ok = ctx.Deadline()
		return aior.Empty(), nil
	})))

	start := time.Now()
	w := serve(r, http.MethodGet, "/slow", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, ok)
	assert.WithinDuration(t, start.Add(time.Minute), deadline, 5*time.Second)
}

func TestTimeout_expired(t *testing.T) {
	t.Parallel()

	r := aior.New()
	r.Use(aior.Timeout(time.Millisecond))
	r.Handle("/slow", aior.NewResource("SlowHandler", aior.Get(func(ctx context.Context, _ *aior.Void) (aior.Response, error) {
		<-ctx.Done()
		return aior.Response{}, aior.Error(http.StatusGatewayTimeout, ctx.Err().Error())
	})))

	w := serve(r, http.MethodGet, "/slow", "")
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Contains(t, w.Body.String(), "context deadline exceeded")
}

func TestTimeout_skipsWebSocketUpgrade(t *testing.T) {
	t.Parallel()

	var hasDeadline bool
	h := aior.Timeout(time.Minute)(http.HandlerFunc(func(_ http.ResponseWriter, req *http.Request) {
		_, hasDeadline = req.Context().Deadline()
	}))

	serve(h, http.MethodGet, "/ws", "", "Connection", "Upgrade", "Upgrade", "websocket")
	assert.False(t, hasDeadline)

	serve(h, http.MethodGet, "/ws", "")
	assert.True(t, hasDeadline)
}
