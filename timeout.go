package aior

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Timeout returns middleware that bounds the request context to d. Handlers
// observe the deadline through ctx. WebSocket upgrades are left alone since
// a session outlives any request deadline.
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if websocket.IsWebSocketUpgrade(r) {
				next.ServeHTTP(w, r)
				return
			}
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
