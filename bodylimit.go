package aior

import "net/http"

// BodyLimit returns middleware that limits the request body to maxBytes for
// every route. Requests declaring a larger Content-Length are rejected with
// 413 before any handler runs; bodies that grow past the limit while being
// read fail binding with 413. WithBodyLimit sets a per-operation limit.
func BodyLimit(maxBytes int64) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				WriteError(w, Error(http.StatusRequestEntityTooLarge, http.StatusText(http.StatusRequestEntityTooLarge)))
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
