package aior

import (
	"net/http"
	"strconv"
	"time"
)

// SecureConfig configures the Secure headers middleware.
type SecureConfig struct {
	NoSniff        bool          // X-Content-Type-Options: nosniff
	FrameOptions   string        // X-Frame-Options, e.g. "DENY"
	HSTSMaxAge     time.Duration // Strict-Transport-Security; zero disables it
	ReferrerPolicy string
}

// Secure returns middleware that sets security response headers before the
// handler runs. With no arguments it sends nosniff, DENY and
// strict-origin-when-cross-origin.
func Secure(cfg ...SecureConfig) Middleware {
	c := SecureConfig{
		NoSniff:        true,
		FrameOptions:   "DENY",
		ReferrerPolicy: "strict-origin-when-cross-origin",
	}
	if len(cfg) > 0 {
		c = cfg[0]
	}

	hsts := ""
	if c.HSTSMaxAge > 0 {
		hsts = "max-age=" + strconv.FormatInt(int64(c.HSTSMaxAge/time.Second), 10)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if c.NoSniff {
				h.Set("X-Content-Type-Options", "nosniff")
			}
			if c.FrameOptions != "" {
				h.Set("X-Frame-Options", c.FrameOptions)
			}
			if hsts != "" && r.TLS != nil {
				h.Set("Strict-Transport-Security", hsts)
			}
			if c.ReferrerPolicy != "" {
				h.Set("Referrer-Policy", c.ReferrerPolicy)
			}
			next.ServeHTTP(w, r)
		})
	}
}
