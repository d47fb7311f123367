package aiorecho

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/dephin/aior"
)

// RequestLogger returns echo's request logger middleware writing one
// structured zerolog line per request. The level follows the status:
// 5xx is error, 4xx is warn, everything else info.
func RequestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogError:     true,
		LogLatency:   true,
		LogMethod:    true,
		LogRoutePath: true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			// HandleError has already run the error handler, so Status is final.
			status := v.Status

			var e *zerolog.Event
			switch {
			case status >= 500:
				e = logger.Error().Err(v.Error)
			case status >= 400:
				e = logger.Warn()
			default:
				e = logger.Info()
			}

			if id := v.RequestID; id != "" {
				e = e.Str("request_id", id)
			} else if id := aior.RequestIDFromContext(c.Request().Context()); id != "" {
				e = e.Str("request_id", id)
			}

			e.
				Dur("latency", v.Latency).
				Int("status", status).
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("route", v.RoutePath).
				Msg("request")
			return nil
		},
	})
}
