// Command aior-sample serves a small shop API built with aior and prints its
// OpenAPI document.
//
//	aior-sample serve --config config.yaml
//	aior-sample spec --format yaml -o openapi.yaml
//
// Configuration comes from defaults, an optional YAML file, an optional .env
// file and AIOR_* environment variables, in increasing priority.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/dephin/aior"
	"github.com/dephin/aior/aiorecho"
	"github.com/dephin/aior/aiorotel"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "aior-sample",
		Short:        "Sample aior service",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, newLogger(cfg.Log, os.Stderr))
		},
	}

	var (
		format string
		output string
	)
	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Print the OpenAPI document",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return writeSpec(newRouter(cfg, nil), format, output)
		},
	}
	specCmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	specCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	root.AddCommand(serveCmd, specCmd)
	return root
}

func newLogger(cfg LogConfig, w io.Writer) zerolog.Logger {
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: w}
	}
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// newRouter builds the sample router. tracer may be nil.
func newRouter(cfg *Config, tracer aior.SpanStarter) *aior.Router {
	opts := []aior.RouterOption{
		aior.WithTitle(cfg.API.Title),
		aior.WithVersion(cfg.API.Version),
	}
	if tracer != nil {
		opts = append(opts, aior.WithTracer(tracer))
	}
	r := aior.New(opts...)
	registerRoutes(r, cfg.API.Docs)
	if cfg.Debug.Pprof {
		r.ServeProfiles("")
	}
	return r
}

func serve(ctx context.Context, cfg *Config, log zerolog.Logger) error {
	var tracer aior.SpanStarter
	if cfg.Tracing.Enabled {
		exp, err := stdouttrace.New(stdouttrace.WithWriter(os.Stdout))
		if err != nil {
			return fmt.Errorf("create trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
		defer func() {
			if err := tp.Shutdown(context.WithoutCancel(ctx)); err != nil {
				log.Warn().Err(err).Msg("tracer shutdown failed")
			}
		}()
		tracer = aiorotel.New(aiorotel.WithTracerProvider(tp))
	}

	r := newRouter(cfg, tracer)
	slogger := slog.New(slog.NewJSONHandler(log, nil))
	r.Use(aior.Recovery(slogger), aior.RequestID(), aior.Secure(), aiorotel.Propagation())
	if len(cfg.CORS.Origins) > 0 {
		r.Use(r.CORS(aior.CORSConfig{AllowOrigins: cfg.CORS.Origins, MaxAge: 600}))
	}
	if cfg.Server.Timeout.Request > 0 {
		r.Use(aior.Timeout(cfg.Server.Timeout.Request))
	}
	if cfg.Limits.Rate > 0 {
		r.Use(aior.RateLimit(aior.RateLimitConfig{Rate: cfg.Limits.Rate, Burst: cfg.Limits.Burst}))
	}
	if cfg.Limits.Body > 0 {
		r.Use(aior.BodyLimit(cfg.Limits.Body))
	}

	log.Info().Str("addr", cfg.Server.Addr).Str("host", cfg.Server.Host).Msg("starting server")

	var err error
	switch cfg.Server.Host {
	case hostEcho:
		err = serveEcho(ctx, cfg, r, log)
	default:
		r.Use(aior.Logger(slogger))
		err = listen(ctx, cfg, r)
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}

func listen(ctx context.Context, cfg *Config, h http.Handler) error {
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           h,
		ReadHeaderTimeout: cfg.Server.Timeout.Header,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.Timeout.Shutdown)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func newEcho(r *aior.Router, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = aiorecho.ErrorHandler
	e.Use(aiorecho.RequestLogger(log))
	aiorecho.Mount(e, r)
	return e
}

func serveEcho(ctx context.Context, cfg *Config, r *aior.Router, log zerolog.Logger) error {
	e := newEcho(r, log)
	e.Server.ReadHeaderTimeout = cfg.Server.Timeout.Header
	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(cfg.Server.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.Timeout.Shutdown)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	}
}

func writeSpec(r *aior.Router, format, output string) (err error) {
	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output) //nolint:gosec // user-provided CLI flag
		if err != nil {
			return err
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		w = f
	}

	switch format {
	case "json":
		return r.WriteSpec(w)
	case "yaml", "yml":
		return r.WriteSpecYAML(w)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
