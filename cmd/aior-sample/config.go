package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	envprovider "github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "AIOR_"

// Host names accepted by server.host.
const (
	hostHTTP = "http"
	hostEcho = "echo"
)

// Config is the sample service configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server" validate:"required"`
	API     APIConfig     `koanf:"api" validate:"required"`
	Log     LogConfig     `koanf:"log"`
	Limits  LimitsConfig  `koanf:"limits"`
	Tracing TracingConfig `koanf:"tracing"`
	CORS    CORSConfig    `koanf:"cors"`
	Debug   DebugConfig   `koanf:"debug"`
}

// ServerConfig selects the listen address and the host router.
type ServerConfig struct {
	Addr    string        `koanf:"addr" validate:"required"`
	Host    string        `koanf:"host" validate:"oneof=http echo"`
	Timeout TimeoutConfig `koanf:"timeout"`
}

// TimeoutConfig holds server timeouts.
type TimeoutConfig struct {
	Header   time.Duration `koanf:"header" validate:"gt=0"`
	Shutdown time.Duration `koanf:"shutdown" validate:"gt=0"`
	Request  time.Duration `koanf:"request" validate:"gte=0"`
}

// APIConfig feeds the OpenAPI info block.
type APIConfig struct {
	Title   string `koanf:"title" validate:"required"`
	Version string `koanf:"version" validate:"required"`
	Docs    bool   `koanf:"docs"`
}

// LogConfig configures zerolog.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Pretty bool   `koanf:"pretty"`
}

// LimitsConfig configures request limits. A zero rate disables rate limiting.
type LimitsConfig struct {
	Rate  float64 `koanf:"rate" validate:"gte=0"`
	Burst int     `koanf:"burst" validate:"gte=0"`
	Body  int64   `koanf:"body" validate:"gte=0"`
}

// TracingConfig enables span export to stdout.
type TracingConfig struct {
	Enabled bool `koanf:"enabled"`
}

// CORSConfig lists the origins allowed to call the API. Empty disables CORS.
type CORSConfig struct {
	Origins []string `koanf:"origins"`
}

// DebugConfig exposes runtime profiles under /debug/pprof.
type DebugConfig struct {
	Pprof bool `koanf:"pprof"`
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"server.addr":             ":8080",
		"server.host":             hostHTTP,
		"server.timeout.header":   "10s",
		"server.timeout.shutdown": "15s",
		"server.timeout.request":  "30s",

		"api.title":   "Aior API",
		"api.version": "0.1.0",
		"api.docs":    true,

		"log.level":  "info",
		"log.pretty": false,

		"limits.rate":  0,
		"limits.burst": 0,
		"limits.body":  1 << 20,

		"tracing.enabled": false,
		"debug.pprof":     false,
	}
	return k.Load(confmap.Provider(defaults, "."), nil)
}

// loadConfig reads configuration with increasing priority: defaults, the
// YAML file at path (optional), a .env file in the working directory
// (optional), then AIOR_ environment variables. AIOR_SERVER_TIMEOUT_HEADER
// maps to server.timeout.header.
func loadConfig(path string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	err := k.Load(envprovider.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
