// Package config loads service configuration from YAML, NETROUTER_*
// environment variables and defaults, in increasing order of precedence:
// defaults, file, environment. Command-line flags are applied by the caller.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "NETROUTER_"

// Config is the complete service configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Store   StoreConfig   `yaml:"store"`
	Routing RoutingConfig `yaml:"routing"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr           string        `yaml:"addr" validate:"required"`
	ReadTimeout    time.Duration `yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout   time.Duration `yaml:"write_timeout" validate:"gt=0"`
	RequestTimeout time.Duration `yaml:"request_timeout" validate:"gt=0"`
	MaxConcurrent  int           `yaml:"max_concurrent" validate:"gte=1"`
	CORSOrigin     string        `yaml:"cors_origin"`
}

// StoreConfig selects where networks are read from.
type StoreConfig struct {
	Kind string `yaml:"kind" validate:"oneof=geojson osm"`
	Dir  string `yaml:"dir" validate:"required"`
	BBox string `yaml:"bbox"` // osm only: minLat,minLng,maxLat,maxLng or a preset
}

// RoutingConfig tunes the route engine.
type RoutingConfig struct {
	DefaultNetwork string  `yaml:"default_network" validate:"required"`
	Precision      int     `yaml:"precision" validate:"gte=1,lte=12"`
	Intersections  string  `yaml:"intersections" validate:"oneof=pairwise indexed"`
	MaxSnapMeters  float64 `yaml:"max_snap_meters" validate:"gte=0"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json logfmt"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:           ":8080",
			ReadTimeout:    5 * time.Second,
			WriteTimeout:   10 * time.Second,
			RequestTimeout: 5 * time.Second,
			MaxConcurrent:  runtime.NumCPU() * 2,
		},
		Store: StoreConfig{
			Kind: "geojson",
			Dir:  "data",
		},
		Routing: RoutingConfig{
			DefaultNetwork: "streets",
			Precision:      6,
			Intersections:  "pairwise",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path (if non-empty) over the defaults, applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envBinding maps one environment variable onto a config field.
type envBinding struct {
	name  string
	apply func(c *Config, v string) error
}

var envBindings = []envBinding{
	{"SERVER_ADDR", func(c *Config, v string) error { c.Server.Addr = v; return nil }},
	{"SERVER_READ_TIMEOUT", func(c *Config, v string) (err error) {
		c.Server.ReadTimeout, err = cast.ToDurationE(v)
		return err
	}},
	{"SERVER_WRITE_TIMEOUT", func(c *Config, v string) (err error) {
		c.Server.WriteTimeout, err = cast.ToDurationE(v)
		return err
	}},
	{"SERVER_REQUEST_TIMEOUT", func(c *Config, v string) (err error) {
		c.Server.RequestTimeout, err = cast.ToDurationE(v)
		return err
	}},
	{"SERVER_MAX_CONCURRENT", func(c *Config, v string) (err error) {
		c.Server.MaxConcurrent, err = cast.ToIntE(v)
		return err
	}},
	{"SERVER_CORS_ORIGIN", func(c *Config, v string) error { c.Server.CORSOrigin = v; return nil }},
	{"STORE_KIND", func(c *Config, v string) error { c.Store.Kind = strings.ToLower(v); return nil }},
	{"STORE_DIR", func(c *Config, v string) error { c.Store.Dir = v; return nil }},
	{"STORE_BBOX", func(c *Config, v string) error { c.Store.BBox = v; return nil }},
	{"ROUTING_DEFAULT_NETWORK", func(c *Config, v string) error { c.Routing.DefaultNetwork = v; return nil }},
	{"ROUTING_PRECISION", func(c *Config, v string) (err error) {
		c.Routing.Precision, err = cast.ToIntE(v)
		return err
	}},
	{"ROUTING_INTERSECTIONS", func(c *Config, v string) error { c.Routing.Intersections = strings.ToLower(v); return nil }},
	{"ROUTING_MAX_SNAP_METERS", func(c *Config, v string) (err error) {
		c.Routing.MaxSnapMeters, err = cast.ToFloat64E(v)
		return err
	}},
	{"LOG_LEVEL", func(c *Config, v string) error { c.Log.Level = strings.ToLower(v); return nil }},
	{"LOG_FORMAT", func(c *Config, v string) error { c.Log.Format = strings.ToLower(v); return nil }},
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	var errs []error
	for _, b := range envBindings {
		v, ok := lookup(EnvPrefix + b.name)
		if !ok {
			continue
		}
		if err := b.apply(cfg, strings.TrimSpace(v)); err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, b.name, err))
		}
	}
	return errors.Join(errs...)
}

// Validate checks every field constraint and reports all violations at once.
func (c *Config) Validate() error {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: must satisfy %s=%s (got %v)", field, fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: %s (got %v)", field, fe.Tag(), fe.Value()))
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// NewLogger builds the process logger described by c.
func (c LogConfig) NewLogger(w io.Writer) (*log.Logger, error) {
	level, err := log.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	var formatter log.Formatter
	switch c.Format {
	case "", "text":
		formatter = log.TextFormatter
	case "json":
		formatter = log.JSONFormatter
	case "logfmt":
		formatter = log.LogfmtFormatter
	default:
		return nil, fmt.Errorf("log format %q: want text, json or logfmt", c.Format)
	}

	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       formatter,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	}), nil
}
