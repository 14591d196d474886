// Package config loads the tradenet configuration from an optional YAML file
// overlaid with environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-tradenet/pkg/algorithms"
	"github.com/dd0wney/cluso-tradenet/pkg/analysis"
	"github.com/dd0wney/cluso-tradenet/pkg/source"
	"github.com/dd0wney/cluso-tradenet/pkg/validation"
)

// Source kinds
const (
	SourcePostgres = source.KindPostgres
	SourceFile     = source.KindFile
	SourceS3       = source.KindS3
	SourceMemory   = source.KindMemory
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Source   SourceConfig   `yaml:"source"`
	Auth     AuthConfig     `yaml:"auth"`
	LogLevel string         `yaml:"log_level" validate:"oneof=DEBUG INFO WARN ERROR debug info warn error"`
}

// ServerConfig configures the HTTP server
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

// AnalysisConfig holds the default analysis parameters and the per-request
// time budget.
type AnalysisConfig struct {
	analysis.Options `yaml:",inline"`
	Timeout          time.Duration `yaml:"timeout"`
}

// SourceConfig selects and locates the trade record source
type SourceConfig struct {
	Kind        string `yaml:"kind"`
	DatabaseURL string `yaml:"database_url"`
	Path        string `yaml:"path"`
	Bucket      string `yaml:"bucket"`
	Key         string `yaml:"key"`
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint"`
}

// AuthConfig configures bearer-token authentication of the API
type AuthConfig struct {
	Enabled   bool          `yaml:"enabled"`
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// FileNames are the configuration files looked up by Load, in order.
var FileNames = []string{"tradenet.yml", "tradenet.yaml"}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    120 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Analysis: AnalysisConfig{
			Options: analysis.DefaultOptions(),
			Timeout: 60 * time.Second,
		},
		Source: SourceConfig{
			Kind: SourceMemory,
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
		LogLevel: "INFO",
	}
}

// Load reads tradenet.yml or tradenet.yaml from dir when present, applies
// environment overrides and validates the result. A missing file is not an
// error.
func Load(dir string) (*Config, error) {
	cfg := Default()

	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		break
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads a configuration file at an explicit path, then applies
// environment overrides and validates.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type lookupFunc func(key string) (string, bool)

// applyEnv overlays environment variables on the configuration.
func (c *Config) applyEnv(lookup lookupFunc) error {
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := lookup(key); ok && v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = f
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	integer("TRADENET_PORT", &c.Server.Port)
	if v, ok := lookup("TRADENET_CORS_ORIGINS"); ok && v != "" {
		c.Server.CORSOrigins = splitList(v)
	}

	integer("TRADENET_TOP_N", &c.Analysis.TopN)
	integer("TRADENET_MAX_ITERATIONS", &c.Analysis.MaxIterations)
	float("TRADENET_TOLERANCE", &c.Analysis.Tolerance)
	boolean("TRADENET_SHIFT", &c.Analysis.Shift)
	integer("TRADENET_MAX_PASSES", &c.Analysis.MaxPasses)
	integer("TRADENET_WORKERS", &c.Analysis.Workers)
	duration("TRADENET_ANALYSIS_TIMEOUT", &c.Analysis.Timeout)
	if v, ok := lookup("TRADENET_WEIGHT_POLICY"); ok && v != "" {
		c.Analysis.WeightPolicy = algorithms.WeightPolicy(strings.ToLower(v))
	}

	str("TRADENET_SOURCE", &c.Source.Kind)
	str("DATABASE_URL", &c.Source.DatabaseURL)
	str("TRADENET_SOURCE_PATH", &c.Source.Path)
	str("TRADENET_S3_BUCKET", &c.Source.Bucket)
	str("TRADENET_S3_KEY", &c.Source.Key)
	str("AWS_REGION", &c.Source.Region)
	str("TRADENET_S3_ENDPOINT", &c.Source.Endpoint)

	str("JWT_SECRET", &c.Auth.JWTSecret)
	boolean("TRADENET_AUTH_ENABLED", &c.Auth.Enabled)

	str("LOG_LEVEL", &c.LogLevel)

	return errors.Join(errs...)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks the configuration, reporting every problem found
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return err
	}

	server := validation.NewConfigValidator("server").
		RangeInt("port", c.Server.Port, 1, 65535).
		MinDuration("read_timeout", c.Server.ReadTimeout, time.Second).
		MinDuration("write_timeout", c.Server.WriteTimeout, time.Second)

	a := c.Analysis
	analysisCheck := validation.NewConfigValidator("analysis").
		RangeInt("top_n", a.TopN, 1, validation.MaxTopN).
		RangeInt("max_iterations", a.MaxIterations, 1, 100000).
		RangeFloat("tolerance", a.Tolerance, 0, 1).
		RangeInt("max_passes", a.MaxPasses, 1, 10000).
		RangeInt("workers", a.Workers, 0, 1024).
		OneOf("weight_policy", string(a.WeightPolicy), "distance", "inverse").
		MinDuration("timeout", a.Timeout, time.Second)

	s := c.Source
	sourceCheck := validation.NewConfigValidator("source").
		OneOf("kind", s.Kind, SourcePostgres, SourceFile, SourceS3, SourceMemory).
		When(s.Kind == SourcePostgres, func(cv *validation.ConfigValidator) {
			cv.Required("database_url", s.DatabaseURL)
		}).
		When(s.Kind == SourceFile, func(cv *validation.ConfigValidator) {
			cv.Required("path", s.Path)
		}).
		When(s.Kind == SourceS3, func(cv *validation.ConfigValidator) {
			cv.Required("bucket", s.Bucket).Required("key", s.Key)
		})

	auth := validation.NewConfigValidator("auth").
		When(c.Auth.Enabled, func(cv *validation.ConfigValidator) {
			cv.Custom("jwt_secret", func() error {
				if len(c.Auth.JWTSecret) < 32 {
					return errors.New("must be at least 32 characters when auth is enabled")
				}
				return nil
			})
		})

	return errors.Join(
		server.Validate(),
		analysisCheck.Validate(),
		sourceCheck.Validate(),
		auth.Validate(),
	)
}

// SourceSpec converts the source section for source.Open
func (c *Config) SourceSpec() source.Spec {
	return source.Spec{
		Kind:        c.Source.Kind,
		DatabaseURL: c.Source.DatabaseURL,
		Path:        c.Source.Path,
		Bucket:      c.Source.Bucket,
		Key:         c.Source.Key,
		Region:      c.Source.Region,
		Endpoint:    c.Source.Endpoint,
	}
}

// Address returns the listen address of the HTTP server
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
