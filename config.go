package authflow

import (
	"context"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/authflow/logging"
	"github.com/viant/authflow/service/request"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. AUTHFLOW_API_URL
const EnvPrefix = "AUTHFLOW_"

// Config is a serialisable representation of the service configuration. It is
// populated from YAML and environment variables.
type Config struct {
	// APIURL is the base URL of the authentication API.
	APIURL      string            `json:"apiURL" yaml:"apiURL" env:"API_URL" validate:"required,url"`
	Request     request.Config    `json:"request" yaml:"request" envPrefix:"REQUEST_"`
	Logging     logging.Config    `json:"logging" yaml:"logging" envPrefix:"LOG_"`
	Tracing     TracingConfig     `json:"tracing" yaml:"tracing" envPrefix:"TRACING_"`
	Metrics     MetricsConfig     `json:"metrics" yaml:"metrics" envPrefix:"METRICS_"`
	Credentials CredentialsConfig `json:"credentials" yaml:"credentials" envPrefix:"CREDENTIALS_"`
}

// TracingConfig enables the stdout span exporter
type TracingConfig struct {
	Enabled        bool   `json:"enabled" yaml:"enabled" env:"ENABLED"`
	ServiceName    string `json:"serviceName" yaml:"serviceName" env:"SERVICE_NAME" validate:"required_if=Enabled true"`
	ServiceVersion string `json:"serviceVersion" yaml:"serviceVersion" env:"SERVICE_VERSION"`
	// OutputFile receives spans; empty writes to stdout.
	OutputFile string `json:"outputFile" yaml:"outputFile" env:"OUTPUT_FILE"`
}

// MetricsConfig names the Prometheus namespace
type MetricsConfig struct {
	Namespace string `json:"namespace" yaml:"namespace" env:"NAMESPACE" validate:"required"`
}

// CredentialsConfig locates the session token sent with authenticated
// requests: either a plain token or a scy secret resource.
type CredentialsConfig struct {
	Token     string `json:"token,omitempty" yaml:"token,omitempty" env:"TOKEN" validate:"excluded_with=SecretURL"`
	SecretURL string `json:"secretURL,omitempty" yaml:"secretURL,omitempty" env:"SECRET_URL"`
	SecretKey string `json:"secretKey,omitempty" yaml:"secretKey,omitempty" env:"SECRET_KEY"`
}

// credentials returns the configured credentials or nil
func (c *CredentialsConfig) credentials() request.Credentials {
	switch {
	case c.SecretURL != "":
		return request.NewSecretCredentials(c.SecretURL, c.SecretKey)
	case c.Token != "":
		return request.StaticToken(c.Token)
	}
	return nil
}

// DefaultConfig returns a Config populated with default values. APIURL has no
// default and must be set.
func DefaultConfig() *Config {
	return &Config{
		Request: request.DefaultConfig(),
		Logging: logging.DefaultConfig(),
		Tracing: TracingConfig{ServiceName: "authflow", ServiceVersion: "1.0"},
		Metrics: MetricsConfig{Namespace: "authflow"},
	}
}

var configValidator = validator.New()

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadConfig reads the configuration with ReadConfig and validates it
func LoadConfig(ctx context.Context, URL string, options ...storage.Option) (*Config, error) {
	cfg, err := ReadConfig(ctx, URL, options...)
	if err != nil {
		return nil, err
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadConfig loads YAML configuration from URL (any afs supported location)
// over the defaults and applies environment overrides. An empty URL uses the
// defaults and environment only. The result is not validated.
func ReadConfig(ctx context.Context, URL string, options ...storage.Option) (*Config, error) {
	cfg := DefaultConfig()
	if URL != "" {
		fs := afs.New()
		data, err := fs.DownloadWithURL(ctx, URL, options...)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %v: %w", URL, err)
		}
		if err = yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config %v: %w", URL, err)
		}
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	return cfg, nil
}
