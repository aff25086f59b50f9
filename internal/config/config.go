// Package config loads process settings from defaults, an optional YAML
// file, a local .env file and GCPWATCH_ environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ppiankov/gcpwatch/internal/audit"
	"github.com/ppiankov/gcpwatch/internal/errs"
	"github.com/ppiankov/gcpwatch/internal/gcp"
	"github.com/ppiankov/gcpwatch/internal/ratelimit"
)

// EnvPrefix is prepended to every environment override, e.g.
// GCPWATCH_AUDIT_CONCURRENCY.
const EnvPrefix = "GCPWATCH"

// Version is stamped at build time.
var Version = "dev"

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	GCP    GCPConfig    `mapstructure:"gcp"`
	Audit  AuditConfig  `mapstructure:"audit"`
	Events EventsConfig `mapstructure:"events"`
	Search SearchConfig `mapstructure:"search"`

	// File is the config file actually read, if any.
	File string `mapstructure:"-"`
}

type ServerConfig struct {
	Addr               string        `mapstructure:"addr" validate:"required,hostname_port"`
	Path               string        `mapstructure:"path" validate:"required,startswith=/"`
	CORSAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout" validate:"min=0"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json console"`
}

type GCPConfig struct {
	UserAgent      string        `mapstructure:"user_agent"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"min=0"`
	Endpoints      gcp.Endpoints `mapstructure:"endpoints"`
}

type AuditConfig struct {
	Service     string                `mapstructure:"service" validate:"required,fqdn"`
	Concurrency int                   `mapstructure:"concurrency" validate:"min=1,max=64"`
	MaxChildren int                   `mapstructure:"max_children" validate:"min=1,max=10000"`
	Recursive   bool                  `mapstructure:"recursive"`
	CallTimeout time.Duration         `mapstructure:"call_timeout" validate:"min=0"`
	RateQPS     float64               `mapstructure:"rate_qps" validate:"min=0"`
	Retry       ratelimit.RetryPolicy `mapstructure:"retry"`
}

type EventsConfig struct {
	DefaultResults int `mapstructure:"default_results" validate:"min=1,ltefield=MaxResults"`
	MaxResults     int `mapstructure:"max_results" validate:"min=1,max=1000"`
}

type SearchConfig struct {
	PageSize int `mapstructure:"page_size" validate:"min=1,max=500"`
}

// Options converts the audit section for the orchestrator.
func (c AuditConfig) Options() audit.Options {
	return audit.Options{
		Service:     c.Service,
		Concurrency: c.Concurrency,
		MaxChildren: c.MaxChildren,
		Recursive:   c.Recursive,
		CallTimeout: c.CallTimeout,
		RateQPS:     c.RateQPS,
		Retry:       c.Retry,
	}
}

// Factory converts the gcp section for the client factory.
func (c GCPConfig) Factory() gcp.Config {
	return gcp.Config{
		Endpoints:      c.Endpoints,
		UserAgent:      c.UserAgent,
		RequestTimeout: c.RequestTimeout,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.path", "/mcp")
	v.SetDefault("server.cors_allowed_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("gcp.user_agent", "gcpwatch/"+Version)
	v.SetDefault("gcp.request_timeout", 30*time.Second)
	v.SetDefault("gcp.endpoints.service_health", "")
	v.SetDefault("gcp.endpoints.cloud_asset", "")
	v.SetDefault("gcp.endpoints.resource_manager", "")
	v.SetDefault("gcp.endpoints.service_usage", "")

	def := audit.DefaultOptions()
	v.SetDefault("audit.service", def.Service)
	v.SetDefault("audit.concurrency", def.Concurrency)
	v.SetDefault("audit.max_children", def.MaxChildren)
	v.SetDefault("audit.recursive", def.Recursive)
	v.SetDefault("audit.call_timeout", def.CallTimeout)
	v.SetDefault("audit.rate_qps", def.RateQPS)
	v.SetDefault("audit.retry.max_attempts", def.Retry.MaxAttempts)
	v.SetDefault("audit.retry.base_delay", def.Retry.BaseDelay)
	v.SetDefault("audit.retry.max_delay", def.Retry.MaxDelay)

	v.SetDefault("events.default_results", 10)
	v.SetDefault("events.max_results", 100)
	v.SetDefault("search.page_size", 50)
}

// Load reads configuration. path may be empty, in which case ./gcpwatch.yaml
// is used if present. A .env file in the working directory is loaded into the
// environment first; existing variables win.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("gcpwatch")
		v.AddConfigPath(".")
	}
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errs.Configuration("failed to read config file").WithCause(err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errs.Configuration("failed to parse config").WithCause(err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return errs.Configuration(fmt.Sprintf("invalid config value %s (%s)", fe.Namespace(), fe.Tag())).WithCause(err)
		}
		return errs.Configuration("invalid config").WithCause(err)
	}
	return nil
}
