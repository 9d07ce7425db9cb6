package service

import (
	"github.com/kbukum/consul-service/config"
	"github.com/kbukum/consul-service/discovery"
	"github.com/kbukum/consul-service/discovery/consul"
	apperrors "github.com/kbukum/consul-service/errors"
	"github.com/kbukum/consul-service/observability"
	"github.com/kbukum/consul-service/server"
	"github.com/kbukum/consul-service/validation"
	"github.com/kbukum/consul-service/version"
)

// Name is the service name used for config file discovery and as the
// default application and registration name.
const Name = "consul-service"

// MetricsConfig controls the Prometheus collectors and the /metrics route.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" mapstructure:"enabled"`
	Namespace string `yaml:"namespace" mapstructure:"namespace" validate:"required_with=Enabled"`
}

// Settings is the complete runtime configuration. It is loaded once by
// LoadSettings and treated as read-only afterwards.
type Settings struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server    server.Config              `yaml:"server" mapstructure:"server"`
	Consul    consul.Config              `yaml:"consul" mapstructure:"consul"`
	Discovery discovery.Config           `yaml:"discovery" mapstructure:"discovery"`
	Metrics   MetricsConfig              `yaml:"metrics" mapstructure:"metrics"`
	Tracing   observability.TracerConfig `yaml:"tracing" mapstructure:"tracing"`
}

// defaults are applied before config.yml, .env and the environment.
var defaults = map[string]any{
	"name":        Name,
	"environment": "development",
	"debug":       false,

	"server.host": "0.0.0.0",
	"server.port": 8000,

	"consul.host": "localhost",
	"consul.port": 8500,

	"discovery.provider":                  discovery.ProviderConsul,
	"discovery.registration.service_name": Name,
	"discovery.registration.service_port": 8000,

	"metrics.enabled":   true,
	"metrics.namespace": "consul_service",

	"tracing.endpoint":    "localhost:4318",
	"tracing.sample_rate": 1.0,
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"environment": "ENVIRONMENT",
	"name":        "APP_NAME",
	"version":     "APP_VERSION",
	"debug":       "DEBUG",

	"logging.level":  "LOG_LEVEL",
	"logging.format": "LOG_FORMAT",

	"server.host": "HOST",
	"server.port": "PORT",

	"consul.host":                     "CONSUL_HOST",
	"consul.port":                     "CONSUL_PORT",
	"consul.scheme":                   "CONSUL_SCHEME",
	"consul.token":                    "CONSUL_TOKEN",
	"consul.datacenter":               "CONSUL_DATACENTER",
	"consul.tls.ca_file":              "CONSUL_CA_FILE",
	"consul.tls.cert_file":            "CONSUL_CERT_FILE",
	"consul.tls.key_file":             "CONSUL_KEY_FILE",
	"consul.tls.insecure_skip_verify": "CONSUL_INSECURE_SKIP_VERIFY",

	"discovery.provider":                           "DISCOVERY_PROVIDER",
	"discovery.registration.service_name":          "SERVICE_NAME",
	"discovery.registration.service_port":          "SERVICE_PORT",
	"discovery.registration.service_address":       "SERVICE_ADDRESS",
	"discovery.registration.tags":                  "SERVICE_TAGS",
	"discovery.registration.health_check_path":     "HEALTH_CHECK_PATH",
	"discovery.registration.health_check_interval": "HEALTH_CHECK_INTERVAL",
	"discovery.registration.health_check_timeout":  "HEALTH_CHECK_TIMEOUT",
	"discovery.registration.deregister_after":      "DEREGISTER_AFTER",

	"metrics.enabled": "METRICS_ENABLED",

	"tracing.enabled":     "TRACING_ENABLED",
	"tracing.endpoint":    "TRACING_ENDPOINT",
	"tracing.insecure":    "TRACING_INSECURE",
	"tracing.sample_rate": "TRACING_SAMPLE_RATE",
}

// LoadSettings reads defaults, config.yml, .env and the process environment,
// then defaults and validates the result. Every failure is a CONFIGURATION_ERROR.
func LoadSettings(opts ...config.LoaderOption) (*Settings, error) {
	base := []config.LoaderOption{
		config.WithDefaults(defaults),
		config.WithEnvBindings(envBindings),
	}

	var s Settings
	if err := config.LoadConfig(Name, &s, append(base, opts...)...); err != nil {
		return nil, err
	}
	s.ApplyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ApplyDefaults fills every section. The version falls back to the build
// version and the registration port to the listen port.
func (s *Settings) ApplyDefaults() {
	if s.Version == "" {
		s.Version = version.Resolve("")
	}
	s.ServiceConfig.ApplyDefaults()
	s.Server.ApplyDefaults()
	s.Consul.ApplyDefaults()
	if s.Discovery.Registration.ServiceName == "" {
		s.Discovery.Registration.ServiceName = s.Name
	}
	if s.Discovery.Registration.ServicePort == 0 {
		s.Discovery.Registration.ServicePort = s.Server.Port
	}
	s.Discovery.ApplyDefaults()

	s.Tracing.ServiceName = s.Discovery.Registration.ServiceName
	s.Tracing.ServiceVersion = s.Version
	s.Tracing.Environment = s.Environment
}

// Validate checks every section and reports the first failing one as a
// CONFIGURATION_ERROR carrying the offending fields.
func (s *Settings) Validate() error {
	if err := s.ServiceConfig.Validate(); err != nil {
		return invalid(err)
	}
	if err := validation.Validate(s); err != nil {
		return invalid(err)
	}

	v := validation.New().
		Required("server.host", s.Server.Host).
		Range("server.port", s.Server.Port, 1, 65535).
		Custom(s.Tracing.SampleRate >= 0 && s.Tracing.SampleRate <= 1, "tracing.sample_rate", "must be between 0 and 1")
	if err := v.Validate(); err != nil {
		return invalid(err)
	}

	if err := s.Server.Validate(); err != nil {
		return invalid(err)
	}
	if err := s.Discovery.Validate(); err != nil {
		return invalid(err)
	}
	if s.Discovery.Provider == discovery.ProviderConsul {
		if err := s.Consul.Validate(); err != nil {
			return invalid(err)
		}
	}
	return nil
}

func invalid(err error) error {
	appErr := apperrors.Configuration("invalid settings", err)
	if fields := validation.FieldErrors(err); len(fields) > 0 {
		appErr = appErr.WithDetail("fields", fields)
	}
	return appErr
}
