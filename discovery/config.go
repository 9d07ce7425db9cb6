package discovery

import (
	"time"

	"github.com/kbukum/consul-service/validation"
)

// Supported provider names.
const (
	ProviderConsul = "consul"
	ProviderStatic = "static"
)

// Config holds service discovery and registration configuration.
type Config struct {
	// Provider selects the discovery backend: "consul" or "static".
	Provider string `yaml:"provider" mapstructure:"provider"`

	// Registration describes how this service registers itself.
	Registration RegistrationConfig `yaml:"registration" mapstructure:"registration"`
}

// RegistrationConfig describes the registration submitted to the agent.
type RegistrationConfig struct {
	// ServiceName is the name used when registering this service.
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`

	// ServicePort is the port advertised to other services.
	ServicePort int `yaml:"service_port" mapstructure:"service_port"`

	// ServiceAddress is the address advertised to other services. When empty
	// the local host name is resolved at registration time.
	ServiceAddress string `yaml:"service_address" mapstructure:"service_address"`

	// Tags are metadata tags attached to the service registration.
	Tags []string `yaml:"tags" mapstructure:"tags"`

	// Metadata is arbitrary key-value metadata for the service.
	Metadata map[string]string `yaml:"metadata" mapstructure:"metadata"`

	// HealthCheckPath is the HTTP path the agent probes (e.g. "/health").
	HealthCheckPath string `yaml:"health_check_path" mapstructure:"health_check_path"`

	// HealthCheckInterval controls how often health is polled.
	HealthCheckInterval time.Duration `yaml:"health_check_interval" mapstructure:"health_check_interval"`

	// HealthCheckTimeout is the timeout for a single health check.
	HealthCheckTimeout time.Duration `yaml:"health_check_timeout" mapstructure:"health_check_timeout"`

	// DeregisterAfter removes the service after being critical for this
	// duration. Zero leaves the registration in place.
	DeregisterAfter time.Duration `yaml:"deregister_after" mapstructure:"deregister_after"`
}

// ApplyDefaults fills zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderConsul
	}
	c.Registration.ApplyDefaults()
}

// ApplyDefaults fills zero-valued registration fields.
func (c *RegistrationConfig) ApplyDefaults() {
	if c.Tags == nil {
		c.Tags = []string{"go", "api"}
	}
	if c.HealthCheckPath == "" {
		c.HealthCheckPath = "/health"
	}
	if c.HealthCheckInterval == 0 {
		c.HealthCheckInterval = 10 * time.Second
	}
	if c.HealthCheckTimeout == 0 {
		c.HealthCheckTimeout = 5 * time.Second
	}
}

// Validate checks that required fields are present and consistent.
func (c *Config) Validate() error {
	v := validation.New().OneOf("provider", c.Provider, []string{ProviderConsul, ProviderStatic})
	c.Registration.check(v)
	return v.Validate()
}

// Validate checks the registration fields.
func (c *RegistrationConfig) Validate() error {
	v := validation.New()
	c.check(v)
	return v.Validate()
}

func (c *RegistrationConfig) check(v *validation.Validator) {
	v.Required("registration.service_name", c.ServiceName).
		Range("registration.service_port", c.ServicePort, 1, 65535).
		Prefix("registration.health_check_path", c.HealthCheckPath, "/").
		PositiveDuration("registration.health_check_interval", c.HealthCheckInterval).
		PositiveDuration("registration.health_check_timeout", c.HealthCheckTimeout).
		NonNegativeDuration("registration.deregister_after", c.DeregisterAfter)
}
