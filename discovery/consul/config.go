package consul

import (
	"net"
	"strconv"

	"github.com/kbukum/consul-service/validation"
)

// Config holds Consul agent connection settings.
type Config struct {
	// Host is the agent host name (default: localhost).
	Host string `yaml:"host" mapstructure:"host"`

	// Port is the agent HTTP port (default: 8500).
	Port int `yaml:"port" mapstructure:"port"`

	// Scheme is the URI scheme (http/https).
	Scheme string `yaml:"scheme" mapstructure:"scheme"`

	// Datacenter to use. Empty means the agent's own datacenter.
	Datacenter string `yaml:"datacenter" mapstructure:"datacenter"`

	// Token is the ACL token for authentication.
	Token string `yaml:"token" mapstructure:"token"`

	// TLS configuration.
	TLS TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// TLSConfig holds TLS configuration for Consul connections.
type TLSConfig struct {
	// CAFile is the path to CA certificate.
	CAFile string `yaml:"ca_file" mapstructure:"ca_file"`

	// CertFile is the path to client certificate.
	CertFile string `yaml:"cert_file" mapstructure:"cert_file"`

	// KeyFile is the path to client key.
	KeyFile string `yaml:"key_file" mapstructure:"key_file"`

	// InsecureSkipVerify skips TLS verification (not recommended for production).
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" mapstructure:"insecure_skip_verify"`
}

// ApplyDefaults sets sensible defaults for Config.
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 8500
	}
	if c.Scheme == "" {
		c.Scheme = "http"
	}
}

// Address returns the agent address as host:port.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Validate checks if the Consul configuration is valid.
func (c *Config) Validate() error {
	return validation.New().
		Required("consul.host", c.Host).
		Range("consul.port", c.Port, 1, 65535).
		OneOf("consul.scheme", c.Scheme, []string{"http", "https"}).
		Custom((c.TLS.CertFile == "") == (c.TLS.KeyFile == ""), "consul.tls", "cert_file and key_file must be set together").
		Validate()
}
