package bootstrap

import (
	"github.com/kbukum/consul-service/config"
)

// Config is the interface constraint for application configuration types.
// Any struct that embeds config.ServiceConfig (value embedding) automatically
// satisfies this interface via promoted methods, and may override
// ApplyDefaults and Validate to cover its own sections.
//
// Example:
//
//	type Settings struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Server server.Config `yaml:"server" mapstructure:"server"`
//	}
//
//	app, err := bootstrap.NewApp[*Settings](&settings)
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
