// Package commands implements the consul-service command line.
package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kbukum/consul-service/config"
	"github.com/kbukum/consul-service/service"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configFile string
	envFile    string
}

func (o *rootOptions) loaderOptions() []config.LoaderOption {
	var opts []config.LoaderOption
	if o.configFile != "" {
		opts = append(opts, config.WithConfigFile(o.configFile))
	}
	if o.envFile != "" {
		opts = append(opts, config.WithEnvFile(o.envFile))
	}
	return opts
}

func (o *rootOptions) loadSettings() (*service.Settings, error) {
	return service.LoadSettings(o.loaderOptions()...)
}

// NewRootCmd builds the command tree. Without a subcommand it serves.
func NewRootCmd() *cobra.Command {
	o := &rootOptions{}

	root := &cobra.Command{
		Use:   service.Name,
		Short: "HTTP service that registers itself with a Consul agent",
		Long: `consul-service serves GET /health, GET / and GET /services and keeps
a registration with the discovery agent for as long as it runs.

Configuration comes from config.yml, a .env file and the environment.
Use "consul-service [command] --help" for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), o)
		},
	}

	root.PersistentFlags().StringVar(&o.configFile, "config", "", "config file (default: search ./cmd/consul-service, ./config and .)")
	root.PersistentFlags().StringVar(&o.envFile, "env-file", "", ".env file (default: search next to the config file)")

	root.AddCommand(newServeCmd(o))
	root.AddCommand(newServicesCmd(o))
	root.AddCommand(newVersionCmd())
	root.CompletionOptions.DisableDefaultCmd = true

	return root
}

// Execute runs the command line with os.Args.
func Execute() error {
	return NewRootCmd().ExecuteContext(context.Background())
}
