package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kbukum/consul-service/service"
)

func newServeCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Register with the agent and serve HTTP until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), o)
		},
	}
}

// runServe loads settings once, then runs the service until SIGINT, SIGTERM
// or ctx cancellation.
func runServe(ctx context.Context, o *rootOptions) error {
	settings, err := o.loadSettings()
	if err != nil {
		return err
	}

	svc, err := service.New(settings)
	if err != nil {
		return err
	}
	return svc.Run(ctx)
}
