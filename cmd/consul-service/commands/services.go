package commands

import (
	"context"
	"encoding/json"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/consul-service/bootstrap"
	"github.com/kbukum/consul-service/discovery"
	"github.com/kbukum/consul-service/logger"
	"github.com/kbukum/consul-service/service"
)

func newServicesCmd(o *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "services",
		Short: "List the services registered with the discovery agent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := o.loadSettings()
			if err != nil {
				return err
			}

			// Logs go to stderr so stdout carries only the listing.
			logCfg := settings.Logging
			logCfg.Output = "stderr"
			log := logger.New(&logCfg, settings.Name)

			app, err := bootstrap.NewApp(settings, bootstrap.WithLogger(log), bootstrap.WithSummaryWriter(nil))
			if err != nil {
				return err
			}
			registrar, err := service.NewRegistrar(settings, log)
			if err != nil {
				return err
			}
			app.OnStop(func(context.Context) error { return registrar.Close() })

			out := cmd.OutOrStdout()
			return app.RunTask(cmd.Context(), func(ctx context.Context) error {
				listing, err := registrar.ListServices(ctx)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(out, listing)
				}
				return printServices(out, listing)
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the agent listing as JSON")
	return cmd
}

// printServices renders the listing as a table sorted by service id.
func printServices(w io.Writer, listing discovery.ServiceListing) error {
	ids := make([]string, 0, len(listing))
	for id := range listing {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	table := newTableData("ID", "Service", "Address", "Port", "Tags")
	for _, id := range ids {
		svc := listing[id]
		table.addRow(svc.ID, svc.Service, svc.Address, strconv.Itoa(svc.Port), strings.Join(svc.Tags, ","))
	}
	return printTable(w, table)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
