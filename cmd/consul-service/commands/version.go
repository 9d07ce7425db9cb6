package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/consul-service/version"
)

func newVersionCmd() *cobra.Command {
	var short, asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			switch {
			case short:
				_, err := fmt.Fprintln(out, version.GetFullVersion())
				return err
			case asJSON:
				return writeJSON(out, version.GetVersionInfo())
			default:
				return printPairs(out, version.GetVersionInfo().Pairs())
			}
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "print a single version line")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print build information as JSON")
	return cmd
}
