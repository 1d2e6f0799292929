package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thewaterfall/fluent-go/internal/update"
)

// Version is the CLI version, set at build time via
// -ldflags "-X .../internal/cmd.Version=v1.2.3".
var Version = "dev"

func newVersionCommand() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the fluent version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "fluent %s\n", Version)

			if !check {
				return nil
			}
			result := update.Check(cmd.Context(), Version)
			switch {
			case result == nil:
				fmt.Fprintln(out, "Update check unavailable")
			case result.UpdateAvailable:
				fmt.Fprintf(out, "Update available: %s (%s)\n", result.LatestVersion, result.UpdateURL)
			default:
				fmt.Fprintln(out, "Up to date")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "check for a newer release")
	return cmd
}
