// Package lightcurve provides the light curve command
package lightcurve

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/transientskp/tkpcat/cmd/cmdutil"
	"github.com/transientskp/tkpcat/internal/runtime"
)

// Command creates and returns the lightcurve command
func Command(rt *runtime.Context) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "lightcurve <xtrsrc-id>",
		Short: "Print the flux history of the catalog source a detection belongs to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cmdutil.ParseID("extracted source id", args[0])
			if err != nil {
				return err
			}

			points, err := rt.Assembler().LightCurve(cmd.Context(), id)
			if err != nil {
				return err
			}

			switch format {
			case "yaml":
				return cmdutil.PrintYAML(cmd.OutOrStdout(), points)
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(points)
			default:
				return fmt.Errorf("invalid format: %s", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format: yaml or json")
	return cmd
}
