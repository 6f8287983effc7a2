// Package monitor provides the monitor position commands
package monitor

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/transientskp/tkpcat/cmd/cmdutil"
	"github.com/transientskp/tkpcat/internal/errors"
	"github.com/transientskp/tkpcat/internal/runtime"
	"github.com/transientskp/tkpcat/internal/spatial"
)

// Command creates and returns the monitor command
func Command(rt *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Manage user-requested monitor positions",
	}
	cmd.AddCommand(addCommand(rt))
	return cmd
}

func addCommand(rt *runtime.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "add <dataset-id> <ra,dec>...",
		Short: "Add monitor positions (degrees) to a dataset and print their ids",
		Example: `  tkpcat monitor add 1 123.5,45.25 10.0,-30.0`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			datasetID, err := cmdutil.ParseID("dataset id", args[0])
			if err != nil {
				return err
			}

			positions := make([]spatial.Point, 0, len(args)-1)
			for _, arg := range args[1:] {
				p, err := parsePosition(arg)
				if err != nil {
					return err
				}
				positions = append(positions, p)
			}

			ids, err := rt.Ingester().RegisterMonitorPositions(cmd.Context(), datasetID, positions)
			if err != nil {
				return err
			}
			return cmdutil.PrintYAML(cmd.OutOrStdout(), ids)
		},
	}
}

func parsePosition(arg string) (spatial.Point, error) {
	raText, decText, ok := strings.Cut(arg, ",")
	if ok {
		ra, raErr := strconv.ParseFloat(raText, 64)
		dec, decErr := strconv.ParseFloat(decText, 64)
		if raErr == nil && decErr == nil {
			return spatial.Point{RA: ra, Dec: dec}, nil
		}
	}
	return spatial.Point{}, errors.Newf("position must be ra,dec in degrees, got %q", arg).
		Component("cli").
		Category(errors.CategoryValidation).
		Build()
}
