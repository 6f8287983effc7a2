// Package image provides the image registration command
package image

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/transientskp/tkpcat/cmd/cmdutil"
	"github.com/transientskp/tkpcat/internal/ingest"
	"github.com/transientskp/tkpcat/internal/runtime"
)

// Command creates and returns the image command
func Command(rt *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image",
		Short: "Register images",
	}
	cmd.AddCommand(registerCommand(rt))
	return cmd
}

func registerCommand(rt *runtime.Context) *cobra.Command {
	var datasetID int64

	cmd := &cobra.Command{
		Use:   "register <params.yaml>",
		Short: "Register an image from a YAML parameter file and print its id",
		Long: `Registers one image. The parameter file holds the image fields as written
by the imaging pipeline (freq_eff, taustart_ts, beam_smaj_pix, ...). Use "-"
to read standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var params ingest.ImageParams
			if err := cmdutil.ReadYAML(args[0], cmd.InOrStdin(), &params); err != nil {
				return err
			}
			if datasetID != 0 {
				params.Dataset = datasetID
			}

			id, err := rt.Ingester().RegisterImage(cmd.Context(), &params)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), id)
			return err
		},
	}
	cmd.Flags().Int64Var(&datasetID, "dataset", 0, "Dataset id, overrides the parameter file")
	return cmd
}
