// Package dataset provides the dataset commands
package dataset

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/transientskp/tkpcat/cmd/cmdutil"
	"github.com/transientskp/tkpcat/internal/runtime"
)

// Command creates and returns the dataset command
func Command(rt *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Register and complete datasets",
	}
	cmd.AddCommand(createCommand(rt), completeCommand(rt))
	return cmd
}

func createCommand(rt *runtime.Context) *cobra.Command {
	var storeConfig bool

	cmd := &cobra.Command{
		Use:   "create <description>",
		Short: "Register a dataset and print its id",
		Long: `Registers a new dataset. A description that was used before gets the next
rerun number. Unless --store-config=false is given the job configuration
in effect is stored with the dataset.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := rt.Ingester().RegisterDataset(ctx, args[0])
			if err != nil {
				return err
			}
			if storeConfig {
				if err := rt.ConfigStore().StoreConfig(ctx, rt.Settings.Sections(), id); err != nil {
					return err
				}
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), id)
			return err
		},
	}
	cmd.Flags().BoolVar(&storeConfig, "store-config", true, "Store the job configuration with the dataset")
	return cmd
}

func completeCommand(rt *runtime.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <dataset-id>",
		Short: "Record the processing end time of a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cmdutil.ParseID("dataset id", args[0])
			if err != nil {
				return err
			}
			return rt.Ingester().MarkDatasetComplete(cmd.Context(), id)
		},
	}
}
