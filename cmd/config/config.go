// Package config provides the per-dataset job configuration commands
package config

import (
	"github.com/spf13/cobra"

	"github.com/transientskp/tkpcat/cmd/cmdutil"
	"github.com/transientskp/tkpcat/internal/conf"
	"github.com/transientskp/tkpcat/internal/configstore"
	"github.com/transientskp/tkpcat/internal/runtime"
)

// Command creates and returns the config command
func Command(rt *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Store and fetch the job configuration of a dataset",
	}
	cmd.AddCommand(storeCommand(rt), fetchCommand(rt))
	return cmd
}

func storeCommand(rt *runtime.Context) *cobra.Command {
	var (
		settingsPath string
		rawPath      string
	)

	cmd := &cobra.Command{
		Use:   "store <dataset-id>",
		Short: "Store a job configuration with a dataset",
		Long: `Stores section/key/value configuration with the dataset, replacing values
stored earlier under the same keys. By default the configuration in effect
is stored. --settings stores another tkpcat configuration file; --raw
stores a free-form YAML mapping of sections to scalar values. Keys named
"password" are never stored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			datasetID, err := cmdutil.ParseID("dataset id", args[0])
			if err != nil {
				return err
			}

			var sections map[string]map[string]any
			switch {
			case rawPath != "":
				if err := cmdutil.ReadYAML(rawPath, cmd.InOrStdin(), &sections); err != nil {
					return err
				}
			case settingsPath != "":
				settings, err := conf.Load(settingsPath)
				if err != nil {
					return err
				}
				sections = settings.Sections()
			default:
				sections = rt.Settings.Sections()
			}

			return rt.ConfigStore().StoreConfig(cmd.Context(), sections, datasetID)
		},
	}
	cmd.Flags().StringVar(&settingsPath, "settings", "", "tkpcat configuration file to store")
	cmd.Flags().StringVar(&rawPath, "raw", "", "YAML mapping of sections to values to store")
	cmd.MarkFlagsMutuallyExclusive("settings", "raw")
	return cmd
}

func fetchCommand(rt *runtime.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <dataset-id>",
		Short: "Print the stored job configuration of a dataset as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			datasetID, err := cmdutil.ParseID("dataset id", args[0])
			if err != nil {
				return err
			}
			cfg, err := rt.ConfigStore().FetchConfig(cmd.Context(), datasetID)
			if err != nil {
				return err
			}
			return cmdutil.PrintYAML(cmd.OutOrStdout(), configstore.Native(cfg))
		},
	}
}
