package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/transientskp/tkpcat/cmd/associate"
	"github.com/transientskp/tkpcat/cmd/catalog"
	"github.com/transientskp/tkpcat/cmd/check"
	"github.com/transientskp/tkpcat/cmd/config"
	"github.com/transientskp/tkpcat/cmd/dataset"
	"github.com/transientskp/tkpcat/cmd/image"
	"github.com/transientskp/tkpcat/cmd/ingest"
	"github.com/transientskp/tkpcat/cmd/lightcurve"
	"github.com/transientskp/tkpcat/cmd/metrics"
	"github.com/transientskp/tkpcat/cmd/monitor"
	"github.com/transientskp/tkpcat/cmd/quality"
	"github.com/transientskp/tkpcat/cmd/run"
	"github.com/transientskp/tkpcat/internal/conf"
	"github.com/transientskp/tkpcat/internal/runtime"
)

// globalFlags are the persistent flags of the root command.
type globalFlags struct {
	configPath string
	database   string
	debug      bool
}

// RootCommand creates and returns the root command
func RootCommand(rt *runtime.Context) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "tkpcat",
		Short:         "Radio source catalog ingestion and association",
		Version:       fmt.Sprintf("%s (built %s)", rt.Version, rt.BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set up the global flags for the root command.
	setupFlags(rootCmd, flags)

	// Add sub-commands to the root command.
	subcommands := []*cobra.Command{
		dataset.Command(rt),
		image.Command(rt),
		monitor.Command(rt),
		ingest.Command(rt),
		associate.Command(rt),
		run.Command(rt),
		lightcurve.Command(rt),
		quality.Command(rt),
		check.Command(rt),
		config.Command(rt),
		catalog.Command(rt),
		metrics.Command(rt),
	}

	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return initialize(cmd, rt, flags)
	}
	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return rt.Close()
	}

	return rootCmd
}

// initialize is called before any subcommand runs. It loads the
// configuration, applies flag overrides and opens the catalog.
func initialize(cmd *cobra.Command, rt *runtime.Context, flags *globalFlags) error {
	settings, err := conf.Load(flags.configPath)
	if err != nil {
		return err
	}

	if flags.database != "" {
		settings.Database.Type = conf.DatabaseSQLite
		settings.Database.Path = flags.database
	}
	if flags.debug {
		settings.Logging.DefaultLevel = "debug"
		if settings.Logging.Console != nil {
			settings.Logging.Console.Level = "debug"
		}
	}
	if err := conf.ValidateSettings(settings); err != nil {
		return err
	}

	return rt.Open(cmd.Context(), settings)
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, flags *globalFlags) {
	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Configuration file (defaults plus TKPCAT_* environment when empty)")
	rootCmd.PersistentFlags().StringVar(&flags.database, "database", "", "SQLite catalog file, overrides the database section")
	rootCmd.PersistentFlags().BoolVarP(&flags.debug, "debug", "d", false, "Enable debug output")
}
