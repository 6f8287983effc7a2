package catalog

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/transientskp/tkpcat/cmd/cmdutil"
	"github.com/transientskp/tkpcat/internal/conf"
	"github.com/transientskp/tkpcat/internal/datastore"
	"github.com/transientskp/tkpcat/internal/datastore/transfer"
	"github.com/transientskp/tkpcat/internal/errors"
	"github.com/transientskp/tkpcat/internal/runtime"
)

func exportCommand(rt *runtime.Context) *cobra.Command {
	var (
		targetPath string
		opts       transfer.Options
		verify     bool
	)

	cmd := &cobra.Command{
		Use:   "export --target <settings.yaml>",
		Short: "Copy the whole catalog into another database",
		Long: `Copies every table of the open catalog into the database named by the
database section of the target settings file, keeping row ids. Rows already
present in the target are skipped, so an interrupted export can be rerun.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			targetSettings, err := conf.Load(targetPath)
			if err != nil {
				return err
			}
			if targetSettings.Database == rt.Settings.Database {
				return errors.Newf("export target is the open catalog").
					Component("cmd").
					Category(errors.CategoryValidation).
					Context("path", rt.Store.Path()).
					Build()
			}

			log := rt.Logger("export")
			target, err := datastore.Open(&targetSettings.Database, datastore.Options{Logger: log})
			if err != nil {
				return err
			}
			defer func() { _ = target.Close() }()

			stats, err := transfer.Copy(cmd.Context(), rt.Store, target, opts, log)
			if err != nil {
				return err
			}
			if err := cmdutil.PrintYAML(cmd.OutOrStdout(), stats); err != nil {
				return err
			}
			if !verify {
				return nil
			}

			mismatches, err := transfer.Verify(cmd.Context(), rt.Store, target, 0)
			if err != nil {
				return err
			}
			for _, m := range mismatches {
				fmt.Fprintln(cmd.OutOrStdout(), m)
			}
			if len(mismatches) > 0 {
				return errors.Newf("export verification found %d mismatches", len(mismatches)).
					Component("cmd").
					Category(errors.CategoryState).
					Build()
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&targetPath, "target", "", "settings file whose database section names the target")
	cmd.Flags().IntVar(&opts.BatchSize, "batch-size", transfer.DefaultBatchSize, "rows per insert")
	cmd.Flags().BoolVar(&opts.Clean, "clean", false, "empty the target tables first")
	cmd.Flags().BoolVar(&verify, "verify", true, "compare source and target after the copy")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}
