// Package run provides the batch processing command
package run

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/transientskp/tkpcat/cmd/cmdutil"
	"github.com/transientskp/tkpcat/internal/observability"
	"github.com/transientskp/tkpcat/internal/pipeline"
	"github.com/transientskp/tkpcat/internal/runtime"
)

// Command creates and returns the run command
func Command(rt *runtime.Context) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "run <batch.yaml>",
		Short: "Register, ingest and associate a batch of images",
		Long: `Processes a batch file with an "images" list. Every entry holds the image
parameters and its blind, forced_null and forced_monitor fits. Images are
ingested concurrently and associated per dataset in observation order.
When metrics are enabled in the configuration the /metrics endpoint is
served while the batch runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := cmdutil.Open(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			batches, err := pipeline.ReadBatches(r)
			_ = r.Close()
			if err != nil {
				return err
			}

			results, err := runWithMetrics(cmd.Context(), rt, func(ctx context.Context) ([]pipeline.Result, error) {
				return rt.Runner(workers).Run(ctx, batches)
			})
			if err != nil {
				return err
			}
			return cmdutil.PrintYAML(cmd.OutOrStdout(), results)
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Images ingested concurrently (0 uses the number of CPUs)")
	return cmd
}

// runWithMetrics runs fn, serving the metrics endpoint alongside it when
// metrics are enabled.
func runWithMetrics(ctx context.Context, rt *runtime.Context, fn func(context.Context) ([]pipeline.Result, error)) ([]pipeline.Result, error) {
	if !rt.Settings.Metrics.Enabled {
		return fn(ctx)
	}

	endpoint := observability.NewEndpoint(rt.Settings.Metrics.Listen, rt.Metrics, rt.Logger("cli"))
	serveCtx, stopServing := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(serveCtx)
	g.Go(func() error {
		return endpoint.Run(gctx)
	})

	results, err := fn(ctx)
	stopServing()
	if serveErr := g.Wait(); err == nil {
		err = serveErr
	}
	return results, err
}
