// Package metrics provides the metrics endpoint command
package metrics

import (
	"github.com/spf13/cobra"

	"github.com/transientskp/tkpcat/internal/observability"
	"github.com/transientskp/tkpcat/internal/runtime"
)

// Command creates and returns the metrics command
func Command(rt *runtime.Context) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Serve Prometheus metrics until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			address := rt.Settings.Metrics.Listen
			if listen != "" {
				address = listen
			}
			// Probe once so consistency failures show up in the first scrape.
			_ = rt.Checker().Check(cmd.Context())
			return observability.NewEndpoint(address, rt.Metrics, rt.Logger("cli")).Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Listen address, overrides metrics.listen")
	return cmd
}
