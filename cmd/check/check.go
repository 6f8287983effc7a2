// Package check provides the catalog consistency command
package check

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/transientskp/tkpcat/internal/errors"
	"github.com/transientskp/tkpcat/internal/runtime"
)

// Command creates and returns the check command
func Command(rt *runtime.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run the catalog consistency probes",
		Long:  `Runs every consistency probe and exits non-zero when any of them fails.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report := rt.Checker().Check(cmd.Context())
			out := cmd.OutOrStdout()
			for _, f := range report.Failures {
				if f.Err != nil {
					_, _ = fmt.Fprintf(out, "%s: %v\n", f.Probe, f.Err)
					continue
				}
				_, _ = fmt.Fprintf(out, "%s: %d rows\n", f.Probe, f.Count)
			}
			if !report.Consistent() {
				return errors.Newf("catalog %s", report.String()).
					Component("cli").
					Category(errors.CategoryState).
					Build()
			}
			_, err := fmt.Fprintln(out, report.String())
			return err
		},
	}
}
