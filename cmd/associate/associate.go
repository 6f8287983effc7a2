// Package associate provides the association command
package associate

import (
	"github.com/spf13/cobra"

	"github.com/transientskp/tkpcat/cmd/cmdutil"
	"github.com/transientskp/tkpcat/internal/association"
	"github.com/transientskp/tkpcat/internal/runtime"
)

// Command creates and returns the associate command
func Command(rt *runtime.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "associate <image-id>...",
		Short: "Associate the stored detections of images with the running catalog",
		Long: `Associates images one after the other in the order given. Images of one
dataset should be given in observation order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := cmdutil.ParseIDs("image id", args)
			if err != nil {
				return err
			}

			matcher := rt.Matcher()
			reports := make([]association.Report, 0, len(ids))
			for _, id := range ids {
				r, err := matcher.Associate(cmd.Context(), id)
				if err != nil {
					return err
				}
				reports = append(reports, r)
			}
			return cmdutil.PrintYAML(cmd.OutOrStdout(), reports)
		},
	}
}
