// Package quality provides the image rejection commands
package quality

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/transientskp/tkpcat/cmd/cmdutil"
	"github.com/transientskp/tkpcat/internal/quality"
	"github.com/transientskp/tkpcat/internal/runtime"
)

// Command creates and returns the quality command
func Command(rt *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quality",
		Short: "Record and query image rejections",
	}
	cmd.AddCommand(rejectCommand(rt), unrejectCommand(rt), statusCommand(rt))
	return cmd
}

func rejectCommand(rt *runtime.Context) *cobra.Command {
	var comment string

	cmd := &cobra.Command{
		Use:   "reject <image-id> <reason>",
		Short: "Reject an image for quality reasons",
		Long: `Records a rejection of the image. The reason is one of rms, beam,
bright_source or tau_time. An image may be rejected more than once.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			imageID, err := cmdutil.ParseID("image id", args[0])
			if err != nil {
				return err
			}
			reason, err := quality.ParseReason(args[1])
			if err != nil {
				return err
			}
			return rt.Tracker().Reject(cmd.Context(), imageID, reason, comment)
		},
	}
	cmd.Flags().StringVarP(&comment, "comment", "m", "", "Free-text comment stored with the rejection")
	return cmd
}

func unrejectCommand(rt *runtime.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "unreject <image-id>",
		Short: "Remove every rejection of an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			imageID, err := cmdutil.ParseID("image id", args[0])
			if err != nil {
				return err
			}
			return rt.Tracker().Unreject(cmd.Context(), imageID)
		},
	}
}

func statusCommand(rt *runtime.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "status <image-id>",
		Short: "Print why an image was rejected, or \"accepted\"",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			imageID, err := cmdutil.ParseID("image id", args[0])
			if err != nil {
				return err
			}
			reasons, err := rt.Tracker().IsRejected(cmd.Context(), imageID)
			if err != nil {
				return err
			}
			if reasons == nil {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "accepted")
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(reasons, "\n"))
			return err
		},
	}
}
