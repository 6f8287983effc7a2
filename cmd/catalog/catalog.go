// Package catalog provides the running catalog maintenance commands
package catalog

import (
	"github.com/spf13/cobra"

	"github.com/transientskp/tkpcat/cmd/cmdutil"
	"github.com/transientskp/tkpcat/internal/runtime"
)

// Command creates and returns the catalog command
func Command(rt *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Maintain the running catalog",
	}
	cmd.AddCommand(mergeCommand(rt), exportCommand(rt))
	return cmd
}

func mergeCommand(rt *runtime.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <from-runcat> <into-runcat>",
		Short: "Fold one running catalog source into another of the same dataset",
		Long: `Moves every association, monitor and forced fit of the first source to the
second, deletes the first and recomputes the weighted position of the second.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := cmdutil.ParseIDs("runcat id", args)
			if err != nil {
				return err
			}
			return rt.Matcher().Merge(cmd.Context(), ids[0], ids[1])
		},
	}
}
