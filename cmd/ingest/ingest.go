// Package ingest provides the detection ingestion command
package ingest

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/transientskp/tkpcat/cmd/cmdutil"
	"github.com/transientskp/tkpcat/internal/ingest"
	"github.com/transientskp/tkpcat/internal/pipeline"
	"github.com/transientskp/tkpcat/internal/runtime"
)

// Command creates and returns the ingest command
func Command(rt *runtime.Context) *cobra.Command {
	var extractType string

	cmd := &cobra.Command{
		Use:   "ingest <image-id> <detections.yaml>",
		Short: "Store the detections of one image",
		Long: `Reads a YAML list of source fits and stores them for the image.

For --type=blind every entry is a plain fit. For ff_nd every entry also
carries "runcat", the running catalog source it was fitted at; for ff_ms
every entry carries "monitor". Fits with non-finite flux errors are
dropped. The number of stored fits is printed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			imageID, err := cmdutil.ParseID("image id", args[0])
			if err != nil {
				return err
			}
			typ, err := ingest.ParseExtractType(extractType)
			if err != nil {
				return err
			}

			dets, ffRuncat, ffMonitor, err := readDetections(args[1], cmd, typ)
			if err != nil {
				return err
			}

			n, err := rt.Ingester().Ingest(cmd.Context(), imageID, dets, typ, ffRuncat, ffMonitor)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), n)
			return err
		},
	}
	cmd.Flags().StringVarP(&extractType, "type", "t", ingest.Blind.String(), "Extraction type: blind, ff_nd or ff_ms")
	return cmd
}

func readDetections(path string, cmd *cobra.Command, typ ingest.ExtractType) (dets []ingest.Detection, ffRuncat, ffMonitor []int64, err error) {
	switch typ {
	case ingest.ForcedNull:
		var fits []pipeline.RuncatFit
		if err := cmdutil.ReadYAML(path, cmd.InOrStdin(), &fits); err != nil {
			return nil, nil, nil, err
		}
		for _, f := range fits {
			dets = append(dets, f.Detection)
			ffRuncat = append(ffRuncat, f.Runcat)
		}
	case ingest.ForcedMonitor:
		var fits []pipeline.MonitorFit
		if err := cmdutil.ReadYAML(path, cmd.InOrStdin(), &fits); err != nil {
			return nil, nil, nil, err
		}
		for _, f := range fits {
			dets = append(dets, f.Detection)
			ffMonitor = append(ffMonitor, f.Monitor)
		}
	default:
		if err := cmdutil.ReadYAML(path, cmd.InOrStdin(), &dets); err != nil {
			return nil, nil, nil, err
		}
	}
	return dets, ffRuncat, ffMonitor, nil
}
