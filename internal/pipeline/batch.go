package pipeline

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/transientskp/tkpcat/internal/errors"
	"github.com/transientskp/tkpcat/internal/ingest"
)

// RuncatFit is a forced fit at a running-catalog position.
type RuncatFit struct {
	Runcat           int64 `yaml:"runcat"`
	ingest.Detection `yaml:",inline"`
}

// MonitorFit is a forced fit at a monitor position.
type MonitorFit struct {
	Monitor          int64 `yaml:"monitor"`
	ingest.Detection `yaml:",inline"`
}

// ImageBatch is one image and everything measured in it.
type ImageBatch struct {
	Image         ingest.ImageParams `yaml:"image"`
	Blind         []ingest.Detection `yaml:"blind"`
	ForcedNull    []RuncatFit        `yaml:"forced_null"`
	ForcedMonitor []MonitorFit       `yaml:"forced_monitor"`
}

// BatchFile is the YAML layout read by ReadBatches.
type BatchFile struct {
	Images []ImageBatch `yaml:"images"`
}

// ReadBatches decodes a batch file. Unknown fields are an error.
func ReadBatches(r io.Reader) ([]ImageBatch, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file BatchFile
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, errors.New(err).
			Component("pipeline").
			Category(errors.CategoryFileParsing).
			Build()
	}
	return file.Images, nil
}

func (b *ImageBatch) forcedNull() (dets []ingest.Detection, runcats []int64) {
	for _, f := range b.ForcedNull {
		dets = append(dets, f.Detection)
		runcats = append(runcats, f.Runcat)
	}
	return dets, runcats
}

func (b *ImageBatch) forcedMonitor() (dets []ingest.Detection, monitors []int64) {
	for _, f := range b.ForcedMonitor {
		dets = append(dets, f.Detection)
		monitors = append(monitors, f.Monitor)
	}
	return dets, monitors
}
