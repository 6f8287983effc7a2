// Package pipeline processes batches of images: every image is registered
// and its detections ingested concurrently, then the images of each dataset
// are associated one at a time in observation order.
package pipeline

import (
	"cmp"
	"context"
	"runtime"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/transientskp/tkpcat/internal/association"
	"github.com/transientskp/tkpcat/internal/errors"
	"github.com/transientskp/tkpcat/internal/ingest"
	"github.com/transientskp/tkpcat/internal/logger"
)

// Result is the outcome for one image of a batch.
type Result struct {
	ImageID     int64              `yaml:"image"`
	TraceID     string             `yaml:"trace_id"`
	Inserted    int                `yaml:"inserted"`
	Association association.Report `yaml:"association"`

	dataset    int64
	taustartTS time.Time
}

// Runner drives ingestion and association.
type Runner struct {
	ingester *ingest.Ingester
	matcher  *association.Matcher
	workers  int
	log      logger.Logger
}

// NewRunner creates a Runner with at most workers concurrent images.
// workers <= 0 uses the number of CPUs.
func NewRunner(ing *ingest.Ingester, matcher *association.Matcher, workers int, log logger.Logger) *Runner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Runner{
		ingester: ing,
		matcher:  matcher,
		workers:  workers,
		log:      log.Module("pipeline"),
	}
}

// Run processes batches and returns one Result per batch in input order.
// The first failure cancels the remaining work; images that were already
// committed stay in the catalog.
func (r *Runner) Run(ctx context.Context, batches []ImageBatch) ([]Result, error) {
	start := time.Now()
	results := make([]Result, len(batches))

	if err := r.ingestAll(ctx, batches, results); err != nil {
		return results, err
	}
	if err := r.associateAll(ctx, results); err != nil {
		return results, err
	}

	r.log.WithContext(ctx).Info("batch complete",
		logger.Int("images", len(batches)),
		logger.Duration("duration", time.Since(start)))
	return results, nil
}

func (r *Runner) ingestAll(ctx context.Context, batches []ImageBatch, results []Result) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for idx := range batches {
		results[idx].TraceID = uuid.NewString()
		g.Go(func() error {
			return r.ingestOne(logger.WithTraceID(gctx, results[idx].TraceID), &batches[idx], &results[idx])
		})
	}
	return g.Wait()
}

func (r *Runner) ingestOne(ctx context.Context, b *ImageBatch, res *Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	imageID, err := r.ingester.RegisterImage(ctx, &b.Image)
	if err != nil {
		return err
	}
	res.ImageID = imageID
	res.dataset = b.Image.Dataset
	res.taustartTS = b.Image.TaustartTS

	n, err := r.ingester.Ingest(ctx, imageID, b.Blind, ingest.Blind, nil, nil)
	if err != nil {
		return err
	}
	res.Inserted += n

	if dets, runcats := b.forcedNull(); len(dets) > 0 {
		if n, err = r.ingester.Ingest(ctx, imageID, dets, ingest.ForcedNull, runcats, nil); err != nil {
			return err
		}
		res.Inserted += n
	}
	if dets, monitors := b.forcedMonitor(); len(dets) > 0 {
		if n, err = r.ingester.Ingest(ctx, imageID, dets, ingest.ForcedMonitor, nil, monitors); err != nil {
			return err
		}
		res.Inserted += n
	}
	return nil
}

// associateAll runs datasets concurrently and the images within a dataset
// sequentially, earliest first.
func (r *Runner) associateAll(ctx context.Context, results []Result) error {
	order := make(map[int64][]*Result)
	for idx := range results {
		res := &results[idx]
		order[res.dataset] = append(order[res.dataset], res)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for dataset, images := range order {
		slices.SortStableFunc(images, func(a, b *Result) int {
			return cmp.Or(a.taustartTS.Compare(b.taustartTS), cmp.Compare(a.ImageID, b.ImageID))
		})
		g.Go(func() error {
			for _, res := range images {
				ictx := logger.WithTraceID(gctx, res.TraceID)
				if err := ictx.Err(); err != nil {
					return err
				}
				report, err := r.matcher.Associate(ictx, res.ImageID)
				if err != nil {
					return errors.New(err).
						Component("pipeline").
						Context("dataset_id", dataset).
						Context("image_id", res.ImageID).
						Build()
				}
				res.Association = report
			}
			return nil
		})
	}
	return g.Wait()
}
