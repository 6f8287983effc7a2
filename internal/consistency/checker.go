// Package consistency runs invariant probes over the stored catalog.
package consistency

import (
	"context"
	"strings"

	"github.com/transientskp/tkpcat/internal/datastore"
	"github.com/transientskp/tkpcat/internal/logger"
	"github.com/transientskp/tkpcat/internal/observability/metrics"
)

// Probe is a counting query that must return zero on a healthy catalog.
type Probe struct {
	Name  string
	Query string
}

// Probes are run in this order.
var Probes = []Probe{
	{Name: "query_id0", Query: "SELECT COUNT(*) FROM extractedsource WHERE id = 0"},
	{Name: "query_image0", Query: "SELECT COUNT(*) FROM extractedsource WHERE image = 0"},
	{Name: "query_zone0", Query: "SELECT COUNT(*) FROM extractedsource WHERE id = 0 AND image = 0 AND zone = 0"},
}

// Failure describes one probe that did not return zero.
type Failure struct {
	Probe string
	Query string
	Count int64
	// Err is set when the probe could not run.
	Err error
}

// Report is the outcome of one Check.
type Report struct {
	Failures []Failure
}

// Consistent reports whether every probe returned zero.
func (r Report) Consistent() bool {
	return len(r.Failures) == 0
}

// Failed reports whether the named probe failed.
func (r Report) Failed(probe string) bool {
	for _, f := range r.Failures {
		if f.Probe == probe {
			return true
		}
	}
	return false
}

// String lists the failing probes.
func (r Report) String() string {
	if r.Consistent() {
		return "consistent"
	}
	names := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		names = append(names, f.Probe)
	}
	return "inconsistent: " + strings.Join(names, ", ")
}

// Checker runs the probes.
type Checker struct {
	store   datastore.Manager
	metrics *metrics.CatalogMetrics
	log     logger.Logger
}

// NewChecker creates a Checker. metrics may be nil.
func NewChecker(store datastore.Manager, m *metrics.CatalogMetrics, log logger.Logger) *Checker {
	return &Checker{store: store, metrics: m, log: log.Module("consistency")}
}

// Check runs every probe. A probe that cannot run counts as failed; Check
// itself never fails.
func (c *Checker) Check(ctx context.Context) Report {
	var report Report
	for _, p := range Probes {
		count, err := c.run(ctx, p)
		if err == nil && count == 0 {
			continue
		}

		report.Failures = append(report.Failures, Failure{Probe: p.Name, Query: p.Query, Count: count, Err: err})
		c.metrics.RecordConsistencyFailure(p.Name)
		if err != nil {
			c.log.Warn("consistency probe could not run",
				logger.String("probe", p.Name),
				logger.String("query", p.Query),
				logger.Error(err))
			continue
		}
		c.log.Warn("consistency probe found rows",
			logger.String("probe", p.Name),
			logger.String("query", p.Query),
			logger.Int64("count", count))
	}
	return report
}

// IsConsistent reports whether every probe passed.
func (c *Checker) IsConsistent(ctx context.Context) bool {
	return c.Check(ctx).Consistent()
}

func (c *Checker) run(ctx context.Context, p Probe) (count int64, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("consistency probe panicked", logger.String("probe", p.Name), logger.Any("panic", r))
			count, err = 0, errProbePanicked
		}
	}()

	row := c.store.DB().WithContext(ctx).Raw(p.Query).Row()
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
