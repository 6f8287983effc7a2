// Package association links the extracted sources of an image to the
// running catalog of its dataset.
//
// Blind detections are matched by De Ruiter distance against the weighted
// mean positions of the catalog. Every catalog source takes at most one
// blind detection per image; detections left over start new catalog
// sources. Forced fits are attached to the source they were fitted for.
// One Associate call is one transaction.
package association

import (
	"cmp"
	"context"
	"slices"
	"time"

	"gorm.io/gorm"

	"github.com/transientskp/tkpcat/internal/astrometry"
	"github.com/transientskp/tkpcat/internal/conf"
	"github.com/transientskp/tkpcat/internal/datastore"
	"github.com/transientskp/tkpcat/internal/datastore/entities"
	"github.com/transientskp/tkpcat/internal/datastore/repository"
	"github.com/transientskp/tkpcat/internal/errors"
	"github.com/transientskp/tkpcat/internal/logger"
	"github.com/transientskp/tkpcat/internal/observability/metrics"
	"github.com/transientskp/tkpcat/internal/spatial"
)

// Config holds the association parameters.
type Config struct {
	// Threshold is the largest De Ruiter distance accepted as a match.
	Threshold float64
}

// ConfigFromSettings derives the association parameters from the loaded settings.
func ConfigFromSettings(settings *conf.Settings) Config {
	return Config{Threshold: settings.SourceAssociation.DeRuiterThreshold()}
}

// Report counts what one Associate call did.
type Report struct {
	ImageID int64 `yaml:"image"`
	// Matched blind detections joined an existing catalog source.
	Matched int `yaml:"matched"`
	// Created blind detections started a new catalog source.
	Created int `yaml:"created"`
	// ForcedNull and ForcedMonitor count attached forced fits.
	ForcedNull    int `yaml:"forced_null"`
	ForcedMonitor int `yaml:"forced_monitor"`
}

// Total returns the number of associations written.
func (r Report) Total() int {
	return r.Matched + r.Created + r.ForcedNull + r.ForcedMonitor
}

// Matcher associates images with the running catalog.
type Matcher struct {
	store   datastore.Manager
	cfg     Config
	metrics *metrics.CatalogMetrics
	log     logger.Logger
}

// NewMatcher creates a Matcher. metrics may be nil.
func NewMatcher(store datastore.Manager, cfg Config, m *metrics.CatalogMetrics, log logger.Logger) *Matcher {
	if cfg.Threshold <= 0 {
		cfg.Threshold = conf.DefaultDeRuiterRadius * astrometry.ArcsecPerDegree
	}
	return &Matcher{
		store:   store,
		cfg:     cfg,
		metrics: m,
		log:     log.Module("association"),
	}
}

// Associate links every not yet associated source of an image. Calling it
// again for the same image is a no-op.
//
// Existing catalog sources are re-read under row locks before they are
// updated, so concurrent calls never lose an update. A catalog source created
// by one call is invisible to another until its transaction commits: two
// concurrent images of a dataset that both see a new sky position each
// create a catalog source for it. Runner associates the images of a dataset
// in time order and never hits this.
func (m *Matcher) Associate(ctx context.Context, imageID int64) (Report, error) {
	start := time.Now()
	log := m.log.WithContext(ctx).With(logger.Int64("image_id", imageID))

	var (
		report    Report
		distances []float64
	)
	err := m.store.Transaction(ctx, "associate", func(tx *gorm.DB) error {
		p, err := m.associate(ctx, tx, imageID)
		report, distances = p.report, p.distances
		return err
	})
	m.metrics.ObserveAssociateDuration(time.Since(start).Seconds())
	if err != nil {
		log.Error("association failed", logger.Error(err))
		return Report{ImageID: imageID}, err
	}

	m.record(report, distances)
	log.Info("associated sources",
		logger.Int("matched", report.Matched),
		logger.Int("created", report.Created),
		logger.Int("forced_null", report.ForcedNull),
		logger.Int("forced_monitor", report.ForcedMonitor),
		logger.Duration("duration", time.Since(start)))
	return report, nil
}

func (m *Matcher) record(r Report, distances []float64) {
	for _, d := range distances {
		m.metrics.ObserveDeRuiterDistance(d)
	}
	for range r.Matched {
		m.metrics.RecordAssociation(metrics.OutcomeMatched)
	}
	for range r.Created {
		m.metrics.RecordAssociation(metrics.OutcomeCreated)
	}
	for range r.ForcedNull {
		m.metrics.RecordAssociation(metrics.OutcomeForcedNull)
	}
	for range r.ForcedMonitor {
		m.metrics.RecordAssociation(metrics.OutcomeForcedMonitor)
	}
}

// pass holds the state of one Associate transaction.
type pass struct {
	ctx      context.Context
	image    *entities.Image
	runcats  repository.RunningCatalogRepository
	monitors repository.MonitorRepository

	// loaded holds every catalog source touched by this pass, locked.
	loaded map[int64]*entities.RunningCatalog
	dirty  map[int64]bool
	links  []entities.AssocXtrSource
	report Report
	// distances holds the De Ruiter distance of every blind match
	distances []float64
}

// match is an accepted blind pairing.
type match struct {
	runcat   int64
	distance float64
	r        float64
}

func (m *Matcher) associate(ctx context.Context, tx *gorm.DB, imageID int64) (*pass, error) {
	p := &pass{
		ctx:      ctx,
		runcats:  repository.NewRunningCatalogRepository(tx, m.store.Dialect().SupportsRowLocks()),
		monitors: repository.NewMonitorRepository(tx),
		loaded:   make(map[int64]*entities.RunningCatalog),
		dirty:    make(map[int64]bool),
		report:   Report{ImageID: imageID},
	}

	image, err := repository.NewImageRepository(tx).GetByID(ctx, imageID)
	if err != nil {
		if errors.Is(err, repository.ErrImageNotFound) {
			return p, notFoundError(err, "image", imageID)
		}
		return p, err
	}
	p.image = image

	sources, err := repository.NewExtractedSourceRepository(tx).Unassociated(ctx, imageID)
	if err != nil || len(sources) == 0 {
		return p, err
	}

	matches, err := m.matchBlind(p, sources)
	if err != nil {
		return p, err
	}
	monitors, err := p.loadMonitors(sources)
	if err != nil {
		return p, err
	}
	if err := p.lock(sources, matches, monitors); err != nil {
		return p, err
	}

	// Sources are folded in id order so the weighted means are reproducible.
	for idx := range sources {
		s := &sources[idx]
		switch s.ExtractType {
		case entities.ExtractTypeBlind:
			err = p.applyBlind(s, matches)
		case entities.ExtractTypeForcedNull:
			err = p.applyForcedNull(s)
		case entities.ExtractTypeForcedMonitor:
			err = p.applyForcedMonitor(s, monitors[*s.FFMonitor])
		default:
			err = contractError("extractedsource %d has unknown extract type %d", s.ID, s.ExtractType)
		}
		if err != nil {
			return p, err
		}
	}

	if err := p.flush(); err != nil {
		return p, err
	}
	if err := repository.NewAssociationRepository(tx).CreateBatch(ctx, p.links); err != nil {
		return p, err
	}
	return p, nil
}

// matchBlind picks for every blind detection the catalog source with the
// smallest De Ruiter distance within the threshold, ties broken by the lower
// catalog id. Several detections of one image may pick the same source.
func (m *Matcher) matchBlind(p *pass, sources []entities.ExtractedSource) (map[int64]match, error) {
	matches := make(map[int64]match)

	if !slices.ContainsFunc(sources, func(s entities.ExtractedSource) bool {
		return s.ExtractType == entities.ExtractTypeBlind
	}) {
		return matches, nil
	}

	maxCatalog, err := p.runcats.MaxUncertainty(p.ctx, p.image.Dataset)
	if err != nil {
		return nil, err
	}
	index := p.runcats.Index(p.image.Dataset)

	for idx := range sources {
		s := &sources[idx]
		if s.ExtractType != entities.ExtractTypeBlind {
			continue
		}
		pos := positionOf(s)
		radius := astrometry.MatchRadius(m.cfg.Threshold, max(s.UncertaintyEW, s.UncertaintyNS), maxCatalog)
		candidates, err := index.Candidates(p.ctx, spatial.Point{RA: s.RA, Dec: s.Decl}, radius)
		if err != nil {
			return nil, err
		}

		var (
			best  match
			found bool
		)
		for _, c := range candidates {
			cpos := astrometry.Position{RA: c.RA, Dec: c.Dec, UncertaintyEW: c.UncertaintyEW, UncertaintyNS: c.UncertaintyNS}
			r := astrometry.DeRuiter(pos, cpos)
			if r > m.cfg.Threshold {
				continue
			}
			if found && cmp.Or(cmp.Compare(r, best.r), cmp.Compare(c.ID, best.runcat)) >= 0 {
				continue
			}
			best = match{runcat: c.ID, distance: separationArcsec(pos, cpos), r: r}
			found = true
		}
		if found {
			matches[s.ID] = best
		}
	}
	return matches, nil
}

// loadMonitors fetches the monitor positions referenced by forced fits.
func (p *pass) loadMonitors(sources []entities.ExtractedSource) (map[int64]*entities.Monitor, error) {
	monitors := make(map[int64]*entities.Monitor)
	for idx := range sources {
		s := &sources[idx]
		if s.ExtractType != entities.ExtractTypeForcedMonitor {
			continue
		}
		if s.FFMonitor == nil {
			return nil, contractError("forced-monitor extractedsource %d has no monitor id", s.ID)
		}
		if _, ok := monitors[*s.FFMonitor]; ok {
			continue
		}
		mon, err := p.monitors.GetByID(p.ctx, *s.FFMonitor)
		if err != nil {
			if errors.Is(err, repository.ErrMonitorNotFound) {
				return nil, contractError("extractedsource %d refers to missing monitor %d", s.ID, *s.FFMonitor)
			}
			return nil, err
		}
		if mon.Dataset != p.image.Dataset {
			return nil, contractError("monitor %d belongs to dataset %d, image %d to dataset %d",
				mon.ID, mon.Dataset, p.image.ID, p.image.Dataset)
		}
		monitors[mon.ID] = mon
	}
	return monitors, nil
}

// lock loads every catalog source the pass will update, in ascending id
// order.
func (p *pass) lock(sources []entities.ExtractedSource, matches map[int64]match, monitors map[int64]*entities.Monitor) error {
	var ids []int64
	for _, mt := range matches {
		ids = append(ids, mt.runcat)
	}
	for idx := range sources {
		s := &sources[idx]
		if s.ExtractType != entities.ExtractTypeForcedNull {
			continue
		}
		if s.FFRuncat == nil {
			return contractError("forced-null extractedsource %d has no runcat id", s.ID)
		}
		ids = append(ids, *s.FFRuncat)
	}
	for _, mon := range monitors {
		if mon.Runcat != nil {
			ids = append(ids, *mon.Runcat)
		}
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	for _, id := range ids {
		rc, err := p.runcats.GetByID(p.ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrRunningCatalogNotFound) {
				return contractError("runningcatalog %d does not exist", id)
			}
			return err
		}
		if rc.Dataset != p.image.Dataset {
			return contractError("runningcatalog %d belongs to dataset %d, image %d to dataset %d",
				rc.ID, rc.Dataset, p.image.ID, p.image.Dataset)
		}
		p.loaded[id] = rc
	}
	return nil
}

func (p *pass) applyBlind(s *entities.ExtractedSource, matches map[int64]match) error {
	mt, ok := matches[s.ID]
	if !ok {
		rc, err := p.create(s)
		if err != nil {
			return err
		}
		p.link(rc.ID, s.ID, entities.AssocTypeNew, 0, 0)
		p.report.Created++
		return nil
	}

	// Distances were measured against the catalog as it was before this image.
	p.fold(p.loaded[mt.runcat], s)
	p.link(mt.runcat, s.ID, entities.AssocTypeMatched, mt.distance, mt.r)
	p.distances = append(p.distances, mt.r)
	p.report.Matched++
	return nil
}

func (p *pass) applyForcedNull(s *entities.ExtractedSource) error {
	rc := p.loaded[*s.FFRuncat]
	pos, cpos := positionOf(s), catalogPosition(rc)
	distance, r := separationArcsec(pos, cpos), astrometry.DeRuiter(pos, cpos)

	p.fold(rc, s)
	p.link(rc.ID, s.ID, entities.AssocTypeForcedNull, distance, r)
	p.report.ForcedNull++
	return nil
}

func (p *pass) applyForcedMonitor(s *entities.ExtractedSource, mon *entities.Monitor) error {
	defer func() { p.report.ForcedMonitor++ }()

	if mon.Runcat == nil {
		rc, err := p.createMonitored(s, mon)
		if err != nil {
			return err
		}
		if err := p.monitors.SetRuncat(p.ctx, mon.ID, rc.ID); err != nil {
			return err
		}
		id := rc.ID
		mon.Runcat = &id
		p.link(rc.ID, s.ID, entities.AssocTypeForcedMonitor, 0, 0)
		return nil
	}

	rc := p.loaded[*mon.Runcat]
	pos, cpos := positionOf(s), catalogPosition(rc)
	distance, r := separationArcsec(pos, cpos), astrometry.DeRuiter(pos, cpos)
	p.fold(rc, s)
	p.link(rc.ID, s.ID, entities.AssocTypeForcedMonitor, distance, r)
	return nil
}

// create inserts a catalog source seeded from s.
func (p *pass) create(s *entities.ExtractedSource) (*entities.RunningCatalog, error) {
	return p.insert(newRunningCatalog(p.image.Dataset, s))
}

// createMonitored inserts the catalog source of a monitor. It sits at the
// monitored position and carries the uncertainties of its first fit.
func (p *pass) createMonitored(s *entities.ExtractedSource, mon *entities.Monitor) (*entities.RunningCatalog, error) {
	rc := newRunningCatalog(p.image.Dataset, s)
	rc.WmRA, rc.WmDecl = mon.RA, mon.Decl
	rc.MonSrc = true
	refresh(rc)
	return p.insert(rc)
}

func (p *pass) insert(rc *entities.RunningCatalog) (*entities.RunningCatalog, error) {
	if err := p.runcats.Create(p.ctx, rc); err != nil {
		return nil, err
	}
	p.loaded[rc.ID] = rc
	return rc, nil
}

func (p *pass) fold(rc *entities.RunningCatalog, s *entities.ExtractedSource) {
	accumulate(rc, s)
	p.dirty[rc.ID] = true
}

func (p *pass) link(runcat, xtrsrc int64, assocType int, distance, r float64) {
	p.links = append(p.links, entities.AssocXtrSource{
		Runcat:         runcat,
		Xtrsrc:         xtrsrc,
		Type:           assocType,
		DistanceArcsec: distance,
		R:              r,
	})
}

// flush writes the updated catalog sources in ascending id order.
func (p *pass) flush() error {
	ids := make([]int64, 0, len(p.dirty))
	for id := range p.dirty {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if err := p.runcats.Update(p.ctx, p.loaded[id]); err != nil {
			return err
		}
	}
	return nil
}
