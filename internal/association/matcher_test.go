package association

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/transientskp/tkpcat/internal/astrometry"
	"github.com/transientskp/tkpcat/internal/conf"
	"github.com/transientskp/tkpcat/internal/datastore"
	"github.com/transientskp/tkpcat/internal/datastore/entities"
	"github.com/transientskp/tkpcat/internal/errors"
	"github.com/transientskp/tkpcat/internal/ingest"
	"github.com/transientskp/tkpcat/internal/spatial"
	"github.com/transientskp/tkpcat/internal/testutil"
)

type fixture struct {
	store    datastore.Manager
	ingester *ingest.Ingester
	matcher  *Matcher
	dataset  int64
	band     int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := testutil.NewStore(t)
	settings := conf.Default()
	f := &fixture{
		store:    store,
		ingester: ingest.NewIngester(store, ingest.ConfigFromSettings(settings), nil, testutil.DiscardLogger()),
		matcher:  NewMatcher(store, ConfigFromSettings(settings), nil, testutil.DiscardLogger()),
	}
	f.dataset = testutil.CreateDataset(t, store)
	f.band = testutil.CreateBand(t, store, 150e6)
	return f
}

func (f *fixture) image(t *testing.T, n int) int64 {
	t.Helper()
	return testutil.CreateImage(t, f.store, f.dataset, f.band, time.Duration(n)*5*time.Minute)
}

func detection(ra, dec float64) ingest.Detection {
	return ingest.Detection{
		RA:          ra,
		Dec:         dec,
		RAFitErr:    1e-4,
		DeclFitErr:  1e-4,
		PeakFlux:    0.1,
		PeakFluxErr: 0.01,
		IntFlux:     0.1,
		IntFluxErr:  0.01,
		EWSysErr:    1,
		NSSysErr:    1,
		ErrorRadius: 2,
	}
}

func (f *fixture) ingestBlind(t *testing.T, imageID int64, dets ...ingest.Detection) {
	t.Helper()
	_, err := f.ingester.Ingest(context.Background(), imageID, dets, ingest.Blind, nil, nil)
	require.NoError(t, err)
}

func (f *fixture) associate(t *testing.T, imageID int64) Report {
	t.Helper()
	report, err := f.matcher.Associate(context.Background(), imageID)
	require.NoError(t, err)
	return report
}

func (f *fixture) runcats(t *testing.T) []entities.RunningCatalog {
	t.Helper()
	var rows []entities.RunningCatalog
	require.NoError(t, f.store.DB().Where("dataset = ?", f.dataset).Order("id").Find(&rows).Error)
	return rows
}

func (f *fixture) assocs(t *testing.T) []entities.AssocXtrSource {
	t.Helper()
	var rows []entities.AssocXtrSource
	require.NoError(t, f.store.DB().Order("xtrsrc").Find(&rows).Error)
	return rows
}

func TestAssociateMatchesAcrossImages(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	first, second := f.image(t, 0), f.image(t, 1)

	f.ingestBlind(t, first, detection(10, 5))
	report := f.associate(t, first)
	assert.Equal(t, Report{ImageID: first, Created: 1}, report)

	f.ingestBlind(t, second, detection(10.0005, 5.0003))
	report = f.associate(t, second)
	assert.Equal(t, Report{ImageID: second, Matched: 1}, report)

	runcats := f.runcats(t)
	require.Len(t, runcats, 1)
	rc := runcats[0]
	assert.Equal(t, 2, rc.Datapoints)
	assert.InDelta(t, 10.00025, rc.WmRA, 1e-9)
	assert.InDelta(t, 5.00015, rc.WmDecl, 1e-9)
	assert.Equal(t, 5, rc.Zone)

	single := math.Hypot(1, 2) / 3600
	assert.InDelta(t, single/math.Sqrt2, rc.WmUncertaintyEW, 1e-12)
	assert.InEpsilon(t, 1/(single*single), rc.AvgWeightEW, 1e-9)

	assocs := f.assocs(t)
	require.Len(t, assocs, 2)
	assert.Equal(t, entities.AssocTypeNew, assocs[0].Type)
	assert.Zero(t, assocs[0].R)
	assert.Equal(t, entities.AssocTypeMatched, assocs[1].Type)
	assert.Equal(t, rc.ID, assocs[1].Runcat)
	assert.Greater(t, assocs[1].R, 0.0)
	assert.LessOrEqual(t, assocs[1].R, conf.Default().SourceAssociation.DeRuiterThreshold())
	assert.InDelta(t, 2.09, assocs[1].DistanceArcsec, 0.01)

	t.Run("reassociation is a no-op", func(t *testing.T) {
		report := f.associate(t, second)
		assert.Zero(t, report.Total())
		assert.Len(t, f.assocs(t), 2)
	})
}

func TestAssociateDistantSourceCreatesNewEntry(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	first, second := f.image(t, 0), f.image(t, 1)
	f.ingestBlind(t, first, detection(10, 5))
	f.associate(t, first)

	f.ingestBlind(t, second, detection(10.1, 5))
	report := f.associate(t, second)
	assert.Equal(t, 1, report.Created)
	assert.Zero(t, report.Matched)
	assert.Len(t, f.runcats(t), 2)
}

func TestAssociateManyToOnePerImage(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	first, second := f.image(t, 0), f.image(t, 1)
	f.ingestBlind(t, first, detection(10, 5))
	f.associate(t, first)

	// Both lie within the threshold of the catalog source, so both link to it.
	f.ingestBlind(t, second, detection(10.0008, 5), detection(10.0002, 5))
	report := f.associate(t, second)
	assert.Equal(t, Report{ImageID: second, Matched: 2}, report)

	runcats := f.runcats(t)
	require.Len(t, runcats, 1)
	assert.Equal(t, 3, runcats[0].Datapoints)
	assert.InDelta(t, 10.000333333, runcats[0].WmRA, 1e-8)

	assocs := f.assocs(t)
	require.Len(t, assocs, 3)
	for _, a := range assocs[1:] {
		assert.Equal(t, entities.AssocTypeMatched, a.Type)
		assert.Equal(t, runcats[0].ID, a.Runcat)
	}
	assert.Greater(t, assocs[1].R, assocs[2].R)
}

func TestAssociateConcurrentImagesKeepEveryUpdate(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	first := f.image(t, 0)
	f.ingestBlind(t, first, detection(10, 5))
	f.associate(t, first)

	images := []int64{f.image(t, 1), f.image(t, 2), f.image(t, 3)}
	for i, image := range images {
		f.ingestBlind(t, image, detection(10+float64(i+1)*0.0001, 5))
	}

	var g errgroup.Group
	for _, image := range images {
		g.Go(func() error {
			_, err := f.matcher.Associate(context.Background(), image)
			return err
		})
	}
	require.NoError(t, g.Wait())

	runcats := f.runcats(t)
	require.Len(t, runcats, 1)
	assert.Equal(t, 4, runcats[0].Datapoints)
	assert.InDelta(t, 10.00015, runcats[0].WmRA, 1e-9)
	assert.Len(t, f.assocs(t), 4)
}

func TestAssociateTieBreaksOnLowerCatalogID(t *testing.T) {
	t.Parallel()

	const offset = 1.0 / 1024
	f := newFixture(t)
	first, second := f.image(t, 0), f.image(t, 1)
	f.ingestBlind(t, first, detection(10-offset, 5), detection(10+offset, 5))
	require.Equal(t, 2, f.associate(t, first).Created)

	runcats := f.runcats(t)
	require.Len(t, runcats, 2)

	f.ingestBlind(t, second, detection(10, 5))
	report := f.associate(t, second)
	require.Equal(t, 1, report.Matched)

	assocs := f.assocs(t)
	require.Len(t, assocs, 3)
	assert.Equal(t, runcats[0].ID, assocs[2].Runcat)
	assert.Equal(t, entities.AssocTypeMatched, assocs[2].Type)
}

func TestAssociateAcrossRAZero(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	first, second := f.image(t, 0), f.image(t, 1)
	f.ingestBlind(t, first, detection(359.9998, 0))
	f.associate(t, first)

	f.ingestBlind(t, second, detection(0.0002, 0))
	report := f.associate(t, second)
	require.Equal(t, 1, report.Matched)

	runcats := f.runcats(t)
	require.Len(t, runcats, 1)
	assert.InDelta(t, 0, astrometry.WrapRA(runcats[0].WmRA), 1e-9)
	assert.GreaterOrEqual(t, runcats[0].WmRA, 0.0)
	assert.Less(t, runcats[0].WmRA, 360.0)
}

func TestAssociateForcedNull(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	first, second := f.image(t, 0), f.image(t, 1)
	f.ingestBlind(t, first, detection(10, 5))
	f.associate(t, first)
	runcat := f.runcats(t)[0].ID

	_, err := f.ingester.Ingest(context.Background(), second,
		[]ingest.Detection{detection(10.0001, 5)}, ingest.ForcedNull, []int64{runcat}, nil)
	require.NoError(t, err)

	report := f.associate(t, second)
	assert.Equal(t, Report{ImageID: second, ForcedNull: 1}, report)

	runcats := f.runcats(t)
	require.Len(t, runcats, 1)
	assert.Equal(t, 2, runcats[0].Datapoints)

	assocs := f.assocs(t)
	require.Len(t, assocs, 2)
	assert.Equal(t, entities.AssocTypeForcedNull, assocs[1].Type)
	assert.Equal(t, runcat, assocs[1].Runcat)
	assert.Greater(t, assocs[1].DistanceArcsec, 0.0)
}

func TestAssociateForcedNullAcrossDatasetsFails(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	other := testutil.CreateDataset(t, f.store)
	otherImage := testutil.CreateImage(t, f.store, other, f.band, 0)
	f.ingestBlind(t, otherImage, detection(10, 5))
	f.associate(t, otherImage)

	var foreign entities.RunningCatalog
	require.NoError(t, f.store.DB().Where("dataset = ?", other).First(&foreign).Error)

	image := f.image(t, 0)
	_, err := f.ingester.Ingest(context.Background(), image,
		[]ingest.Detection{detection(10, 5)}, ingest.ForcedNull, []int64{foreign.ID}, nil)
	require.NoError(t, err)

	_, err = f.matcher.Associate(context.Background(), image)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryContract))
	assert.Len(t, f.assocs(t), 1)
}

func TestAssociateForcedMonitor(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	ids, err := f.ingester.RegisterMonitorPositions(ctx, f.dataset, []spatial.Point{{RA: 20, Dec: -10}})
	require.NoError(t, err)
	require.Len(t, ids, 1)

	first, second := f.image(t, 0), f.image(t, 1)
	// The fit lands slightly off the monitored position.
	_, err = f.ingester.Ingest(ctx, first, []ingest.Detection{detection(20.0003, -10.0002)}, ingest.ForcedMonitor, nil, ids)
	require.NoError(t, err)
	report := f.associate(t, first)
	assert.Equal(t, Report{ImageID: first, ForcedMonitor: 1}, report)

	runcats := f.runcats(t)
	require.Len(t, runcats, 1)
	assert.True(t, runcats[0].MonSrc)
	assert.InDelta(t, 20, runcats[0].WmRA, 1e-12)
	assert.InDelta(t, -10, runcats[0].WmDecl, 1e-12)
	assert.Equal(t, -10, runcats[0].Zone)

	var monitor entities.Monitor
	require.NoError(t, f.store.DB().First(&monitor, ids[0]).Error)
	require.NotNil(t, monitor.Runcat)
	assert.Equal(t, runcats[0].ID, *monitor.Runcat)

	_, err = f.ingester.Ingest(ctx, second, []ingest.Detection{detection(20.0001, -10)}, ingest.ForcedMonitor, nil, ids)
	require.NoError(t, err)
	report = f.associate(t, second)
	assert.Equal(t, 1, report.ForcedMonitor)

	runcats = f.runcats(t)
	require.Len(t, runcats, 1)
	assert.Equal(t, 2, runcats[0].Datapoints)

	assocs := f.assocs(t)
	require.Len(t, assocs, 2)
	for _, a := range assocs {
		assert.Equal(t, entities.AssocTypeForcedMonitor, a.Type)
		assert.Equal(t, runcats[0].ID, a.Runcat)
	}
}

func TestAssociateBlindAndForcedShareCatalogSource(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	first, second := f.image(t, 0), f.image(t, 1)
	f.ingestBlind(t, first, detection(10, 5))
	f.associate(t, first)
	runcat := f.runcats(t)[0].ID

	f.ingestBlind(t, second, detection(10.0001, 5))
	_, err := f.ingester.Ingest(ctx, second, []ingest.Detection{detection(10, 5)}, ingest.ForcedNull, []int64{runcat}, nil)
	require.NoError(t, err)

	report := f.associate(t, second)
	assert.Equal(t, Report{ImageID: second, Matched: 1, ForcedNull: 1}, report)
	assert.Equal(t, 3, f.runcats(t)[0].Datapoints)
}

func TestAssociateUnknownImage(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.matcher.Associate(context.Background(), 4242)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryNotFound))
}

func TestAssociateRollsBackOnFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	image := f.image(t, 0)
	f.ingestBlind(t, image, detection(10, 5), detection(11, 5))

	require.NoError(t, f.store.DB().Exec(`
		CREATE TRIGGER fail_assoc BEFORE INSERT ON assocxtrsource
		BEGIN
			SELECT RAISE(ABORT, 'disk full');
		END`).Error)

	_, err := f.matcher.Associate(context.Background(), image)
	require.Error(t, err)
	assert.Empty(t, f.runcats(t))
	assert.Empty(t, f.assocs(t))

	require.NoError(t, f.store.DB().Exec("DROP TRIGGER fail_assoc").Error)
	report := f.associate(t, image)
	assert.Equal(t, 2, report.Created)
}
