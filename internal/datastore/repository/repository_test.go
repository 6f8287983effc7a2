package repository

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transientskp/tkpcat/internal/astrometry"
	"github.com/transientskp/tkpcat/internal/datastore/entities"
	"github.com/transientskp/tkpcat/internal/spatial"
	"github.com/transientskp/tkpcat/internal/testutil"
)

func insertRuncat(t *testing.T, repo RunningCatalogRepository, dataset int64, ra, dec float64) *entities.RunningCatalog {
	t.Helper()
	x, y, z := astrometry.EquatorialToCartesian(ra, dec)
	rc := &entities.RunningCatalog{
		Dataset:         dataset,
		Datapoints:      1,
		Zone:            spatial.Zone(dec),
		WmRA:            ra,
		WmDecl:          dec,
		WmUncertaintyEW: 1e-4,
		WmUncertaintyNS: 2e-4,
		AvgWeightEW:     1e8,
		AvgWeightNS:     2.5e7,
		X:               x,
		Y:               y,
		Z:               z,
	}
	require.NoError(t, repo.Create(context.Background(), rc))
	return rc
}

func TestRunningCatalogIndexMatchesBuckets(t *testing.T) {
	t.Parallel()

	store := testutil.NewStore(t)
	ctx := context.Background()
	dataset := testutil.CreateDataset(t, store)
	other := testutil.CreateDataset(t, store)
	repo := NewRunningCatalogRepository(store.DB(), false)

	rng := rand.New(rand.NewPCG(11, 12))
	buckets := spatial.NewBuckets()
	var all []spatial.Entry
	for range 400 {
		ra := rng.Float64() * 360
		dec := rng.Float64()*180 - 90
		// Cluster a quarter of the sources around the RA wrap and a pole
		switch rng.IntN(4) {
		case 0:
			ra = 359.5 + rng.Float64()
			if ra >= 360 {
				ra -= 360
			}
		case 1:
			dec = 88 + rng.Float64()*2
		}
		rc := insertRuncat(t, repo, dataset, ra, dec)
		e := spatial.Entry{ID: rc.ID, RA: ra, Dec: dec, UncertaintyEW: rc.WmUncertaintyEW, UncertaintyNS: rc.WmUncertaintyNS}
		buckets.Insert(e)
		all = append(all, e)
	}
	// Sources of another dataset must never be returned
	insertRuncat(t, repo, other, 0.1, 0.1)

	index := repo.Index(dataset)
	for range 200 {
		p := spatial.Point{RA: rng.Float64() * 360, Dec: rng.Float64()*180 - 90}
		if rng.IntN(3) == 0 {
			p.RA = 359.9
		}
		radius := rng.Float64() * 2

		fromDB, err := index.Candidates(ctx, p, radius)
		require.NoError(t, err)
		fromMemory, err := buckets.Candidates(ctx, p, radius)
		require.NoError(t, err)
		require.Equal(t, fromMemory, fromDB, "point %+v radius %v", p, radius)

		found := make(map[int64]bool, len(fromDB))
		for _, e := range fromDB {
			found[e.ID] = true
		}
		for _, e := range all {
			if astrometry.SeparationDegrees(p.RA, p.Dec, e.RA, e.Dec) <= radius {
				assert.True(t, found[e.ID], "missed %d at (%v, %v) for %+v r=%v", e.ID, e.RA, e.Dec, p, radius)
			}
		}
	}
}

func TestRunningCatalogUpdateAndMaxUncertainty(t *testing.T) {
	t.Parallel()

	store := testutil.NewStore(t)
	ctx := context.Background()
	dataset := testutil.CreateDataset(t, store)
	repo := NewRunningCatalogRepository(store.DB(), false)

	empty, err := repo.MaxUncertainty(ctx, dataset)
	require.NoError(t, err)
	assert.Zero(t, empty)

	rc := insertRuncat(t, repo, dataset, 10, 20)
	insertRuncat(t, repo, dataset, 11, 21)

	rc.WmUncertaintyNS = 0.003
	rc.Datapoints = 2
	require.NoError(t, repo.Update(ctx, rc))

	got, err := repo.GetByID(ctx, rc.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Datapoints)

	maxUnc, err := repo.MaxUncertainty(ctx, dataset)
	require.NoError(t, err)
	assert.InDelta(t, 0.003, maxUnc, 1e-15)

	ids, err := repo.ExistingIDs(ctx, []int64{rc.ID, 9999})
	require.NoError(t, err)
	assert.Equal(t, []int64{rc.ID}, ids)

	require.NoError(t, repo.Delete(ctx, rc.ID))
	_, err = repo.GetByID(ctx, rc.ID)
	require.ErrorIs(t, err, ErrRunningCatalogNotFound)
	require.ErrorIs(t, repo.Update(ctx, rc), ErrRunningCatalogNotFound)
}

func TestUnassociatedAndLightCurve(t *testing.T) {
	t.Parallel()

	store := testutil.NewStore(t)
	ctx := context.Background()
	dataset := testutil.CreateDataset(t, store)
	band := testutil.CreateBand(t, store, 150e6)
	later := testutil.CreateImage(t, store, dataset, band, time.Hour)
	earlier := testutil.CreateImage(t, store, dataset, band, 0)

	sources := NewExtractedSourceRepository(store.DB())
	rows := []entities.ExtractedSource{
		{Image: later, RA: 10, Decl: 20, Zone: 20, FInt: 2},
		{Image: earlier, RA: 10, Decl: 20, Zone: 20, FInt: 1},
		{Image: later, RA: 50, Decl: 20, Zone: 20, FInt: 7},
	}
	require.NoError(t, sources.CreateBatch(ctx, rows))
	require.NoError(t, sources.CreateBatch(ctx, nil))

	pending, err := sources.Unassociated(ctx, later)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Less(t, pending[0].ID, pending[1].ID)

	runcats := NewRunningCatalogRepository(store.DB(), false)
	rc := insertRuncat(t, runcats, dataset, 10, 20)
	assocs := NewAssociationRepository(store.DB())
	require.NoError(t, assocs.CreateBatch(ctx, []entities.AssocXtrSource{
		{Runcat: rc.ID, Xtrsrc: rows[0].ID, Type: entities.AssocTypeNew},
		{Runcat: rc.ID, Xtrsrc: rows[1].ID, Type: entities.AssocTypeMatched},
	}))

	pending, err = sources.Unassociated(ctx, later)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, rows[2].ID, pending[0].ID)

	runcat, ok, err := assocs.RuncatOf(ctx, rows[1].ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, rc.ID, runcat)

	curve, err := NewLightCurveRepository(store.DB()).ForSource(ctx, rows[0].ID)
	require.NoError(t, err)
	require.Len(t, curve, 2)
	assert.Equal(t, rows[1].ID, curve[0].Xtrsrc)
	assert.Equal(t, rows[0].ID, curve[1].Xtrsrc)
	assert.True(t, curve[0].TaustartTS.Before(curve[1].TaustartTS))
	assert.InDelta(t, 150e6, curve[0].FreqCentral, 1e-6)
	assert.Equal(t, band, curve[0].Band)
	assert.Equal(t, 1, curve[0].Stokes)

	none, err := NewLightCurveRepository(store.DB()).ForSource(ctx, rows[2].ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFrequencyBandGetOrCreate(t *testing.T) {
	t.Parallel()

	store := testutil.NewStore(t)
	ctx := context.Background()
	repo := NewFrequencyBandRepository(store.DB())

	first, err := repo.GetOrCreate(ctx, 150e6, 2e6)
	require.NoError(t, err)
	again, err := repo.GetOrCreate(ctx, 150.5e6, 2e6)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	other, err := repo.GetOrCreate(ctx, 60e6, 2e6)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)

	_, err = repo.FindContaining(ctx, 1e9)
	require.ErrorIs(t, err, ErrFrequencyBandNotFound)
}

func TestConfigReplaceAndList(t *testing.T) {
	t.Parallel()

	store := testutil.NewStore(t)
	ctx := context.Background()
	repo := NewConfigRepository(store.DB())

	require.NoError(t, repo.Replace(ctx, 1, []entities.Config{
		{Section: "b", Key: "z", Value: "1", Type: "int"},
		{Section: "a", Key: "y", Value: "x", Type: "str"},
	}))
	require.NoError(t, repo.Replace(ctx, 1, []entities.Config{
		{Section: "b", Key: "k", Value: "true", Type: "bool"},
		{Section: "a", Key: "k", Value: "2.5", Type: "float"},
	}))

	rows, err := repo.ListByDataset(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0].Section)
	assert.Equal(t, "b", rows[1].Section)
	assert.Equal(t, int64(1), rows[0].Dataset)
}

func TestRejectionsAndReasons(t *testing.T) {
	t.Parallel()

	store := testutil.NewStore(t)
	ctx := context.Background()
	repo := NewRejectionRepository(store.DB())

	reasons, err := repo.Reasons(ctx)
	require.NoError(t, err)
	assert.Len(t, reasons, 4)

	require.NoError(t, repo.Create(ctx, &entities.Rejection{Image: 7, RejectReason: 0, Comment: "too noisy"}))
	require.NoError(t, repo.Create(ctx, &entities.Rejection{Image: 7, RejectReason: 3, Comment: "short"}))

	entries, err := repo.ListByImage(ctx, 7)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "RMS invalid", entries[0].Description)
	assert.Equal(t, "too noisy", entries[0].Comment)
	assert.Equal(t, "tau_time invalid", entries[1].Description)

	removed, err := repo.DeleteByImage(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
}

func TestDatasetLifecycle(t *testing.T) {
	t.Parallel()

	store := testutil.NewStore(t)
	ctx := context.Background()
	repo := NewDatasetRepository(store.DB())

	rerun, err := repo.NextRerun(ctx, "survey")
	require.NoError(t, err)
	assert.Zero(t, rerun)

	dataset := &entities.Dataset{Description: "survey", ProcessStartTS: testutil.ObservationStart}
	require.NoError(t, repo.Create(ctx, dataset))

	rerun, err = repo.NextRerun(ctx, "survey")
	require.NoError(t, err)
	assert.Equal(t, 1, rerun)

	end := testutil.ObservationStart.Add(time.Hour)
	require.NoError(t, repo.MarkComplete(ctx, dataset.ID, end))
	got, err := repo.GetByID(ctx, dataset.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ProcessEndTS)
	assert.True(t, end.Equal(*got.ProcessEndTS))

	require.ErrorIs(t, repo.MarkComplete(ctx, 999, end), ErrDatasetNotFound)
	_, err = repo.GetByID(ctx, 999)
	require.ErrorIs(t, err, ErrDatasetNotFound)
}
