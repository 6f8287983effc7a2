package ingest

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transientskp/tkpcat/internal/datastore"
	"github.com/transientskp/tkpcat/internal/datastore/entities"
	"github.com/transientskp/tkpcat/internal/errors"
	"github.com/transientskp/tkpcat/internal/spatial"
	"github.com/transientskp/tkpcat/internal/testutil"
)

func detection(ra, dec float64) Detection {
	return Detection{
		RA:           ra,
		Dec:          dec,
		RAFitErr:     1e-4,
		DeclFitErr:   1e-4,
		PeakFlux:     0.1,
		PeakFluxErr:  0.01,
		IntFlux:      0.12,
		IntFluxErr:   0.012,
		Significance: 12,
		Semimajor:    5,
		Semiminor:    4,
		PA:           30,
		EWSysErr:     1,
		NSSysErr:     1,
		ErrorRadius:  2,
		GaussianFit:  true,
	}
}

type fixture struct {
	store    datastore.Manager
	ingester *Ingester
	dataset  int64
	image    int64
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	store := testutil.NewStore(t)
	ing := NewIngester(store, cfg, nil, testutil.DiscardLogger())
	ctx := context.Background()

	dataset, err := ing.RegisterDataset(ctx, "ingest test")
	require.NoError(t, err)
	image, err := ing.RegisterImage(ctx, &ImageParams{
		Dataset:     dataset,
		FreqEff:     150e6,
		FreqBW:      2e6,
		TaustartTS:  testutil.ObservationStart,
		TauTime:     300,
		BeamSmajPix: 3,
		BeamSminPix: 2,
		BeamPaRad:   math.Pi / 4,
		Deltax:      -0.001,
		Deltay:      0.002,
		CentreRA:    10,
		CentreDecl:  5,
		XtrRadius:   1.5,
	})
	require.NoError(t, err)
	return &fixture{store: store, ingester: ing, dataset: dataset, image: image}
}

func (f *fixture) sources(t *testing.T) []entities.ExtractedSource {
	t.Helper()
	var rows []entities.ExtractedSource
	require.NoError(t, f.store.DB().Where("image = ?", f.image).Order("id").Find(&rows).Error)
	return rows
}

func TestIngestSingleBlindDetection(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})
	n, err := f.ingester.Ingest(context.Background(), f.image, []Detection{detection(10.0, 5.0)}, Blind, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rows := f.sources(t)
	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, 5, row.Zone)
	assert.Equal(t, entities.ExtractTypeBlind, row.ExtractType)
	assert.Nil(t, row.FFRuncat)
	assert.Nil(t, row.FFMonitor)
	assert.Equal(t, 1, row.FitType)
	assert.InDelta(t, 1.0, row.X*row.X+row.Y*row.Y+row.Z*row.Z, 1e-9)
	assert.InDelta(t, 10*math.Cos(5*math.Pi/180), row.RACosDecl, 1e-12)
	assert.InDelta(t, math.Hypot(1, 2)/3600, row.UncertaintyEW, 1e-15)
	assert.InDelta(t, math.Hypot(1e-4, 1.0/3600), row.DeclErr, 1e-15)
}

func TestIngestDropsNonFiniteFluxErrors(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})
	infPeak := detection(10.1, 5)
	infPeak.PeakFluxErr = math.Inf(1)
	nanInt := detection(10.2, 5)
	nanInt.IntFluxErr = math.NaN()

	dets := []Detection{detection(10, 5), infPeak, nanInt, detection(10.3, 5)}
	n, err := f.ingester.Ingest(context.Background(), f.image, dets, Blind, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, len(dets)-2, n)

	rows := f.sources(t)
	require.Len(t, rows, n)
	for _, row := range rows {
		assert.False(t, math.IsInf(row.FPeakErr, 0))
		assert.NotEqual(t, 10.1, row.RA)
	}
}

func TestIngestSubstitutesUnconstrainedErrorRadius(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{UnconstrainedErrorRadius: 360})
	d := detection(10, 5)
	d.ErrorRadius = math.Inf(1)

	_, err := f.ingester.Ingest(context.Background(), f.image, []Detection{d}, Blind, nil, nil)
	require.NoError(t, err)

	rows := f.sources(t)
	require.Len(t, rows, 1)
	assert.InDelta(t, 360.0, rows[0].ErrorRadius, 0)
	assert.InDelta(t, math.Hypot(1, 360)/3600, rows[0].UncertaintyEW, 1e-15)
	assert.False(t, math.IsInf(rows[0].UncertaintyNS, 0))
}

func TestIngestContractViolations(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})
	dets := []Detection{detection(10, 5), detection(11, 5)}

	tests := []struct {
		name        string
		extractType ExtractType
		ffRuncat    []int64
		ffMonitor   []int64
	}{
		{"forced null without ids", ForcedNull, nil, nil},
		{"forced null short ids", ForcedNull, []int64{1}, nil},
		{"forced null with monitor ids", ForcedNull, []int64{1, 2}, []int64{1, 2}},
		{"forced monitor without ids", ForcedMonitor, nil, nil},
		{"forced monitor with runcat ids", ForcedMonitor, []int64{1, 2}, []int64{1, 2}},
		{"blind with runcat ids", Blind, []int64{1, 2}, nil},
		{"blind with monitor ids", Blind, nil, []int64{1, 2}},
		{"unknown type", ExtractType(7), nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := f.ingester.Ingest(context.Background(), f.image, dets, tt.extractType, tt.ffRuncat, tt.ffMonitor)
			require.Error(t, err)
			assert.Zero(t, n)
			assert.True(t, errors.IsCategory(err, errors.CategoryContract), "got %v", err)
		})
	}
	assert.Empty(t, f.sources(t))
}

func TestIngestDomainPolicy(t *testing.T) {
	t.Parallel()

	bad := detection(10, 5)
	bad.Dec = 95

	t.Run("abort", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, Config{})
		_, err := f.ingester.Ingest(context.Background(), f.image, []Detection{detection(10, 5), bad}, Blind, nil, nil)
		require.Error(t, err)
		assert.True(t, errors.IsCategory(err, errors.CategoryDomain))
		assert.Empty(t, f.sources(t))
	})

	t.Run("drop", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, Config{DomainPolicy: DropOutOfDomain})
		n, err := f.ingester.Ingest(context.Background(), f.image, []Detection{detection(10, 5), bad}, Blind, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("pole", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, Config{})
		_, err := f.ingester.Ingest(context.Background(), f.image, []Detection{detection(0, 90)}, Blind, nil, nil)
		require.Error(t, err)
		assert.True(t, errors.IsCategory(err, errors.CategoryDomain))
	})
}

func TestIngestUnknownImage(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})
	_, err := f.ingester.Ingest(context.Background(), f.image+100, []Detection{detection(10, 5)}, Blind, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestIngestForcedFits(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})
	ctx := context.Background()

	runcat := entities.RunningCatalog{Dataset: f.dataset, Datapoints: 1, Zone: 5, WmRA: 10, WmDecl: 5}
	require.NoError(t, f.store.DB().Create(&runcat).Error)

	_, err := f.ingester.Ingest(ctx, f.image, []Detection{detection(10, 5)}, ForcedNull, []int64{runcat.ID + 1}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryContract))

	n, err := f.ingester.Ingest(ctx, f.image, []Detection{detection(10, 5)}, ForcedNull, []int64{runcat.ID}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	monitors, err := f.ingester.RegisterMonitorPositions(ctx, f.dataset, []spatial.Point{{RA: 20, Dec: 30}})
	require.NoError(t, err)
	require.Len(t, monitors, 1)

	n, err = f.ingester.Ingest(ctx, f.image, []Detection{detection(20, 30)}, ForcedMonitor, nil, monitors)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rows := f.sources(t)
	require.Len(t, rows, 2)
	assert.Equal(t, entities.ExtractTypeForcedNull, rows[0].ExtractType)
	require.NotNil(t, rows[0].FFRuncat)
	assert.Equal(t, runcat.ID, *rows[0].FFRuncat)
	assert.Nil(t, rows[0].FFMonitor)
	assert.Equal(t, entities.ExtractTypeForcedMonitor, rows[1].ExtractType)
	require.NotNil(t, rows[1].FFMonitor)
	assert.Equal(t, monitors[0], *rows[1].FFMonitor)
	assert.Nil(t, rows[1].FFRuncat)
}

func TestIngestRollsBackOnStorageFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})
	require.NoError(t, f.store.DB().Exec(`
		CREATE TRIGGER reject_far_east BEFORE INSERT ON extractedsource
		WHEN NEW.ra > 100
		BEGIN
			SELECT RAISE(ABORT, 'storage unavailable');
		END`).Error)

	dets := []Detection{detection(10, 5), detection(11, 5), detection(150, 5)}
	n, err := f.ingester.Ingest(context.Background(), f.image, dets, Blind, nil, nil)
	require.Error(t, err)
	assert.Zero(t, n)
	assert.True(t, errors.IsRetryable(err))
	assert.Empty(t, f.sources(t))
}

func TestIngestEmptyBatch(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})
	n, err := f.ingester.Ingest(context.Background(), f.image, nil, ForcedNull, nil, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRegisterImageConvertsBeam(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})
	ctx := context.Background()

	var image entities.Image
	require.NoError(t, f.store.DB().First(&image, f.image).Error)
	assert.InDelta(t, 0.003, image.RbSmaj, 1e-15)
	assert.InDelta(t, 0.004, image.RbSmin, 1e-15)
	assert.InDelta(t, 45.0, image.RbPa, 1e-12)
	assert.Equal(t, 1, image.Stokes)

	second, err := f.ingester.RegisterImage(ctx, &ImageParams{
		Dataset:    f.dataset,
		FreqEff:    150.5e6,
		FreqBW:     2e6,
		TaustartTS: testutil.ObservationStart.Add(time.Hour),
		CentreRA:   10,
		CentreDecl: 5,
	})
	require.NoError(t, err)

	var again entities.Image
	require.NoError(t, f.store.DB().First(&again, second).Error)
	assert.Equal(t, image.Band, again.Band)

	_, err = f.ingester.RegisterImage(ctx, &ImageParams{Dataset: f.dataset + 50, FreqEff: 1, TaustartTS: time.Now(), CentreRA: 1})
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	_, err = f.ingester.RegisterImage(ctx, &ImageParams{Dataset: f.dataset, FreqEff: 0, TaustartTS: time.Now()})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryContract))
}

func TestDatasetLifecycle(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})
	ctx := context.Background()

	id, err := f.ingester.RegisterDataset(ctx, "ingest test")
	require.NoError(t, err)
	var registered entities.Dataset
	require.NoError(t, f.store.DB().First(&registered, id).Error)
	assert.Equal(t, 1, registered.Rerun)

	require.NoError(t, f.ingester.MarkDatasetComplete(ctx, f.dataset))
	var completed entities.Dataset
	require.NoError(t, f.store.DB().First(&completed, f.dataset).Error)
	assert.NotNil(t, completed.ProcessEndTS)

	err = f.ingester.MarkDatasetComplete(ctx, 12345)
	assert.True(t, errors.IsNotFound(err))

	_, err = f.ingester.RegisterDataset(ctx, "  ")
	assert.True(t, errors.IsCategory(err, errors.CategoryContract))
}

func TestParseExtractType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    ExtractType
		wantErr bool
	}{
		{"blind", Blind, false},
		{"ff_nd", ForcedNull, false},
		{" FF_MS ", ForcedMonitor, false},
		{"forced", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseExtractType(tt.in)
		if tt.wantErr {
			require.Error(t, err)
			assert.True(t, errors.IsCategory(err, errors.CategoryContract))
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.want, mustParse(t, got.String()))
	}
	assert.Equal(t, "extract_type(9)", ExtractType(9).String())
	assert.False(t, ExtractType(9).Valid())
}

func mustParse(t *testing.T, s string) ExtractType {
	t.Helper()
	et, err := ParseExtractType(s)
	require.NoError(t, err)
	return et
}
