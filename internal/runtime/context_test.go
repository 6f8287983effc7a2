package runtime

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transientskp/tkpcat/internal/conf"
	"github.com/transientskp/tkpcat/internal/ingest"
)

func testSettings(t *testing.T) *conf.Settings {
	t.Helper()

	settings := conf.Default()
	settings.Database.Path = filepath.Join(t.TempDir(), "catalog.db")
	settings.Logging.DefaultLevel = "error"
	settings.Logging.Console.Level = "error"
	return settings
}

func TestOpenWiresComponents(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	rt := New("1.2.3", "2024-03-01")
	require.NoError(t, rt.Open(ctx, testSettings(t)))
	t.Cleanup(func() { _ = rt.Close() })

	ing := rt.Ingester()
	datasetID, err := ing.RegisterDataset(ctx, "runtime test")
	require.NoError(t, err)

	imageID, err := ing.RegisterImage(ctx, &ingest.ImageParams{
		Dataset:     datasetID,
		FreqEff:     150e6,
		TaustartTS:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		TauTime:     60,
		BeamSmajPix: 2,
		BeamSminPix: 1,
		Deltax:      -0.01,
		Deltay:      0.01,
		CentreRA:    10,
		CentreDecl:  20,
		XtrRadius:   5,
	})
	require.NoError(t, err)

	n, err := ing.Ingest(ctx, imageID, []ingest.Detection{{
		RA: 10, Dec: 20, RAFitErr: 0.0001, DeclFitErr: 0.0001,
		PeakFlux: 1, PeakFluxErr: 0.1, IntFlux: 1, IntFluxErr: 0.1,
		Significance: 10, Semimajor: 10, Semiminor: 5, ErrorRadius: 1,
	}}, ingest.Blind, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	report, err := rt.Matcher().Associate(ctx, imageID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)

	assert.True(t, rt.Checker().IsConsistent(ctx))

	rejected, err := rt.Tracker().IsRejected(ctx, imageID)
	require.NoError(t, err)
	assert.Nil(t, rejected)

	require.NoError(t, rt.ConfigStore().StoreConfig(ctx, rt.Settings.Sections(), datasetID))
	assert.NotNil(t, rt.Runner(2))
	assert.NotNil(t, rt.Assembler())
}

func TestOpenTwiceFails(t *testing.T) {
	t.Parallel()

	rt := New("", "")
	require.NoError(t, rt.Open(context.Background(), testSettings(t)))
	t.Cleanup(func() { _ = rt.Close() })

	assert.Error(t, rt.Open(context.Background(), testSettings(t)))
}

func TestOpenRejectsUnknownDatabase(t *testing.T) {
	t.Parallel()

	settings := testSettings(t)
	settings.Database.Type = "postgres"

	rt := New("", "")
	require.Error(t, rt.Open(context.Background(), settings))
	assert.Nil(t, rt.Store)
	assert.NoError(t, rt.Close())
}

func TestCloseUnopened(t *testing.T) {
	t.Parallel()

	rt := New("", "")
	assert.NoError(t, rt.Close())
	assert.NotNil(t, rt.Logger("test"))
}

func TestReopenAfterClose(t *testing.T) {
	t.Parallel()

	settings := testSettings(t)
	rt := New("", "")
	require.NoError(t, rt.Open(context.Background(), settings))
	require.NoError(t, rt.Close())
	require.NoError(t, rt.Open(context.Background(), settings))
	assert.NoError(t, rt.Close())
}
