// Package runtime holds the process-wide state of one catalog command:
// build metadata, settings, the opened catalog database, metrics and the
// central logger. Components are built from it on demand.
package runtime

import (
	"context"
	"fmt"

	"github.com/transientskp/tkpcat/internal/association"
	"github.com/transientskp/tkpcat/internal/conf"
	"github.com/transientskp/tkpcat/internal/configstore"
	"github.com/transientskp/tkpcat/internal/consistency"
	"github.com/transientskp/tkpcat/internal/datastore"
	"github.com/transientskp/tkpcat/internal/ingest"
	"github.com/transientskp/tkpcat/internal/lightcurve"
	"github.com/transientskp/tkpcat/internal/logger"
	"github.com/transientskp/tkpcat/internal/observability"
	"github.com/transientskp/tkpcat/internal/pipeline"
	"github.com/transientskp/tkpcat/internal/quality"
)

// Context contains runtime metadata that is not user-configurable together
// with the resources opened at startup.
type Context struct {
	// Version holds the Git version tag from build
	Version string

	// BuildDate is the time when the binary was built
	BuildDate string

	// Settings is nil until Open has run.
	Settings *conf.Settings

	Store   datastore.Manager
	Metrics *observability.Metrics

	central *logger.CentralLogger
}

// New returns a context with build metadata only.
func New(version, buildDate string) *Context {
	return &Context{Version: version, BuildDate: buildDate}
}

// Open starts logging and metrics for settings, then opens and migrates the
// catalog database. Opening an open context is an error.
func (c *Context) Open(ctx context.Context, settings *conf.Settings) error {
	if c.Settings != nil {
		return fmt.Errorf("runtime context already open")
	}

	central, err := logger.NewCentralLogger(&settings.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	m, err := observability.NewMetrics()
	if err != nil {
		_ = central.Close()
		return err
	}

	store, err := datastore.Open(&settings.Database, datastore.Options{
		Logger:  central.Module("datastore"),
		Metrics: m.Datastore,
	})
	if err != nil {
		_ = central.Close()
		return err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		_ = central.Close()
		return err
	}

	c.Settings = settings
	c.Store = store
	c.Metrics = m
	c.central = central

	c.Logger("runtime").Debug("catalog opened",
		logger.String("version", c.Version),
		logger.String("dialect", string(store.Dialect())),
		logger.String("path", store.Path()))
	return nil
}

// Close releases the database and flushes the logs. It is safe on a context
// that was never opened, and a closed context may be opened again.
func (c *Context) Close() error {
	c.Settings = nil
	var firstErr error
	if c.Store != nil {
		firstErr = c.Store.Close()
		c.Store = nil
	}
	if c.central != nil {
		if err := c.central.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		c.central = nil
	}
	return firstErr
}

// Logger returns a module logger. Before Open it logs to the console at
// info level.
func (c *Context) Logger(module string) logger.Logger {
	if c.central == nil {
		return logger.NewConsoleLogger(module, logger.LogLevelInfo)
	}
	return c.central.Module(module)
}

func (c *Context) Ingester() *ingest.Ingester {
	return ingest.NewIngester(c.Store, ingest.ConfigFromSettings(c.Settings), c.Metrics.Catalog, c.Logger("ingest"))
}

func (c *Context) Matcher() *association.Matcher {
	return association.NewMatcher(c.Store, association.ConfigFromSettings(c.Settings), c.Metrics.Catalog, c.Logger("association"))
}

func (c *Context) Assembler() *lightcurve.Assembler {
	return lightcurve.NewAssembler(c.Store, c.Logger("lightcurve"))
}

func (c *Context) Tracker() *quality.Tracker {
	return quality.NewTracker(c.Store, c.Metrics.Catalog, c.Logger("quality"))
}

func (c *Context) Checker() *consistency.Checker {
	return consistency.NewChecker(c.Store, c.Metrics.Catalog, c.Logger("consistency"))
}

func (c *Context) ConfigStore() *configstore.Store {
	return configstore.NewStore(c.Store, c.Metrics.Catalog, c.Logger("configstore"))
}

// Runner returns a pipeline runner ingesting up to workers images at once.
func (c *Context) Runner(workers int) *pipeline.Runner {
	return pipeline.NewRunner(c.Ingester(), c.Matcher(), workers, c.Logger("pipeline"))
}
