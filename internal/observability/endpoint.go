package observability

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/transientskp/tkpcat/internal/logger"
	metricspkg "github.com/transientskp/tkpcat/internal/observability/metrics"
)

const readHeaderTimeout = 10 * time.Second

// Endpoint serves /metrics over HTTP.
type Endpoint struct {
	server  *http.Server
	metrics *Metrics
	log     logger.Logger
}

// NewEndpoint creates an endpoint bound to listenAddress.
func NewEndpoint(listenAddress string, metrics *Metrics, log logger.Logger) *Endpoint {
	mux := http.NewServeMux()
	metrics.RegisterHandlers(mux)

	return &Endpoint{
		server: &http.Server{
			Addr:              listenAddress,
			Handler:           mux,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		metrics: metrics,
		log:     log.Module("metrics"),
	}
}

// Run serves until ctx is cancelled, then shuts the server down gracefully.
func (e *Endpoint) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", e.server.Addr)
	if err != nil {
		return err
	}
	return e.Serve(ctx, listener)
}

// Serve is Run on an existing listener.
func (e *Endpoint) Serve(ctx context.Context, listener net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		e.log.Info("metrics endpoint starting", logger.String("address", listener.Addr().String()))
		errCh <- e.server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	e.log.Info("stopping metrics endpoint")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), metricspkg.ShutdownTimeout)
	defer cancel()
	if err := e.server.Shutdown(shutdownCtx); err != nil {
		e.log.Error("metrics server shutdown error", logger.Error(err))
		return err
	}
	<-errCh
	return nil
}
