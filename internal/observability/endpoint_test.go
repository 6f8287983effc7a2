package observability

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transientskp/tkpcat/internal/logger"
	"github.com/transientskp/tkpcat/internal/testutil"
)

func TestEndpointServesMetrics(t *testing.T) {
	t.Parallel()

	m, err := NewMetrics()
	require.NoError(t, err)
	m.Catalog.RecordRejection("rms")

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	ep := NewEndpoint(listener.Addr().String(), m, logger.NewSlogLogger(io.Discard, logger.LogLevelError, time.UTC))

	done := make(chan error, 1)
	go func() { done <- ep.Serve(ctx, listener) }()

	url := "http://" + listener.Addr().String() + "/metrics"
	var body []byte
	require.Eventually(t, func() bool {
		resp, err := http.Get(url) //nolint:noctx // test helper
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, err = io.ReadAll(resp.Body)
		return err == nil && resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	assert.Contains(t, string(body), `tkpcat_image_rejections_total{reason="rms"} 1`)

	cancel()
	require.NoError(t, testutil.ReceiveWithin(t, done, testutil.ShutdownTimeout, "endpoint did not shut down"))
}
