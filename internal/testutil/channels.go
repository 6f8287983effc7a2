package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// ShutdownTimeout bounds how long tests wait for servers and workers to stop.
const ShutdownTimeout = 10 * time.Second

// ReceiveWithin returns the next value from ch or fails the test after timeout.
// Use this for done channels, server shutdown results, etc.
func ReceiveWithin[T any](t *testing.T, ch <-chan T, timeout time.Duration, msg string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(timeout):
		require.FailNow(t, msg)
	}
	var zero T
	return zero
}
