package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestInterceptorShutdown asserts that a shutdown request closes the shutdown
// channel and that a new interceptor can be started afterwards.
func TestInterceptorShutdown(t *testing.T) {
	interceptor, err := Intercept()
	require.NoError(t, err)
	require.True(t, interceptor.Alive())

	// A second interceptor can't be started while the first one runs.
	_, err = Intercept()
	require.ErrorIs(t, err, ErrAlreadyIntercepting)

	interceptor.RequestShutdown()

	select {
	case <-interceptor.ShutdownChannel():
	case <-time.After(time.Second):
		t.Fatal("shutdown channel not closed")
	}
	require.False(t, interceptor.Alive())

	// Repeated requests after shutdown must not block.
	interceptor.RequestShutdown()

	require.Eventually(t, func() bool {
		next, err := Intercept()
		if err != nil {
			return false
		}
		next.RequestShutdown()
		<-next.ShutdownChannel()

		return true
	}, time.Second, 10*time.Millisecond)
}
