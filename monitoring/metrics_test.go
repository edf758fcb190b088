package monitoring

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lightningnetwork/towercheck/verifier"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

// TestMetricsObserve asserts that results are counted per outcome and that
// the handler exposes them.
func TestMetricsObserve(t *testing.T) {
	t.Parallel()

	m := NewMetrics()

	m.Observe(&verifier.Result{
		Outcome:  verifier.OutcomeVerified,
		Duration: 10 * time.Millisecond,
	})
	m.Observe(&verifier.Result{
		Outcome:  verifier.OutcomeProviderTimeout,
		Duration: 30 * time.Second,
	})
	m.Observe(&verifier.Result{
		Outcome:  verifier.OutcomeProviderTimeout,
		Duration: 30 * time.Second,
	})

	verified := m.verifications.WithLabelValues("Verified")
	timedOut := m.verifications.WithLabelValues("ProviderTimeout")
	unseen := m.verifications.WithLabelValues("InvalidBundle")

	require.EqualValues(t, 1, testutil.ToFloat64(verified))
	require.EqualValues(t, 2, testutil.ToFloat64(timedOut))
	require.Zero(t, testutil.ToFloat64(unseen))

	// Every outcome is exported from the start.
	require.Equal(t, len(verifier.AllOutcomes()),
		testutil.CollectAndCount(m.verifications))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Contains(t, string(body),
		`towercheck_verifications_total{outcome="ProviderTimeout"} 2`)
	require.Contains(t, string(body),
		"towercheck_verification_duration_seconds_count 3")
}
