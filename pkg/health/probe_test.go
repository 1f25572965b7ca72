package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperion/hypershell/pkg/metrics"
	"github.com/hyperion/hypershell/pkg/shellerr"
)

func statusServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestProbe_Healthy(t *testing.T) {
	srv := statusServer(t, http.StatusOK)

	status, err := NewProbe(srv.URL).Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", status)
}

func TestProbe_AnySuccessStatusIsHealthy(t *testing.T) {
	srv := statusServer(t, http.StatusNoContent)

	status, err := NewProbe(srv.URL + "/").Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Healthy, status)
}

func TestProbe_Unhealthy(t *testing.T) {
	srv := statusServer(t, http.StatusInternalServerError)

	_, err := NewProbe(srv.URL).Check(context.Background())
	require.Error(t, err)
	assert.True(t, shellerr.IsCode(err, shellerr.CodeUnhealthy))
	assert.Contains(t, err.Error(), "Server returned status: 500")

	status, ok := shellerr.StatusOf(err)
	assert.True(t, ok)
	assert.Equal(t, 500, status)
}

func TestProbe_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewProbe(url).Check(context.Background())
	require.Error(t, err)
	assert.True(t, shellerr.IsCode(err, shellerr.CodeRequestFailed))
	assert.Contains(t, err.Error(), "Health check failed")
}

func TestProbe_Metrics(t *testing.T) {
	pc := metrics.NewPrometheusCollector("test")
	ok := statusServer(t, http.StatusOK)
	bad := statusServer(t, http.StatusServiceUnavailable)

	_, _ = NewProbe(ok.URL, WithMetrics(pc)).Check(context.Background())
	_, _ = NewProbe(bad.URL, WithMetrics(pc)).Check(context.Background())

	count, err := testutil.GatherAndCount(pc.Registry(), "test_health_checks_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestWaitReady_BecomesHealthy(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := WaitReady(ctx, NewProbe(srv.URL), WaitOptions{
		InitialDelay: 5 * time.Millisecond,
		MaxDelay:     20 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestWaitReady_Deadline(t *testing.T) {
	srv := statusServer(t, http.StatusBadGateway)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := WaitReady(ctx, NewProbe(srv.URL), WaitOptions{
		InitialDelay: 5 * time.Millisecond,
		MaxDelay:     10 * time.Millisecond,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.True(t, shellerr.IsCode(err, shellerr.CodeUnhealthy), "last check error is preserved")
}
