package observability_test

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/redsum/redsum/internal/observability"
)

func TestNewPipelineMetrics_NoopMeter(t *testing.T) {
	t.Parallel()

	pm, err := observability.NewPipelineMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	// Recording against noop instruments must not panic.
	ctx := context.Background()
	pm.RecordArchive(ctx, observability.StatusProcessed, time.Second)
	pm.RecordRows(ctx, "posts", 10, 1)
	pm.RecordRows(ctx, "comments", 5, 0)
}

func TestDiagnosticsServer_ServesMetrics(t *testing.T) {
	t.Parallel()

	srv, err := observability.NewDiagnosticsServer("localhost:0")
	require.NoError(t, err)

	defer srv.Close()

	pm, err := observability.NewPipelineMetrics(srv.Meter())
	require.NoError(t, err)

	pm.RecordArchive(context.Background(), observability.StatusProcessed, 2*time.Second)

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	require.NoError(t, err)

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "redsum_archives_total")
}
