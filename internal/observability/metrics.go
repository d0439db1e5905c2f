package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricArchivesTotal   = "redsum.archives.total"
	metricRowsTotal       = "redsum.rows.total"
	metricMalformedTotal  = "redsum.rows.malformed.total"
	metricArchiveDuration = "redsum.archive.duration.seconds"

	attrStatus = "status"
	attrRole   = "role"

	// StatusProcessed marks a committed archive.
	StatusProcessed = "processed"
	// StatusSkipped marks an archive already present in the checkpoint.
	StatusSkipped = "skipped"
	// StatusFailed marks an archive aborted without commit.
	StatusFailed = "failed"
)

// durationBucketBoundaries covers 10ms to 10m; a single archive ranges from
// a sub-second extract to minutes of CSV folding.
var durationBucketBoundaries = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600}

// PipelineMetrics holds the OTel instruments for archive processing.
type PipelineMetrics struct {
	archivesTotal   metric.Int64Counter
	rowsTotal       metric.Int64Counter
	malformedTotal  metric.Int64Counter
	archiveDuration metric.Float64Histogram
}

// NewPipelineMetrics creates pipeline metric instruments from the given meter.
func NewPipelineMetrics(mt metric.Meter) (*PipelineMetrics, error) {
	b := newMetricBuilder(mt)

	pm := &PipelineMetrics{
		archivesTotal:   b.counter(metricArchivesTotal, "Archives seen by the pipeline", "{archive}"),
		rowsTotal:       b.counter(metricRowsTotal, "CSV rows folded into metrics", "{row}"),
		malformedTotal:  b.counter(metricMalformedTotal, "Malformed rows skipped", "{row}"),
		archiveDuration: b.histogram(metricArchiveDuration, "Archive processing duration in seconds", "s", durationBucketBoundaries...),
	}

	if b.err != nil {
		return nil, b.err
	}

	return pm, nil
}

// RecordArchive records one archive outcome with its processing duration.
func (pm *PipelineMetrics) RecordArchive(ctx context.Context, status string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String(attrStatus, status))

	pm.archivesTotal.Add(ctx, 1, attrs)
	pm.archiveDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordRows records folded and malformed row counts for one file role.
func (pm *PipelineMetrics) RecordRows(ctx context.Context, role string, folded, malformed int64) {
	attrs := metric.WithAttributes(attribute.String(attrRole, role))

	pm.rowsTotal.Add(ctx, folded, attrs)

	if malformed > 0 {
		pm.malformedTotal.Add(ctx, malformed, attrs)
	}
}
