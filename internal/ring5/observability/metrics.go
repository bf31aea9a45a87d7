package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricWorksSubmitted = "ring5.works.submitted"
	metricWorksFailed    = "ring5.works.failed"
	metricScanDuration   = "ring5.scan.duration.seconds"
	metricParseDuration  = "ring5.parse.duration.seconds"

	attrStrategy = "strategy"
	attrOutcome  = "outcome"

	outcomeOK    = "ok"
	outcomeError = "error"
)

// durationBucketBoundaries covers 10ms to 300s, the realistic span from a
// single small stats file to a large multi-file batch.
var durationBucketBoundaries = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300}

// IngestionMetrics holds the OTel instruments tracking the ingestion
// engine's work: how many Parse Works were submitted and failed, and how
// long scanning and parsing batches take.
type IngestionMetrics struct {
	worksSubmitted metric.Int64Counter
	worksFailed    metric.Int64Counter
	scanDuration   metric.Float64Histogram
	parseDuration  metric.Float64Histogram
}

// NewIngestionMetrics creates the ingestion metric instruments from the
// given meter.
func NewIngestionMetrics(mt metric.Meter) (*IngestionMetrics, error) {
	b := newMetricBuilder(mt)

	im := &IngestionMetrics{
		worksSubmitted: b.counter(metricWorksSubmitted, "Total number of Parse Works submitted", "{work}"),
		worksFailed:    b.counter(metricWorksFailed, "Total number of Parse Works that failed", "{work}"),
		scanDuration:   b.histogram(metricScanDuration, "Scan batch duration in seconds", "s", durationBucketBoundaries...),
		parseDuration:  b.histogram(metricParseDuration, "Parse batch duration in seconds", "s", durationBucketBoundaries...),
	}

	if b.err != nil {
		return nil, b.err
	}

	return im, nil
}

// RecordWorksSubmitted records how many Parse Works a batch submitted
// under the given strategy.
func (im *IngestionMetrics) RecordWorksSubmitted(ctx context.Context, strategyName string, count int64) {
	im.worksSubmitted.Add(ctx, count, metric.WithAttributes(attribute.String(attrStrategy, strategyName)))
}

// RecordWorkOutcome records one Parse Work's completion outcome.
func (im *IngestionMetrics) RecordWorkOutcome(ctx context.Context, strategyName string, failed bool) {
	if !failed {
		return
	}

	im.worksFailed.Add(ctx, 1, metric.WithAttributes(attribute.String(attrStrategy, strategyName)))
}

// RecordScanDuration records one scan batch's wall-clock duration.
func (im *IngestionMetrics) RecordScanDuration(ctx context.Context, outcome string, duration time.Duration) {
	im.scanDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String(attrOutcome, outcome)))
}

// RecordParseDuration records one parse batch's wall-clock duration.
func (im *IngestionMetrics) RecordParseDuration(ctx context.Context, strategyName string, duration time.Duration) {
	im.parseDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String(attrStrategy, strategyName)))
}
