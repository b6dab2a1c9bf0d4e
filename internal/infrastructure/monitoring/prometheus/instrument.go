package prometheus

import (
	"context"
	"time"

	"github.com/tendergate/tendergate/internal/application/batch"
	"github.com/tendergate/tendergate/internal/application/classification"
	"github.com/tendergate/tendergate/internal/domain/condition"
)

// instrumentedClassifier counts classification outcomes and observes their
// latency.  It leaves the wrapped service's behavior untouched.
type instrumentedClassifier struct {
	inner   classification.Service
	metrics *Metrics
}

// InstrumentClassifier wraps svc with outcome and latency metrics.
func InstrumentClassifier(svc classification.Service, m *Metrics) classification.Service {
	return &instrumentedClassifier{inner: svc, metrics: m}
}

func (c *instrumentedClassifier) Classify(ctx context.Context, cond *condition.GateCondition, facts classification.Facts) (*classification.Result, error) {
	return c.observe(func() (*classification.Result, error) {
		return c.inner.Classify(ctx, cond, facts)
	})
}

func (c *instrumentedClassifier) ClassifyAndRecord(ctx context.Context, cond *condition.GateCondition, facts classification.Facts) (*classification.Result, error) {
	return c.observe(func() (*classification.Result, error) {
		return c.inner.ClassifyAndRecord(ctx, cond, facts)
	})
}

func (c *instrumentedClassifier) observe(run func() (*classification.Result, error)) (*classification.Result, error) {
	start := time.Now()
	res, err := run()
	c.metrics.ClassificationTime.Observe(time.Since(start).Seconds())
	if err == nil && res != nil {
		c.metrics.ClassificationsTotal.WithLabelValues(string(res.Status)).Inc()
	}
	return res, err
}

// instrumentedOrchestrator records batch run durations and per-item outcomes.
type instrumentedOrchestrator struct {
	inner   batch.Orchestrator
	metrics *Metrics
}

// InstrumentOrchestrator wraps o with batch metrics.
func InstrumentOrchestrator(o batch.Orchestrator, m *Metrics) batch.Orchestrator {
	return &instrumentedOrchestrator{inner: o, metrics: m}
}

func (b *instrumentedOrchestrator) RunBatch(ctx context.Context, conditions []*condition.GateCondition, classify batch.ClassifyFunc, onProgress batch.ProgressFunc) (*batch.RunResult, error) {
	run, err := b.inner.RunBatch(ctx, conditions, classify, onProgress)
	if run != nil {
		b.metrics.BatchDuration.Observe(run.Elapsed.Seconds())
		b.metrics.BatchItemsTotal.WithLabelValues("succeeded").Add(float64(len(run.Results)))
		b.metrics.BatchItemsTotal.WithLabelValues("failed").Add(float64(len(run.Failures)))
	}
	return run, err
}
