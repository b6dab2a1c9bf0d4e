// Package batch runs classification over a whole tender's conditions,
// strictly one at a time.  The downstream classification call is
// rate-limited, so the orchestrator serializes invocations with a fixed
// pause between them instead of fanning out.
package batch

import (
	"context"
	"time"

	"github.com/tendergate/tendergate/internal/application/classification"
	"github.com/tendergate/tendergate/internal/domain/condition"
	"github.com/tendergate/tendergate/internal/infrastructure/monitoring/logging"
	"github.com/tendergate/tendergate/pkg/errors"
)

// ClassifyFunc is the pluggable per-condition classification call.  The
// orchestrator prescribes ordering, pacing and failure tolerance; the
// implementation is the caller's.
type ClassifyFunc func(ctx context.Context, cond *condition.GateCondition) (*classification.Result, error)

// ProgressFunc receives (completed, total) after every item.  completed is
// monotonically increasing and reaches total on a full run.
type ProgressFunc func(completed, total int)

// ItemFailure records one condition that could not be classified.
type ItemFailure struct {
	ConditionID string `json:"condition_id"`
	Ordinal     int    `json:"ordinal"`
	Error       string `json:"error"`
}

// RunResult is the outcome of a batch run.
type RunResult struct {
	Results  []*classification.Result `json:"results"`
	Failures []ItemFailure            `json:"failures"`

	// Completed counts processed items, successes and failures alike.  On
	// cancellation it is smaller than Total.
	Completed int `json:"completed"`
	Total     int `json:"total"`

	Elapsed time.Duration `json:"elapsed"`
}

// Orchestrator runs batch evaluations.
type Orchestrator interface {
	// RunBatch classifies all conditions sequentially.  A per-item failure
	// is recorded and the run continues; only context cancellation stops
	// it early, and then the partial result is returned alongside the
	// cancellation error.
	RunBatch(ctx context.Context, conditions []*condition.GateCondition, classify ClassifyFunc, onProgress ProgressFunc) (*RunResult, error)
}

type orchestratorImpl struct {
	itemDelay time.Duration
	logger    logging.Logger
}

// NewOrchestrator constructs the batch orchestrator.  itemDelay is the pause
// between consecutive classification calls.
func NewOrchestrator(itemDelay time.Duration, logger logging.Logger) Orchestrator {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &orchestratorImpl{itemDelay: itemDelay, logger: logger.Named("batch")}
}

func (o *orchestratorImpl) RunBatch(ctx context.Context, conditions []*condition.GateCondition, classify ClassifyFunc, onProgress ProgressFunc) (*RunResult, error) {
	if classify == nil {
		return nil, errors.NewValidation("classify function required")
	}

	start := time.Now()
	run := &RunResult{Total: len(conditions)}

	for i, cond := range conditions {
		// Cancellation is honored between items, never mid-item, so the
		// partial result stays consistent.
		select {
		case <-ctx.Done():
			run.Elapsed = time.Since(start)
			o.logger.Warn("batch cancelled",
				logging.Int("completed", run.Completed),
				logging.Int("total", run.Total))
			return run, errors.Wrap(ctx.Err(), errors.ErrCodeBatchCancelled, "batch evaluation cancelled")
		default:
		}

		if i > 0 && o.itemDelay > 0 {
			timer := time.NewTimer(o.itemDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				run.Elapsed = time.Since(start)
				return run, errors.Wrap(ctx.Err(), errors.ErrCodeBatchCancelled, "batch evaluation cancelled")
			case <-timer.C:
			}
		}

		res, err := classify(ctx, cond)
		if err != nil {
			failure := ItemFailure{Ordinal: i, Error: err.Error()}
			if cond != nil {
				failure.ConditionID = cond.ID.String()
				failure.Ordinal = cond.Ordinal
			}
			run.Failures = append(run.Failures, failure)
			o.logger.Error("batch item failed",
				logging.String("condition_id", failure.ConditionID),
				logging.Err(err))
		} else {
			run.Results = append(run.Results, res)
		}

		run.Completed++
		if onProgress != nil {
			onProgress(run.Completed, run.Total)
		}
	}

	run.Elapsed = time.Since(start)
	o.logger.Info("batch completed",
		logging.Int("total", run.Total),
		logging.Int("failures", len(run.Failures)),
		logging.Duration("elapsed", run.Elapsed))
	return run, nil
}
