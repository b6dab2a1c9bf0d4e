package batch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendergate/tendergate/internal/application/classification"
	"github.com/tendergate/tendergate/internal/domain/condition"
	"github.com/tendergate/tendergate/internal/infrastructure/monitoring/logging"
	"github.com/tendergate/tendergate/pkg/errors"
)

func conditions(n int) []*condition.GateCondition {
	out := make([]*condition.GateCondition, n)
	for i := range out {
		out[i] = &condition.GateCondition{
			ID:       uuid.New(),
			Ordinal:  i + 1,
			Text:     "תנאי סף",
			Category: condition.CategoryExperience,
		}
	}
	return out
}

func okClassify(_ context.Context, cond *condition.GateCondition) (*classification.Result, error) {
	return &classification.Result{
		ConditionID: cond.ID.String(),
		Status:      condition.StatusMeets,
	}, nil
}

func TestRunBatchAllSucceed(t *testing.T) {
	o := NewOrchestrator(0, logging.NewNopLogger())

	var progress [][2]int
	run, err := o.RunBatch(context.Background(), conditions(3), okClassify, func(done, total int) {
		progress = append(progress, [2]int{done, total})
	})
	require.NoError(t, err)

	assert.Len(t, run.Results, 3)
	assert.Empty(t, run.Failures)
	assert.Equal(t, 3, run.Completed)
	assert.Equal(t, 3, run.Total)
	assert.Equal(t, [][2]int{{1, 3}, {2, 3}, {3, 3}}, progress)
}

func TestRunBatchSequentialOrder(t *testing.T) {
	o := NewOrchestrator(0, logging.NewNopLogger())
	conds := conditions(5)

	var mu sync.Mutex
	inFlight := 0
	var order []string

	classify := func(_ context.Context, cond *condition.GateCondition) (*classification.Result, error) {
		mu.Lock()
		inFlight++
		require.Equal(t, 1, inFlight, "classification calls must never overlap")
		order = append(order, cond.ID.String())
		inFlight--
		mu.Unlock()
		return &classification.Result{ConditionID: cond.ID.String()}, nil
	}

	run, err := o.RunBatch(context.Background(), conds, classify, nil)
	require.NoError(t, err)
	require.Len(t, run.Results, 5)

	for i, cond := range conds {
		assert.Equal(t, cond.ID.String(), order[i])
	}
}

func TestRunBatchFailureDoesNotAbort(t *testing.T) {
	o := NewOrchestrator(0, logging.NewNopLogger())
	conds := conditions(3)

	classify := func(_ context.Context, cond *condition.GateCondition) (*classification.Result, error) {
		if cond.ID == conds[1].ID {
			return nil, assert.AnError
		}
		return okClassify(context.Background(), cond)
	}

	run, err := o.RunBatch(context.Background(), conds, classify, nil)
	require.NoError(t, err)

	assert.Len(t, run.Results, 2)
	require.Len(t, run.Failures, 1)
	assert.Equal(t, conds[1].ID.String(), run.Failures[0].ConditionID)
	assert.Equal(t, 2, run.Failures[0].Ordinal)
	assert.Equal(t, 3, run.Completed)
}

func TestRunBatchPacing(t *testing.T) {
	delay := 30 * time.Millisecond
	o := NewOrchestrator(delay, logging.NewNopLogger())

	start := time.Now()
	_, err := o.RunBatch(context.Background(), conditions(3), okClassify, nil)
	require.NoError(t, err)

	// Two inter-item delays for three items.
	assert.GreaterOrEqual(t, time.Since(start), 2*delay)
}

func TestRunBatchCancellationBetweenItems(t *testing.T) {
	o := NewOrchestrator(10*time.Millisecond, logging.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	classify := func(_ context.Context, cond *condition.GateCondition) (*classification.Result, error) {
		calls++
		if calls == 2 {
			cancel()
		}
		return okClassify(context.Background(), cond)
	}

	run, err := o.RunBatch(ctx, conditions(5), classify, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeBatchCancelled))

	// Both processed items are preserved in the partial result.
	assert.Equal(t, 2, run.Completed)
	assert.Len(t, run.Results, 2)
	assert.Equal(t, 5, run.Total)
}

func TestRunBatchEmptyInput(t *testing.T) {
	o := NewOrchestrator(0, logging.NewNopLogger())
	run, err := o.RunBatch(context.Background(), nil, okClassify, nil)
	require.NoError(t, err)
	assert.Zero(t, run.Total)
	assert.Zero(t, run.Completed)
}

func TestRunBatchNilClassify(t *testing.T) {
	o := NewOrchestrator(0, logging.NewNopLogger())
	_, err := o.RunBatch(context.Background(), conditions(1), nil, nil)
	assert.Error(t, err)
}
