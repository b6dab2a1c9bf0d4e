package classification

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendergate/tendergate/internal/domain/condition"
	"github.com/tendergate/tendergate/internal/infrastructure/monitoring/logging"
)

type mockConditionRepo struct {
	updateFn func(ctx context.Context, id uuid.UUID, status condition.ConditionStatus) error
	updated  []condition.ConditionStatus
}

func (m *mockConditionRepo) Save(context.Context, *condition.GateCondition) error { return nil }
func (m *mockConditionRepo) FindByID(context.Context, uuid.UUID) (*condition.GateCondition, error) {
	return nil, nil
}
func (m *mockConditionRepo) FindByTender(context.Context, uuid.UUID) ([]*condition.GateCondition, error) {
	return nil, nil
}
func (m *mockConditionRepo) DeleteByTender(context.Context, uuid.UUID) error { return nil }
func (m *mockConditionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status condition.ConditionStatus) error {
	m.updated = append(m.updated, status)
	if m.updateFn != nil {
		return m.updateFn(ctx, id, status)
	}
	return nil
}

type mockPublisher struct {
	events []ConditionClassifiedEvent
	err    error
}

func (m *mockPublisher) PublishConditionClassified(_ context.Context, e ConditionClassifiedEvent) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, e)
	return nil
}

func TestRecorderPersistsAndPublishes(t *testing.T) {
	repo := &mockConditionRepo{}
	pub := &mockPublisher{}
	rec := NewRecorder(repo, pub, logging.NewNopLogger())

	cond := experienceCondition(5)
	res := &Result{ConditionID: cond.ID.String(), Status: condition.StatusMeets}

	require.NoError(t, rec.Record(context.Background(), cond, res))

	require.Len(t, repo.updated, 1)
	assert.Equal(t, condition.StatusMeets, repo.updated[0])

	require.Len(t, pub.events, 1)
	assert.Equal(t, cond.ID.String(), pub.events[0].ConditionID)
	assert.Equal(t, condition.StatusMeets, pub.events[0].Status)
	assert.False(t, pub.events[0].ClassifiedAt.IsZero())
}

func TestRecorderWithoutPublisher(t *testing.T) {
	repo := &mockConditionRepo{}
	rec := NewRecorder(repo, nil, logging.NewNopLogger())

	cond := experienceCondition(5)
	require.NoError(t, rec.Record(context.Background(), cond, &Result{Status: condition.StatusMeets}))
	assert.Len(t, repo.updated, 1)
}

func TestRecorderRepoFailure(t *testing.T) {
	repo := &mockConditionRepo{
		updateFn: func(context.Context, uuid.UUID, condition.ConditionStatus) error {
			return assert.AnError
		},
	}
	pub := &mockPublisher{}
	rec := NewRecorder(repo, pub, logging.NewNopLogger())

	err := rec.Record(context.Background(), experienceCondition(5), &Result{Status: condition.StatusMeets})
	require.Error(t, err)
	assert.Empty(t, pub.events, "no event after a failed status write")
}

func TestRecorderPublishFailure(t *testing.T) {
	repo := &mockConditionRepo{}
	pub := &mockPublisher{err: assert.AnError}
	rec := NewRecorder(repo, pub, logging.NewNopLogger())

	err := rec.Record(context.Background(), experienceCondition(5), &Result{Status: condition.StatusMeets})
	require.Error(t, err)
	// The status write itself stands.
	assert.Len(t, repo.updated, 1)
}
