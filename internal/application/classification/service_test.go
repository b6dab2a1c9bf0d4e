package classification

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendergate/tendergate/internal/domain/accumulation"
	"github.com/tendergate/tendergate/internal/domain/condition"
	"github.com/tendergate/tendergate/internal/infrastructure/monitoring/logging"
)

type mockRecorder struct {
	recordFn func(ctx context.Context, cond *condition.GateCondition, res *Result) error
	calls    int
}

func (m *mockRecorder) Record(ctx context.Context, cond *condition.GateCondition, res *Result) error {
	m.calls++
	if m.recordFn != nil {
		return m.recordFn(ctx, cond, res)
	}
	return nil
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func data(v float64) accumulation.AggregateResult {
	return accumulation.AggregateResult{Value: v, HasData: true, ItemCount: 1}
}

func experienceCondition(requiredYears float64) *condition.GateCondition {
	return &condition.GateCondition{
		ID:            uuid.New(),
		Text:          "ניסיון של לפחות 5 שנים בביצוע עבודות תשתית",
		Category:      condition.CategoryExperience,
		Mandatory:     true,
		RequiredYears: floatPtr(requiredYears),
	}
}

func TestClassifyMeets(t *testing.T) {
	svc := NewService(nil, logging.NewNopLogger())

	res, err := svc.Classify(context.Background(), experienceCondition(5),
		Facts{ExperienceYears: data(7)})
	require.NoError(t, err)

	assert.Equal(t, condition.StatusMeets, res.Status)
	assert.Empty(t, res.GapDescription)
	require.Len(t, res.Evidence, 1)
	assert.Contains(t, res.Evidence[0], "met")
}

func TestClassifyDoesNotMeet(t *testing.T) {
	svc := NewService(nil, logging.NewNopLogger())

	res, err := svc.Classify(context.Background(), experienceCondition(5),
		Facts{ExperienceYears: data(2)})
	require.NoError(t, err)

	assert.Equal(t, condition.StatusDoesNotMeet, res.Status)
	assert.Contains(t, res.GapDescription, "short by 3")
}

func TestClassifyNoFactsIsUnknown(t *testing.T) {
	svc := NewService(nil, logging.NewNopLogger())

	res, err := svc.Classify(context.Background(), experienceCondition(5), Facts{})
	require.NoError(t, err)
	assert.Equal(t, condition.StatusUnknown, res.Status)
}

func TestClassifyNoThresholdIsUnknown(t *testing.T) {
	svc := NewService(nil, logging.NewNopLogger())
	cond := &condition.GateCondition{
		ID:       uuid.New(),
		Text:     "רישיון קבלן בתוקף",
		Category: condition.CategoryCertification,
	}

	res, err := svc.Classify(context.Background(), cond, Facts{})
	require.NoError(t, err)
	assert.Equal(t, condition.StatusUnknown, res.Status)
	assert.NotEmpty(t, res.GapDescription)
}

func TestClassifyIdempotent(t *testing.T) {
	svc := NewService(nil, logging.NewNopLogger())
	cond := experienceCondition(5)
	facts := Facts{ExperienceYears: data(3)}

	first, err := svc.Classify(context.Background(), cond, facts)
	require.NoError(t, err)
	second, err := svc.Classify(context.Background(), cond, facts)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	// Classify never mutates the condition itself.
	assert.Equal(t, condition.ConditionStatus(""), cond.Status)
}

func TestClassifyInterpretation(t *testing.T) {
	svc := NewService(nil, logging.NewNopLogger())
	cond := &condition.GateCondition{
		ID:             uuid.New(),
		Text:           `מחזור של לפחות 10 מיליון שח לא כולל מע"מ ב-3 שנים אחרונות`,
		Category:       condition.CategoryFinancial,
		RequiredAmount: floatPtr(10_000_000),
	}

	res, err := svc.Classify(context.Background(), cond, Facts{Amount: data(12_000_000)})
	require.NoError(t, err)

	assert.Equal(t, condition.StatusMeets, res.Status)
	assert.Contains(t, res.Interpretation, "exclude VAT")
	assert.Contains(t, res.Interpretation, "floor")
	assert.Contains(t, res.Interpretation, "3-year")
}

func TestClassifyNilCondition(t *testing.T) {
	svc := NewService(nil, logging.NewNopLogger())
	_, err := svc.Classify(context.Background(), nil, Facts{})
	assert.Error(t, err)
}

func TestClassifyInvalidCondition(t *testing.T) {
	svc := NewService(nil, logging.NewNopLogger())
	cond := experienceCondition(5)
	cond.Text = ""
	_, err := svc.Classify(context.Background(), cond, Facts{})
	assert.Error(t, err)
}

func TestClassifyAndRecord(t *testing.T) {
	rec := &mockRecorder{}
	svc := NewService(rec, logging.NewNopLogger())

	res, err := svc.ClassifyAndRecord(context.Background(), experienceCondition(5),
		Facts{ExperienceYears: data(7)})
	require.NoError(t, err)
	assert.Equal(t, condition.StatusMeets, res.Status)
	assert.Equal(t, 1, rec.calls)
}

func TestClassifyAndRecordRecorderFailure(t *testing.T) {
	rec := &mockRecorder{
		recordFn: func(context.Context, *condition.GateCondition, *Result) error {
			return assert.AnError
		},
	}
	svc := NewService(rec, logging.NewNopLogger())

	_, err := svc.ClassifyAndRecord(context.Background(), experienceCondition(5),
		Facts{ExperienceYears: data(7)})
	assert.Error(t, err)
}

type mockRuleRepo struct {
	findFn func(ctx context.Context, name string) (*accumulation.Rule, error)
}

func (m *mockRuleRepo) Save(context.Context, *accumulation.Rule) error { return nil }
func (m *mockRuleRepo) List(context.Context) ([]*accumulation.Rule, error) {
	return nil, nil
}
func (m *mockRuleRepo) FindByName(ctx context.Context, name string) (*accumulation.Rule, error) {
	return m.findFn(ctx, name)
}

type mockItemRepo struct {
	items []*accumulation.Item
}

func (m *mockItemRepo) Save(context.Context, *accumulation.Item) error { return nil }
func (m *mockItemRepo) FindByCompany(context.Context, uuid.UUID, string) ([]*accumulation.Item, error) {
	return m.items, nil
}

func TestGatherFacts(t *testing.T) {
	now := time.Now()
	rule := &accumulation.Rule{
		Name:        "annual-revenue",
		EntityType:  "revenue_year",
		Method:      accumulation.MethodSum,
		ValueField:  "amount",
		DedupFields: []string{"year"},
	}
	rules := &mockRuleRepo{
		findFn: func(_ context.Context, name string) (*accumulation.Rule, error) {
			require.Equal(t, "annual-revenue", name)
			return rule, nil
		},
	}
	items := &mockItemRepo{items: []*accumulation.Item{
		{
			ItemType:     "revenue_year",
			Payload:      map[string]interface{}{"year": 2025, "amount": 4_000_000.0},
			RelevantDate: now.AddDate(0, -3, 0),
		},
	}}

	src := NewFactSource(rules, items, RuleNames{})
	cond := &condition.GateCondition{
		Text:           "מחזור",
		Category:       condition.CategoryFinancial,
		RequiredAmount: floatPtr(3_000_000),
	}

	facts, err := src.GatherFacts(context.Background(), uuid.New(), cond)
	require.NoError(t, err)
	assert.True(t, facts.Amount.HasData)
	assert.Equal(t, 4_000_000.0, facts.Amount.Value)
	assert.False(t, facts.ExperienceYears.HasData)
}
