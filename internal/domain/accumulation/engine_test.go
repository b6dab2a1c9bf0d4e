package accumulation

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var asOf = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func sumRule(windowMonths int) *Rule {
	return &Rule{
		ID:               uuid.New(),
		Name:             "revenue-sum",
		EntityType:       "revenue_year",
		Method:           MethodSum,
		ValueField:       "amount",
		DedupFields:      []string{"year"},
		TimeWindowMonths: windowMonths,
	}
}

func revenueItem(year int, amount float64, monthsAgo int) *Item {
	return &Item{
		ID:        uuid.New(),
		CompanyID: uuid.New(),
		ItemType:  "revenue_year",
		Payload: map[string]interface{}{
			"year":   float64(year),
			"amount": amount,
		},
		RelevantDate: asOf.AddDate(0, -monthsAgo, 0),
		CreatedAt:    asOf.AddDate(0, -monthsAgo, 0),
	}
}

func TestAggregateSum(t *testing.T) {
	rule := sumRule(0)
	items := []*Item{
		revenueItem(2024, 100, 18),
		revenueItem(2025, 50, 6),
	}

	got, err := Aggregate(rule, items, asOf)
	require.NoError(t, err)
	assert.True(t, got.HasData)
	assert.Equal(t, 150.0, got.Value)
	assert.Equal(t, 2, got.ItemCount)
}

func TestAggregateWindowExcludesOldItems(t *testing.T) {
	rule := sumRule(12)
	items := []*Item{
		revenueItem(2024, 100, 13), // outside the 12-month window
		revenueItem(2025, 50, 6),
	}

	got, err := Aggregate(rule, items, asOf)
	require.NoError(t, err)
	assert.Equal(t, 50.0, got.Value)
	assert.Equal(t, 1, got.ItemCount)
}

func TestAggregateDedupNoDoubleCount(t *testing.T) {
	rule := sumRule(0)
	first := revenueItem(2025, 50, 6)
	resubmitted := revenueItem(2025, 50, 6)
	resubmitted.CreatedAt = first.CreatedAt.Add(time.Hour)

	got, err := Aggregate(rule, []*Item{first, resubmitted}, asOf)
	require.NoError(t, err)
	assert.Equal(t, 50.0, got.Value)
	assert.Equal(t, 1, got.ItemCount)
}

func TestAggregateDedupLastWriteWins(t *testing.T) {
	rule := sumRule(0)
	old := revenueItem(2025, 40, 6)
	corrected := revenueItem(2025, 55, 6)
	corrected.CreatedAt = old.CreatedAt.Add(time.Hour)

	got, err := Aggregate(rule, []*Item{old, corrected}, asOf)
	require.NoError(t, err)
	assert.Equal(t, 55.0, got.Value)
}

func TestAggregateCountDistinct(t *testing.T) {
	rule := &Rule{
		Name:        "project-count",
		EntityType:  "project",
		Method:      MethodCountDistinct,
		DedupFields: []string{"client", "project_name"},
	}

	mk := func(client, name string) *Item {
		return &Item{
			ItemType:     "project",
			Payload:      map[string]interface{}{"client": client, "project_name": name},
			RelevantDate: asOf.AddDate(0, -1, 0),
			CreatedAt:    asOf.AddDate(0, -1, 0),
		}
	}

	items := []*Item{
		mk("עיריית חיפה", "כביש 22"),
		mk("עיריית חיפה", "כביש 22"), // duplicate
		mk("עיריית חיפה", "גשר פז"),
		mk("נתיבי ישראל", "כביש 22"),
	}

	got, err := Aggregate(rule, items, asOf)
	require.NoError(t, err)
	assert.Equal(t, 3.0, got.Value)
}

func TestAggregateMax(t *testing.T) {
	rule := &Rule{
		Name:        "largest-project",
		EntityType:  "project",
		Method:      MethodMax,
		ValueField:  "value",
		DedupFields: []string{"project_name"},
	}

	items := []*Item{
		{
			ItemType:     "project",
			Payload:      map[string]interface{}{"project_name": "a", "value": 3_000_000.0},
			RelevantDate: asOf.AddDate(0, -2, 0),
		},
		{
			ItemType:     "project",
			Payload:      map[string]interface{}{"project_name": "b", "value": 7_500_000.0},
			RelevantDate: asOf.AddDate(0, -4, 0),
		},
	}

	got, err := Aggregate(rule, items, asOf)
	require.NoError(t, err)
	assert.Equal(t, 7_500_000.0, got.Value)
}

func TestAggregateEmptySetIsNoData(t *testing.T) {
	for _, method := range []Method{MethodSum, MethodCountDistinct, MethodMax} {
		t.Run(string(method), func(t *testing.T) {
			rule := sumRule(0)
			rule.Method = method
			got, err := Aggregate(rule, nil, asOf)
			require.NoError(t, err)
			assert.False(t, got.HasData)
			assert.Equal(t, 0.0, got.Value)
		})
	}
}

func TestAggregateMaxWithoutValueFieldIsNoData(t *testing.T) {
	rule := &Rule{
		Name:        "largest-project",
		EntityType:  "project",
		Method:      MethodMax,
		ValueField:  "value",
		DedupFields: []string{"project_name"},
	}
	items := []*Item{
		{
			ItemType:     "project",
			Payload:      map[string]interface{}{"project_name": "a"},
			RelevantDate: asOf.AddDate(0, -2, 0),
		},
	}

	got, err := Aggregate(rule, items, asOf)
	require.NoError(t, err)
	assert.False(t, got.HasData)
}

func TestAggregateIgnoresOtherItemTypes(t *testing.T) {
	rule := sumRule(0)
	item := revenueItem(2025, 50, 6)
	item.ItemType = "project"

	got, err := Aggregate(rule, []*Item{item}, asOf)
	require.NoError(t, err)
	assert.False(t, got.HasData)
}

func TestAggregateValidityInterval(t *testing.T) {
	rule := sumRule(0)
	expired := revenueItem(2024, 100, 6)
	expired.ValidTo = asOf.AddDate(0, -1, 0)
	notYet := revenueItem(2025, 200, 6)
	notYet.ValidFrom = asOf.AddDate(0, 1, 0)
	current := revenueItem(2023, 50, 6)
	current.ValidFrom = asOf.AddDate(0, -12, 0)

	got, err := Aggregate(rule, []*Item{expired, notYet, current}, asOf)
	require.NoError(t, err)
	assert.Equal(t, 50.0, got.Value)
	assert.Equal(t, 1, got.ItemCount)
}

func TestAggregateIsPure(t *testing.T) {
	rule := sumRule(12)
	items := []*Item{
		revenueItem(2024, 100, 3),
		revenueItem(2025, 50, 6),
	}

	first, err := Aggregate(rule, items, asOf)
	require.NoError(t, err)
	second, err := Aggregate(rule, items, asOf)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAggregateInvalidRule(t *testing.T) {
	rule := sumRule(0)
	rule.DedupFields = nil
	_, err := Aggregate(rule, nil, asOf)
	assert.Error(t, err)
}
