package accumulation

import (
	"time"

	"github.com/tendergate/tendergate/pkg/errors"
)

// AggregateResult is the outcome of evaluating a rule over an item set.
// HasData distinguishes "aggregate over nothing" from a genuine zero: a max
// over an empty set is no data, not 0.
type AggregateResult struct {
	Value   float64
	HasData bool
	// ItemCount is the number of items that survived filtering and
	// deduplication.
	ItemCount int
}

// Aggregate evaluates rule over items as of the given instant.  It is pure:
// identical inputs always yield identical results, and duplicate facts never
// double-count.
//
// Filtering happens in two stages: the validity interval of each item must
// cover asOf, and when the rule has a time window the item's relevant date
// must fall within the trailing window ending at asOf.  Surviving items are
// deduplicated by recomputed hash keeping the most recently created
// representative per hash.
func Aggregate(rule *Rule, items []*Item, asOf time.Time) (AggregateResult, error) {
	if err := rule.Validate(); err != nil {
		return AggregateResult{}, err
	}

	var windowStart time.Time
	if rule.TimeWindowMonths > 0 {
		windowStart = asOf.AddDate(0, -rule.TimeWindowMonths, 0)
	}

	// Last-write-wins per hash by creation time.
	survivors := make(map[string]*Item)
	for _, item := range items {
		if item.ItemType != rule.EntityType {
			continue
		}
		if !validAt(item, asOf) {
			continue
		}
		if rule.TimeWindowMonths > 0 && !inWindow(item.RelevantDate, windowStart, asOf) {
			continue
		}
		hash := ComputeHash(rule, item)
		if prev, ok := survivors[hash]; ok && !item.CreatedAt.After(prev.CreatedAt) {
			continue
		}
		survivors[hash] = item
	}

	if len(survivors) == 0 {
		return AggregateResult{}, nil
	}

	result := AggregateResult{HasData: true, ItemCount: len(survivors)}
	switch rule.Method {
	case MethodCountDistinct:
		result.Value = float64(len(survivors))
	case MethodSum:
		for _, item := range survivors {
			v, ok := numericField(item, rule.ValueField)
			if !ok {
				continue
			}
			result.Value += v
		}
	case MethodMax:
		first := true
		for _, item := range survivors {
			v, ok := numericField(item, rule.ValueField)
			if !ok {
				continue
			}
			if first || v > result.Value {
				result.Value = v
				first = false
			}
		}
		if first {
			// Items survived but none carried the value field.
			return AggregateResult{}, nil
		}
	default:
		return AggregateResult{}, errors.Newf(errors.ErrCodeAggregationMethod,
			"rule %s: unknown aggregation method %q", rule.Name, rule.Method)
	}

	return result, nil
}

func validAt(item *Item, asOf time.Time) bool {
	if !item.ValidFrom.IsZero() && asOf.Before(item.ValidFrom) {
		return false
	}
	if !item.ValidTo.IsZero() && asOf.After(item.ValidTo) {
		return false
	}
	return true
}

func inWindow(relevant, start, end time.Time) bool {
	if relevant.IsZero() {
		return false
	}
	return !relevant.Before(start) && !relevant.After(end)
}

func numericField(item *Item, field string) (float64, bool) {
	raw, ok := item.Payload[field]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	}
	return 0, false
}
