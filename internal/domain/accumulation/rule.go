// Package accumulation aggregates historical bidder facts (projects,
// revenue figures, staffing records) into single comparable quantities under
// named rules, with deduplication and rolling time windows.
package accumulation

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tendergate/tendergate/pkg/errors"
)

// Method is the aggregation method of a rule.
type Method string

const (
	MethodSum           Method = "sum"
	MethodCountDistinct Method = "count_distinct"
	MethodMax           Method = "max"
)

// IsValid reports whether m is a known aggregation method.
func (m Method) IsValid() bool {
	switch m {
	case MethodSum, MethodCountDistinct, MethodMax:
		return true
	}
	return false
}

// Rule is a named aggregation policy.  Rule names are unique across the
// system.
type Rule struct {
	ID   uuid.UUID
	Name string

	// EntityType selects the item type this rule applies to, e.g.
	// "project" or "revenue_year".
	EntityType string

	Method Method

	// ValueField names the payload field holding the numeric value for sum
	// and max.  Ignored for count_distinct.
	ValueField string

	// DedupFields is the tuple of payload fields that defines a duplicate.
	// Must be non-empty.
	DedupFields []string

	// TimeWindowMonths restricts aggregation to items whose relevant date
	// falls within the trailing window.  0 means unbounded.
	TimeWindowMonths int

	CreatedAt time.Time
}

// Validate checks the rule's structural invariants.
func (r *Rule) Validate() error {
	if r.Name == "" {
		return errors.NewValidation("rule name must not be empty")
	}
	if r.EntityType == "" {
		return errors.NewValidation("rule %s: entity type must not be empty", r.Name)
	}
	if !r.Method.IsValid() {
		return errors.Newf(errors.ErrCodeAggregationMethod,
			"rule %s: unknown aggregation method %q", r.Name, r.Method)
	}
	if len(r.DedupFields) == 0 {
		return errors.Newf(errors.ErrCodeDedupFieldsEmpty,
			"rule %s: dedup fields must not be empty", r.Name)
	}
	if (r.Method == MethodSum || r.Method == MethodMax) && r.ValueField == "" {
		return errors.NewValidation("rule %s: value field required for %s", r.Name, r.Method)
	}
	if r.TimeWindowMonths < 0 {
		return errors.NewValidation("rule %s: time window must not be negative", r.Name)
	}
	return nil
}

// Item is one fact contributed toward an aggregate.  Items are append-only:
// once validated they are never mutated, and (company, item type, dedup hash)
// is unique so re-submitting the same fact is a no-op.
type Item struct {
	ID        uuid.UUID
	CompanyID uuid.UUID
	ItemType  string

	// Payload carries the structured fact.  Values are compared through
	// their canonical string form when computing dedup hashes.
	Payload map[string]interface{}

	// DedupHash is recorded at intake; the engine recomputes it from the
	// owning rule during aggregation and trusts the recomputed value.
	DedupHash string

	// ValidFrom/ValidTo bound the interval during which the fact holds.
	// A zero ValidTo means open-ended.
	ValidFrom time.Time
	ValidTo   time.Time

	// RelevantDate anchors the fact on the timeline for window filtering,
	// e.g. a project's completion date.
	RelevantDate time.Time

	CreatedAt time.Time
}

// ComputeHash derives the deduplication hash of an item under a rule: the
// SHA-256 of the rule's dedup field values in sorted field order.  Missing
// fields contribute an empty value so partially populated payloads still
// hash deterministically.
func ComputeHash(rule *Rule, item *Item) string {
	fields := make([]string, len(rule.DedupFields))
	copy(fields, rule.DedupFields)
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s=%s", f, canonicalValue(item.Payload[f])))
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// canonicalValue renders a payload value into a stable string form.  Numeric
// JSON values arrive as float64; integral floats are rendered without a
// fractional part so 3 and 3.0 hash identically.
func canonicalValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(strings.ToLower(t))
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	case int:
		return fmt.Sprintf("%d", t)
	case int64:
		return fmt.Sprintf("%d", t)
	case bool:
		return fmt.Sprintf("%t", t)
	case time.Time:
		return t.UTC().Format("2006-01-02")
	default:
		return fmt.Sprintf("%v", t)
	}
}
