package classification

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tendergate/tendergate/internal/domain/accumulation"
	"github.com/tendergate/tendergate/internal/domain/condition"
	"github.com/tendergate/tendergate/pkg/errors"
)

// FactSource builds the aggregated Facts for a company relevant to a given
// condition.
type FactSource interface {
	GatherFacts(ctx context.Context, companyID uuid.UUID, cond *condition.GateCondition) (Facts, error)
}

// RuleNames binds each semantic quantity to the accumulation rule that
// computes it.
type RuleNames struct {
	ExperienceYears string
	Amount          string
	Count           string
}

// DefaultRuleNames are the rule bindings used when none are configured.
var DefaultRuleNames = RuleNames{
	ExperienceYears: "experience-years",
	Amount:          "annual-revenue",
	Count:           "project-count",
}

type repoFactSource struct {
	rules accumulation.RuleRepository
	items accumulation.ItemRepository
	names RuleNames
	now   func() time.Time
}

// NewFactSource constructs a FactSource backed by the accumulation
// repositories.  A zero RuleNames falls back to DefaultRuleNames.
func NewFactSource(rules accumulation.RuleRepository, items accumulation.ItemRepository, names RuleNames) FactSource {
	if names == (RuleNames{}) {
		names = DefaultRuleNames
	}
	return &repoFactSource{rules: rules, items: items, names: names, now: time.Now}
}

func (s *repoFactSource) GatherFacts(ctx context.Context, companyID uuid.UUID, cond *condition.GateCondition) (Facts, error) {
	var facts Facts
	asOf := s.now()

	// Only the quantities the condition actually requires are gathered;
	// the rest stay at the zero no-data aggregate.
	if cond.RequiredYears != nil {
		agg, err := s.aggregate(ctx, companyID, s.names.ExperienceYears, asOf)
		if err != nil {
			return Facts{}, err
		}
		facts.ExperienceYears = agg
	}
	if cond.RequiredAmount != nil {
		agg, err := s.aggregate(ctx, companyID, s.names.Amount, asOf)
		if err != nil {
			return Facts{}, err
		}
		facts.Amount = agg
	}
	if cond.RequiredCount != nil {
		agg, err := s.aggregate(ctx, companyID, s.names.Count, asOf)
		if err != nil {
			return Facts{}, err
		}
		facts.Count = agg
	}
	return facts, nil
}

func (s *repoFactSource) aggregate(ctx context.Context, companyID uuid.UUID, ruleName string, asOf time.Time) (accumulation.AggregateResult, error) {
	rule, err := s.rules.FindByName(ctx, ruleName)
	if err != nil {
		if errors.IsNotFound(err) {
			return accumulation.AggregateResult{}, nil
		}
		return accumulation.AggregateResult{}, err
	}
	items, err := s.items.FindByCompany(ctx, companyID, rule.EntityType)
	if err != nil {
		return accumulation.AggregateResult{}, err
	}
	return accumulation.Aggregate(rule, items, asOf)
}
