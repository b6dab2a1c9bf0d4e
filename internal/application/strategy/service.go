// Package strategy turns a tender's gate conditions into a prioritized
// action plan: mandatory compliance first, then the weighted scoring
// breakdown and a fixed set of positioning recommendations.
package strategy

import (
	"context"
	"fmt"
	"sort"

	"github.com/tendergate/tendergate/internal/domain/condition"
	"github.com/tendergate/tendergate/internal/infrastructure/monitoring/logging"
	"github.com/tendergate/tendergate/pkg/errors"
)

// Impact grades how strongly a recommendation affects the bid outcome.
type Impact string

const (
	ImpactCritical Impact = "critical"
	ImpactHigh     Impact = "high"
	ImpactMedium   Impact = "medium"
)

// Recommendation is one prioritized action item.
type Recommendation struct {
	Priority int    `json:"priority"`
	Topic    string `json:"topic"`
	Action   string `json:"action"`
	Impact   Impact `json:"impact"`
}

// ScoredCondition is one weighted condition in the scoring breakdown.
type ScoredCondition struct {
	ConditionID string                    `json:"condition_id"`
	Text        string                    `json:"text"`
	Weight      float64                   `json:"weight"`
	Status      condition.ConditionStatus `json:"status"`
}

// Plan is the optimizer's output for one tender.
type Plan struct {
	MandatoryCount int `json:"mandatory_count"`

	// MandatoryUnmet counts mandatory conditions currently classified as
	// not met; any non-zero value makes the bid non-compliant as-is.
	MandatoryUnmet int `json:"mandatory_unmet"`

	// ScoringBreakdown lists the weighted conditions, heaviest first.
	ScoringBreakdown []ScoredCondition `json:"scoring_breakdown"`

	// TotalScoreWeight is the sum of all scored-condition weights.
	TotalScoreWeight float64 `json:"total_score_weight"`

	Recommendations []Recommendation `json:"recommendations"`
}

// Service produces bid strategies.
type Service interface {
	OptimizeStrategy(ctx context.Context, conditions []*condition.GateCondition) (*Plan, error)
}

type serviceImpl struct {
	logger logging.Logger
}

// NewService constructs the strategy optimizer.
func NewService(logger logging.Logger) Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &serviceImpl{logger: logger.Named("strategy")}
}

func (s *serviceImpl) OptimizeStrategy(_ context.Context, conditions []*condition.GateCondition) (*Plan, error) {
	if len(conditions) == 0 {
		return nil, errors.NewValidation("at least one condition required")
	}

	plan := &Plan{}
	for _, c := range conditions {
		if c == nil {
			continue
		}
		if c.Mandatory {
			plan.MandatoryCount++
			if c.Status == condition.StatusDoesNotMeet || c.Status == condition.StatusPartiallyMeets {
				plan.MandatoryUnmet++
			}
			continue
		}
		plan.ScoringBreakdown = append(plan.ScoringBreakdown, ScoredCondition{
			ConditionID: c.ID.String(),
			Text:        c.Text,
			Weight:      c.Weight,
			Status:      c.Status,
		})
		plan.TotalScoreWeight += c.Weight
	}

	sort.SliceStable(plan.ScoringBreakdown, func(i, j int) bool {
		return plan.ScoringBreakdown[i].Weight > plan.ScoringBreakdown[j].Weight
	})

	plan.Recommendations = buildRecommendations(plan)

	s.logger.Debug("strategy computed",
		logging.Int("mandatory", plan.MandatoryCount),
		logging.Int("scored", len(plan.ScoringBreakdown)),
		logging.Float64("total_weight", plan.TotalScoreWeight))
	return plan, nil
}

// buildRecommendations emits the fixed-priority action template.  This is
// deliberate templating, not optimization: the order never changes, only
// the wording adapts to the plan.
func buildRecommendations(plan *Plan) []Recommendation {
	recs := make([]Recommendation, 0, 4)

	mandatory := fmt.Sprintf("satisfy all %d mandatory conditions before investing in scoring; partial compliance disqualifies the bid", plan.MandatoryCount)
	if plan.MandatoryUnmet > 0 {
		mandatory = fmt.Sprintf("close %d of %d mandatory conditions currently unmet; the bid is non-compliant until they are resolved", plan.MandatoryUnmet, plan.MandatoryCount)
	}
	recs = append(recs, Recommendation{
		Priority: 1,
		Topic:    "mandatory compliance",
		Action:   mandatory,
		Impact:   ImpactCritical,
	})

	experience := "lead the submission with the strongest relevant project experience"
	if len(plan.ScoringBreakdown) > 0 {
		experience = fmt.Sprintf("lead with the strongest evidence for the heaviest scored condition (weight %.4g)", plan.ScoringBreakdown[0].Weight)
	}
	recs = append(recs, Recommendation{
		Priority: 2,
		Topic:    "experience emphasis",
		Action:   experience,
		Impact:   ImpactHigh,
	})

	recs = append(recs, Recommendation{
		Priority: 3,
		Topic:    "certifications and personnel",
		Action:   "attach all current certifications and key-personnel CVs even where not strictly required",
		Impact:   ImpactMedium,
	})

	recs = append(recs, Recommendation{
		Priority: 4,
		Topic:    "price positioning",
		Action:   "target mid-market to slightly below the expected winning band; avoid aggressive underbidding that signals delivery risk",
		Impact:   ImpactHigh,
	})

	return recs
}
