// Package classification implements the gate-condition classifier: it
// compares a condition's required thresholds against aggregated bidder facts
// and assigns a status, with the quantitative pattern flags extracted from
// the condition text attached as interpretation context.
package classification

import (
	"context"
	"fmt"
	"strings"

	"github.com/tendergate/tendergate/internal/domain/accumulation"
	"github.com/tendergate/tendergate/internal/domain/condition"
	"github.com/tendergate/tendergate/internal/infrastructure/monitoring/logging"
	"github.com/tendergate/tendergate/pkg/errors"
)

// Facts carries the aggregated bidder quantities relevant to a condition.
// Each aggregate's HasData flag distinguishes "no history" from a true zero.
type Facts struct {
	ExperienceYears accumulation.AggregateResult
	Amount          accumulation.AggregateResult
	Count           accumulation.AggregateResult
}

// Result is the outcome of one classification run.
type Result struct {
	ConditionID string                    `json:"condition_id"`
	Status      condition.ConditionStatus `json:"status"`

	// Evidence lists the threshold-vs-fact comparisons that produced the
	// status, one line per required quantity.
	Evidence []string `json:"evidence"`

	// GapDescription is set when the status is not MEETS and describes
	// what is missing.
	GapDescription string `json:"gap_description,omitempty"`

	// Interpretation summarizes the quantitative pattern flags found in
	// the condition text.
	Interpretation string `json:"interpretation,omitempty"`

	Flags condition.PatternFlags `json:"flags"`
}

// Recorder persists classification outcomes and announces them.  Both hooks
// are optional; the zero implementation makes Classify a pure function.
type Recorder interface {
	// Record stores the new status and publishes a classification event.
	Record(ctx context.Context, cond *condition.GateCondition, res *Result) error
}

// Service classifies gate conditions.
type Service interface {
	// Classify evaluates the condition against the given facts.  It never
	// mutates the condition; re-running with identical inputs yields an
	// identical result.
	Classify(ctx context.Context, cond *condition.GateCondition, facts Facts) (*Result, error)

	// ClassifyAndRecord classifies and then persists the outcome through
	// the configured Recorder.
	ClassifyAndRecord(ctx context.Context, cond *condition.GateCondition, facts Facts) (*Result, error)
}

type classifierImpl struct {
	recorder Recorder
	logger   logging.Logger
}

// NewService constructs the classifier.  recorder may be nil, in which case
// ClassifyAndRecord degrades to Classify.
func NewService(recorder Recorder, logger logging.Logger) Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &classifierImpl{recorder: recorder, logger: logger.Named("classification")}
}

type comparison struct {
	label    string
	required float64
	actual   accumulation.AggregateResult
}

func (s *classifierImpl) Classify(_ context.Context, cond *condition.GateCondition, facts Facts) (*Result, error) {
	if cond == nil {
		return nil, errors.NewValidation("condition must not be nil")
	}
	if err := cond.Validate(); err != nil {
		return nil, err
	}

	flags := condition.ExtractPatterns(cond.Text)

	res := &Result{
		ConditionID:    cond.ID.String(),
		Flags:          flags,
		Interpretation: interpret(flags),
	}

	comparisons := requiredComparisons(cond, facts)
	if len(comparisons) == 0 {
		// Nothing measurable: unclassifiable input stays UNKNOWN.
		res.Status = condition.StatusUnknown
		res.GapDescription = "no quantitative threshold to evaluate"
		return res, nil
	}

	met, unmet := 0, 0
	anyData := false
	var gaps []string
	for _, c := range comparisons {
		if !c.actual.HasData {
			res.Evidence = append(res.Evidence,
				fmt.Sprintf("%s: required %.4g, no data available", c.label, c.required))
			gaps = append(gaps, fmt.Sprintf("%s unverified (no data)", c.label))
			continue
		}
		anyData = true
		if c.actual.Value >= c.required {
			met++
			res.Evidence = append(res.Evidence,
				fmt.Sprintf("%s: required %.4g, have %.4g (met)", c.label, c.required, c.actual.Value))
		} else {
			unmet++
			res.Evidence = append(res.Evidence,
				fmt.Sprintf("%s: required %.4g, have %.4g (not met)", c.label, c.required, c.actual.Value))
			gaps = append(gaps, fmt.Sprintf("%s short by %.4g", c.label, c.required-c.actual.Value))
		}
	}

	switch {
	case !anyData:
		res.Status = condition.StatusUnknown
	case unmet == 0 && len(gaps) == 0:
		res.Status = condition.StatusMeets
	case met > 0:
		res.Status = condition.StatusPartiallyMeets
	default:
		res.Status = condition.StatusDoesNotMeet
	}

	if res.Status != condition.StatusMeets && len(gaps) > 0 {
		res.GapDescription = strings.Join(gaps, "; ")
	}
	return res, nil
}

func (s *classifierImpl) ClassifyAndRecord(ctx context.Context, cond *condition.GateCondition, facts Facts) (*Result, error) {
	res, err := s.Classify(ctx, cond, facts)
	if err != nil {
		return nil, err
	}
	if s.recorder != nil {
		if err := s.recorder.Record(ctx, cond, res); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "recording classification outcome")
		}
	}
	s.logger.Info("condition classified",
		logging.String("condition_id", res.ConditionID),
		logging.String("status", string(res.Status)))
	return res, nil
}

func requiredComparisons(cond *condition.GateCondition, facts Facts) []comparison {
	var out []comparison
	if cond.RequiredYears != nil {
		out = append(out, comparison{"experience years", *cond.RequiredYears, facts.ExperienceYears})
	}
	if cond.RequiredAmount != nil {
		out = append(out, comparison{"amount", *cond.RequiredAmount, facts.Amount})
	}
	if cond.RequiredCount != nil {
		out = append(out, comparison{"count", float64(*cond.RequiredCount), facts.Count})
	}
	return out
}

func interpret(flags condition.PatternFlags) string {
	var parts []string
	switch flags.VAT {
	case condition.VATIncluded:
		parts = append(parts, "amounts include VAT")
	case condition.VATExcluded:
		parts = append(parts, "amounts exclude VAT")
	case condition.VATMentioned:
		parts = append(parts, "VAT treatment unclear")
	}
	switch flags.Qualifier {
	case condition.QualifierMinimum:
		parts = append(parts, "stated quantity is a floor")
	case condition.QualifierMaximum:
		parts = append(parts, "stated quantity is a ceiling")
	}
	if flags.PeriodYears > 0 {
		parts = append(parts, fmt.Sprintf("%d-year reference period", flags.PeriodYears))
	}
	return strings.Join(parts, "; ")
}
