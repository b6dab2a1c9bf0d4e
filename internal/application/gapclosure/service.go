// Package gapclosure maps an unmet gate condition to a gap category and
// recommends closure options and partner candidates for it.
package gapclosure

import (
	"context"
	"sort"

	"github.com/tendergate/tendergate/internal/domain/condition"
	"github.com/tendergate/tendergate/internal/domain/dictionary"
	"github.com/tendergate/tendergate/internal/domain/reference"
	"github.com/tendergate/tendergate/internal/infrastructure/monitoring/logging"
	"github.com/tendergate/tendergate/pkg/errors"
)

// Recommendation is the outcome of analyzing one condition's gap.
type Recommendation struct {
	GapType reference.GapType `json:"gap_type"`

	// Options are the applicable closure options, fastest remedy first.
	// Empty for the "other" gap type, which has no dedicated options.
	Options []*reference.GapClosureOption `json:"options"`

	// Partners are candidates covering the gap, best rated first, capped
	// at the configured list size.
	Partners []*reference.PotentialPartner `json:"partners"`
}

// Service recommends gap closures for unmet conditions.
type Service interface {
	SuggestClosures(ctx context.Context, cond *condition.GateCondition) (*Recommendation, error)
}

type serviceImpl struct {
	options    reference.GapOptionRepository
	partners   reference.PartnerRepository
	normalizer dictionary.Normalizer
	partnerCap int
	logger     logging.Logger
}

// NewService constructs the gap-closure recommender.  partnerCap bounds the
// partner list; values below 1 fall back to 5.
func NewService(
	options reference.GapOptionRepository,
	partners reference.PartnerRepository,
	normalizer dictionary.Normalizer,
	partnerCap int,
	logger logging.Logger,
) Service {
	if normalizer == nil {
		normalizer = dictionary.NewNormalizer()
	}
	if partnerCap < 1 {
		partnerCap = 5
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &serviceImpl{
		options:    options,
		partners:   partners,
		normalizer: normalizer,
		partnerCap: partnerCap,
		logger:     logger.Named("gapclosure"),
	}
}

func (s *serviceImpl) SuggestClosures(ctx context.Context, cond *condition.GateCondition) (*Recommendation, error) {
	if cond == nil || cond.Text == "" {
		return nil, errors.NewValidation("condition with non-empty text required")
	}

	gap := s.inferGapType(cond.Text)
	rec := &Recommendation{GapType: gap}

	// "other" has no dedicated options; an empty list is a valid answer,
	// not an error.
	if gap != reference.GapOther {
		options, err := s.options.FindByGapType(ctx, gap)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "loading gap options")
		}
		sort.SliceStable(options, func(i, j int) bool {
			return options[i].TypicalTimeDays < options[j].TypicalTimeDays
		})
		rec.Options = options
	}

	partners, err := s.partners.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "loading partner candidates")
	}
	rec.Partners = rankPartners(partners, gap, s.partnerCap)

	s.logger.Debug("gap closure suggested",
		logging.String("gap_type", string(gap)),
		logging.Int("options", len(rec.Options)),
		logging.Int("partners", len(rec.Partners)))
	return rec, nil
}

// inferGapType resolves the condition text to a gap type through the term
// dictionary.  The dictionary's match order is the tie-break: experience
// before revenue before certificate before staff before financial.
func (s *serviceImpl) inferGapType(text string) reference.GapType {
	switch s.normalizer.Normalize(text) {
	case dictionary.TermExperience:
		return reference.GapExperience
	case dictionary.TermRevenue:
		return reference.GapRevenue
	case dictionary.TermCertificate:
		return reference.GapCertificate
	case dictionary.TermStaff:
		return reference.GapStaff
	case dictionary.TermFinancial:
		return reference.GapFinancial
	default:
		return reference.GapOther
	}
}

// rankPartners filters candidates to those covering the gap and orders them
// by rating descending with unrated partners last, keeping at most limit.
func rankPartners(candidates []*reference.PotentialPartner, gap reference.GapType, limit int) []*reference.PotentialPartner {
	matched := make([]*reference.PotentialPartner, 0, len(candidates))
	for _, p := range candidates {
		if p.CoversGap(gap) {
			matched = append(matched, p)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		ri, rj := matched[i].Rating, matched[j].Rating
		switch {
		case ri == nil && rj == nil:
			return false
		case ri == nil:
			return false
		case rj == nil:
			return true
		default:
			return *ri > *rj
		}
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched
}
