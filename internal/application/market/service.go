// Package market estimates which competitors will bid on a tender and
// summarizes the historical competition around it.
package market

import (
	"context"
	"sort"
	"time"

	"github.com/tendergate/tendergate/internal/config"
	"github.com/tendergate/tendergate/internal/domain/reference"
	"github.com/tendergate/tendergate/internal/infrastructure/monitoring/logging"
	"github.com/tendergate/tendergate/pkg/errors"
)

// Prediction is one competitor's estimated participation.
type Prediction struct {
	CompetitorID   string   `json:"competitor_id"`
	CompetitorName string   `json:"competitor_name"`
	Probability    float64  `json:"probability"`
	Reason         string   `json:"reason"`
	WinRate        *float64 `json:"win_rate,omitempty"`
}

// CompetitionLevel buckets how contested a tender is expected to be.
type CompetitionLevel string

const (
	CompetitionHigh   CompetitionLevel = "high"
	CompetitionMedium CompetitionLevel = "medium"
	CompetitionLow    CompetitionLevel = "low"
)

// CompetitionSummary aggregates the relevant closed-tender history.
type CompetitionSummary struct {
	// Sufficient is false when no matching history exists; the numeric
	// fields are then meaningless and must be ignored.
	Sufficient bool `json:"sufficient"`

	SampleSize      int              `json:"sample_size"`
	AvgWinningPrice float64          `json:"avg_winning_price"`
	MinWinningPrice float64          `json:"min_winning_price"`
	MaxWinningPrice float64          `json:"max_winning_price"`
	AvgBidderCount  float64          `json:"avg_bidder_count"`
	Level           CompetitionLevel `json:"level"`
}

// Service is the market analysis surface.
type Service interface {
	// PredictCompetitors ranks active competitor profiles by win rate with
	// a participation probability attached to each, capped at limit.
	PredictCompetitors(ctx context.Context, tender *reference.Tender, limit int) ([]Prediction, error)

	// AnalyzeCompetition summarizes closed results in the tender's
	// category or from its issuing body over the history window.
	AnalyzeCompetition(ctx context.Context, tender *reference.Tender) (*CompetitionSummary, error)
}

type serviceImpl struct {
	competitors reference.CompetitorRepository
	tenders     reference.TenderRepository
	engine      config.EngineConfig
	logger      logging.Logger
	now         func() time.Time
}

// NewService constructs the market analyzer.
func NewService(
	competitors reference.CompetitorRepository,
	tenders reference.TenderRepository,
	engine config.EngineConfig,
	logger logging.Logger,
) Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &serviceImpl{
		competitors: competitors,
		tenders:     tenders,
		engine:      engine,
		logger:      logger.Named("market"),
		now:         time.Now,
	}
}

func (s *serviceImpl) PredictCompetitors(ctx context.Context, tender *reference.Tender, limit int) ([]Prediction, error) {
	if tender == nil {
		return nil, errors.NewValidation("tender required")
	}
	if limit <= 0 || limit > s.engine.MaxPredictedCompetitors {
		limit = s.engine.MaxPredictedCompetitors
	}

	profiles, err := s.competitors.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "loading competitor profiles")
	}

	activeCutoff := s.now().AddDate(0, -s.engine.ActiveWindowMonths, 0)

	predictions := make([]Prediction, 0, len(profiles))
	for _, p := range profiles {
		if !p.ActiveSince(activeCutoff) {
			continue
		}
		prob, reason := s.score(tender, p)
		predictions = append(predictions, Prediction{
			CompetitorID:   p.ID.String(),
			CompetitorName: p.Name,
			Probability:    prob,
			Reason:         reason,
			WinRate:        p.WinRate,
		})
	}

	sort.SliceStable(predictions, func(i, j int) bool {
		wi, wj := predictions[i].WinRate, predictions[j].WinRate
		switch {
		case wi == nil && wj == nil:
			return false
		case wi == nil:
			return false
		case wj == nil:
			return true
		default:
			return *wi > *wj
		}
	})

	if len(predictions) > limit {
		predictions = predictions[:limit]
	}

	s.logger.Debug("competitors predicted",
		logging.String("tender_id", tender.ID.String()),
		logging.Int("count", len(predictions)))
	return predictions, nil
}

// score assigns the participation probability.  The rule ladder is evaluated
// in order and the first match wins; the constants come from calibration
// against historical outcomes and live in configuration.
func (s *serviceImpl) score(tender *reference.Tender, p *reference.CompetitorProfile) (float64, string) {
	categoryMatch := p.HasCategory(tender.Category)
	sizeMatch := tender.EstimatedValue > 0 && p.TypicalBidSize.Contains(tender.EstimatedValue)

	switch {
	case categoryMatch && sizeMatch:
		return s.engine.ProbabilityFrequentWinner, "category and bid size both match"
	case categoryMatch:
		return s.engine.ProbabilityFrequentBidder, "category matches"
	case p.PrefersClient(tender.IssuingBody):
		return s.engine.ProbabilityCategoryActive, "issuing body on preferred-client list"
	default:
		return s.engine.ProbabilityBaseline, "active in market"
	}
}

func (s *serviceImpl) AnalyzeCompetition(ctx context.Context, tender *reference.Tender) (*CompetitionSummary, error) {
	if tender == nil {
		return nil, errors.NewValidation("tender required")
	}

	cutoff := s.now().AddDate(0, -s.engine.HistoryWindowMonths, 0)
	results, err := s.tenders.FindResultsSince(ctx, tender.Category, tender.IssuingBody, cutoff)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "loading tender history")
	}

	if len(results) == 0 {
		return &CompetitionSummary{Sufficient: false}, nil
	}

	summary := &CompetitionSummary{
		Sufficient: true,
		SampleSize: len(results),
	}

	var priceSum, bidderSum float64
	for i, r := range results {
		priceSum += r.WinningPrice
		bidderSum += float64(r.BidderCount)
		if i == 0 || r.WinningPrice < summary.MinWinningPrice {
			summary.MinWinningPrice = r.WinningPrice
		}
		if r.WinningPrice > summary.MaxWinningPrice {
			summary.MaxWinningPrice = r.WinningPrice
		}
	}
	summary.AvgWinningPrice = priceSum / float64(len(results))
	summary.AvgBidderCount = bidderSum / float64(len(results))

	switch {
	case summary.AvgBidderCount > s.engine.HighCompetitionBidders:
		summary.Level = CompetitionHigh
	case summary.AvgBidderCount > s.engine.MediumCompetitionBidders:
		summary.Level = CompetitionMedium
	default:
		summary.Level = CompetitionLow
	}

	return summary, nil
}
