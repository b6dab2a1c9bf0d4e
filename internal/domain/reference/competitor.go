package reference

import (
	"time"

	"github.com/google/uuid"

	"github.com/tendergate/tendergate/pkg/types/common"
)

// PricingBehavior labels a competitor's observed pricing style.
type PricingBehavior string

const (
	PricingAggressive   PricingBehavior = "aggressive"
	PricingMarketRate   PricingBehavior = "market_rate"
	PricingPremium      PricingBehavior = "premium"
	PricingInconsistent PricingBehavior = "inconsistent"
)

// DataQuality labels how reliable a profile's history is.
type DataQuality string

const (
	QualityHigh    DataQuality = "high"
	QualityPartial DataQuality = "partial"
	QualityStale   DataQuality = "stale"
)

// CompetitorProfile captures a market participant's historical behavior.
type CompetitorProfile struct {
	ID   uuid.UUID
	Name string

	Categories []string

	TypicalBidSize common.AmountRange

	// WinRate in [0,1]; nil when too few closed tenders exist to compute.
	WinRate *float64

	PricingBehavior  PricingBehavior
	PreferredClients []string
	LastActivityAt   time.Time
	DataQuality      DataQuality

	CreatedAt time.Time
}

// HasCategory reports whether the profile competes in the given category.
func (p *CompetitorProfile) HasCategory(category string) bool {
	for _, c := range p.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// PrefersClient reports whether the issuing body is on the profile's
// preferred-client list.
func (p *CompetitorProfile) PrefersClient(client string) bool {
	for _, c := range p.PreferredClients {
		if c == client {
			return true
		}
	}
	return false
}

// ActiveSince reports whether the profile's last activity is at or after the
// given cutoff.
func (p *CompetitorProfile) ActiveSince(cutoff time.Time) bool {
	return !p.LastActivityAt.Before(cutoff)
}
