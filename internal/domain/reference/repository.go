package reference

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// GapOptionRepository serves active gap-closure options.
type GapOptionRepository interface {
	// FindByGapType returns active options for the gap type, sorted
	// ascending by typical time to close.
	FindByGapType(ctx context.Context, gap GapType) ([]*GapClosureOption, error)
}

// PartnerRepository serves partner candidates.
type PartnerRepository interface {
	List(ctx context.Context) ([]*PotentialPartner, error)
}

// CompetitorRepository serves competitor profiles.
type CompetitorRepository interface {
	List(ctx context.Context) ([]*CompetitorProfile, error)
}

// TenderRepository serves tenders and their closed results.
type TenderRepository interface {
	FindTender(ctx context.Context, id uuid.UUID) (*Tender, error)
	// FindResultsSince returns closed results matching the category or the
	// issuing body, decided at or after the cutoff.
	FindResultsSince(ctx context.Context, category, issuingBody string, cutoff time.Time) ([]*TenderResult, error)
}
