package reference

import (
	"time"

	"github.com/google/uuid"
)

// Tender is the minimal tender view the market analyzer needs: category,
// issuing body and the estimated contract value.
type Tender struct {
	ID             uuid.UUID
	Title          string
	Category       string
	IssuingBody    string
	EstimatedValue float64
	SubmissionDue  time.Time
}

// TenderResult is a closed tender's outcome.
type TenderResult struct {
	ID          uuid.UUID
	TenderID    uuid.UUID
	Category    string
	IssuingBody string

	WinnerName   string
	WinningPrice float64
	BidderCount  int
	DecidedAt    time.Time

	Bids []TenderBid
}

// TenderBid is one ranked bid inside a closed tender.
type TenderBid struct {
	ID           uuid.UUID
	ResultID     uuid.UUID
	BidderName   string
	Price        float64
	Rank         int
	Disqualified bool
	// DisqualifyReason is set only when Disqualified.
	DisqualifyReason string
}
