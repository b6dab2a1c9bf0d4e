// Package reference holds the read-only reference data the engine consumes:
// gap-closure options, partner candidates, competitor profiles and closed
// tender results.  These records are maintained out-of-band; the engine
// never writes them.
package reference

import (
	"time"

	"github.com/google/uuid"

	"github.com/tendergate/tendergate/pkg/types/common"
)

// GapType labels the capability gap a closure option remedies.
type GapType string

const (
	GapExperience  GapType = "experience"
	GapRevenue     GapType = "revenue"
	GapCertificate GapType = "certificate"
	GapStaff       GapType = "staff"
	GapFinancial   GapType = "financial"
	GapOther       GapType = "other"
)

// IsValid reports whether g is a known gap type.
func (g GapType) IsValid() bool {
	switch g {
	case GapExperience, GapRevenue, GapCertificate, GapStaff, GapFinancial, GapOther:
		return true
	}
	return false
}

// GapClosureOption is a named remedy for a requirement gap.  The pair
// (gap type, method) is unique.
type GapClosureOption struct {
	ID      uuid.UUID
	GapType GapType

	// Method is the remedy, e.g. "partner with an experienced contractor"
	// or "obtain ISO 9001 certification".
	Method string

	TypicalCost common.AmountRange

	// TypicalTimeDays is the usual time needed to close the gap; options
	// are presented fastest first.
	TypicalTimeDays int

	// SuccessRate in [0,1], from historical closure attempts.
	SuccessRate float64

	// Requirements are structured preconditions of the remedy.
	Requirements map[string]string

	Risks  []string
	Active bool

	CreatedAt time.Time
}
