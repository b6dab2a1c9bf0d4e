package reference

import (
	"time"

	"github.com/google/uuid"

	"github.com/tendergate/tendergate/pkg/types/common"
)

// PotentialPartner is a third party that can supply a missing capability in
// a consortium or subcontracting arrangement.
type PotentialPartner struct {
	ID   uuid.UUID
	Name string

	// Capabilities maps capability keys to a free-text description.
	Capabilities map[string]string

	Certifications []string

	// ExperienceCategories lists the gap-type keys the partner has proven
	// experience in.
	ExperienceCategories []string

	BidSizeRange common.AmountRange

	// Rating in [0,5]; nil when the partner has not been rated yet.
	Rating *float64

	Preferred bool

	CreatedAt time.Time
}

// CoversGap reports whether the partner's experience categories or
// capabilities contain the given gap type.
func (p *PotentialPartner) CoversGap(gap GapType) bool {
	key := string(gap)
	for _, c := range p.ExperienceCategories {
		if c == key {
			return true
		}
	}
	_, ok := p.Capabilities[key]
	return ok
}
