// Package condition defines the gate-condition model: one eligibility
// requirement a bidder must satisfy to qualify for a tender, together with
// its classification status and the quantitative hints extracted from its
// text.
package condition

import (
	"time"

	"github.com/google/uuid"

	"github.com/tendergate/tendergate/pkg/errors"
)

// ConditionStatus is the classification outcome of a gate condition.
type ConditionStatus string

const (
	StatusUnknown        ConditionStatus = "UNKNOWN"
	StatusMeets          ConditionStatus = "MEETS"
	StatusPartiallyMeets ConditionStatus = "PARTIALLY_MEETS"
	StatusDoesNotMeet    ConditionStatus = "DOES_NOT_MEET"
)

// IsValid reports whether s is one of the recognized statuses.
func (s ConditionStatus) IsValid() bool {
	switch s {
	case StatusUnknown, StatusMeets, StatusPartiallyMeets, StatusDoesNotMeet:
		return true
	}
	return false
}

// RequirementCategory groups gate conditions by the capability they test.
type RequirementCategory string

const (
	CategoryExperience    RequirementCategory = "EXPERIENCE"
	CategoryFinancial     RequirementCategory = "FINANCIAL"
	CategoryCertification RequirementCategory = "CERTIFICATION"
	CategoryPersonnel     RequirementCategory = "PERSONNEL"
	CategoryEquipment     RequirementCategory = "EQUIPMENT"
	CategoryLegal         RequirementCategory = "LEGAL"
	CategoryOther         RequirementCategory = "OTHER"
)

// IsValid reports whether c is one of the recognized categories.
func (c RequirementCategory) IsValid() bool {
	switch c {
	case CategoryExperience, CategoryFinancial, CategoryCertification,
		CategoryPersonnel, CategoryEquipment, CategoryLegal, CategoryOther:
		return true
	}
	return false
}

// LegalClassification describes how strictly the issuing body interprets a
// condition.
type LegalClassification string

const (
	LegalStrict        LegalClassification = "strict"
	LegalOpen          LegalClassification = "open"
	LegalProofDepended LegalClassification = "proof_dependent"
)

// BearerScope identifies which entity may satisfy the condition on the
// bidder's behalf.
type BearerScope string

const (
	BearerBidderOnly           BearerScope = "bidder_only"
	BearerConsortiumMember     BearerScope = "consortium_member"
	BearerSubcontractorAllowed BearerScope = "subcontractor_allowed"
)

// GateCondition is one eligibility requirement of a tender.  Conditions are
// created at intake; their status is mutated exclusively by classification
// runs and they live and die with their parent tender.
type GateCondition struct {
	ID       uuid.UUID
	TenderID uuid.UUID

	// Ordinal is the requirement's position in the tender document.
	Ordinal  int
	Text     string
	Category RequirementCategory

	// Mandatory marks knockout conditions; non-mandatory conditions carry a
	// Weight and contribute to scoring instead.
	Mandatory bool
	Weight    float64

	// At most one of the three thresholds is authoritative per condition.
	RequiredYears  *float64
	RequiredAmount *float64
	RequiredCount  *int

	Status              ConditionStatus
	LegalClassification LegalClassification
	BearerScope         BearerScope

	// Source location inside the tender document, for traceability.
	SourcePage    int
	SourceSection string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the structural invariants of a gate condition.
func (c *GateCondition) Validate() error {
	if c.Text == "" {
		return errors.NewValidation("condition text must not be empty")
	}
	if !c.Category.IsValid() {
		return errors.NewValidation("unknown requirement category %q", c.Category)
	}
	if c.Status != "" && !c.Status.IsValid() {
		return errors.NewValidation("unknown condition status %q", c.Status)
	}
	thresholds := 0
	if c.RequiredYears != nil {
		thresholds++
	}
	if c.RequiredAmount != nil {
		thresholds++
	}
	if c.RequiredCount != nil {
		thresholds++
	}
	if thresholds > 1 {
		return errors.New(errors.ErrCodeValidation,
			"at most one of years/amount/count may be set per condition")
	}
	return nil
}

// HasThreshold reports whether any numeric threshold is set.
func (c *GateCondition) HasThreshold() bool {
	return c.RequiredYears != nil || c.RequiredAmount != nil || c.RequiredCount != nil
}
