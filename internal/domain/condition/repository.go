package condition

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence contract for gate conditions.  Implementations
// live under internal/infrastructure/database.
type Repository interface {
	Save(ctx context.Context, c *GateCondition) error
	FindByID(ctx context.Context, id uuid.UUID) (*GateCondition, error)
	FindByTender(ctx context.Context, tenderID uuid.UUID) ([]*GateCondition, error)
	// UpdateStatus records a classification outcome.  Only classification
	// runs may call this.
	UpdateStatus(ctx context.Context, id uuid.UUID, status ConditionStatus) error
	DeleteByTender(ctx context.Context, tenderID uuid.UUID) error
}
