package accumulation

import (
	"context"

	"github.com/google/uuid"
)

// RuleRepository is the persistence contract for aggregation rules.
type RuleRepository interface {
	Save(ctx context.Context, r *Rule) error
	FindByName(ctx context.Context, name string) (*Rule, error)
	List(ctx context.Context) ([]*Rule, error)
}

// ItemRepository is the persistence contract for accumulation items.  Items
// are append-only; there is no update or delete surface.
type ItemRepository interface {
	// Save inserts the item.  Saving a fact whose (company, item type,
	// dedup hash) already exists is a silent no-op.
	Save(ctx context.Context, item *Item) error
	FindByCompany(ctx context.Context, companyID uuid.UUID, itemType string) ([]*Item, error)
}
