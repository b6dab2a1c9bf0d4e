package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tendergate/tendergate/internal/domain/reference"
	"github.com/tendergate/tendergate/internal/infrastructure/monitoring/logging"
	"github.com/tendergate/tendergate/pkg/errors"
)

// CachedTenderRepository decorates a TenderRepository with cache-aside reads.
// Tender metadata and closed results change rarely, so short TTLs keep the
// hot analysis endpoints off the database.  Lookups that find nothing are
// cached too, via the null marker, so repeated misses stay cheap.
type CachedTenderRepository struct {
	inner  reference.TenderRepository
	cache  *Cache
	ttl    time.Duration
	logger logging.Logger
}

// NewCachedTenderRepository wraps inner with the given cache.  ttl 0 falls
// back to the cache's default TTL.
func NewCachedTenderRepository(inner reference.TenderRepository, cache *Cache, ttl time.Duration, logger logging.Logger) *CachedTenderRepository {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &CachedTenderRepository{inner: inner, cache: cache, ttl: ttl, logger: logger}
}

// Invalidate drops the cached tender entry, e.g. after its metadata changes.
func (r *CachedTenderRepository) Invalidate(ctx context.Context, id uuid.UUID) {
	if err := r.cache.Delete(ctx, "tender:"+id.String()); err != nil {
		r.logger.Warn("tender cache invalidation failed",
			logging.String("tender_id", id.String()), logging.Err(err))
	}
}

func (r *CachedTenderRepository) FindTender(ctx context.Context, id uuid.UUID) (*reference.Tender, error) {
	var tender reference.Tender
	key := "tender:" + id.String()

	err := r.cache.GetOrSet(ctx, key, &tender, r.ttl, func(ctx context.Context) (interface{}, error) {
		return r.inner.FindTender(ctx, id)
	})
	if err == ErrNilValue {
		return nil, errors.NewNotFound("tender %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &tender, nil
}

func (r *CachedTenderRepository) FindResultsSince(ctx context.Context, category, issuingBody string, cutoff time.Time) ([]*reference.TenderResult, error) {
	var results []*reference.TenderResult
	key := fmt.Sprintf("results:%s:%s:%s", category, issuingBody, cutoff.Format("2006-01-02"))

	err := r.cache.GetOrSet(ctx, key, &results, r.ttl, func(ctx context.Context) (interface{}, error) {
		return r.inner.FindResultsSince(ctx, category, issuingBody, cutoff)
	})
	if err == ErrNilValue {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return results, nil
}
