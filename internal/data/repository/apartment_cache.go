package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/karlseguin/ccache/v3"
	"go.uber.org/zap"

	"agrly/internal/data/entity"
)

// cachedApartmentRepository is a read-through TTL cache in front of the
// listing directory. Apartments change rarely and are read on every booking
// attempt. Availability is never cached here: conflict checks always go to
// the ledger.
type cachedApartmentRepository struct {
	inner ApartmentRepository
	cache *ccache.Cache[*entity.Apartment]
	ttl   time.Duration
	log   *zap.Logger
}

func NewCachedApartmentRepository(inner ApartmentRepository, maxSize int64, ttl time.Duration, log *zap.Logger) ApartmentRepository {
	return &cachedApartmentRepository{
		inner: inner,
		cache: ccache.New(ccache.Configure[*entity.Apartment]().MaxSize(maxSize)),
		ttl:   ttl,
		log:   log.With(zap.String("repository", "apartment_cache")),
	}
}

func (r *cachedApartmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Apartment, error) {
	key := id.String()

	if item := r.cache.Get(key); item != nil && !item.Expired() {
		r.log.Debug("Apartment cache hit", zap.String("apartment_id", key))
		return item.Value(), nil
	}

	apartment, err := r.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// misses for unknown ids are not cached; a listing created moments later
	// should become bookable without waiting out a TTL
	if apartment != nil {
		r.cache.Set(key, apartment, r.ttl)
	}

	return apartment, nil
}

// FindAvailable is a paged catalog read; it bypasses the single-item cache.
func (r *cachedApartmentRepository) FindAvailable(ctx context.Context, limit, offset int) ([]*entity.Apartment, error) {
	return r.inner.FindAvailable(ctx, limit, offset)
}

func (r *cachedApartmentRepository) CountAvailable(ctx context.Context) (int64, error) {
	return r.inner.CountAvailable(ctx)
}
