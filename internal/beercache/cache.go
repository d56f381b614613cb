package beercache

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tapmatch/tapmatch/internal/types"
)

// Cache layers TTL staleness and fetch coalescing over a Store. Concurrent
// Get calls for the same normalized name share one in-flight fetch; calls
// for distinct names proceed independently.
type Cache struct {
	store   Store
	fetcher Fetcher
	ttl     time.Duration
	group   singleflight.Group
}

// New creates a cache over the given store. fetcher may be nil, in which
// case stale records are served as-is and absent records are not found.
func New(store Store, fetcher Fetcher, ttl time.Duration) *Cache {
	return &Cache{store: store, fetcher: fetcher, ttl: ttl}
}

// Get resolves a beer record by name. A fresh cached record is returned
// directly. A stale or absent record triggers a single coalesced live
// fetch; on fetch failure the stale record is returned when one exists,
// otherwise the lookup fails with *NotFoundError.
func (c *Cache) Get(ctx context.Context, name string) (*types.BeerRecord, error) {
	key := types.NormalizeBeerName(name)
	if key == "" {
		return nil, &NotFoundError{Name: name}
	}

	cached, err := c.store.Get(ctx, key)
	if err == nil && c.fresh(cached) {
		return cached, nil
	}

	fetched, fetchErr := c.coalescedFetch(ctx, key, name)
	if fetchErr == nil {
		return fetched, nil
	}

	if cached != nil {
		// Degrade gracefully: a stale record beats no record.
		log.Printf("[BEERCACHE] live fetch failed for %q, serving stale record: %v", key, fetchErr)
		return cached, nil
	}
	return nil, &NotFoundError{Name: name}
}

// coalescedFetch runs at most one live fetch per key across concurrent
// callers. The fetch itself is detached from the first caller's
// cancellation so one canceled request cannot fail the whole flight; the
// configured fetch timeout still bounds it.
func (c *Cache) coalescedFetch(ctx context.Context, key, name string) (*types.BeerRecord, error) {
	v, err, _ := c.group.Do(key, func() (any, error) {
		fetchCtx := context.WithoutCancel(ctx)

		// A previous flight may have refreshed the record while this
		// caller was waiting to start.
		if rec, err := c.store.Get(fetchCtx, key); err == nil && c.fresh(rec) {
			return rec, nil
		}

		if c.fetcher == nil {
			return nil, &NotFoundError{Name: name}
		}

		rec, err := c.fetcher.FetchBeer(fetchCtx, name)
		if err != nil {
			return nil, err
		}

		rec.FetchedAt = time.Now().UTC()
		if err := c.store.Put(fetchCtx, rec); err != nil {
			// The fetch succeeded; failing to persist is not a reason
			// to fail the callers.
			log.Printf("[BEERCACHE] failed to persist fetched record %q: %v", key, err)
		}
		return rec, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.BeerRecord), nil
}

// Put upserts a record with FetchedAt set to now.
func (c *Cache) Put(ctx context.Context, rec *types.BeerRecord) error {
	if rec.Key() == "" {
		return &StoreError{Message: "record has an empty normalized name"}
	}
	rec.FetchedAt = time.Now().UTC()
	return c.store.Put(ctx, rec)
}

// Keys lists the normalized names currently in the backing store.
func (c *Cache) Keys(ctx context.Context) ([]string, error) {
	return c.store.Keys(ctx)
}

// Close releases the backing store.
func (c *Cache) Close() error {
	return c.store.Close()
}

func (c *Cache) fresh(rec *types.BeerRecord) bool {
	if c.ttl <= 0 {
		return true
	}
	return time.Since(rec.FetchedAt) < c.ttl
}
