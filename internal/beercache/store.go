package beercache

import (
	"context"

	"github.com/tapmatch/tapmatch/internal/types"
)

// Store is the contract a durable beer-record store must satisfy. Records
// are keyed by normalized beer name; a store never holds two records for
// names that normalize identically. Get returns *NotFoundError for an
// absent key.
type Store interface {
	Get(ctx context.Context, key string) (*types.BeerRecord, error)
	Put(ctx context.Context, rec *types.BeerRecord) error
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

// Fetcher is the injected live-fetch capability used to resolve stale or
// absent records.
type Fetcher interface {
	FetchBeer(ctx context.Context, name string) (*types.BeerRecord, error)
}
