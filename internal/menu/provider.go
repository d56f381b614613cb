package menu

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tapmatch/tapmatch/internal/beercache"
	"github.com/tapmatch/tapmatch/internal/types"
)

const (
	// DefaultRetryBackoff is the pause before the single live retry.
	DefaultRetryBackoff = 2 * time.Second

	// enrichmentConcurrency bounds parallel beer cache lookups per menu.
	enrichmentConcurrency = 4
)

// Provider resolves a venue's current menu. It tries the live source,
// retries it once after a short backoff, then falls back to the local
// static menu. Failures degrade to an empty menu rather than an error.
type Provider struct {
	live         Source
	local        Source
	cache        *beercache.Cache
	retryBackoff time.Duration
	verbose      bool
}

// NewProvider wires a provider from its sources. Either source and the
// cache may be nil; missing pieces are skipped at resolution time.
func NewProvider(live, local Source, cache *beercache.Cache) *Provider {
	return &Provider{
		live:         live,
		local:        local,
		cache:        cache,
		retryBackoff: DefaultRetryBackoff,
	}
}

// SetRetryBackoff overrides the pause before the live retry.
func (p *Provider) SetRetryBackoff(d time.Duration) { p.retryBackoff = d }

// SetVerbose enables per-attempt logging.
func (p *Provider) SetVerbose(v bool) { p.verbose = v }

// GetMenu returns the best available menu for venue. It never returns an
// error: when the live source fails twice and no local menu exists the
// result is an empty slice.
func (p *Provider) GetMenu(ctx context.Context, venue *types.LocationRecord) []types.MenuEntry {
	entries := p.resolve(ctx, venue)
	if len(entries) == 0 {
		return []types.MenuEntry{}
	}
	p.enrich(ctx, entries)
	return entries
}

func (p *Provider) resolve(ctx context.Context, venue *types.LocationRecord) []types.MenuEntry {
	// A venue without a live-source URL goes straight to the local menu;
	// retrying a fetch that cannot succeed would only add backoff latency.
	if p.live != nil && venue.URL != "" {
		entries, err := p.live.Menu(ctx, venue)
		if err == nil {
			return entries
		}
		log.Printf("[MENU] live menu for %q failed: %v, retrying", venue.VenueName, err)

		select {
		case <-time.After(p.retryBackoff):
		case <-ctx.Done():
			return p.localMenu(ctx, venue)
		}

		entries, err = p.live.Menu(ctx, venue)
		if err == nil {
			return entries
		}
		log.Printf("[MENU] live menu retry for %q failed: %v, falling back to local", venue.VenueName, err)
	}

	return p.localMenu(ctx, venue)
}

func (p *Provider) localMenu(ctx context.Context, venue *types.LocationRecord) []types.MenuEntry {
	if p.local == nil {
		return nil
	}
	entries, err := p.local.Menu(ctx, venue)
	if err != nil {
		log.Printf("[MENU] local menu for %q unavailable: %v", venue.VenueName, err)
		return nil
	}
	return entries
}

// enrich fills fields a source omitted from the beer cache. Cache misses
// and fetch failures leave the entry as the source reported it.
func (p *Provider) enrich(ctx context.Context, entries []types.MenuEntry) {
	if p.cache == nil {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichmentConcurrency)

	for i := range entries {
		if !needsEnrichment(&entries[i].Beer) {
			continue
		}
		entry := &entries[i]
		g.Go(func() error {
			rec, err := p.cache.Get(gctx, entry.Beer.Name)
			if err != nil {
				if p.verbose {
					log.Printf("[MENU] enrichment lookup for %q failed: %v", entry.Beer.Name, err)
				}
				return nil
			}
			mergeBeer(&entry.Beer, rec)
			return nil
		})
	}
	_ = g.Wait()
}

func needsEnrichment(b *types.BeerRecord) bool {
	return b.Style == "" || b.ABV == nil || b.IBU == nil || b.GlobalRating == nil || len(b.FlavorTags) == 0
}

// mergeBeer copies cached fields into dst without overwriting what the
// menu source already reported.
func mergeBeer(dst *types.BeerRecord, src *types.BeerRecord) {
	if dst.Style == "" {
		dst.Style = src.Style
	}
	if dst.Brewery == "" {
		dst.Brewery = src.Brewery
	}
	if dst.ABV == nil {
		dst.ABV = src.ABV
	}
	if dst.IBU == nil {
		dst.IBU = src.IBU
	}
	if dst.GlobalRating == nil {
		dst.GlobalRating = src.GlobalRating
	}
	if len(dst.FlavorTags) == 0 {
		dst.FlavorTags = src.FlavorTags
	}
}
