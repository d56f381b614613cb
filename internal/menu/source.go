package menu

import (
	"context"

	"github.com/tapmatch/tapmatch/internal/types"
)

// Source is the capability that produces a venue's raw menu entries.
// Variants: LiveSource scrapes the venue's live page, LocalSource reads a
// static menu file. New kinds of sources are added by implementing this
// interface, not by branching inside the provider.
type Source interface {
	Name() string
	Menu(ctx context.Context, venue *types.LocationRecord) ([]types.MenuEntry, error)
}
