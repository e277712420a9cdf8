package repositories

import (
	"context"

	"github.com/sai-sandeep-seelam/CheatStack/internal/domain"
)

// CatalogSource lists the cheatsheets a deployment knows about. Implementations may be slow or
// fail; callers decide on fallbacks.
type CatalogSource interface {
	ListCheatsheets(ctx context.Context) ([]domain.CatalogEntry, error)
}

// CatalogSourceFunc adapts a function to CatalogSource.
type CatalogSourceFunc func(ctx context.Context) ([]domain.CatalogEntry, error)

// ListCheatsheets calls f.
func (f CatalogSourceFunc) ListCheatsheets(ctx context.Context) ([]domain.CatalogEntry, error) {
	return f(ctx)
}

// CacheStore is a string key/value persistence slot. Get reports false for a missing key.
type CacheStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// HealthRepository reports the state of downstream dependencies.
type HealthRepository interface {
	Collect(ctx context.Context) (domain.HealthReport, error)
}
