package firestore

import (
	"context"

	pfirestore "github.com/sai-sandeep-seelam/CheatStack/internal/platform/firestore"
	"github.com/sai-sandeep-seelam/CheatStack/internal/repositories"
)

type cacheDocument struct {
	Value string `firestore:"value"`
}

// CacheRepository stores one document per key with the payload in its "value" field.
type CacheRepository struct {
	base *pfirestore.BaseRepository[cacheDocument]
}

var _ repositories.CacheStore = (*CacheRepository)(nil)

// NewCacheRepository binds the repository to collection.
func NewCacheRepository(provider *pfirestore.Provider, collection string) *CacheRepository {
	return &CacheRepository{base: pfirestore.NewBaseRepository[cacheDocument](provider, collection)}
}

func (r *CacheRepository) Get(ctx context.Context, key string) (string, bool, error) {
	doc, err := r.base.Get(ctx, key)
	if err != nil {
		if pfirestore.IsNotFound(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return doc.Data.Value, true, nil
}

func (r *CacheRepository) Set(ctx context.Context, key, value string) error {
	return r.base.Set(ctx, key, cacheDocument{Value: value})
}
