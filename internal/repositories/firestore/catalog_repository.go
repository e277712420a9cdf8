// Package firestore implements catalog and cache repositories on Cloud Firestore.
package firestore

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/sai-sandeep-seelam/CheatStack/internal/domain"
	pfirestore "github.com/sai-sandeep-seelam/CheatStack/internal/platform/firestore"
	"github.com/sai-sandeep-seelam/CheatStack/internal/repositories"
)

type catalogDocument struct {
	Name       string     `firestore:"name"`
	Category   string     `firestore:"category"`
	Popularity int        `firestore:"popularity"`
	Order      int        `firestore:"order"`
	UpdatedAt  *time.Time `firestore:"updatedAt"`
}

// CatalogRepository lists cheatsheets from a collection ordered by its "order" field. Documents
// without a name use their id.
type CatalogRepository struct {
	base *pfirestore.BaseRepository[catalogDocument]
}

var _ repositories.CatalogSource = (*CatalogRepository)(nil)

// NewCatalogRepository binds the repository to collection.
func NewCatalogRepository(provider *pfirestore.Provider, collection string) *CatalogRepository {
	return &CatalogRepository{base: pfirestore.NewBaseRepository[catalogDocument](provider, collection)}
}

// ListCheatsheets returns every catalog document.
func (r *CatalogRepository) ListCheatsheets(ctx context.Context) ([]domain.CatalogEntry, error) {
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.OrderBy("order", firestore.Asc)
	})
	if err != nil {
		return nil, err
	}
	entries := make([]domain.CatalogEntry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, toEntry(doc))
	}
	return entries, nil
}

func toEntry(doc pfirestore.Document[catalogDocument]) domain.CatalogEntry {
	name := strings.TrimSpace(doc.Data.Name)
	if name == "" {
		name = doc.ID
	}
	entry := domain.CatalogEntry{
		Name:       name,
		Category:   strings.TrimSpace(doc.Data.Category),
		Popularity: doc.Data.Popularity,
		UpdatedAt:  doc.Data.UpdatedAt,
	}
	if entry.UpdatedAt == nil && !doc.UpdateTime.IsZero() {
		updated := doc.UpdateTime.UTC()
		entry.UpdatedAt = &updated
	}
	return entry
}
