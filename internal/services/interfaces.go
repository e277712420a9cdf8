package services

import (
	"context"

	"github.com/sai-sandeep-seelam/CheatStack/internal/domain"
)

// CatalogService answers every cheatsheet listing and detail query. None of its operations fail:
// an unreachable content source falls back to the built-in table, and unknown inputs yield empty
// results or placeholder details.
type CatalogService interface {
	ListAll(ctx context.Context) []domain.CheatsheetSummary
	ListByCategory(ctx context.Context, category string, limit int) []domain.CheatsheetSummary
	ListPopular(ctx context.Context, limit int) []domain.CheatsheetSummary
	Search(ctx context.Context, query string) []domain.CheatsheetSummary
	GetDetail(ctx context.Context, name string) domain.CheatsheetDetail
	Browse(ctx context.Context, query BrowseQuery) CatalogPage
	Home(ctx context.Context) HomeSections
	Suggest(ctx context.Context, query string, limit int) []domain.CheatsheetSummary
	Categories() []domain.Category
}

// ContributionService validates and enqueues contributed cheatsheets.
type ContributionService interface {
	Submit(ctx context.Context, input ContributionInput) (ContributionReceipt, error)
}

// ContributionPublisher hands an accepted contribution to the review queue and returns the
// queue's message id.
type ContributionPublisher interface {
	PublishContribution(ctx context.Context, contribution domain.Contribution) (string, error)
}

// BrowseQuery drives the home page grid.
type BrowseQuery struct {
	Query string
	Sort  domain.SortKey
	Page  int
}

// CatalogPage is one window of the browse grid.
type CatalogPage struct {
	Items    []domain.CheatsheetSummary
	Page     int
	PageSize int
	Total    int
	HasMore  bool
}

// CategorySection is one category block on the home page.
type CategorySection struct {
	Category domain.Category
	Title    string
	Items    []domain.CheatsheetSummary
}

// HomeSections is everything the landing page shows before the user interacts.
type HomeSections struct {
	Popular    []domain.CheatsheetSummary
	Categories []CategorySection
}

// ContributionInput is the raw contribute form.
type ContributionInput struct {
	Kind       string
	Cheatsheet string
	Title      string
	Category   string
	Content    string
	Email      string
}

// ContributionReceipt acknowledges an accepted contribution.
type ContributionReceipt struct {
	ID        string
	Kind      domain.ContributionKind
	Message   string
	MessageID string
}
