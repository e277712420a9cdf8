package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/sai-sandeep-seelam/CheatStack/internal/cms"
	"github.com/sai-sandeep-seelam/CheatStack/internal/domain"
	"github.com/sai-sandeep-seelam/CheatStack/internal/platform/pagination"
	"github.com/sai-sandeep-seelam/CheatStack/internal/platform/textutil"
	"github.com/sai-sandeep-seelam/CheatStack/internal/repositories"
)

const (
	defaultCatalogPageSize     = 12
	defaultCatalogSectionLimit = 6
	defaultSourceTimeout       = 5 * time.Second
	maxPopularity              = 100

	meterName = "github.com/sai-sandeep-seelam/CheatStack/internal/services"
)

// CatalogServiceDeps groups constructor parameters for the catalog service.
type CatalogServiceDeps struct {
	Source        repositories.CatalogSource
	Cache         *SessionCache
	Templates     *cms.TemplateSet
	Logger        *zap.Logger
	Meter         metric.Meter
	Clock         func() time.Time
	PageSize      int
	SectionLimit  int
	SourceTimeout time.Duration
}

type catalogService struct {
	source        repositories.CatalogSource
	cache         *SessionCache
	templates     *cms.TemplateSet
	logger        *zap.Logger
	clock         func() time.Time
	pageSize      int
	sectionLimit  int
	sourceTimeout time.Duration

	cacheHits       metric.Int64Counter
	cacheMisses     metric.Int64Counter
	sourceFallbacks metric.Int64Counter
}

// NewCatalogService constructs the catalog service. Missing dependencies default to the built-in
// catalog, an in-memory cache, and the embedded templates.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	source := deps.Source
	if source == nil {
		source = cms.StaticSource{}
	}
	cache := deps.Cache
	if cache == nil {
		cache = NewSessionCache(context.Background(), nil, logger)
	}
	templates := deps.Templates
	if templates == nil {
		templates = cms.MustLoadBuiltinTemplates()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	pageSize := deps.PageSize
	if pageSize <= 0 {
		pageSize = defaultCatalogPageSize
	}
	sectionLimit := deps.SectionLimit
	if sectionLimit <= 0 {
		sectionLimit = defaultCatalogSectionLimit
	}
	timeout := deps.SourceTimeout
	if timeout <= 0 {
		timeout = defaultSourceTimeout
	}
	meter := deps.Meter
	if meter == nil {
		meter = otel.GetMeterProvider().Meter(meterName)
	}

	svc := &catalogService{
		source:        source,
		cache:         cache,
		templates:     templates,
		logger:        logger.Named("catalog"),
		clock:         clock,
		pageSize:      pageSize,
		sectionLimit:  sectionLimit,
		sourceTimeout: timeout,
	}

	var err error
	if svc.cacheHits, err = meter.Int64Counter("cheatstack.catalog.cache.hits",
		metric.WithDescription("Session cache lookups served from memory.")); err != nil {
		return nil, err
	}
	if svc.cacheMisses, err = meter.Int64Counter("cheatstack.catalog.cache.misses",
		metric.WithDescription("Session cache lookups that had to be computed.")); err != nil {
		return nil, err
	}
	if svc.sourceFallbacks, err = meter.Int64Counter("cheatstack.catalog.source.fallbacks",
		metric.WithDescription("Catalog loads answered from the built-in table.")); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *catalogService) ListAll(ctx context.Context) []domain.CheatsheetSummary {
	return s.catalog(ctx)
}

func (s *catalogService) ListByCategory(ctx context.Context, category string, limit int) []domain.CheatsheetSummary {
	result := []domain.CheatsheetSummary{}
	c, ok := domain.ParseCategory(category)
	if !ok || string(c) != category || limit <= 0 {
		return result
	}
	for _, summary := range s.catalog(ctx) {
		if summary.Category == c {
			result = append(result, summary)
		}
	}
	sortByPopularity(result)
	return truncate(result, limit)
}

func (s *catalogService) ListPopular(ctx context.Context, limit int) []domain.CheatsheetSummary {
	if limit <= 0 {
		return []domain.CheatsheetSummary{}
	}
	all := s.catalog(ctx)
	sortByPopularity(all)
	return truncate(all, limit)
}

func (s *catalogService) Search(ctx context.Context, query string) []domain.CheatsheetSummary {
	result := []domain.CheatsheetSummary{}
	needle := strings.TrimSpace(query)
	if needle == "" {
		return result
	}
	for _, summary := range s.catalog(ctx) {
		if textutil.ContainsFold(summary.Name, needle) || textutil.ContainsFold(summary.DisplayName, needle) {
			result = append(result, summary)
		}
	}
	return result
}

func (s *catalogService) GetDetail(ctx context.Context, name string) domain.CheatsheetDetail {
	name = strings.TrimSpace(name)
	key := DetailCacheKeyPrefix + name

	var detail domain.CheatsheetDetail
	if s.cache.Get(key, &detail) {
		s.cacheHits.Add(ctx, 1, metric.WithAttributes(attribute.String("entry", "detail")))
		return detail
	}
	s.cacheMisses.Add(ctx, 1, metric.WithAttributes(attribute.String("entry", "detail")))

	display := cms.DisplayName(name)
	sections := s.templates.Sections(name, display)
	detail = domain.CheatsheetDetail{
		Name:     name,
		Title:    display,
		Sections: sections,
		HTML:     cms.RenderDetailHTML(display, sections),
	}
	if s.templates.Has(name) || s.inCatalog(ctx, name) {
		s.cache.Put(ctx, key, detail)
	} else {
		s.cache.PutBounded(key, detail)
	}
	return detail
}

func (s *catalogService) inCatalog(ctx context.Context, name string) bool {
	for _, summary := range s.catalog(ctx) {
		if summary.Name == name {
			return true
		}
	}
	return false
}

func (s *catalogService) Browse(ctx context.Context, query BrowseQuery) CatalogPage {
	page := query.Page
	if page < 1 {
		page = 1
	}
	now := s.clock()

	if strings.TrimSpace(query.Query) != "" {
		results := s.Search(ctx, query.Query)
		return CatalogPage{
			Items:    ApplySortAt(results, query.Sort, now),
			Page:     page,
			PageSize: s.pageSize,
			Total:    len(results),
		}
	}

	all := s.catalog(ctx)
	end, hasMore := pagination.Window(len(all), page, s.pageSize)
	return CatalogPage{
		Items:    ApplySortAt(all[:end], query.Sort, now),
		Page:     page,
		PageSize: s.pageSize,
		Total:    len(all),
		HasMore:  hasMore,
	}
}

func (s *catalogService) Home(ctx context.Context) HomeSections {
	home := HomeSections{
		Popular:    s.ListPopular(ctx, s.sectionLimit),
		Categories: make([]CategorySection, 0, len(domain.Categories())),
	}
	for _, c := range domain.Categories() {
		home.Categories = append(home.Categories, CategorySection{
			Category: c,
			Title:    textutil.UpperFirst(string(c)),
			Items:    s.ListByCategory(ctx, string(c), s.sectionLimit),
		})
	}
	return home
}

// Suggest ranks display names by fuzzy distance to query. Equal distances keep catalog order.
func (s *catalogService) Suggest(ctx context.Context, query string, limit int) []domain.CheatsheetSummary {
	result := []domain.CheatsheetSummary{}
	query = strings.TrimSpace(query)
	if query == "" || limit <= 0 {
		return result
	}
	all := s.catalog(ctx)
	targets := make([]string, len(all))
	for i, summary := range all {
		targets[i] = summary.DisplayName
	}
	ranks := fuzzy.RankFindNormalizedFold(query, targets)
	sort.Stable(ranks)
	for _, rank := range ranks {
		result = append(result, all[rank.OriginalIndex])
	}
	return truncate(result, limit)
}

func (s *catalogService) Categories() []domain.Category {
	return domain.Categories()
}

// catalog returns a private copy of the session catalog, loading it on first use.
func (s *catalogService) catalog(ctx context.Context) []domain.CheatsheetSummary {
	var cached []domain.CheatsheetSummary
	if s.cache.Get(CatalogCacheKey, &cached) {
		s.cacheHits.Add(ctx, 1, metric.WithAttributes(attribute.String("entry", "catalog")))
		return cached
	}
	s.cacheMisses.Add(ctx, 1, metric.WithAttributes(attribute.String("entry", "catalog")))

	summaries, err := s.load(ctx)
	if err != nil || len(summaries) == 0 {
		if err == nil {
			err = errors.New("content source returned no cheatsheets")
		}
		s.logger.Warn("catalog source unavailable, using built-in table", zap.Error(err))
		s.sourceFallbacks.Add(ctx, 1)
		summaries = s.summarize(cms.BuiltinEntries())
		s.cache.PutTransient(CatalogCacheKey, summaries)
		return summaries
	}
	s.cache.Put(ctx, CatalogCacheKey, summaries)
	return summaries
}

func (s *catalogService) load(ctx context.Context) ([]domain.CheatsheetSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.sourceTimeout)
	defer cancel()

	entries, err := s.source.ListCheatsheets(ctx)
	if err != nil {
		return nil, err
	}
	return s.summarize(entries), nil
}

func (s *catalogService) summarize(entries []domain.CatalogEntry) []domain.CheatsheetSummary {
	summaries := make([]domain.CheatsheetSummary, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			s.logger.Warn("skip catalog entry without name", zap.String("category", entry.Category))
			continue
		}
		category, ok := domain.ParseCategory(entry.Category)
		if !ok {
			s.logger.Warn("skip catalog entry with unknown category", zap.String("name", name), zap.String("category", entry.Category))
			continue
		}
		if _, dup := seen[name]; dup {
			s.logger.Warn("skip duplicate catalog entry", zap.String("name", name))
			continue
		}
		seen[name] = struct{}{}

		popularity := entry.Popularity
		switch {
		case popularity <= 0:
			popularity = cms.Popularity(name)
		case popularity > maxPopularity:
			popularity = maxPopularity
		}
		summaries = append(summaries, domain.CheatsheetSummary{
			Name:        name,
			DisplayName: cms.DisplayName(name),
			Category:    category,
			Popularity:  popularity,
			Path:        cms.Path(name),
			UpdatedAt:   entry.UpdatedAt,
		})
	}
	return summaries
}

func truncate(list []domain.CheatsheetSummary, limit int) []domain.CheatsheetSummary {
	if len(list) > limit {
		return list[:limit]
	}
	return list
}
