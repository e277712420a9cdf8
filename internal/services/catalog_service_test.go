package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sai-sandeep-seelam/CheatStack/internal/domain"
	"github.com/sai-sandeep-seelam/CheatStack/internal/repositories"
)

type stubCatalogSource struct {
	mu      sync.Mutex
	entries []domain.CatalogEntry
	err     error
	calls   int
}

func (s *stubCatalogSource) ListCheatsheets(context.Context) ([]domain.CatalogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.entries, s.err
}

type failingCacheStore struct{}

func (failingCacheStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("quota exceeded")
}

func (failingCacheStore) Set(context.Context, string, string) error {
	return errors.New("quota exceeded")
}

func newTestCatalogService(t *testing.T, deps CatalogServiceDeps) CatalogService {
	t.Helper()
	svc, err := NewCatalogService(deps)
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}
	return svc
}

func names(list []domain.CheatsheetSummary) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.Name
	}
	return out
}

func TestCatalogService_ListAll_BuiltinTable(t *testing.T) {
	svc := newTestCatalogService(t, CatalogServiceDeps{})

	all := svc.ListAll(context.Background())
	if len(all) != 42 {
		t.Fatalf("expected 42 built-in cheatsheets, got %d", len(all))
	}
	first := all[0]
	if first.Name != "javascript" || first.DisplayName != "Javascript" || first.Category != domain.CategoryLanguages {
		t.Fatalf("unexpected first entry %#v", first)
	}
	if first.Path != "javascript.md" || first.Popularity != 98 {
		t.Fatalf("unexpected derived fields %#v", first)
	}
	if last := all[len(all)-1]; last.Name != "graphql" || last.Category != domain.CategoryDatabases {
		t.Fatalf("unexpected last entry %#v", last)
	}
}

func TestCatalogService_ListAll_ReturnsCopies(t *testing.T) {
	svc := newTestCatalogService(t, CatalogServiceDeps{})
	ctx := context.Background()

	first := svc.ListAll(ctx)
	first[0].Name = "mutated"

	if got := svc.ListAll(ctx)[0].Name; got != "javascript" {
		t.Fatalf("caller mutation leaked into cache: %q", got)
	}
}

func TestCatalogService_ListPopular_StableOnTies(t *testing.T) {
	source := &stubCatalogSource{entries: []domain.CatalogEntry{
		{Name: "a", Category: "tools", Popularity: 50},
		{Name: "b", Category: "tools", Popularity: 90},
		{Name: "c", Category: "tools", Popularity: 90},
	}}
	svc := newTestCatalogService(t, CatalogServiceDeps{Source: source})

	got := names(svc.ListPopular(context.Background(), 10))
	if want := []string{"b", "c", "a"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestCatalogService_ListPopular_Builtin(t *testing.T) {
	svc := newTestCatalogService(t, CatalogServiceDeps{})

	got := names(svc.ListPopular(context.Background(), 3))
	if want := []string{"javascript", "python", "git"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestCatalogService_ListByCategory(t *testing.T) {
	svc := newTestCatalogService(t, CatalogServiceDeps{})
	ctx := context.Background()

	got := svc.ListByCategory(ctx, "languages", 3)
	if want := []string{"javascript", "python", "typescript"}; !reflect.DeepEqual(names(got), want) {
		t.Fatalf("expected %v, got %v", want, names(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Popularity < got[i].Popularity {
			t.Fatalf("result not sorted by popularity: %v", got)
		}
	}

	for _, loose := range []string{"LANGUAGES", " languages ", "Languages"} {
		if got := svc.ListByCategory(ctx, loose, 3); len(got) != 0 {
			t.Fatalf("category %q should not match, got %v", loose, names(got))
		}
	}
	if got := svc.ListByCategory(ctx, "cooking", 5); got == nil || len(got) != 0 {
		t.Fatalf("unknown category should yield an empty list, got %#v", got)
	}
	if got := svc.ListByCategory(ctx, "tools", 0); len(got) != 0 {
		t.Fatalf("zero limit should yield an empty list, got %v", names(got))
	}
	if got := svc.ListPopular(ctx, -1); len(got) != 0 {
		t.Fatalf("negative limit should yield an empty list, got %v", names(got))
	}
}

func TestCatalogService_Search(t *testing.T) {
	svc := newTestCatalogService(t, CatalogServiceDeps{})
	ctx := context.Background()

	for _, query := range []string{"", "   "} {
		got := svc.Search(ctx, query)
		if got == nil || len(got) != 0 {
			t.Fatalf("Search(%q) should be empty, got %v", query, names(got))
		}
	}

	got := names(svc.Search(ctx, "SCRIPT"))
	if want := []string{"javascript", "typescript"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	got = names(svc.Search(ctx, " node.JS "))
	if want := []string{"nodejs"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("display name match: expected %v, got %v", want, got)
	}
}

func TestCatalogService_GetDetail_Idempotent(t *testing.T) {
	store := repositories.NewMemoryCacheStore()
	ctx := context.Background()
	svc := newTestCatalogService(t, CatalogServiceDeps{Cache: NewSessionCache(ctx, store, nil)})

	first := svc.GetDetail(ctx, "cobol")
	second := svc.GetDetail(ctx, "cobol")

	if first.HTML == "" || first.HTML != second.HTML {
		t.Fatalf("expected identical non-empty html, got %q and %q", first.HTML, second.HTML)
	}
	if first.Title != "Cobol" || len(first.Sections) != 1 || first.Sections[0].Title != "Cobol Basics" {
		t.Fatalf("unexpected placeholder detail %#v", first)
	}

	raw, _, _ := store.Get(ctx, CacheSlotKey)
	if strings.Contains(raw, DetailCacheKeyPrefix+"cobol") {
		t.Fatalf("detail for a name outside the catalog should stay in memory: %q", raw)
	}
}

func TestCatalogService_GetDetail_SecondCallHitsCache(t *testing.T) {
	ctx := context.Background()
	cache := NewSessionCache(ctx, nil, nil)
	svc := newTestCatalogService(t, CatalogServiceDeps{Cache: cache})

	svc.GetDetail(ctx, "cobol")
	var cached domain.CheatsheetDetail
	if !cache.Get(DetailCacheKeyPrefix+"cobol", &cached) || cached.Title != "Cobol" {
		t.Fatalf("expected cobol detail memoised for the session, got %#v", cached)
	}
}

func TestCatalogService_GetDetail_PersistsKnownNames(t *testing.T) {
	store := repositories.NewMemoryCacheStore()
	ctx := context.Background()
	svc := newTestCatalogService(t, CatalogServiceDeps{Source: &stubCatalogSource{entries: []domain.CatalogEntry{
		{Name: "go", Category: "languages"},
	}}, Cache: NewSessionCache(ctx, store, nil)})

	svc.GetDetail(ctx, "go")
	svc.GetDetail(ctx, "python")

	raw, ok, _ := store.Get(ctx, CacheSlotKey)
	if !ok {
		t.Fatalf("expected a persisted slot")
	}
	for _, key := range []string{DetailCacheKeyPrefix + "go", DetailCacheKeyPrefix + "python"} {
		if !strings.Contains(raw, key) {
			t.Fatalf("expected %s persisted, slot %q", key, raw)
		}
	}
}

func TestCatalogService_GetDetail_UnknownNamesAreBounded(t *testing.T) {
	store := repositories.NewMemoryCacheStore()
	ctx := context.Background()
	cache := NewSessionCache(ctx, store, nil)
	svc := newTestCatalogService(t, CatalogServiceDeps{Cache: cache})

	svc.ListAll(ctx)
	baseline, _, _ := store.Get(ctx, CacheSlotKey)

	for i := 0; i < DefaultBoundedLimit+50; i++ {
		svc.GetDetail(ctx, fmt.Sprintf("unknown-%d", i))
	}

	if got := cache.Len(); got > DefaultBoundedLimit+1 {
		t.Fatalf("expected at most %d entries in memory, got %d", DefaultBoundedLimit+1, got)
	}
	var detail domain.CheatsheetDetail
	if cache.Get(DetailCacheKeyPrefix+"unknown-0", &detail) {
		t.Fatalf("oldest unknown detail should have been evicted")
	}
	last := fmt.Sprintf("%sunknown-%d", DetailCacheKeyPrefix, DefaultBoundedLimit+49)
	if !cache.Get(last, &detail) {
		t.Fatalf("newest unknown detail should still be cached")
	}
	raw, _, _ := store.Get(ctx, CacheSlotKey)
	if raw != baseline {
		t.Fatalf("unknown names should not touch the slot")
	}
}

func TestCatalogService_GetDetail_Templates(t *testing.T) {
	svc := newTestCatalogService(t, CatalogServiceDeps{})

	detail := svc.GetDetail(context.Background(), "javascript")
	if len(detail.Sections) < 2 {
		t.Fatalf("expected a multi-section javascript template, got %d sections", len(detail.Sections))
	}
	if !strings.Contains(detail.HTML, "<h1>Javascript Cheatsheet</h1>") {
		t.Fatalf("unexpected html %q", detail.HTML)
	}
}

func TestCatalogService_SourceFailureFallsBackWithoutPersisting(t *testing.T) {
	store := repositories.NewMemoryCacheStore()
	ctx := context.Background()
	source := &stubCatalogSource{err: errors.New("connection refused")}
	svc := newTestCatalogService(t, CatalogServiceDeps{Source: source, Cache: NewSessionCache(ctx, store, nil)})

	if got := len(svc.ListAll(ctx)); got != 42 {
		t.Fatalf("expected fallback table, got %d entries", got)
	}
	svc.ListAll(ctx)
	if source.calls != 1 {
		t.Fatalf("fallback should be cached for the session, source called %d times", source.calls)
	}

	svc.GetDetail(ctx, "go")
	raw, _, _ := store.Get(ctx, CacheSlotKey)
	if strings.Contains(raw, CatalogCacheKey) {
		t.Fatalf("fallback catalog should not be persisted: %q", raw)
	}
}

func TestCatalogService_EmptySourceFallsBack(t *testing.T) {
	svc := newTestCatalogService(t, CatalogServiceDeps{Source: &stubCatalogSource{}})

	if got := len(svc.ListAll(context.Background())); got != 42 {
		t.Fatalf("expected fallback table, got %d entries", got)
	}
}

func TestCatalogService_PersistedCatalogHydratesNextSession(t *testing.T) {
	store := repositories.NewMemoryCacheStore()
	ctx := context.Background()
	source := &stubCatalogSource{entries: []domain.CatalogEntry{{Name: "zig", Category: "languages"}}}

	first := newTestCatalogService(t, CatalogServiceDeps{Source: source, Cache: NewSessionCache(ctx, store, nil)})
	first.ListAll(ctx)

	second := newTestCatalogService(t, CatalogServiceDeps{Source: source, Cache: NewSessionCache(ctx, store, nil)})
	got := names(second.ListAll(ctx))
	if !reflect.DeepEqual(got, []string{"zig"}) {
		t.Fatalf("expected hydrated catalog, got %v", got)
	}
	if source.calls != 1 {
		t.Fatalf("second session should not call the source, got %d calls", source.calls)
	}
}

func TestCatalogService_FailingSlotNeverFailsReads(t *testing.T) {
	ctx := context.Background()
	svc := newTestCatalogService(t, CatalogServiceDeps{Cache: NewSessionCache(ctx, failingCacheStore{}, nil)})

	if got := len(svc.ListAll(ctx)); got != 42 {
		t.Fatalf("expected catalog despite slot failures, got %d", got)
	}
	if detail := svc.GetDetail(ctx, "rust"); detail.HTML == "" {
		t.Fatalf("expected detail despite slot failures")
	}
}

func TestCatalogService_SkipsInvalidEntries(t *testing.T) {
	source := &stubCatalogSource{entries: []domain.CatalogEntry{
		{Name: "go", Category: "languages", Popularity: 60},
		{Name: " ", Category: "languages"},
		{Name: "cobol", Category: "mainframes"},
		{Name: "go", Category: "backend"},
		{Name: "redis", Category: "Databases"},
		{Name: "a", Category: "tools", Popularity: 250},
	}}
	svc := newTestCatalogService(t, CatalogServiceDeps{Source: source})

	all := svc.ListAll(context.Background())
	if got := names(all); !reflect.DeepEqual(got, []string{"go", "redis", "a"}) {
		t.Fatalf("expected invalid entries skipped, got %v", got)
	}
	if all[0].Popularity != 60 {
		t.Fatalf("source popularity should be kept, got %d", all[0].Popularity)
	}
	if all[1].Popularity < 10 || all[1].Popularity > 79 {
		t.Fatalf("derived popularity out of range: %d", all[1].Popularity)
	}
	if all[2].Popularity != 100 {
		t.Fatalf("source popularity above 100 should be clamped, got %d", all[2].Popularity)
	}
}

func TestCatalogService_Browse_Window(t *testing.T) {
	svc := newTestCatalogService(t, CatalogServiceDeps{PageSize: 12})
	ctx := context.Background()

	page := svc.Browse(ctx, BrowseQuery{})
	if len(page.Items) != 12 || !page.HasMore || page.Total != 42 || page.Page != 1 {
		t.Fatalf("unexpected first page %+v", page)
	}

	page = svc.Browse(ctx, BrowseQuery{Page: 2})
	if len(page.Items) != 24 || !page.HasMore {
		t.Fatalf("window should grow with the page, got %d items", len(page.Items))
	}

	page = svc.Browse(ctx, BrowseQuery{Page: 4})
	if len(page.Items) != 42 || page.HasMore {
		t.Fatalf("final page should hold everything, got %d items hasMore=%v", len(page.Items), page.HasMore)
	}
}

func TestCatalogService_Browse_SortsWindow(t *testing.T) {
	svc := newTestCatalogService(t, CatalogServiceDeps{PageSize: 3})

	page := svc.Browse(context.Background(), BrowseQuery{Sort: domain.SortPopularity})
	if got := names(page.Items); !reflect.DeepEqual(got, []string{"javascript", "python", "typescript"}) {
		t.Fatalf("expected first window sorted by popularity, got %v", got)
	}
}

func TestCatalogService_Browse_Query(t *testing.T) {
	svc := newTestCatalogService(t, CatalogServiceDeps{PageSize: 1})

	page := svc.Browse(context.Background(), BrowseQuery{Query: "script", Sort: domain.SortPopularity, Page: 3})
	if got := names(page.Items); !reflect.DeepEqual(got, []string{"javascript", "typescript"}) {
		t.Fatalf("search results should be unpaginated, got %v", got)
	}
	if page.HasMore || page.Total != 2 {
		t.Fatalf("unexpected page metadata %+v", page)
	}
}

func TestCatalogService_Home(t *testing.T) {
	svc := newTestCatalogService(t, CatalogServiceDeps{SectionLimit: 4})

	home := svc.Home(context.Background())
	if len(home.Popular) != 4 || home.Popular[0].Name != "javascript" {
		t.Fatalf("unexpected popular section %v", names(home.Popular))
	}
	if len(home.Categories) != 5 {
		t.Fatalf("expected five category sections, got %d", len(home.Categories))
	}
	if home.Categories[0].Title != "Languages" || len(home.Categories[0].Items) != 4 {
		t.Fatalf("unexpected languages section %+v", home.Categories[0])
	}
}

func TestCatalogService_Suggest(t *testing.T) {
	svc := newTestCatalogService(t, CatalogServiceDeps{})
	ctx := context.Background()

	got := svc.Suggest(ctx, "pyth", 5)
	if len(got) == 0 || got[0].Name != "python" {
		t.Fatalf("expected python first, got %v", names(got))
	}
	if got := svc.Suggest(ctx, "  ", 5); len(got) != 0 {
		t.Fatalf("blank query should not suggest, got %v", names(got))
	}
	if got := svc.Suggest(ctx, "s", 2); len(got) > 2 {
		t.Fatalf("limit not applied, got %v", names(got))
	}
}

func TestCatalogService_Categories(t *testing.T) {
	svc := newTestCatalogService(t, CatalogServiceDeps{})

	if got := svc.Categories(); !reflect.DeepEqual(got, domain.Categories()) {
		t.Fatalf("unexpected categories %v", got)
	}
}

func TestCatalogService_SourceTimeout(t *testing.T) {
	source := repositories.CatalogSourceFunc(func(ctx context.Context) ([]domain.CatalogEntry, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	svc := newTestCatalogService(t, CatalogServiceDeps{Source: source, SourceTimeout: 10 * time.Millisecond})

	if got := len(svc.ListAll(context.Background())); got != 42 {
		t.Fatalf("slow source should fall back, got %d entries", got)
	}
}
