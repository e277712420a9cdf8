package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sai-sandeep-seelam/CheatStack/internal/cms"
	"github.com/sai-sandeep-seelam/CheatStack/internal/domain"
	"github.com/sai-sandeep-seelam/CheatStack/internal/platform/httpx"
	"github.com/sai-sandeep-seelam/CheatStack/internal/platform/pagination"
	"github.com/sai-sandeep-seelam/CheatStack/internal/platform/textutil"
	"github.com/sai-sandeep-seelam/CheatStack/internal/services"
)

const (
	catalogCacheControl = "public, max-age=300"
	maxListLimit        = 100
	defaultSuggestLimit = 5
)

// CatalogHandlers exposes cheatsheet listing, detail and home endpoints.
type CatalogHandlers struct {
	catalog      services.CatalogService
	sectionLimit int
}

// CatalogOption customises construction of CatalogHandlers.
type CatalogOption func(*CatalogHandlers)

// WithCatalogService injects the catalog service dependency.
func WithCatalogService(svc services.CatalogService) CatalogOption {
	return func(h *CatalogHandlers) {
		h.catalog = svc
	}
}

// WithCatalogSectionLimit sets the default limit for popular and category listings.
func WithCatalogSectionLimit(limit int) CatalogOption {
	return func(h *CatalogHandlers) {
		if limit > 0 {
			h.sectionLimit = limit
		}
	}
}

// NewCatalogHandlers constructs the catalog handlers.
func NewCatalogHandlers(opts ...CatalogOption) *CatalogHandlers {
	h := &CatalogHandlers{sectionLimit: pagination.DefaultLimit}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Routes registers catalog endpoints against the provided router.
func (h *CatalogHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/cheatsheets", h.browse)
	r.Get("/cheatsheets/popular", h.popular)
	r.Get("/cheatsheets/suggest", h.suggest)
	r.Get("/cheatsheets/{name}", h.detail)
	r.Get("/categories", h.categories)
	r.Get("/categories/{category}/cheatsheets", h.byCategory)
	r.Get("/home", h.home)
}

type summaryPayload struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Category    string `json:"category"`
	Popularity  int    `json:"popularity"`
	Path        string `json:"path"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

type cheatsheetListResponse struct {
	Cheatsheets []summaryPayload `json:"cheatsheets"`
	Page        int              `json:"page,omitempty"`
	PageSize    int              `json:"page_size,omitempty"`
	Total       int              `json:"total,omitempty"`
	HasMore     bool             `json:"has_more"`
}

type itemPayload struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type sectionPayload struct {
	Title string        `json:"title"`
	Items []itemPayload `json:"items"`
}

type detailResponse struct {
	Name     string           `json:"name"`
	Title    string           `json:"title"`
	Sections []sectionPayload `json:"sections"`
	HTML     string           `json:"html"`
}

type categoryPayload struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Cheatsheets []summaryPayload `json:"cheatsheets,omitempty"`
}

type categoryListResponse struct {
	Categories []categoryPayload `json:"categories"`
}

type homeResponse struct {
	Popular    []summaryPayload  `json:"popular"`
	Categories []categoryPayload `json:"categories"`
}

func (h *CatalogHandlers) browse(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w, r) {
		return
	}
	query := r.URL.Query()

	sortKey, ok := domain.ParseSortKey(query.Get("sort"))
	if !ok {
		httpx.WriteError(r.Context(), w, httpx.BadRequest("invalid_sort", "sort must be one of relevance, popularity, newest"))
		return
	}
	params, err := pagination.Parse(url.Values{"page": query["page"]}, pagination.Options{})
	if err != nil {
		httpx.WriteError(r.Context(), w, httpx.BadRequest("invalid_page", err.Error()))
		return
	}

	page := h.catalog.Browse(r.Context(), services.BrowseQuery{
		Query: query.Get("q"),
		Sort:  sortKey,
		Page:  params.Page,
	})
	w.Header().Set("Cache-Control", catalogCacheControl)
	httpx.WriteJSON(w, http.StatusOK, cheatsheetListResponse{
		Cheatsheets: summaryPayloads(page.Items),
		Page:        page.Page,
		PageSize:    page.PageSize,
		Total:       page.Total,
		HasMore:     page.HasMore,
	})
}

func (h *CatalogHandlers) popular(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w, r) {
		return
	}
	limit, ok := h.limit(w, r, h.sectionLimit)
	if !ok {
		return
	}
	w.Header().Set("Cache-Control", catalogCacheControl)
	httpx.WriteJSON(w, http.StatusOK, cheatsheetListResponse{
		Cheatsheets: summaryPayloads(h.catalog.ListPopular(r.Context(), limit)),
	})
}

func (h *CatalogHandlers) suggest(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w, r) {
		return
	}
	limit, ok := h.limit(w, r, defaultSuggestLimit)
	if !ok {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, cheatsheetListResponse{
		Cheatsheets: summaryPayloads(h.catalog.Suggest(r.Context(), r.URL.Query().Get("q"), limit)),
	})
}

func (h *CatalogHandlers) detail(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w, r) {
		return
	}
	raw := chi.URLParam(r, "name")
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}
	name := cms.ToSlug(raw)
	if name == "" {
		httpx.WriteError(r.Context(), w, httpx.BadRequest("invalid_cheatsheet_name", "cheatsheet name is required"))
		return
	}

	detail := h.catalog.GetDetail(r.Context(), name)
	sections := make([]sectionPayload, 0, len(detail.Sections))
	for _, section := range detail.Sections {
		items := make([]itemPayload, 0, len(section.Items))
		for _, item := range section.Items {
			items = append(items, itemPayload{Code: item.Code, Description: item.Description})
		}
		sections = append(sections, sectionPayload{Title: section.Title, Items: items})
	}
	w.Header().Set("Cache-Control", catalogCacheControl)
	httpx.WriteJSON(w, http.StatusOK, detailResponse{
		Name:     detail.Name,
		Title:    detail.Title,
		Sections: sections,
		HTML:     detail.HTML,
	})
}

func (h *CatalogHandlers) categories(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w, r) {
		return
	}
	categories := h.catalog.Categories()
	resp := categoryListResponse{Categories: make([]categoryPayload, 0, len(categories))}
	for _, c := range categories {
		resp.Categories = append(resp.Categories, categoryPayload{ID: string(c), Title: textutil.UpperFirst(string(c))})
	}
	w.Header().Set("Cache-Control", catalogCacheControl)
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *CatalogHandlers) byCategory(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w, r) {
		return
	}
	limit, ok := h.limit(w, r, h.sectionLimit)
	if !ok {
		return
	}
	category := strings.TrimSpace(chi.URLParam(r, "category"))
	w.Header().Set("Cache-Control", catalogCacheControl)
	httpx.WriteJSON(w, http.StatusOK, cheatsheetListResponse{
		Cheatsheets: summaryPayloads(h.catalog.ListByCategory(r.Context(), category, limit)),
	})
}

func (h *CatalogHandlers) home(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w, r) {
		return
	}
	home := h.catalog.Home(r.Context())
	resp := homeResponse{
		Popular:    summaryPayloads(home.Popular),
		Categories: make([]categoryPayload, 0, len(home.Categories)),
	}
	for _, section := range home.Categories {
		resp.Categories = append(resp.Categories, categoryPayload{
			ID:          string(section.Category),
			Title:       section.Title,
			Cheatsheets: summaryPayloads(section.Items),
		})
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *CatalogHandlers) ready(w http.ResponseWriter, r *http.Request) bool {
	if h.catalog == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("catalog_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return false
	}
	return true
}

func (h *CatalogHandlers) limit(w http.ResponseWriter, r *http.Request, fallback int) (int, bool) {
	params, err := pagination.Parse(url.Values{"limit": r.URL.Query()["limit"]}, pagination.Options{
		DefaultLimit: fallback,
		MaxLimit:     maxListLimit,
	})
	if err != nil {
		httpx.WriteError(r.Context(), w, httpx.BadRequest("invalid_limit", err.Error()))
		return 0, false
	}
	return params.Limit, true
}

func summaryPayloads(list []domain.CheatsheetSummary) []summaryPayload {
	out := make([]summaryPayload, 0, len(list))
	for _, s := range list {
		payload := summaryPayload{
			Name:        s.Name,
			DisplayName: s.DisplayName,
			Category:    string(s.Category),
			Popularity:  s.Popularity,
			Path:        s.Path,
		}
		if s.UpdatedAt != nil {
			payload.UpdatedAt = formatTimestamp(*s.UpdatedAt)
		}
		out = append(out, payload)
	}
	return out
}

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(time.RFC3339)
}
