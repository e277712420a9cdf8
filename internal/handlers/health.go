package handlers

import (
	"net/http"
	"sort"
	"time"

	"github.com/sai-sandeep-seelam/CheatStack/internal/domain"
	"github.com/sai-sandeep-seelam/CheatStack/internal/platform/httpx"
	"github.com/sai-sandeep-seelam/CheatStack/internal/repositories"
)

// HealthHandlers serves liveness and readiness checks.
type HealthHandlers struct {
	repo    repositories.HealthRepository
	clock   func() time.Time
	started time.Time
}

// HealthOption customises HealthHandlers.
type HealthOption func(*HealthHandlers)

// WithHealthRepository sets the dependency checks run by /readyz.
func WithHealthRepository(repo repositories.HealthRepository) HealthOption {
	return func(h *HealthHandlers) {
		h.repo = repo
	}
}

// WithHealthClock overrides the clock used for uptime and timestamps.
func WithHealthClock(clock func() time.Time) HealthOption {
	return func(h *HealthHandlers) {
		if clock != nil {
			h.clock = clock
		}
	}
}

// NewHealthHandlers constructs health handlers. Without a repository /readyz always reports ok.
func NewHealthHandlers(opts ...HealthOption) *HealthHandlers {
	h := &HealthHandlers{clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	h.started = h.clock()
	return h
}

type healthResponse struct {
	Status    string                         `json:"status"`
	Uptime    string                         `json:"uptime,omitempty"`
	Timestamp string                         `json:"timestamp"`
	Checks    map[string]healthCheckResponse `json:"checks,omitempty"`
	Failing   []string                       `json:"failing,omitempty"`
}

type healthCheckResponse struct {
	Status    string `json:"status"`
	Detail    string `json:"detail,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

// Healthz reports process liveness.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, _ *http.Request) {
	now := h.clock()
	httpx.WriteJSON(w, http.StatusOK, healthResponse{
		Status:    domain.HealthStatusOK,
		Uptime:    now.Sub(h.started).Round(time.Second).String(),
		Timestamp: now.UTC().Format(time.RFC3339),
	})
}

// Readyz runs dependency checks. Any check in error state answers 503.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		httpx.WriteJSON(w, http.StatusOK, healthResponse{
			Status:    domain.HealthStatusOK,
			Timestamp: h.clock().UTC().Format(time.RFC3339),
		})
		return
	}

	report, err := h.repo.Collect(r.Context())
	if err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("health_check_failed", err.Error(), http.StatusServiceUnavailable))
		return
	}

	resp := healthResponse{
		Status:    report.Status,
		Timestamp: report.GeneratedAt.UTC().Format(time.RFC3339),
		Checks:    make(map[string]healthCheckResponse, len(report.Checks)),
	}
	for name, check := range report.Checks {
		resp.Checks[name] = healthCheckResponse{
			Status:    check.Status,
			Detail:    check.Detail,
			LatencyMS: check.Latency.Milliseconds(),
		}
		if check.Status != domain.HealthStatusOK {
			resp.Failing = append(resp.Failing, name)
		}
	}
	sort.Strings(resp.Failing)

	status := http.StatusOK
	if report.Status == domain.HealthStatusError {
		status = http.StatusServiceUnavailable
	}
	httpx.WriteJSON(w, status, resp)
}
