package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sai-sandeep-seelam/CheatStack/internal/platform/httpx"
	"github.com/sai-sandeep-seelam/CheatStack/internal/platform/requestctx"
	"github.com/sai-sandeep-seelam/CheatStack/internal/services"
)

const contributionMaxBytes = 256 << 10

// ContributionHandlers accepts contribute form submissions.
type ContributionHandlers struct {
	contributions services.ContributionService
}

// NewContributionHandlers constructs the contribution handlers.
func NewContributionHandlers(svc services.ContributionService) *ContributionHandlers {
	return &ContributionHandlers{contributions: svc}
}

// Routes registers the contribution endpoint.
func (h *ContributionHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/contributions", h.submit)
}

type contributionRequest struct {
	Kind       string `json:"kind"`
	Cheatsheet string `json:"cheatsheet"`
	Title      string `json:"title"`
	Category   string `json:"category"`
	Content    string `json:"content"`
	Email      string `json:"email"`
}

type contributionResponse struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (h *ContributionHandlers) submit(w http.ResponseWriter, r *http.Request) {
	if h.contributions == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("contributions_unavailable", "contribution service is unavailable", http.StatusServiceUnavailable))
		return
	}

	var req contributionRequest
	if err := decodeJSONBody(w, r, contributionMaxBytes, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	receipt, err := h.contributions.Submit(r.Context(), services.ContributionInput{
		Kind:       req.Kind,
		Cheatsheet: req.Cheatsheet,
		Title:      req.Title,
		Category:   req.Category,
		Content:    req.Content,
		Email:      req.Email,
	})
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			httpx.WriteError(r.Context(), w, httpx.BadRequest("validation_failed", "This field is required").
				WithDetails(map[string]any{"fields": verr.Fields}))
			return
		}
		requestctx.Logger(r.Context()).Error("contribution publish failed", zap.Error(err))
		httpx.WriteError(r.Context(), w, httpx.NewError("contribution_unavailable", "contribution could not be queued, try again later", http.StatusServiceUnavailable))
		return
	}

	httpx.WriteJSON(w, http.StatusAccepted, contributionResponse{
		ID:      receipt.ID,
		Kind:    string(receipt.Kind),
		Message: receipt.Message,
	})
}
