package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sai-sandeep-seelam/CheatStack/internal/markdown"
	"github.com/sai-sandeep-seelam/CheatStack/internal/platform/httpx"
	"github.com/sai-sandeep-seelam/CheatStack/internal/platform/requestctx"
)

const (
	defaultPreviewMaxBytes = 64 << 10

	previewModePreview  = "preview"
	previewModeStandard = "standard"
)

// PreviewHandlers renders contributed Markdown for the authoring surface.
type PreviewHandlers struct {
	sanitize bool
	maxBytes int64
}

// PreviewOption customises construction of PreviewHandlers.
type PreviewOption func(*PreviewHandlers)

// WithPreviewSanitize passes preview mode output through the HTML sanitiser.
func WithPreviewSanitize(enabled bool) PreviewOption {
	return func(h *PreviewHandlers) {
		h.sanitize = enabled
	}
}

// WithPreviewMaxBytes caps the request body size.
func WithPreviewMaxBytes(limit int64) PreviewOption {
	return func(h *PreviewHandlers) {
		if limit > 0 {
			h.maxBytes = limit
		}
	}
}

// NewPreviewHandlers constructs the preview handlers.
func NewPreviewHandlers(opts ...PreviewOption) *PreviewHandlers {
	h := &PreviewHandlers{maxBytes: defaultPreviewMaxBytes}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Routes registers the preview endpoint.
func (h *PreviewHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/preview", h.render)
}

type previewRequest struct {
	Markdown string `json:"markdown"`
}

type previewResponse struct {
	HTML string `json:"html"`
	Mode string `json:"mode"`
}

func (h *PreviewHandlers) render(w http.ResponseWriter, r *http.Request) {
	mode := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("mode")))
	if mode == "" {
		mode = previewModePreview
	}
	if mode != previewModePreview && mode != previewModeStandard {
		httpx.WriteError(r.Context(), w, httpx.BadRequest("invalid_mode", "mode must be preview or standard"))
		return
	}

	var req previewRequest
	if err := decodeJSONBody(w, r, h.maxBytes, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	var html string
	switch mode {
	case previewModeStandard:
		rendered, err := markdown.RenderStandard(req.Markdown)
		if err != nil {
			requestctx.Logger(r.Context()).Error("standard render failed", zap.Error(err))
			httpx.WriteError(r.Context(), w, httpx.NewError("render_failed", "markdown could not be rendered", http.StatusInternalServerError))
			return
		}
		html = rendered
	default:
		html = markdown.Render(req.Markdown)
		if h.sanitize {
			html = markdown.Sanitize(html)
		}
	}
	httpx.WriteJSON(w, http.StatusOK, previewResponse{HTML: html, Mode: mode})
}

var errBodyTooLarge = errors.New("request body too large")

// decodeJSONBody decodes a single JSON object from the body, rejecting unknown fields.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) error {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errBodyTooLarge
		}
		return err
	}
	return nil
}

func writeDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errBodyTooLarge) {
		httpx.WriteError(r.Context(), w, httpx.NewError("payload_too_large", "request body exceeds the size limit", http.StatusRequestEntityTooLarge))
		return
	}
	httpx.WriteError(r.Context(), w, httpx.BadRequest("invalid_json", "request body must be a JSON object"))
}
