package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/ayusman/panmotion/internal/viewer"
)

// ViewHandler handles /api/view and its actions.
type ViewHandler struct {
	view ViewService
}

// NewViewHandler creates a new ViewHandler.
func NewViewHandler(v ViewService) *ViewHandler {
	return &ViewHandler{view: v}
}

type panRequest struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// zoomRequest zooms about (x, y), or about the container center when the
// point is omitted.
type zoomRequest struct {
	Factor float64  `json:"factor"`
	X      *float64 `json:"x,omitempty"`
	Y      *float64 `json:"y,omitempty"`
}

type animateRequest struct {
	Target     viewer.Transform `json:"target"`
	DurationMs int              `json:"durationMs"`
}

type centerRequest struct {
	Container viewer.Size `json:"container"`
	Content   viewer.Size `json:"content"`
}

// ServeHTTP implements the http.Handler interface.
func (h *ViewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	action := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/view"), "/")

	if action == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, h.view.View())
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch action {
	case "reset":
		h.view.ResetView()

	case "pan":
		var req panRequest
		if !decode(w, r, &req) {
			return
		}
		h.view.Pan(req.DX, req.DY)

	case "zoom":
		var req zoomRequest
		if !decode(w, r, &req) {
			return
		}
		if !(req.Factor > 0) {
			writeError(w, http.StatusBadRequest, "Factor must be positive")
			return
		}
		c := h.view.View().Container.Center()
		if req.X != nil {
			c.X = *req.X
		}
		if req.Y != nil {
			c.Y = *req.Y
		}
		h.view.Zoom(req.Factor, c.X, c.Y)

	case "animate":
		var req animateRequest
		if !decode(w, r, &req) {
			return
		}
		if !(req.Target.Scale > 0) {
			writeError(w, http.StatusBadRequest, "Target scale must be positive")
			return
		}
		h.view.AnimateTo(req.Target, time.Duration(req.DurationMs)*time.Millisecond)

	case "center":
		var req centerRequest
		if !decode(w, r, &req) {
			return
		}
		if !h.view.CenterContent(req.Container, req.Content) {
			writeError(w, http.StatusBadRequest, "Container and content sizes must be positive")
			return
		}

	default:
		writeError(w, http.StatusNotFound, "Unknown view action")
		return
	}

	writeJSON(w, http.StatusOK, h.view.View())
}
