package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/panmotion/internal/app"
	"github.com/ayusman/panmotion/internal/flow"
)

// FlowHandler handles GET /api/flow and POST /api/flow/{action}.
type FlowHandler struct {
	flow FlowService
}

// NewFlowHandler creates a new FlowHandler.
func NewFlowHandler(f FlowService) *FlowHandler {
	return &FlowHandler{flow: f}
}

type flowActionRequest struct {
	Progress float64 `json:"progress"`
}

// ServeHTTP implements the http.Handler interface.
func (h *FlowHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	action := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/flow"), "/")

	if action == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, h.flow.Flow().State())
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req flowActionRequest
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}

	if err := h.flow.FlowAction(action, req.Progress); err != nil {
		switch {
		case errors.Is(err, app.ErrUnknownAction):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, flow.ErrInvalidTransition):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "Failed to apply flow action")
		}
		return
	}

	writeJSON(w, http.StatusOK, h.flow.Flow().State())
}
