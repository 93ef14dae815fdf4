package api

import (
	"net/http"
)

// FeaturesHandler handles GET and PUT /api/features.
type FeaturesHandler struct {
	features FeatureService
}

// NewFeaturesHandler creates a new FeaturesHandler.
func NewFeaturesHandler(f FeatureService) *FeaturesHandler {
	return &FeaturesHandler{features: f}
}

// updateFeaturesRequest leaves omitted features unchanged.
type updateFeaturesRequest struct {
	Hands *bool `json:"hands,omitempty"`
	Head  *bool `json:"head,omitempty"`
}

// ServeHTTP implements the http.Handler interface.
func (h *FeaturesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.features.Features())

	case http.MethodPut:
		var req updateFeaturesRequest
		if !decode(w, r, &req) {
			return
		}
		if req.Hands != nil {
			h.features.SetHandsEnabled(*req.Hands)
		}
		if req.Head != nil {
			h.features.SetHeadEnabled(*req.Head)
		}
		writeJSON(w, http.StatusOK, h.features.Features())

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
