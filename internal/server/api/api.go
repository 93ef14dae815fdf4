// Package api provides the HTTP API handlers for panmotion.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/panmotion/internal/app"
	"github.com/ayusman/panmotion/internal/flow"
	"github.com/ayusman/panmotion/internal/section"
	"github.com/ayusman/panmotion/internal/viewer"
)

// SectionService manages the selectable sections.
type SectionService interface {
	Sections() []section.Section
	Section(id string) (section.Section, error)
	AddSection(s section.Section) error
	RemoveSection(id string) error
	SelectSection(id string) error
}

// ViewService exposes the view engine.
type ViewService interface {
	View() app.ViewState
	Pan(dx, dy float64)
	Zoom(factor, cx, cy float64)
	AnimateTo(target viewer.Transform, d time.Duration)
	CenterContent(container, content viewer.Size) bool
	ResetView()
}

// FeatureService switches tracking features.
type FeatureService interface {
	Features() app.Features
	SetHandsEnabled(enabled bool)
	SetHeadEnabled(enabled bool)
}

// FlowService exposes the phase machine.
type FlowService interface {
	Flow() *flow.Machine
	FlowAction(action string, progress float64) error
}

// Controller is everything the API needs from the application.
type Controller interface {
	SectionService
	ViewService
	FeatureService
	FlowService
	DissolveMask(progress float64) ([]byte, error)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// decode reads a JSON request body into v, answering 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return false
	}
	return true
}
