package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ayusman/panmotion/internal/app"
	"github.com/ayusman/panmotion/internal/flow"
	"github.com/ayusman/panmotion/internal/section"
)

// SectionHandler handles HTTP requests for section resources.
type SectionHandler struct {
	sections SectionService
}

// NewSectionHandler creates a new SectionHandler.
func NewSectionHandler(s SectionService) *SectionHandler {
	return &SectionHandler{sections: s}
}

// ServeHTTP routes /api/sections, /api/sections/{id} and
// /api/sections/{id}/select.
func (h *SectionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/sections")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	parts := strings.Split(path, "/")
	id := parts[0]

	if len(parts) == 2 && parts[1] == "select" {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.selectSection(w, r, id)
		return
	}
	if len(parts) != 1 {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type listSectionsResponse struct {
	Sections []section.Section `json:"sections"`
}

// list handles GET /api/sections.
func (h *SectionHandler) list(w http.ResponseWriter, r *http.Request) {
	sections := h.sections.Sections()
	if sections == nil {
		sections = []section.Section{}
	}
	writeJSON(w, http.StatusOK, listSectionsResponse{Sections: sections})
}

// get handles GET /api/sections/{id}.
func (h *SectionHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	s, err := h.sections.Section(id)
	if err != nil {
		if errors.Is(err, app.ErrUnknownSection) {
			writeError(w, http.StatusNotFound, "Section not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get section")
		return
	}

	writeJSON(w, http.StatusOK, s)
}

// create handles POST /api/sections. A missing id is generated.
func (h *SectionHandler) create(w http.ResponseWriter, r *http.Request) {
	var s section.Section
	if !decode(w, r, &s) {
		return
	}

	if s.ID == "" {
		s.ID = uuid.New().String()
	}

	if err := h.sections.AddSection(s); err != nil {
		if errors.Is(err, section.ErrInvalid) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, s)
}

// delete handles DELETE /api/sections/{id}.
func (h *SectionHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.sections.RemoveSection(id); err != nil {
		if errors.Is(err, app.ErrUnknownSection) {
			writeError(w, http.StatusNotFound, "Section not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete section")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// selectSection handles POST /api/sections/{id}/select.
func (h *SectionHandler) selectSection(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.sections.SelectSection(id); err != nil {
		switch {
		case errors.Is(err, app.ErrUnknownSection):
			writeError(w, http.StatusNotFound, "Section not found")
		case errors.Is(err, flow.ErrInvalidTransition):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "Failed to select section")
		}
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "selecting"})
}
