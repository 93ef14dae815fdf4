package api

import (
	"net/http"
	"strconv"
)

// DissolveHandler serves the section transition mask as PNG.
type DissolveHandler struct {
	render func(progress float64) ([]byte, error)
}

// NewDissolveHandler creates a DissolveHandler around render.
func NewDissolveHandler(render func(progress float64) ([]byte, error)) *DissolveHandler {
	return &DissolveHandler{render: render}
}

// ServeHTTP handles GET /api/dissolve?progress=p with p in [0,1].
func (h *DissolveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	progress := 0.0
	if v := r.URL.Query().Get("progress"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil || p < 0 || p > 1 {
			writeError(w, http.StatusBadRequest, "progress must be a number in [0,1]")
			return
		}
		progress = p
	}

	png, err := h.render(progress)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to render mask")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "max-age=3600")
	w.Write(png)
}
