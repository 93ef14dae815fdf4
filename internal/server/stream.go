package server

import (
	"fmt"
	"net/http"

	"github.com/ayusman/panmotion/internal/preview"
)

// StreamHandler serves the annotated camera preview as MJPEG.
type StreamHandler struct {
	frames *preview.Buffer
}

// NewStreamHandler creates a new StreamHandler reading from frames.
func NewStreamHandler(frames *preview.Buffer) *StreamHandler {
	return &StreamHandler{frames: frames}
}

// ServeHTTP streams MJPEG frames until the client goes away.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	var seq uint64
	for {
		frame, next, err := h.frames.Next(r.Context(), seq)
		if err != nil {
			return
		}
		seq = next

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(frame))
		w.Write(frame)
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}
