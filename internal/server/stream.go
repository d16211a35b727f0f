package server

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ayusman/mudra/internal/preview"
)

// StreamHandler serves a preview feed as MJPEG.
type StreamHandler struct {
	feeds *preview.Set
}

// NewStreamHandler creates a StreamHandler over feeds.
func NewStreamHandler(feeds *preview.Set) *StreamHandler {
	return &StreamHandler{feeds: feeds}
}

// ServeHTTP streams /stream/{feed} until the client disconnects. Each
// published frame is written once; a slow client skips to the latest frame.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	feed, ok := h.feeds.Get(mux.Vars(r)["feed"])
	if !ok {
		http.Error(w, "Unknown feed", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	var seq uint64
	for {
		jpg, next, err := feed.Next(r.Context(), seq)
		if err != nil {
			return
		}
		seq = next

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(jpg))
		if _, err := w.Write(jpg); err != nil {
			return
		}
		fmt.Fprintf(w, "\r\n")

		if flusher != nil {
			flusher.Flush()
		}
	}
}
