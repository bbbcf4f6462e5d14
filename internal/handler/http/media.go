package http

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/pkg/httputil"
)

// MediaReader opens stored files by key.
type MediaReader interface {
	Open(key string) (io.Reader, string, error)
}

// MediaHandler serves stored image bytes.
type MediaHandler struct {
	media MediaReader
}

// NewMediaHandler creates a media handler over m.
func NewMediaHandler(m MediaReader) *MediaHandler {
	return &MediaHandler{media: m}
}

// Serve handles GET /media/*.
func (h *MediaHandler) Serve(w http.ResponseWriter, r *http.Request) {
	body, contentType, err := h.media.Open(chi.URLParam(r, "*"))
	if err != nil {
		httputil.WriteError(w, r, err, nil)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, body)
}
