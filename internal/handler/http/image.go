package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/auth"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/internal/upload"
	"github.com/utafrali/storefront/pkg/httputil"
)

var errNoPayload = errors.New("upload payload missing: route is not behind upload.Guard")

// ImageHandler handles HTTP requests for product image endpoints.
type ImageHandler struct {
	service *service.ImageService
	logger  *slog.Logger
}

// NewImageHandler creates a new image HTTP handler.
func NewImageHandler(svc *service.ImageService, logger *slog.Logger) *ImageHandler {
	return &ImageHandler{
		service: svc,
		logger:  logger,
	}
}

// UploadImages handles POST /api/v1/products/{productId}/images. The files
// were already read and checked by upload.Guard.
func (h *ImageHandler) UploadImages(w http.ResponseWriter, r *http.Request) {
	payload, ok := upload.FromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, errNoPayload, h.logger)
		return
	}

	images, err := h.service.SaveProductImages(r.Context(), auth.MustFromContext(r.Context()), chi.URLParam(r, "productId"), payload)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: images})
}

// ListImages handles GET /api/v1/products/{productId}/images.
func (h *ImageHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	images, err := h.service.ListProductImages(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: images})
}
