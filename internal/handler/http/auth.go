package http

import (
	"net/http"

	"github.com/utafrali/storefront/internal/auth"
	"github.com/utafrali/storefront/pkg/httputil"
)

// Me handles GET /api/v1/auth/me and returns the caller's verified identity.
func Me(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: auth.MustFromContext(r.Context())})
}
