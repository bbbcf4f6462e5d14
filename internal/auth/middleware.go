package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/logger"
)

// TokenVerifier turns a raw token into an Identity. *Verifier implements it.
type TokenVerifier interface {
	Verify(token string) (Identity, error)
}

// Authenticate verifies the request's token and attaches the resulting
// Identity to the request context. Every failure gets the same 401 body; the
// reason only goes to the log and the auth_failures metric.
func Authenticate(v TokenVerifier, extract Extractor, l *slog.Logger) func(http.Handler) http.Handler {
	if extract == nil {
		extract = FirstOf(BearerHeader(), Cookie(DefaultCookieName))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := v.Verify(extract(r))
			if err != nil {
				reason := ReasonOf(err)
				if reason == "" {
					reason = ReasonMalformed
				}
				authFailures.WithLabelValues(string(reason)).Inc()
				requestLogger(r, l).WarnContext(r.Context(), "authentication failed",
					slog.String("reason", string(reason)),
					slog.String("error", err.Error()),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), l)
				return
			}

			ctx := WithIdentity(r.Context(), id)
			ctx = logger.WithUserID(ctx, id.Subject)
			ctx = logger.NewContext(ctx, requestLogger(r, l).With(
				slog.String("user_id", id.Subject),
				slog.String("role", id.Role.String()),
			))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole lets a request through only when the attached identity has
// exactly role. It must be mounted behind Authenticate; a request without an
// identity panics so the Recovery middleware answers 500 instead of serving.
func RequireRole(role Role) func(http.Handler) http.Handler {
	if !role.Valid() {
		panic(fmt.Sprintf("auth: RequireRole(%q): unknown role", role))
	}
	return requireRoles(role.String(), role)
}

// RequireAnyRole is RequireRole for endpoints shared by several roles.
func RequireAnyRole(roles ...Role) func(http.Handler) http.Handler {
	if len(roles) == 0 {
		panic("auth: RequireAnyRole needs at least one role")
	}
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		if !role.Valid() {
			panic(fmt.Sprintf("auth: RequireAnyRole(%q): unknown role", role))
		}
		names = append(names, role.String())
	}
	return requireRoles(strings.Join(names, "|"), roles...)
}

func requireRoles(label string, roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := MustFromContext(r.Context())
			for _, role := range roles {
				if id.HasRole(role) {
					next.ServeHTTP(w, r)
					return
				}
			}

			authForbidden.WithLabelValues(label).Inc()
			logger.FromContext(r.Context()).WarnContext(r.Context(), "access denied",
				slog.String("required_role", label),
				slog.String("role", id.Role.String()),
				slog.String("path", r.URL.Path),
			)
			httputil.WriteError(w, r, apperrors.Forbidden("access denied"), nil)
		})
	}
}

func requestLogger(r *http.Request, fallback *slog.Logger) *slog.Logger {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		return fallback
	}
	return l
}
