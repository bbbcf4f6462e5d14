package auth

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/pkg/logger"
)

const (
	unauthorizedBody = `{"error":{"code":"UNAUTHORIZED","message":"authentication required"}}`
	forbiddenBody    = `{"error":{"code":"FORBIDDEN","message":"access denied"}}`
)

// identityEcho writes the identity it finds in context, or fails the test if
// it is ever reached without one.
func identityEcho(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := FromContext(r.Context())
		if !assert.True(t, ok, "handler reached without identity") {
			return
		}
		fmt.Fprintf(w, "%s|%s", id.Subject, id.Role)
	})
}

func serve(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/p1/reviews", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticate_AttachesIdentity(t *testing.T) {
	v := newTestVerifier(t)
	h := Authenticate(v, nil, logger.Discard())(identityEcho(t))

	rec := serve(h, generateToken(t, testSecret, validClaims(RoleCustomer)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-123|CUSTOMER", rec.Body.String())
}

func TestAuthenticate_CookieToken(t *testing.T) {
	v := newTestVerifier(t)
	h := Authenticate(v, nil, logger.Discard())(identityEcho(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: generateToken(t, testSecret, validClaims(RoleAdmin))})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-123|ADMIN", rec.Body.String())
}

func TestAuthenticate_FailuresAreIndistinguishable(t *testing.T) {
	v := newTestVerifier(t)

	expired := validClaims(RoleCustomer)
	expired["exp"] = fixedNow.Add(-time.Hour).Unix()

	tokens := map[string]string{
		"absent":    "",
		"garbage":   "abc.def",
		"wrong key": generateToken(t, "another-secret", validClaims(RoleCustomer)),
		"expired":   generateToken(t, testSecret, expired),
	}

	reached := false
	h := Authenticate(v, nil, logger.Discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		reached = true
	}))

	var bodies []string
	for name, token := range tokens {
		rec := serve(h, token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"), name)
		assert.JSONEq(t, unauthorizedBody, rec.Body.String(), name)
		bodies = append(bodies, rec.Body.String())
	}

	assert.False(t, reached, "downstream handler must not run")
	for _, b := range bodies[1:] {
		assert.Equal(t, bodies[0], b)
	}
}

func TestAuthenticate_CountsFailureReason(t *testing.T) {
	v := newTestVerifier(t)
	h := Authenticate(v, nil, logger.Discard())(identityEcho(t))

	before := testutil.ToFloat64(authFailures.WithLabelValues(string(ReasonSignature)))
	serve(h, generateToken(t, "wrong", validClaims(RoleAdmin)))
	after := testutil.ToFloat64(authFailures.WithLabelValues(string(ReasonSignature)))

	assert.Equal(t, before+1, after)
}

func TestRequireRole(t *testing.T) {
	v := newTestVerifier(t)

	tests := []struct {
		name     string
		required Role
		actual   Role
		status   int
	}{
		{name: "admin on admin route", required: RoleAdmin, actual: RoleAdmin, status: http.StatusOK},
		{name: "customer on customer route", required: RoleCustomer, actual: RoleCustomer, status: http.StatusOK},
		{name: "customer on admin route", required: RoleAdmin, actual: RoleCustomer, status: http.StatusForbidden},
		{name: "admin on customer route", required: RoleCustomer, actual: RoleAdmin, status: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Authenticate(v, nil, logger.Discard())(RequireRole(tt.required)(identityEcho(t)))

			rec := serve(h, generateToken(t, testSecret, validClaims(tt.actual)))

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusForbidden {
				assert.JSONEq(t, forbiddenBody, rec.Body.String())
			}
		})
	}
}

func TestRequireRole_UnauthenticatedNeverReachesGate(t *testing.T) {
	v := newTestVerifier(t)
	h := Authenticate(v, nil, logger.Discard())(RequireRole(RoleAdmin)(identityEcho(t)))

	rec := serve(h, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAnyRole(t *testing.T) {
	v := newTestVerifier(t)
	h := Authenticate(v, nil, logger.Discard())(RequireAnyRole(RoleAdmin, RoleCustomer)(identityEcho(t)))

	for _, role := range Roles() {
		rec := serve(h, generateToken(t, testSecret, validClaims(role)))
		assert.Equal(t, http.StatusOK, rec.Code, role)
	}
}

func TestRequireRole_PanicsWithoutIdentity(t *testing.T) {
	h := RequireRole(RoleAdmin)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	assert.Panics(t, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestRequireRole_PanicsOnUnknownRole(t *testing.T) {
	assert.Panics(t, func() { RequireRole("SUPERUSER") })
	assert.Panics(t, func() { RequireAnyRole() })
}

func TestAuthenticate_ConcurrentRequestsAreIsolated(t *testing.T) {
	t.Parallel()

	v := newTestVerifier(t)
	h := Authenticate(v, nil, logger.Discard())(identityEcho(t))

	const workers = 32
	tokens := make([]string, workers)
	for i := range tokens {
		claims := validClaims(Roles()[i%2])
		claims["user_id"] = fmt.Sprintf("user-%d", i)
		tokens[i] = generateToken(t, testSecret, claims)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for n := 0; n < 20; n++ {
				rec := serve(h, tokens[i])
				want := fmt.Sprintf("user-%d|%s", i, Roles()[i%2])
				assert.Equal(t, want, rec.Body.String())
			}
		}(i)
	}
	wg.Wait()
}

func TestMustFromContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := WithIdentity(req.Context(), Identity{Subject: "u1", Role: RoleAdmin})

	assert.Equal(t, "u1", MustFromContext(ctx).Subject)
	assert.Panics(t, func() { MustFromContext(req.Context()) })
}

func TestAuthenticate_EnrichesRequestLogger(t *testing.T) {
	v := newTestVerifier(t)
	var userID string
	h := Authenticate(v, nil, logger.Discard())(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		userID = logger.UserIDFromContext(r.Context())
	}))

	rec := serve(h, generateToken(t, testSecret, jwt.MapClaims{
		"user_id": "logged-user",
		"role":    "ADMIN",
		"exp":     fixedNow.Add(time.Minute).Unix(),
	}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "logged-user", userID)
}
