package auth

import (
	"net/http"
	"strings"
)

// DefaultCookieName is the cookie the web frontend stores the access token in.
const DefaultCookieName = "token"

// Extractor pulls a raw token from a request, returning "" when absent.
type Extractor func(r *http.Request) string

// BearerHeader reads "Authorization: Bearer <token>". The scheme is
// case-insensitive.
func BearerHeader() Extractor {
	return func(r *http.Request) string {
		scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return ""
		}
		return strings.TrimSpace(token)
	}
}

// Cookie reads the token from the named cookie.
func Cookie(name string) Extractor {
	if name == "" {
		name = DefaultCookieName
	}
	return func(r *http.Request) string {
		c, err := r.Cookie(name)
		if err != nil {
			return ""
		}
		return c.Value
	}
}

// FirstOf tries each extractor in order and returns the first non-empty token.
func FirstOf(extractors ...Extractor) Extractor {
	return func(r *http.Request) string {
		for _, extract := range extractors {
			if token := extract(r); token != "" {
				return token
			}
		}
		return ""
	}
}
