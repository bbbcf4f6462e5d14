package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// ErrUnauthenticated matches every verification failure. It is the same value
// as apperrors.ErrUnauthorized so the HTTP layer maps it to 401.
var ErrUnauthenticated = apperrors.ErrUnauthorized

var errNoIdentity = errors.New("auth: no identity in request context")

// Reason classifies why a token was rejected. It is only ever logged and
// counted; callers always see the same 401.
type Reason string

const (
	ReasonMissing   Reason = "missing"
	ReasonMalformed Reason = "malformed"
	ReasonSignature Reason = "signature"
	ReasonExpired   Reason = "expired"
	ReasonClaims    Reason = "claims"
)

// VerificationError is returned by Verify for every rejected token.
type VerificationError struct {
	Reason Reason
	Err    error
}

func (e *VerificationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("unauthenticated: %s", e.Reason)
	}
	return fmt.Sprintf("unauthenticated: %s: %v", e.Reason, e.Err)
}

func (e *VerificationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUnauthenticated}
	}
	return []error{ErrUnauthenticated, e.Err}
}

func reject(reason Reason, err error) *VerificationError {
	return &VerificationError{Reason: reason, Err: err}
}

// ReasonOf extracts the rejection reason from err, or "" if err did not come
// from a Verifier.
func ReasonOf(err error) Reason {
	var verr *VerificationError
	if errors.As(err, &verr) {
		return verr.Reason
	}
	return ""
}

// Config holds the trust settings for HMAC-signed access tokens.
type Config struct {
	Secret string
	// Issuer, when set, must match the iss claim.
	Issuer string
	// Leeway tolerates clock skew on exp and nbf.
	Leeway time.Duration
	// Now overrides the clock, mostly for tests.
	Now func() time.Time
}

// Verifier validates access tokens and turns them into identities. It keeps
// no per-request state and is safe for concurrent use.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewVerifier builds a Verifier. An empty secret is refused.
func NewVerifier(cfg Config) (*Verifier, error) {
	if cfg.Secret == "" {
		return nil, errors.New("auth: verifier secret must not be empty")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{
			jwt.SigningMethodHS256.Alg(),
			jwt.SigningMethodHS384.Alg(),
			jwt.SigningMethodHS512.Alg(),
		}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Now != nil {
		opts = append(opts, jwt.WithTimeFunc(cfg.Now))
	}

	return &Verifier{
		secret: []byte(cfg.Secret),
		parser: jwt.NewParser(opts...),
	}, nil
}

// Verify checks the token signature and claims and returns the caller's
// identity. Any failure is a *VerificationError that also matches
// ErrUnauthenticated.
func (v *Verifier) Verify(tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, reject(ReasonMissing, nil)
	}

	claims := jwt.MapClaims{}
	_, err := v.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return Identity{}, reject(classify(err), err)
	}

	subject := claimString(claims, "user_id")
	if subject == "" {
		subject = claimString(claims, "sub")
	}
	if subject == "" {
		return Identity{}, reject(ReasonClaims, errors.New("token has no subject"))
	}

	role, err := ParseRole(claimString(claims, "role"))
	if err != nil {
		return Identity{}, reject(ReasonClaims, err)
	}

	return Identity{
		Subject: subject,
		Email:   claimString(claims, "email"),
		Role:    role,
	}, nil
}

func classify(err error) Reason {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ReasonExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ReasonSignature
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing),
		errors.Is(err, jwt.ErrTokenInvalidIssuer),
		errors.Is(err, jwt.ErrTokenNotValidYet),
		errors.Is(err, jwt.ErrTokenUsedBeforeIssued),
		errors.Is(err, jwt.ErrTokenInvalidClaims):
		return ReasonClaims
	default:
		return ReasonMalformed
	}
}

// claimString reads a claim as a string. Numeric IDs decode as float64 and are
// rendered without a fraction.
func claimString(claims jwt.MapClaims, key string) string {
	switch v := claims[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
