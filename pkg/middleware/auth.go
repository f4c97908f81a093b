package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/uth-confms/confms/pkg/auth"
	"github.com/uth-confms/confms/pkg/contextkeys"
	"github.com/uth-confms/confms/pkg/httputil"
	"github.com/uth-confms/confms/pkg/observability"
)

// Authenticator validates bearer tokens and attaches the session claims
// to the request context.
type Authenticator struct {
	tokens   *auth.TokenIssuer
	optional bool // allow unauthenticated requests through
	metrics  *observability.Metrics
}

// NewAuthenticator creates authentication middleware. With optional set,
// requests without a token pass through unauthenticated; requests with a
// bad token are still rejected. Metrics may be nil.
func NewAuthenticator(tokens *auth.TokenIssuer, optional bool, metrics *observability.Metrics) *Authenticator {
	return &Authenticator{tokens: tokens, optional: optional, metrics: metrics}
}

// Handler wraps an HTTP handler with bearer-token authentication.
func (a *Authenticator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			if a.optional {
				next.ServeHTTP(w, r)
				return
			}
			httputil.WriteErrorMessage(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httputil.WriteErrorMessage(w, http.StatusUnauthorized, "invalid authorization header format")
			return
		}

		claims, err := a.tokens.Validate(parts[1])
		if err != nil {
			a.countFailure(err)
			// The error carries which check failed; an expired token
			// means "log in again", a malformed one does not.
			httputil.WriteError(w, err)
			return
		}

		ctx := contextkeys.WithClaims(r.Context(), claims)
		ctx = observability.WithAccountID(ctx, claims.AccountID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Authenticator) countFailure(err error) {
	if a.metrics == nil {
		return
	}
	kind := "invalid"
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		kind = "expired"
	case errors.Is(err, auth.ErrTokenMalformed):
		kind = "malformed"
	case errors.Is(err, auth.ErrTokenSignatureInvalid):
		kind = "signature"
	}
	a.metrics.TokenFailuresTotal.WithLabelValues(kind).Inc()
}

// GetClaims extracts the session claims from a request, or nil when the
// request is unauthenticated.
func GetClaims(r *http.Request) *auth.Claims {
	return contextkeys.ClaimsFrom(r.Context())
}
