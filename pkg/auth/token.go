package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/uth-confms/confms/pkg/errdefs"
)

// DefaultTokenTTL is the session lifetime used when none is configured.
const DefaultTokenTTL = 24 * time.Hour

// Token validation failures. Expired is distinct from the other two so
// callers can tell "log in again" from "corrupt token".
var (
	ErrTokenExpired          = errdefs.NotAuthenticated("token expired")
	ErrTokenMalformed        = errdefs.NotAuthenticated("token malformed")
	ErrTokenSignatureInvalid = errdefs.NotAuthenticated("token signature invalid")
)

// Claims is the decoded payload of a session token: identity, role names,
// and the registered timing claims.
type Claims struct {
	jwt.RegisteredClaims
	AccountID string   `json:"account_id"`
	Username  string   `json:"username"`
	Roles     []string `json:"roles"`
}

// TokenIssuer signs and validates session tokens with a server-held HMAC
// secret (HS256). Validation is a pure function of token plus secret and
// never touches storage.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates an issuer. A non-positive ttl falls back to
// DefaultTokenTTL.
func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{secret: secret, ttl: ttl, now: time.Now}
}

// TTL returns the configured session lifetime.
func (ti *TokenIssuer) TTL() time.Duration { return ti.ttl }

// Issue signs a claim set for the given identity with the configured TTL.
func (ti *TokenIssuer) Issue(accountID, username string, roles []string) (string, error) {
	return ti.IssueWithTTL(accountID, username, roles, ti.ttl)
}

// IssueWithTTL signs a claim set with an explicit lifetime.
func (ti *TokenIssuer) IssueWithTTL(accountID, username string, roles []string, ttl time.Duration) (string, error) {
	now := ti.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		AccountID: accountID,
		Username:  username,
		Roles:     roles,
	})
	signed, err := token.SignedString(ti.secret)
	if err != nil {
		return "", errdefs.Wrap(errdefs.KindStorage, "token signing failed", err)
	}
	return signed, nil
}

// Validate parses and verifies a token, returning its claims. Failures map
// to ErrTokenExpired, ErrTokenMalformed, or ErrTokenSignatureInvalid.
func (ti *TokenIssuer) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return ti.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(ti.now))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignatureInvalid
		default:
			return nil, ErrTokenMalformed
		}
	}
	if !token.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
