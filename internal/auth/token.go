package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sanhik/contentos/internal/apperr"
)

// TokenTTL is long because this is a local-first tool; sessions survive
// restarts rather than forcing daily logins.
const TokenTTL = 30 * 24 * time.Hour

// Claims is the JWT payload for an access token.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 access tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

// NewTokens builds a token signer. ttl <= 0 uses TokenTTL.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = TokenTTL
	}
	return &Tokens{secret: []byte(secret), ttl: ttl}
}

// Issue creates a signed access token for the user.
func (t *Tokens) Issue(u *User) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify parses the token and returns its claims, or ErrInvalidCredentials
// for anything that should read as "not logged in".
func (t *Tokens) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return nil, apperr.ErrInvalidCredentials
	}
	return claims, nil
}
