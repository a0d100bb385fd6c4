// Package session binds request sessions to user ids.
//
// The session is a signed, HttpOnly cookie — the same model as a Flask
// secret-key session: the server stores nothing, the cookie itself carries
// the user id, and the HMAC signature prevents tampering. We use a JWT as
// the cookie payload because the claims set already gives us expiry ("exp")
// and a unique token id ("jti") for free.
//
// The rest of the application never touches cookies or JWTs directly. It
// sees the Session interface (Bind / Clear / Resolve) and receives a
// per-request handle as an explicit parameter, which keeps the account
// service testable without a simulated HTTP stack.
package session

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

// Session lifetimes.
//
// A plain session (signup) lives for a browser session, backed by a token
// valid for one day. A permanent session (login) lasts 30 days — the
// "remember me" behaviour the frontend expects.
const (
	defaultTokenTTL   = 24 * time.Hour
	PermanentLifetime = 30 * 24 * time.Hour
)

// TokenService signs and verifies session tokens with an HMAC secret.
// The same secret must be used across restarts or every session drops.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService. The secret should be at least
// 32 bytes of random data in production (openssl rand -hex 32).
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("session: secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the token payload. The user id travels in the standard "sub"
// claim; "jti" carries a unique id per issued token.
type claims struct {
	jwt.RegisteredClaims
}

// Generate creates a signed session token for the given user id, valid for
// the given duration.
func (s *TokenService) Generate(userID int64, ttl time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ID:        xid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    "zange-board",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("session: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a token string and returns the user id it
// encodes. Expired, tampered, or otherwise malformed tokens all fail.
func (s *TokenService) Validate(tokenStr string) (int64, error) {
	var c claims

	token, err := jwt.ParseWithClaims(tokenStr, &c, func(t *jwt.Token) (any, error) {
		// Refuse any algorithm other than the one we sign with. Without
		// this check a forged token could claim "alg":"none".
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("session: unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return 0, fmt.Errorf("session: parsing token: %w", err)
	}
	if !token.Valid {
		return 0, errors.New("session: invalid token")
	}

	userID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("session: malformed subject %q", c.Subject)
	}

	return userID, nil
}
