// Package auth issues and verifies session tokens and password hashes.
package auth

import (
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "storefront"

// Claims identify the user (Subject) and the server-side session (ID).
type Claims struct {
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	secret []byte
}

func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret)}
}

// Issue signs an HS256 token for the session.
func (t *TokenIssuer) Issue(session domain.Session) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   session.UserID.String(),
			ID:        session.ID.String(),
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Parse verifies the token and returns the user and session ids it carries.
// Every failure is reported as domain.ErrUnauthorized.
func (t *TokenIssuer) Parse(token string) (userID, sessionID uuid.UUID, err error) {
	claims := &Claims{}
	_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, uuid.Nil, fmt.Errorf("%w: session expired", domain.ErrUnauthorized)
		}
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	}

	userID, err = uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: invalid token subject", domain.ErrUnauthorized)
	}
	sessionID, err = uuid.Parse(claims.ID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: invalid token id", domain.ErrUnauthorized)
	}
	return userID, sessionID, nil
}

// SessionExpiry is the expiry of a session started at now.
func SessionExpiry(now time.Time, ttl time.Duration) time.Time {
	return now.Add(ttl)
}
