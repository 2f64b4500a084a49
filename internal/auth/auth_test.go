package auth

import (
	"errors"
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef-test"

func TestIssueAndParse(t *testing.T) {
	issuer := NewTokenIssuer(testSecret)
	now := time.Now()
	session := domain.Session{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		CreatedAt: now,
		ExpiresAt: SessionExpiry(now, time.Hour),
	}

	token, err := issuer.Issue(session)
	require.NoError(t, err)

	userID, sessionID, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, session.UserID, userID)
	assert.Equal(t, session.ID, sessionID)
}

func TestParseRejects(t *testing.T) {
	tokens := NewTokenIssuer(testSecret)
	now := time.Now()

	expired, err := tokens.Issue(domain.Session{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		CreatedAt: now.Add(-2 * time.Hour),
		ExpiresAt: now.Add(-time.Hour),
	})
	require.NoError(t, err)

	foreign, err := NewTokenIssuer("another-secret-of-length").Issue(domain.Session{
		ID: uuid.New(), UserID: uuid.New(), CreatedAt: now, ExpiresAt: now.Add(time.Hour),
	})
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Issuer: issuer, Subject: uuid.NewString(), ID: uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":      expired,
		"wrong secret": foreign,
		"unsigned":     noneAlg,
		"garbage":      "not-a-token",
		"empty":        "",
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := tokens.Parse(token)
			assert.True(t, errors.Is(err, domain.ErrUnauthorized), "got %v", err)
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("Secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret123", hash)

	assert.NoError(t, CheckPassword(hash, "Secret123"))
	err = CheckPassword(hash, "Secret124")
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		ok       bool
	}{
		{"Secret123", true},
		{"short1A", false},
		{"alllowercase1", false},
		{"ALLUPPERCASE1", false},
		{"NoDigitsHere", false},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, domain.ErrValidation))
		})
	}
}
