package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mentorx/internal/domain"
	"mentorx/internal/domain/models"
)

const testKID = "test-key"

func newTestVerifier(t *testing.T, pub *rsa.PublicKey) *SupabaseJWTVerifier {
	t.Helper()
	jwks, err := json.Marshal(map[string]interface{}{
		"keys": []map[string]string{{
			"kty": "RSA",
			"kid": testKID,
			"use": "sig",
			"alg": "RS256",
			"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}},
	})
	require.NoError(t, err)

	kf, err := keyfunc.NewJWKSetJSON(jwks)
	require.NoError(t, err)

	return &SupabaseJWTVerifier{
		jwks:   kf,
		cancel: func() {},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func sign(t *testing.T, key *rsa.PrivateKey, claims models.SupabaseClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = testKID
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func validClaims() models.SupabaseClaims {
	return models.SupabaseClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role:        "authenticated",
		Email:       "mentor@example.com",
		AppMetadata: map[string]interface{}{"role": "mentor"},
	}
}

func TestVerifyToken(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	v := newTestVerifier(t, &key.PublicKey)

	t.Run("valid", func(t *testing.T) {
		claims, err := v.VerifyToken(sign(t, key, validClaims()))
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.GetUserID())
		assert.Equal(t, models.RoleMentor, claims.MarketplaceRole())
	})

	t.Run("expired", func(t *testing.T) {
		c := validClaims()
		c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
		_, err := v.VerifyToken(sign(t, key, c))
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("anonymous", func(t *testing.T) {
		c := validClaims()
		c.Role = "anon"
		_, err := v.VerifyToken(sign(t, key, c))
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("missing subject", func(t *testing.T) {
		c := validClaims()
		c.Subject = ""
		_, err := v.VerifyToken(sign(t, key, c))
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("signed by another key", func(t *testing.T) {
		_, err := v.VerifyToken(sign(t, other, validClaims()))
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("hmac token", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims())
		token.Header["kid"] = testKID
		signed, err := token.SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = v.VerifyToken(signed)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := v.VerifyToken("not.a.jwt")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestNewJWTVerifier_RequiresURL(t *testing.T) {
	_, err := NewJWTVerifier("", slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}
