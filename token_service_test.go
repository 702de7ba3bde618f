package staffdeck_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/staffdeck/staffdeck"
)

var testSigningKey = []byte("test-signing-key")

func newTestTokenService() staffdeck.TokenService {
	return staffdeck.NewTokenService(testSigningKey, 1, "staffdeck-test", nil)
}

func TestTokenServiceRoundtrip(t *testing.T) {
	svc := newTestTokenService()
	userID := "7cbb2d9c-94a3-4be9-9a2f-00f3c18b552a"

	token, err := svc.Generate(userID)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := svc.Validate(token)
	assert.NoError(t, err)
	assert.Equal(t, userID, claims.UserID())
	assert.Equal(t, "staffdeck-test", claims.Issuer)
}

func TestTokenServiceGenerate(t *testing.T) {
	svc := newTestTokenService()

	t.Run("empty user id", func(t *testing.T) {
		_, err := svc.Generate("")
		assert.Error(t, err)
	})
}

func TestTokenServiceValidate(t *testing.T) {
	svc := newTestTokenService()

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.Validate("not.a.jwt")
		assert.True(t, staffdeck.IsMalformedError(err))
	})

	t.Run("wrong signing key", func(t *testing.T) {
		other := staffdeck.NewTokenService([]byte("other-key"), 1, "staffdeck-test", nil)
		token, err := other.Generate("some-user")
		assert.NoError(t, err)

		_, err = svc.Validate(token)
		assert.True(t, staffdeck.IsMalformedError(err))
	})

	t.Run("expired token", func(t *testing.T) {
		now := time.Now()
		claims := &staffdeck.SessionClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "some-user",
				IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
				ExpiresAt: jwt.NewNumericDate(now.Add(-1 * time.Hour)),
			},
		}
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSigningKey)
		assert.NoError(t, err)

		_, err = svc.Validate(raw)
		assert.True(t, staffdeck.IsTokenExpiredError(err))
	})

	t.Run("unexpected signing method", func(t *testing.T) {
		claims := &staffdeck.SessionClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "some-user"},
		}
		raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		assert.NoError(t, err)

		_, err = svc.Validate(raw)
		assert.True(t, staffdeck.IsMalformedError(err))
	})
}

func TestSessionClaimsUserID(t *testing.T) {
	t.Run("prefers subject", func(t *testing.T) {
		c := &staffdeck.SessionClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "sub-id"},
			UID:              "uid-id",
		}
		assert.Equal(t, "sub-id", c.UserID())
	})

	t.Run("falls back to uid", func(t *testing.T) {
		c := &staffdeck.SessionClaims{UID: "uid-id"}
		assert.Equal(t, "uid-id", c.UserID())
	})
}
