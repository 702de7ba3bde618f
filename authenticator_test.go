package staffdeck_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/staffdeck/staffdeck"
)

func seedUser(t *testing.T, users *fakeUsers, name, email, password string, admin bool) *staffdeck.User {
	t.Helper()
	hash, err := staffdeck.HashPassword(password)
	assert.NoError(t, err)

	user, err := users.Register(context.Background(), &staffdeck.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      admin,
	})
	assert.NoError(t, err)
	return user
}

func TestAutherAuthenticate(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers()
	tokens := newTestTokenService()
	revocations := staffdeck.NewMemoryRevocationStore()
	auther := staffdeck.NewAuthenticator(users, tokens, revocations)

	user := seedUser(t, users, "Pepe Rone", "pepe@example.com", "s3cret-pass", false)

	t.Run("missing token", func(t *testing.T) {
		_, err := auther.Authenticate(ctx, "")
		assert.Equal(t, staffdeck.ErrMissingToken, err)
	})

	t.Run("valid token resolves user", func(t *testing.T) {
		token, err := tokens.Generate(user.ID.String())
		assert.NoError(t, err)

		got, err := auther.Authenticate(ctx, token)
		assert.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, user.Email, got.Email)
	})

	t.Run("malformed token", func(t *testing.T) {
		_, err := auther.Authenticate(ctx, "garbage")
		assert.True(t, staffdeck.IsMalformedError(err))
	})

	t.Run("revocation is checked before verification", func(t *testing.T) {
		// Even a token that would fail signature checks reports
		// revoked once it is in the registry.
		assert.NoError(t, revocations.Revoke(ctx, "revoked-garbage"))

		_, err := auther.Authenticate(ctx, "revoked-garbage")
		assert.Equal(t, staffdeck.ErrTokenRevoked, err)
	})

	t.Run("token subject no longer exists", func(t *testing.T) {
		token, err := tokens.Generate(uuid.NewString())
		assert.NoError(t, err)

		_, err = auther.Authenticate(ctx, token)
		assert.Equal(t, staffdeck.ErrUserNotFound, err)
	})

	t.Run("token subject is not a uuid", func(t *testing.T) {
		token, err := tokens.Generate("not-a-uuid")
		assert.NoError(t, err)

		_, err = auther.Authenticate(ctx, token)
		assert.Equal(t, staffdeck.ErrUserNotFound, err)
	})
}

func TestAutherLogin(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers()
	tokens := newTestTokenService()
	auther := staffdeck.NewAuthenticator(users, tokens, staffdeck.NewMemoryRevocationStore())

	user := seedUser(t, users, "Pepe Rone", "pepe@example.com", "s3cret-pass", false)

	t.Run("valid credentials", func(t *testing.T) {
		token, got, err := auther.Login(ctx, "pepe@example.com", "s3cret-pass")
		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, user.ID, got.ID)

		claims, err := tokens.Validate(token)
		assert.NoError(t, err)
		assert.Equal(t, user.ID.String(), claims.UserID())
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		_, _, errUnknown := auther.Login(ctx, "nobody@example.com", "s3cret-pass")
		_, _, errWrongPass := auther.Login(ctx, "pepe@example.com", "wrong-pass")

		assert.Equal(t, staffdeck.ErrInvalidCredentials, errUnknown)
		assert.Equal(t, staffdeck.ErrInvalidCredentials, errWrongPass)
	})
}

func TestAutherLogout(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers()
	tokens := newTestTokenService()
	revocations := staffdeck.NewMemoryRevocationStore()
	auther := staffdeck.NewAuthenticator(users, tokens, revocations)

	user := seedUser(t, users, "Pepe Rone", "pepe@example.com", "s3cret-pass", false)

	token, err := tokens.Generate(user.ID.String())
	assert.NoError(t, err)

	_, err = auther.Authenticate(ctx, token)
	assert.NoError(t, err)

	assert.NoError(t, auther.Logout(ctx, token))

	_, err = auther.Authenticate(ctx, token)
	assert.Equal(t, staffdeck.ErrTokenRevoked, err)

	t.Run("logout twice is a no-op", func(t *testing.T) {
		assert.NoError(t, auther.Logout(ctx, token))
	})

	t.Run("logout without token", func(t *testing.T) {
		assert.Equal(t, staffdeck.ErrMissingToken, auther.Logout(ctx, ""))
	})
}
