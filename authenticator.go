package staffdeck

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// Auther implements session authentication against the user store.
type Auther struct {
	users       Users
	tokens      TokenService
	revocations RevocationStore
	passwords   PasswordAuthenticator
	logger      Logger
}

// NewAuthenticator wires the user store, token service, and revocation
// registry into an authenticator.
func NewAuthenticator(users Users, tokens TokenService, revocations RevocationStore) *Auther {
	return &Auther{
		users:       users,
		tokens:      tokens,
		revocations: revocations,
		passwords:   bcryptAuthenticator{},
		logger:      defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *Auther) WithPasswordAuthenticator(p PasswordAuthenticator) *Auther {
	if p != nil {
		s.passwords = p
	}
	return s
}

// TokenService returns the token service this authenticator mints with.
func (s *Auther) TokenService() TokenService {
	return s.tokens
}

// Authenticate resolves a raw bearer token to its user. The checks run
// in a fixed order: presence, revocation, signature and expiry, then
// the user lookup. Revocation is checked before the signature so a
// revoked token stays rejected even if key handling changes.
func (s *Auther) Authenticate(ctx context.Context, raw string) (*User, error) {
	if raw == "" {
		return nil, ErrMissingToken
	}

	revoked, err := s.revocations.IsRevoked(ctx, raw)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	claims, err := s.tokens.Validate(raw)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(claims.UserID())
	if err != nil {
		s.logger.Debug("token subject is not a valid user id: %v", err)
		return nil, ErrUserNotFound
	}

	user, err := s.users.Get(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

// Login verifies credentials and mints a session token. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *Auther) Login(ctx context.Context, email, password string) (string, *User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := s.passwords.ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		s.logger.Debug("login password mismatch for user %s", user.ID)
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID.String())
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// Logout revokes the given token. Revoking an already revoked token is
// a no-op.
func (s *Auther) Logout(ctx context.Context, raw string) error {
	if raw == "" {
		return ErrMissingToken
	}
	return s.revocations.Revoke(ctx, raw)
}

type bcryptAuthenticator struct{}

func (bcryptAuthenticator) HashPassword(password string) (string, error) {
	return HashPassword(password)
}

func (bcryptAuthenticator) ComparePasswordAndHash(password, hash string) error {
	return ComparePasswordAndHash(password, hash)
}
