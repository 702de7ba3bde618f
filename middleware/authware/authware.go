// Package authware protects fiber routes behind bearer token
// authentication. It depends only on a small Authenticator interface so
// the core package can supply its authenticator without import cycles.
package authware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Authenticator resolves a raw token to an authenticated principal. An
// empty token is passed through as-is so the implementation owns every
// rejection message, including the missing token case.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (any, error)
}

// AuthenticatorFunc adapts a function to the Authenticator interface.
type AuthenticatorFunc func(ctx context.Context, token string) (any, error)

func (f AuthenticatorFunc) Authenticate(ctx context.Context, token string) (any, error) {
	return f(ctx, token)
}

type Config struct {
	// Filter skips the middleware when it returns true.
	Filter func(*fiber.Ctx) bool
	// Authenticator is required.
	Authenticator Authenticator
	// ErrorHandler renders authentication failures.
	ErrorHandler func(*fiber.Ctx, error) error
	// ContextKey is the locals key for the principal. Defaults to
	// "user".
	ContextKey string
	// TokenKey is the locals key for the raw token. Defaults to
	// "token".
	TokenKey string
	// TokenLookup is "<source>:<name>". Only "header" is supported.
	// Defaults to "header:Authorization".
	TokenLookup string
	// AuthScheme is the expected prefix in the header value. Defaults
	// to "Bearer".
	AuthScheme string
	// ContextEnricher, when set, is called after successful
	// authentication to propagate the principal into the request's
	// user context.
	ContextEnricher func(ctx context.Context, principal any) context.Context
}

func configDefault(config ...Config) Config {
	cfg := Config{}
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Authenticator == nil {
		panic("authware: Authenticator is required")
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": err.Error(),
			})
		}
	}
	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}
	if cfg.TokenKey == "" {
		cfg.TokenKey = "token"
	}
	if cfg.TokenLookup == "" {
		cfg.TokenLookup = "header:" + fiber.HeaderAuthorization
	}
	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}
	return cfg
}

// New builds the middleware. On success the principal and the raw token
// are stored in locals under the configured keys.
func New(config ...Config) fiber.Handler {
	cfg := configDefault(config...)
	headerName := headerFromLookup(cfg.TokenLookup)

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		raw := extractToken(c.Get(headerName), cfg.AuthScheme)

		principal, err := cfg.Authenticator.Authenticate(c.Context(), raw)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		c.Locals(cfg.ContextKey, principal)
		c.Locals(cfg.TokenKey, raw)

		if cfg.ContextEnricher != nil {
			c.SetUserContext(cfg.ContextEnricher(c.UserContext(), principal))
		}

		return c.Next()
	}
}

func headerFromLookup(lookup string) string {
	parts := strings.SplitN(lookup, ":", 2)
	if len(parts) == 2 && parts[0] == "header" {
		return parts[1]
	}
	return fiber.HeaderAuthorization
}

// extractToken strips the auth scheme. A header that does not match the
// scheme yields an empty token, which the authenticator rejects.
func extractToken(header, scheme string) string {
	if header == "" {
		return ""
	}
	if scheme == "" {
		return header
	}
	prefix := scheme + " "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
