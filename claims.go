package staffdeck

import (
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the JWT payload carried by session tokens. The
// subject holds the user ID; UID duplicates it for clients that read a
// flat field.
type SessionClaims struct {
	jwt.RegisteredClaims
	UID string `json:"uid,omitempty"`
}

// UserID returns the authenticated user's ID, preferring the subject.
func (c *SessionClaims) UserID() string {
	if c.Subject != "" {
		return c.Subject
	}
	return c.UID
}
