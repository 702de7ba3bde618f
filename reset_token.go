package staffdeck

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// ResetTokenTTL bounds how long a password reset link stays usable.
const ResetTokenTTL = 30 * time.Minute

// GenerateResetToken returns a fresh reset token and its digest. The
// plaintext goes in the email link; only the digest is persisted.
func GenerateResetToken() (plaintext, digest string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate reset token")
	}
	plaintext = hex.EncodeToString(buf)
	return plaintext, HashResetToken(plaintext), nil
}

// HashResetToken digests a plaintext reset token for storage and
// lookup.
func HashResetToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
