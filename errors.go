package staffdeck

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// Text codes keep authentication failures distinguishable in logs even
// when the external message is deliberately coarse.
const (
	TextCodeTokenMissing    = "TOKEN_MISSING"
	TextCodeTokenRevoked    = "TOKEN_REVOKED"
	TextCodeTokenExpired    = "TOKEN_EXPIRED"
	TextCodeTokenMalformed  = "TOKEN_MALFORMED"
	TextCodeUserNotFound    = "USER_NOT_FOUND"
	TextCodeInvalidCreds    = "INVALID_CREDENTIALS"
	TextCodeResetInvalid    = "RESET_TOKEN_INVALID"
	TextCodeEmailTaken      = "EMAIL_TAKEN"
	TextCodeAdminRequired   = "ADMIN_REQUIRED"
	TextCodeNotOwner        = "NOT_RESOURCE_OWNER"
	TextCodeOwnerNotFound   = "OWNER_NOT_FOUND"
	TextCodeMailDelivery    = "MAIL_DELIVERY_FAILED"
	TextCodeTooManyRequests = "TOO_MANY_REQUESTS"
)

// ErrMissingToken is returned when a protected request carries no
// bearer credential at all.
var ErrMissingToken = errors.New("Access token required", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeTokenMissing)

// ErrTokenRevoked is returned for tokens found in the revocation
// registry, before any signature verification takes place.
var ErrTokenRevoked = errors.New("Token revoked", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeTokenRevoked)

// ErrTokenExpired and ErrTokenMalformed share one external message so a
// caller cannot tell which of the codec failures applied.
var ErrTokenExpired = errors.New("Invalid or expired token", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeTokenExpired)

var ErrTokenMalformed = errors.New("Invalid or expired token", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeTokenMalformed)

// ErrUserNotFound covers a verified token whose subject no longer
// exists in the credential store.
var ErrUserNotFound = errors.New("User not found", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeUserNotFound)

// ErrInvalidCredentials is the generic login failure. Missing user and
// wrong password collapse into this one message.
var ErrInvalidCredentials = errors.New("Invalid email or password", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeInvalidCreds)

// ErrMismatchedHashAndPassword is the internal bcrypt mismatch result.
var ErrMismatchedHashAndPassword = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeInvalidCreds)

// ErrNoEmptyString rejects hashing of an empty password.
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest)

// ErrAdminRequired is the admin-only gate failure.
var ErrAdminRequired = errors.New("Admin privileges required", errors.CategoryAuthz).
	WithCode(errors.CodeForbidden).
	WithTextCode(TextCodeAdminRequired)

// ErrNotResourceOwner is the ownership-match failure for non-admins.
var ErrNotResourceOwner = errors.New("Access denied: insufficient permissions", errors.CategoryAuthz).
	WithCode(errors.CodeForbidden).
	WithTextCode(TextCodeNotOwner)

// ErrOwnerNotFound means the requester could not be resolved to a
// resource owner at all (no employee row for their email).
var ErrOwnerNotFound = errors.New("Access denied: resource owner not found", errors.CategoryAuthz).
	WithCode(errors.CodeForbidden).
	WithTextCode(TextCodeOwnerNotFound)

// ErrResetTokenInvalid covers both a wrong and an expired reset token;
// the two are indistinguishable to the caller.
var ErrResetTokenInvalid = errors.New("Invalid or expired reset token", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest).
	WithTextCode(TextCodeResetInvalid)

// ErrEmailTaken is the unique-email conflict.
var ErrEmailTaken = errors.New("User with this email already exists", errors.CategoryConflict).
	WithCode(errors.CodeConflict).
	WithTextCode(TextCodeEmailTaken)

// ErrMailDelivery reports a failed outbound notification. It is kept
// distinct from the anti-enumeration success path: existence hiding
// applies only to the user-not-found branch.
var ErrMailDelivery = errors.New("Failed to send reset email. Please try again later.", errors.CategoryOperation).
	WithCode(errors.CodeInternal).
	WithTextCode(TextCodeMailDelivery)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.TextCode == TextCodeTokenExpired {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.TextCode == TextCodeTokenMalformed {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// HTTPStatus maps an error to a transport status code using the
// structured code first and the category as fallback.
func HTTPStatus(err error) int {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return 500
	}

	if richErr.Code > 0 {
		return richErr.Code
	}

	switch richErr.Category {
	case errors.CategoryValidation, errors.CategoryBadInput:
		return 400
	case errors.CategoryAuth:
		return 401
	case errors.CategoryAuthz:
		return 403
	case errors.CategoryNotFound:
		return 404
	case errors.CategoryConflict:
		return 409
	case errors.CategoryRateLimit:
		return 429
	default:
		return 500
	}
}

// isUniqueViolation detects driver-level unique constraint failures so
// a concurrent duplicate insert surfaces as Conflict, not Internal.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "Duplicate entry")
}
