package staffdeck

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// TokenService mints and verifies session tokens.
type TokenService interface {
	Generate(userID string) (string, error)
	Validate(raw string) (*SessionClaims, error)
}

type tokenService struct {
	signingKey []byte
	expiration time.Duration
	issuer     string
	logger     Logger
}

// NewTokenService builds an HS256 token service. A non positive
// expirationHours falls back to 24 hours.
func NewTokenService(signingKey []byte, expirationHours int, issuer string, logger Logger) TokenService {
	if expirationHours <= 0 {
		expirationHours = 24
	}
	if logger == nil {
		logger = defLogger{}
	}
	return &tokenService{
		signingKey: signingKey,
		expiration: time.Duration(expirationHours) * time.Hour,
		issuer:     issuer,
		logger:     logger,
	}
}

func (s *tokenService) Generate(userID string) (string, error) {
	if userID == "" {
		return "", goerrors.New("cannot mint token for empty user id", goerrors.CategoryBadInput)
	}

	now := time.Now()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
		},
		UID: userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign session token")
	}
	return signed, nil
}

func (s *tokenService) Validate(raw string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, goerrors.New("unexpected signing method", goerrors.CategoryAuth)
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		s.logger.Debug("token validation failed: %v", err)
		return nil, ErrTokenMalformed
	}
	if !token.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
