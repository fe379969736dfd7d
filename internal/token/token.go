// Package token issues and verifies the signed identity tokens handed out at
// login.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultValidity is used when the service is built with a non-positive window.
const DefaultValidity = 24 * time.Hour

// ErrInvalidToken wraps every verification failure.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the token payload: the standard registered claims plus the
// account id and username.
type Claims struct {
	jwt.RegisteredClaims
	UserID   int64  `json:"id"`
	Username string `json:"username"`
}

// Service signs tokens with a shared HMAC secret.
type Service struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source used for issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(secret []byte, validity time.Duration, opts ...Option) *Service {
	if validity <= 0 {
		validity = DefaultValidity
	}
	s := &Service{secret: secret, validity: validity, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validity returns the lifetime given to issued tokens.
func (s *Service) Validity() time.Duration {
	return s.validity
}

// Issue signs a token for the user that expires after the configured window.
func (s *Service) Issue(userID int64, username string) (string, error) {
	issued := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(s.validity)),
		},
		UserID:   userID,
		Username: username,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Verify checks the signature, algorithm and expiry of tokenString and
// returns its claims.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID <= 0 {
		return nil, fmt.Errorf("%w: missing subject id", ErrInvalidToken)
	}

	return claims, nil
}
