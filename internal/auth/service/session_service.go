package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/agrwalh/aidfusion-auth/internal/auth/domain"
)

type SessionIssuer interface {
	Issue(userID, email string, role domain.Role) (string, error)
	Parse(token string) *SessionClaims
	Lifetime() time.Duration
}

// SessionService mints and parses the signed session token. The token is the
// only session record: the server keeps no copy, and validity is recomputed
// from the signature and embedded claims on every request. A stolen token
// therefore stays valid until natural expiry; logout only tells the client
// to discard it.
type SessionService struct {
	secret   []byte
	lifetime time.Duration
}

type SessionClaims struct {
	jwt.RegisteredClaims
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

func NewSessionService(secret string, lifetime time.Duration) *SessionService {
	return &SessionService{secret: []byte(secret), lifetime: lifetime}
}

func (s *SessionService) Issue(userID, email string, role domain.Role) (string, error) {
	now := time.Now()

	claims := SessionClaims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return token, nil
}

// Parse returns nil for a missing, tampered, or expired token. Callers treat
// a nil result as an anonymous request, not an error.
func (s *SessionService) Parse(tokenString string) *SessionClaims {
	if tokenString == "" {
		return nil
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Ensure the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil
	}

	return claims
}

func (s *SessionService) Lifetime() time.Duration {
	return s.lifetime
}
