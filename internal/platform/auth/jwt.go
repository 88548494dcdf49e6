package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/arashmdn/student-portal/internal/domain"
)

// Claims carried by a portal bearer token. Subject is the student number.
type Claims struct {
	UserID       int64  `json:"user_id"`
	NationalCode string `json:"national_code,omitempty"`
	Role         string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 bearer tokens with a shared
// secret.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = 60 * time.Minute
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// TTL returns the configured token lifetime.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue signs a token for the given subject with the service TTL.
func (s *TokenService) Issue(studentNumber string, userID int64, nationalCode, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:       userID,
		NationalCode: nationalCode,
		Role:         role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   studentNumber,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses and checks tokenString. Every failure mode — bad
// signature, expiry, malformed structure, or a signing algorithm other
// than HS256 — collapses into domain.ErrInvalidToken so callers cannot
// probe which check failed.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid || claims.Subject == "" {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}
