package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/foodshare/foodshare/internal/models"
)

// ErrInvalidToken is returned for malformed, tampered or expired tokens
var ErrInvalidToken = errors.New("invalid token")

// Claims are the JWT claims of a viewer token
type Claims struct {
	UserID string      `json:"uid"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenService signs and validates viewer tokens
type TokenService struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
	now        func() time.Time
}

// NewTokenService creates a token service signing with HS256
func NewTokenService(signingKey, issuer string, ttl time.Duration) *TokenService {
	return &TokenService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Generate creates a token for the given identity
func (s *TokenService) Generate(id *Identity) (string, error) {
	now := s.now()
	uid := strconv.FormatInt(id.ID, 10)
	claims := Claims{
		UserID: uid,
		Role:   id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate parses tokenString and returns its identity
func (s *TokenService) Validate(tokenString string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if s.issuer != "" && !claims.VerifyIssuer(s.issuer, true) {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrInvalidToken, claims.Issuer)
	}
	id, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%w: bad uid %q", ErrInvalidToken, claims.UserID)
	}
	return &Identity{ID: id, Role: claims.Role}, nil
}
