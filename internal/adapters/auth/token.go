package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"partyhaus/internal/domain"
)

type jwtClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

type jwtProvider struct {
	secret []byte
}

// NewJWTProvider returns a token provider that signs and verifies HS256 JWTs
// with the given secret. It implements both TokenIssuer and TokenVerifier.
func NewJWTProvider(secret string) *jwtProvider {
	return &jwtProvider{secret: []byte(secret)}
}

var (
	_ domain.TokenIssuer   = (*jwtProvider)(nil)
	_ domain.TokenVerifier = (*jwtProvider)(nil)
)

func (p *jwtProvider) Issue(userID, email string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		Email: email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify parses and validates the token and returns the subject user id.
func (p *jwtProvider) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwtClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := token.Claims.(*jwtClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("invalid token")
	}
	return claims.Subject, nil
}
